// Copyright (C) 2025 Prizm Real Estate Concierge Service
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes provides data structures for the intake service.
//
// This package holds the conversation state record, the wire-level
// request/result types for a single turn, and the tolerant codec that
// restores state from the heterogeneous flat records upstream callers
// persist between turns.
package datatypes

// Chat roles used when building prompts for an LLM backend.
const (
	RoleSystem    = "system"
	RoleAssistant = "assistant"
	RoleUser      = "user"
)

// Message is a single role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

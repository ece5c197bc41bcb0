// Copyright (C) 2025 Prizm Real Estate Concierge Service
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// This file contains the request and result types for a single engine turn.
// The engine itself lives in services/intake/engine.
package datatypes

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	// MaxUserInputBytes bounds a single user utterance. Checked in bytes,
	// not runes, so oversized payloads cannot exhaust memory.
	MaxUserInputBytes = 32 * 1024 // 32KB

	// MaxSubjectBytes bounds the opaque subject identity key.
	MaxSubjectBytes = 512
)

// turnValidate is the shared validator instance for turn datatypes.
var turnValidate *validator.Validate

func init() {
	turnValidate = validator.New()
	_ = turnValidate.RegisterValidation("maxinputbytes", validateMaxInputBytes)
}

func validateMaxInputBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxUserInputBytes
}

// TurnRequest is the input for one engine turn.
//
// PreviousState is the flat record returned by the prior turn (or loaded
// from wherever the caller persisted it); nil means this is the first turn
// of a new conversation. Mode selects the persona template; an empty Mode
// falls back to the engine's configured default.
type TurnRequest struct {
	UserInput       string         `json:"user_input" validate:"maxinputbytes"`
	PreviousState   map[string]any `json:"previous_state"`
	SubjectIdentity string         `json:"subject_identity" validate:"required,max=512"`
	Mode            string         `json:"mode" validate:"omitempty,oneof=structured-intake generic-assistant debug-echo"`
}

// Validate checks the request against its struct tags.
func (r *TurnRequest) Validate() error {
	if err := turnValidate.Struct(r); err != nil {
		return fmt.Errorf("invalid turn request: %w", err)
	}
	return nil
}

// TurnResult is the externally visible outcome of one turn.
//
// Question is the next thing to surface to the human subject; it is empty
// once the conversation has concluded. TurnID is a correlation ID minted
// per processed turn for log and trace stitching.
type TurnResult struct {
	TurnID           string           `json:"turn_id"`
	Question         string           `json:"question"`
	Transcript       string           `json:"transcript"`
	IsComplete       bool             `json:"is_complete"`
	CompletionReason CompletionReason `json:"completion_reason"`
	SubjectIdentity  string           `json:"subject_identity"`
	TurnCount        int              `json:"turn_count"`
}

// State reconstitutes the conversation state embedded in the result, ready
// to be fed back as PreviousState on the next turn.
func (r TurnResult) State() ConversationState {
	return ConversationState{
		Transcript: r.Transcript,
		TurnCount:  r.TurnCount,
		IsComplete: r.IsComplete,
		Reason:     r.CompletionReason,
		Subject:    r.SubjectIdentity,
	}
}

// Record flattens the result for persistence by the caller.
func (r TurnResult) Record() map[string]any {
	return r.State().Record(r.Question)
}

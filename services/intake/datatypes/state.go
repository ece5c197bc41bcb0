// Copyright (C) 2025 Prizm Real Estate Concierge Service
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CompletionReason classifies why a conversation ended. Its value is only
// meaningful once IsComplete is true; while a conversation is still active
// the reason is ReasonOther.
type CompletionReason string

const (
	// ReasonProgressing means the subject confirmed they will move forward.
	ReasonProgressing CompletionReason = "PROGRESSING"

	// ReasonEscalation means the subject needs a human to step in.
	ReasonEscalation CompletionReason = "ESCALATION"

	// ReasonOther is the transient value carried while the conversation
	// is still in progress.
	ReasonOther CompletionReason = "OTHER"

	// ReasonMaxTurns means the hard turn limit ended the conversation.
	ReasonMaxTurns CompletionReason = "MAX_TURNS"
)

// ConversationState is the only persisted entity of the turn engine.
//
// The engine is stateless between invocations: everything needed to resume
// a conversation lives here, and the caller is responsible for persisting
// the serialized record between turns (a local KV store, a document
// database, an HTTP round-trip; the engine does not care which).
type ConversationState struct {
	// Transcript is the append-only log of alternating "Question:" and
	// "Learned:" entries. It only ever grows.
	Transcript string

	// TurnCount is the number of completed turns. It is the canonical
	// counter; it is never re-derived by counting markers in the
	// transcript.
	TurnCount int

	// IsComplete is the terminal flag. Once true, further turns
	// short-circuit without touching the model.
	IsComplete bool

	// Reason records why the conversation completed.
	Reason CompletionReason

	// Subject is the opaque correlation key for the human on the other
	// end (email, phone number, chat handle). Carried through untouched.
	Subject string
}

// Record field names. The legacy aliases match the flat records written by
// earlier deployments of this system, which used different key names; the
// codec accepts both shapes so historical conversations keep resuming.
const (
	FieldQuestion   = "question"
	FieldTranscript = "transcript"
	FieldTurnCount  = "turn_count"
	FieldIsComplete = "is_complete"
	FieldReason     = "completion_reason"
	FieldSubject    = "subject"

	legacyFieldTranscript = "conversation_history"
	legacyFieldSubject    = "user_email"
	legacyFieldReason     = "completion_state"
)

// Legacy reason values written by earlier deployments, mapped on restore.
var legacyReasons = map[string]CompletionReason{
	"TASK_PROGRESSING": ReasonProgressing,
	"TASK_ESCALATION":  ReasonEscalation,
	"in_progress":      ReasonOther,
}

// RestoreState rebuilds a ConversationState from a flat record.
//
// A nil record yields a fresh first-turn state with an empty transcript and
// the caller-supplied fallback subject. Missing or malformed fields never
// raise: every field has a safe default, because upstream callers pass
// heterogeneous historical shapes (raw Firestore documents, JSON round-trips
// where integers arrive as float64, older records with legacy key names).
func RestoreState(raw map[string]any, fallbackSubject string) ConversationState {
	state := ConversationState{
		Reason:  ReasonOther,
		Subject: fallbackSubject,
	}
	if raw == nil {
		return state
	}

	state.Transcript = stringField(raw, FieldTranscript, legacyFieldTranscript)
	state.TurnCount = intField(raw, FieldTurnCount)
	state.IsComplete = boolField(raw, FieldIsComplete)

	if subject := stringField(raw, FieldSubject, legacyFieldSubject); subject != "" {
		state.Subject = subject
	}
	if reason := stringField(raw, FieldReason, legacyFieldReason); reason != "" {
		state.Reason = normalizeReason(reason)
	}
	return state
}

// Record flattens the state into the serialized form handed back to
// callers, including the outward-facing question for this turn.
func (s ConversationState) Record(question string) map[string]any {
	reason := s.Reason
	if reason == "" {
		reason = ReasonOther
	}
	return map[string]any{
		FieldQuestion:   question,
		FieldTranscript: s.Transcript,
		FieldTurnCount:  s.TurnCount,
		FieldIsComplete: s.IsComplete,
		FieldReason:     string(reason),
		FieldSubject:    s.Subject,
	}
}

func normalizeReason(value string) CompletionReason {
	trimmed := strings.TrimSpace(value)
	if mapped, ok := legacyReasons[trimmed]; ok {
		return mapped
	}
	switch CompletionReason(trimmed) {
	case ReasonProgressing, ReasonEscalation, ReasonMaxTurns:
		return CompletionReason(trimmed)
	default:
		return ReasonOther
	}
}

func stringField(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := raw[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// intField coerces the common numeric encodings seen in stored records:
// native ints, float64 from encoding/json, json.Number, and stringly-typed
// counters from older documents.
func intField(raw map[string]any, key string) int {
	switch v := raw[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}

func boolField(raw map[string]any, key string) bool {
	switch v := raw[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	}
	return false
}

package datatypes

import (
	"strings"
	"testing"
)

func TestTurnRequest_Validate_Success(t *testing.T) {
	req := &TurnRequest{
		UserInput:       "Yes I'm ready",
		SubjectIdentity: "user@example.com",
		Mode:            "structured-intake",
	}
	if err := req.Validate(); err != nil {
		t.Errorf("expected valid request, got error: %v", err)
	}
}

func TestTurnRequest_Validate_EmptyModeAllowed(t *testing.T) {
	req := &TurnRequest{SubjectIdentity: "user@example.com"}
	if err := req.Validate(); err != nil {
		t.Errorf("empty mode should fall back to the engine default, got error: %v", err)
	}
}

func TestTurnRequest_Validate_MissingSubject(t *testing.T) {
	req := &TurnRequest{UserInput: "hello"}
	if err := req.Validate(); err == nil {
		t.Error("expected error for missing subject identity, got nil")
	}
}

func TestTurnRequest_Validate_UnknownMode(t *testing.T) {
	req := &TurnRequest{
		SubjectIdentity: "user@example.com",
		Mode:            "free-jazz",
	}
	if err := req.Validate(); err == nil {
		t.Error("expected error for unknown mode, got nil")
	}
}

func TestTurnRequest_Validate_OversizedInput(t *testing.T) {
	req := &TurnRequest{
		UserInput:       strings.Repeat("a", MaxUserInputBytes+1),
		SubjectIdentity: "user@example.com",
	}
	if err := req.Validate(); err == nil {
		t.Errorf("expected error for input over %d bytes, got nil", MaxUserInputBytes)
	}
}

func TestTurnRequest_Validate_ExactlyMaxInput(t *testing.T) {
	req := &TurnRequest{
		UserInput:       strings.Repeat("a", MaxUserInputBytes),
		SubjectIdentity: "user@example.com",
	}
	if err := req.Validate(); err != nil {
		t.Errorf("expected input of exactly %d bytes to validate, got error: %v",
			MaxUserInputBytes, err)
	}
}

func TestTurnResult_StateAndRecord(t *testing.T) {
	result := TurnResult{
		TurnID:           "id",
		Question:         "next?",
		Transcript:       "\nQuestion: next?\nLearned: something",
		IsComplete:       false,
		CompletionReason: ReasonOther,
		SubjectIdentity:  "user@example.com",
		TurnCount:        2,
	}

	state := result.State()
	if state.TurnCount != 2 || state.Subject != "user@example.com" {
		t.Errorf("unexpected state: %+v", state)
	}

	record := result.Record()
	if record[FieldQuestion] != "next?" {
		t.Errorf("record question mismatch: %v", record[FieldQuestion])
	}
	if record[FieldTurnCount] != 2 {
		t.Errorf("record turn count mismatch: %v", record[FieldTurnCount])
	}
}

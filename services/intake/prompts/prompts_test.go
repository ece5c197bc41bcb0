package prompts

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ricgene/prizm-intake/services/intake/datatypes"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"structured-intake", ModeStructuredIntake},
		{"generic-assistant", ModeGenericAssistant},
		{"debug-echo", ModeDebugEcho},
		{"", ModeStructuredIntake},
		{"free-jazz", ModeStructuredIntake},
	}
	for _, tt := range tests {
		if got := ParseMode(tt.in); got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuild_FirstTurnIsSystemOnly(t *testing.T) {
	b := NewBuilder(ModeStructuredIntake, 7)
	state := datatypes.ConversationState{TurnCount: 1}

	messages := b.Build(state, "")
	if len(messages) != 1 {
		t.Fatalf("expected 1 message on the greeting turn, got %d", len(messages))
	}
	if messages[0].Role != datatypes.RoleSystem {
		t.Errorf("expected system role, got %q", messages[0].Role)
	}
}

func TestBuild_FullSequence(t *testing.T) {
	b := NewBuilder(ModeStructuredIntake, 7)
	state := datatypes.ConversationState{
		Transcript: "\nQuestion: ready?\nLearned: nothing yet",
		TurnCount:  2,
	}

	messages := b.Build(state, "Yes I'm ready")
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	if messages[0].Role != datatypes.RoleSystem {
		t.Errorf("message 0 role = %q, want system", messages[0].Role)
	}
	if messages[1].Role != datatypes.RoleAssistant || messages[1].Content != state.Transcript {
		t.Errorf("message 1 must carry the transcript, got %+v", messages[1])
	}
	if messages[2].Role != datatypes.RoleUser || messages[2].Content != "Yes I'm ready" {
		t.Errorf("message 2 must carry the user input, got %+v", messages[2])
	}
}

func TestBuild_EmptyInputOmitsUserMessage(t *testing.T) {
	b := NewBuilder(ModeGenericAssistant, 7)
	state := datatypes.ConversationState{
		Transcript: "\nQuestion: q\nLearned: l",
		TurnCount:  2,
	}
	messages := b.Build(state, "")
	if len(messages) != 2 {
		t.Fatalf("expected system+assistant only, got %d messages", len(messages))
	}
}

func TestSystemPrompt_TurnBudget(t *testing.T) {
	b := NewBuilder(ModeStructuredIntake, 7)
	prompt := b.systemPrompt(3)

	if !strings.Contains(prompt, "Current turn count: 3/7") {
		t.Errorf("prompt missing turn count line:\n%s", prompt)
	}
	if !strings.Contains(prompt, "You have 4 turns remaining") {
		t.Errorf("prompt missing remaining turns line:\n%s", prompt)
	}
}

func TestSystemPrompt_RemainingNeverNegative(t *testing.T) {
	b := NewBuilder(ModeStructuredIntake, 7)
	prompt := b.systemPrompt(9)
	if !strings.Contains(prompt, "You have 0 turns remaining") {
		t.Errorf("remaining turns must clamp at zero:\n%s", prompt)
	}
}

func TestSystemPrompt_OutputContract(t *testing.T) {
	for _, mode := range []Mode{ModeStructuredIntake, ModeGenericAssistant, ModeDebugEcho} {
		t.Run(string(mode), func(t *testing.T) {
			prompt := NewBuilder(mode, 7).systemPrompt(1)
			for _, token := range []string{
				QuestionMarker, LearnedMarker, SentinelProceed, SentinelEscalate,
			} {
				if !strings.Contains(prompt, token) {
					t.Errorf("mode %q prompt missing %q", mode, token)
				}
			}
		})
	}
}

func TestSystemPrompt_PersonasDiffer(t *testing.T) {
	seen := map[string]Mode{}
	for _, mode := range []Mode{ModeStructuredIntake, ModeGenericAssistant, ModeDebugEcho} {
		prompt := NewBuilder(mode, 7).systemPrompt(1)
		if prior, ok := seen[prompt]; ok {
			t.Errorf("modes %q and %q render identical prompts", prior, mode)
		}
		seen[prompt] = mode
	}
}

func TestBuild_BudgetTracksEveryTurn(t *testing.T) {
	b := NewBuilder(ModeDebugEcho, 3)
	for turn := 1; turn <= 3; turn++ {
		state := datatypes.ConversationState{TurnCount: turn}
		prompt := b.Build(state, "x")[0].Content
		want := fmt.Sprintf("Current turn count: %d/3", turn)
		if !strings.Contains(prompt, want) {
			t.Errorf("turn %d prompt missing %q", turn, want)
		}
	}
}

// Copyright (C) 2025 Prizm Real Estate Concierge Service
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package prompts builds the instruction payload sent to the language model
// on each turn.
//
// Earlier deployments of this system carried five near-identical copies of
// the persona text spread across separate scripts. Persona selection is now
// configuration: each Mode maps to one template, and every template mandates
// the same output contract of "Question:" / "Learned:" sections plus the two
// completion sentinels the model must emit verbatim when it is done.
package prompts

import (
	"fmt"
	"log/slog"

	"github.com/ricgene/prizm-intake/services/intake/datatypes"
)

// Mode selects a persona template. The set is closed; unknown values fall
// back to ModeStructuredIntake with a warning.
type Mode string

const (
	// ModeStructuredIntake is the production concierge persona collecting
	// a fixed list of facts about a home task.
	ModeStructuredIntake Mode = "structured-intake"

	// ModeGenericAssistant is an open-ended helper persona.
	ModeGenericAssistant Mode = "generic-assistant"

	// ModeDebugEcho is a short-response persona for local testing.
	ModeDebugEcho Mode = "debug-echo"
)

// Output-contract markers and completion sentinels. The engine parses model
// replies against these exact literals, so templates and parser must agree.
const (
	QuestionMarker = "Question:"
	LearnedMarker  = "Learned:"

	// SentinelProceed is emitted verbatim by the model when the subject
	// will move forward on their own.
	SentinelProceed = "TASK_PROGRESSING"

	// SentinelEscalate is emitted verbatim when the subject needs a human
	// to step in.
	SentinelEscalate = "TASK_ESCALATION"
)

// ParseMode normalizes a mode string, defaulting unknown or empty values to
// ModeStructuredIntake the way the original deployment defaulted its prompt
// type.
func ParseMode(value string) Mode {
	switch Mode(value) {
	case ModeStructuredIntake, ModeGenericAssistant, ModeDebugEcho:
		return Mode(value)
	case "":
		return ModeStructuredIntake
	default:
		slog.Warn("Unknown prompt mode, defaulting to structured-intake", "mode", value)
		return ModeStructuredIntake
	}
}

// personaBodies hold the per-mode instruction text. The shared output
// contract and the turn budget line are appended by systemPrompt so the
// rules cannot drift between personas.
var personaBodies = map[Mode]string{
	ModeStructuredIntake: `You are a helpful AI Agent named Helen helping a customer complete a home Task for Prizm Real Estate Concierge Service.
You need to collect the following information:
1. Are they ready to discuss their Task
2. Will they reach out to the contractor
3. Do they have any concerns or questions

IMPORTANT RULES:
1. If the user's response is unclear or doesn't answer your question:
   - Rephrase your question to be more specific
   - In the "Learned" section, note that the response was unclear
2. Start by asking about 1. above if no information has been provided yet
3. After each response, assess what new information you've learned and include it in the 'Learned' section
4. When you have all the information, close the conversation with 'Thank you for selecting Prizm, have a great rest of your day!'`,

	ModeGenericAssistant: `You are a helpful AI assistant. Your goal is to understand what the user needs and provide helpful responses.

RULES:
1. Ask follow-up questions to better understand the user's needs
2. When you have enough information to help, close the conversation politely`,

	ModeDebugEcho: `DEBUG MODE: Simple test agent for development.

RULES:
1. Keep responses short and simple
2. In the 'Learned' section, echo what the user said
3. Close the conversation after 3 turns`,
}

// Builder renders the message sequence for one turn.
type Builder struct {
	mode     Mode
	maxTurns int
}

// NewBuilder returns a Builder for the given persona and turn budget.
func NewBuilder(mode Mode, maxTurns int) *Builder {
	return &Builder{mode: ParseMode(string(mode)), maxTurns: maxTurns}
}

// Mode reports the normalized persona in use.
func (b *Builder) Mode() Mode {
	return b.mode
}

// Build constructs the ordered message payload for the model.
//
// state carries the pre-turn transcript and the already-incremented turn
// count, so the rendered budget line reflects the turn being processed. The
// sequence is: one system message with the rendered template, one assistant
// message with the transcript so far (omitted on the very first turn when
// the transcript is empty), and one user message with the new input
// (omitted on greeting-only calls with no input).
func (b *Builder) Build(state datatypes.ConversationState, userInput string) []datatypes.Message {
	messages := []datatypes.Message{
		{Role: datatypes.RoleSystem, Content: b.systemPrompt(state.TurnCount)},
	}
	if state.Transcript != "" {
		messages = append(messages, datatypes.Message{
			Role:    datatypes.RoleAssistant,
			Content: state.Transcript,
		})
	}
	if userInput != "" {
		messages = append(messages, datatypes.Message{
			Role:    datatypes.RoleUser,
			Content: userInput,
		})
	}
	return messages
}

// systemPrompt renders the persona body plus the shared output contract.
//
// The remaining-turn budget is embedded on every turn so the model can pace
// itself toward a conclusion instead of being cut off mid-thought by the
// hard limit.
func (b *Builder) systemPrompt(turnCount int) string {
	remaining := b.maxTurns - turnCount
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf(`%s

Format your responses as:
%s [Your next question]
%s [What you've learned from the conversation so far]

ALWAYS format your response with "%s" and "%s" sections.
When the conversation is finished:
- end with '%s' if the user will move forward
- end with '%s' if the user needs a human to follow up
Current turn count: %d/%d. You have %d turns remaining.`,
		personaBodies[b.mode],
		QuestionMarker, LearnedMarker,
		QuestionMarker, LearnedMarker,
		SentinelProceed, SentinelEscalate,
		turnCount, b.maxTurns, remaining)
}

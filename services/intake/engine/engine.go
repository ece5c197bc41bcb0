// Copyright (C) 2025 Prizm Real Estate Concierge Service
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package engine implements the turn-based task-collection state machine.
//
// The engine is re-entrant and stateless between calls: each invocation
// receives the prior serialized state and the new user input, runs exactly
// one turn, and returns the updated state plus the next question to surface.
// "Pause and wait for the next user message" is modeled as process exit plus
// re-invocation with the serialized state, so any number of conversations
// for different subjects can run in parallel with zero shared mutable state
// here.
//
// The engine cannot detect out-of-order resumption for a single subject.
// Callers must serialize turns per subject (for example with an external
// lock document); two concurrent turns reading the same prior state would
// each increment the turn count and one update would be silently lost.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ricgene/prizm-intake/services/intake/datatypes"
	"github.com/ricgene/prizm-intake/services/intake/observability"
	"github.com/ricgene/prizm-intake/services/intake/prompts"
	"github.com/ricgene/prizm-intake/services/llm"
)

var tracer = otel.Tracer("prizm-intake.intake.engine")

// DefaultMaxTurns is the hard turn limit. Reaching it forces the terminal
// state no matter what the model says, which is the engine's one
// unconditional termination guarantee.
const DefaultMaxTurns = 7

// MaxTurnsClosingMessage is surfaced to the subject when the turn limit
// ends the conversation.
const MaxTurnsClosingMessage = "Thank you for your time. We've reached the maximum number of turns for this conversation."

// fallbackLearned is appended when a model reply carries neither output
// marker, so a malformed reply degrades instead of failing the turn.
const fallbackLearned = "No clear information provided in the response."

// ErrModelInvocation wraps any failure of the language model call. The
// engine does not retry; the prior state is left untouched so the caller
// can safely retry the identical turn.
var ErrModelInvocation = errors.New("language model invocation failed")

// Config controls engine behavior. Zero values select the defaults.
type Config struct {
	// Mode is the default persona when a request does not name one.
	Mode prompts.Mode

	// MaxTurns overrides DefaultMaxTurns. Values < 1 select the default.
	MaxTurns int

	// Metrics overrides observability.Default, mainly for tests.
	Metrics *observability.TurnMetrics
}

// Engine runs one conversation turn per call. Safe for concurrent use
// across subjects; see the package comment for the per-subject ordering
// requirement.
type Engine struct {
	client   llm.LLMClient
	mode     prompts.Mode
	maxTurns int
	metrics  *observability.TurnMetrics
}

// New builds an Engine around the given model client.
func New(client llm.LLMClient, cfg Config) (*Engine, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	maxTurns := cfg.MaxTurns
	if maxTurns < 1 {
		maxTurns = DefaultMaxTurns
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observability.Default
	}
	return &Engine{
		client:   client,
		mode:     prompts.ParseMode(string(cfg.Mode)),
		maxTurns: maxTurns,
		metrics:  metrics,
	}, nil
}

// MaxTurns reports the configured hard turn limit.
func (e *Engine) MaxTurns() int {
	return e.maxTurns
}

// RunTurn processes exactly one turn.
//
// Order of operations: restore state, short-circuit if the conversation is
// already complete or out of turns, otherwise increment the turn counter,
// build the prompt, make the single model call, parse the reply, append to
// the transcript, and evaluate completion. On a model failure the returned
// error wraps ErrModelInvocation and no state is mutated, so retrying the
// same request is idempotent.
func (e *Engine) RunTurn(ctx context.Context, req datatypes.TurnRequest) (datatypes.TurnResult, error) {
	ctx, span := tracer.Start(ctx, "Engine.RunTurn")
	defer span.End()
	start := time.Now()

	mode := e.mode
	if req.Mode != "" {
		mode = prompts.ParseMode(req.Mode)
	}
	span.SetAttributes(attribute.String("intake.mode", string(mode)))

	if err := req.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.metrics.TurnsTotal.WithLabelValues(string(mode), observability.StatusInvalid).Inc()
		return datatypes.TurnResult{}, err
	}

	state := datatypes.RestoreState(req.PreviousState, req.SubjectIdentity)
	turnID := uuid.NewString()
	span.SetAttributes(attribute.Int("intake.turn_count", state.TurnCount))

	// Absorbing terminal state: a completed conversation never reaches
	// the model again.
	if state.IsComplete {
		slog.Info("Conversation already complete, short-circuiting",
			"turn_id", turnID, "subject", state.Subject, "reason", state.Reason)
		e.metrics.TurnsTotal.WithLabelValues(string(mode), observability.StatusTerminal).Inc()
		return terminalResult(turnID, state, ""), nil
	}

	// Turn-limit guard, checked before any model call. The turn count is
	// left unchanged; the transition only flips the terminal flag.
	if state.TurnCount >= e.maxTurns {
		state.IsComplete = true
		state.Reason = datatypes.ReasonMaxTurns
		slog.Info("Turn limit reached, closing conversation",
			"turn_id", turnID, "subject", state.Subject, "turn_count", state.TurnCount)
		e.metrics.TurnsTotal.WithLabelValues(string(mode), observability.StatusTerminal).Inc()
		e.metrics.CompletionsTotal.WithLabelValues(string(datatypes.ReasonMaxTurns)).Inc()
		return terminalResult(turnID, state, MaxTurnsClosingMessage), nil
	}

	turn := state
	turn.TurnCount++

	builder := prompts.NewBuilder(mode, e.maxTurns)
	messages := builder.Build(turn, req.UserInput)

	temperature := float32(0)
	reply, err := e.client.Chat(ctx, messages, llm.GenerationParams{Temperature: &temperature})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("Model call failed, leaving state untouched",
			"turn_id", turnID, "subject", state.Subject, "error", err)
		e.metrics.ModelErrorsTotal.Inc()
		e.metrics.TurnsTotal.WithLabelValues(string(mode), observability.StatusModelError).Inc()
		return datatypes.TurnResult{}, fmt.Errorf("%w: %w", ErrModelInvocation, err)
	}

	question, learned := parseReply(reply)
	if question != "" {
		turn.Transcript += "\n" + prompts.QuestionMarker + " " + question
	}
	if learned != "" {
		turn.Transcript += "\n" + prompts.LearnedMarker + " " + learned
	}

	turn.IsComplete, turn.Reason = detectCompletion(reply, turn.Transcript)

	// A turn that consumed the last slot of the budget terminates the
	// conversation even without a sentinel, keeping the limit absorbing.
	if !turn.IsComplete && turn.TurnCount >= e.maxTurns {
		turn.IsComplete = true
		turn.Reason = datatypes.ReasonMaxTurns
		question = MaxTurnsClosingMessage
	} else if turn.IsComplete {
		// No further question is surfaced once the conversation ends.
		question = ""
	}

	if turn.IsComplete {
		e.metrics.CompletionsTotal.WithLabelValues(string(turn.Reason)).Inc()
	}
	e.metrics.TurnsTotal.WithLabelValues(string(mode), observability.StatusOK).Inc()
	e.metrics.TurnDurationSeconds.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())

	slog.Info("Turn processed",
		"turn_id", turnID,
		"subject", turn.Subject,
		"turn_count", turn.TurnCount,
		"is_complete", turn.IsComplete,
		"reason", turn.Reason)

	return datatypes.TurnResult{
		TurnID:           turnID,
		Question:         question,
		Transcript:       turn.Transcript,
		IsComplete:       turn.IsComplete,
		CompletionReason: turn.Reason,
		SubjectIdentity:  turn.Subject,
		TurnCount:        turn.TurnCount,
	}, nil
}

func terminalResult(turnID string, state datatypes.ConversationState, question string) datatypes.TurnResult {
	reason := state.Reason
	if reason == "" {
		reason = datatypes.ReasonOther
	}
	return datatypes.TurnResult{
		TurnID:           turnID,
		Question:         question,
		Transcript:       state.Transcript,
		IsComplete:       true,
		CompletionReason: reason,
		SubjectIdentity:  state.Subject,
		TurnCount:        state.TurnCount,
	}
}

// parseReply splits a raw model reply on the literal output markers.
//
// Both markers present: question is the text between them, learned is the
// text after "Learned:". One marker present: that field is filled, the
// other stays empty. Neither present: the whole reply becomes the question
// and learned notes the missing structure. Malformed output degrades; it
// never fails the turn.
func parseReply(text string) (question, learned string) {
	if i := strings.Index(text, prompts.QuestionMarker); i >= 0 {
		rest := text[i+len(prompts.QuestionMarker):]
		if j := strings.Index(rest, prompts.LearnedMarker); j >= 0 {
			question = strings.TrimSpace(rest[:j])
		} else {
			question = strings.TrimSpace(rest)
		}
	}
	if i := strings.Index(text, prompts.LearnedMarker); i >= 0 {
		learned = strings.TrimSpace(text[i+len(prompts.LearnedMarker):])
	}
	if question == "" && learned == "" {
		question = strings.TrimSpace(text)
		learned = fallbackLearned
	}
	return question, learned
}

// detectCompletion scans for the completion sentinels: the latest reply
// first, the cumulative transcript as a fallback. Within either text the
// escalation sentinel outranks the proceed sentinel, so a reply containing
// both escalates.
func detectCompletion(reply, transcript string) (bool, datatypes.CompletionReason) {
	for _, text := range []string{reply, transcript} {
		if strings.Contains(text, prompts.SentinelEscalate) {
			return true, datatypes.ReasonEscalation
		}
		if strings.Contains(text, prompts.SentinelProceed) {
			return true, datatypes.ReasonProgressing
		}
	}
	return false, datatypes.ReasonOther
}

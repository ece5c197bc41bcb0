// Copyright (C) 2025 Prizm Real Estate Concierge Service
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/ricgene/prizm-intake/services/intake/datatypes"
	"github.com/ricgene/prizm-intake/services/intake/engine"
	"github.com/ricgene/prizm-intake/services/intake/store"
	"github.com/ricgene/prizm-intake/services/llm"
)

var (
	questionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)
	turnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)
)

// runChat drives one interactive conversation: restore whatever state the
// subject already has, run the greeting turn if this is a new conversation,
// then alternate user input and engine turns until the engine reports
// completion.
func runChat(ctx context.Context) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := llm.NewClient(config.Backend)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM backend: %w", err)
	}
	eng, err := engine.New(client, engine.Config{MaxTurns: config.MaxTurns})
	if err != nil {
		return err
	}

	subject, err := promptSubject()
	if err != nil {
		return err
	}

	prior, err := st.Load(ctx, subject)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	userInput := ""
	for {
		result, err := eng.RunTurn(ctx, datatypes.TurnRequest{
			UserInput:       userInput,
			PreviousState:   prior,
			SubjectIdentity: subject,
			Mode:            config.PromptType,
		})
		if err != nil {
			if errors.Is(err, engine.ErrModelInvocation) {
				// State was not advanced; the same turn can be retried.
				fmt.Println("The assistant is unavailable right now. Please try again in a moment.")
			}
			return err
		}

		if err := st.Save(ctx, subject, result.Record()); err != nil {
			slog.Error("Failed to persist conversation state", "subject", subject, "error", err)
		}

		if result.Question != "" {
			fmt.Println(questionStyle.Render("Assistant: ") + result.Question)
		}
		fmt.Println(turnStyle.Render(fmt.Sprintf("[turn %d/%d]", result.TurnCount, eng.MaxTurns())))

		if result.IsComplete {
			fmt.Println(doneStyle.Render(
				fmt.Sprintf("Conversation complete (%s).", result.CompletionReason)))
			return nil
		}

		prior = result.Record()
		userInput, err = promptReply()
		if err != nil {
			return err
		}
	}
}

// runReset clears a subject's stored conversation so the next chat starts
// from turn one.
func runReset(ctx context.Context, subject string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(ctx, subject); err != nil {
		return err
	}
	fmt.Printf("Cleared stored conversation for %s\n", subject)
	return nil
}

func openStore() (store.StateStore, error) {
	return store.OpenBadger(store.BadgerConfig{
		Path:       filepath.Join(config.DataDir, "state"),
		SyncWrites: true,
	})
}

func promptSubject() (string, error) {
	var subject string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Email address").
			Description("Identifies your conversation so it can be resumed later.").
			Value(&subject).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("an email address is required")
				}
				return nil
			}),
	))
	if err := form.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(subject), nil
}

func promptReply() (string, error) {
	var reply string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("You").
			Value(&reply),
	))
	if err := form.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

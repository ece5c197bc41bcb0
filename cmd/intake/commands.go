// Copyright (C) 2025 Prizm Real Estate Concierge Service
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ricgene/prizm-intake/services/intake/engine"
)

var (
	backendType string
	promptType  string
	maxTurns    int

	rootCmd = &cobra.Command{
		Use:   "intake",
		Short: "Local harness for the Prizm conversational task-intake engine",
		Long: `intake drives the turn-based task-collection engine from the
terminal. Conversation state is stored locally per subject, so a session
can be stopped and resumed at any turn, the same way the deployed system
resumes from its document store.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Flags override environment-derived defaults.
			if backendType != "" {
				config.Backend = backendType
			}
			if promptType != "" {
				config.PromptType = promptType
			}
			if maxTurns > 0 {
				config.MaxTurns = maxTurns
			}
		},
	}

	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Start or resume an intake conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context())
		},
	}

	resetCmd = &cobra.Command{
		Use:   "reset <subject>",
		Short: "Clear the stored conversation for a subject identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(cmd.Context(), args[0])
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&backendType, "backend", "",
		"LLM backend: openai, ollama, or langchain (overrides LLM_BACKEND_TYPE)")
	rootCmd.PersistentFlags().StringVar(&promptType, "mode", "",
		"persona mode: structured-intake, generic-assistant, or debug-echo")
	rootCmd.PersistentFlags().IntVar(&maxTurns, "max-turns", 0,
		fmt.Sprintf("hard turn limit (default %d)", engine.DefaultMaxTurns))

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(resetCmd)
}

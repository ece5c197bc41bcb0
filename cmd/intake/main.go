// Copyright (C) 2025 Prizm Real Estate Concierge Service
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command intake is the local harness for the conversational task-intake
// engine.
//
// It drives the turn engine interactively from the terminal, persisting
// conversation state between turns in a local BadgerDB store the same way
// the deployed system persists it in a cloud document store.
//
// # Environment Variables
//
//   - LLM_BACKEND_TYPE: LLM provider - openai, ollama, langchain (default: openai)
//   - OPENAI_API_KEY / OPENAI_MODEL: OpenAI backend configuration
//   - OLLAMA_BASE_URL / OLLAMA_MODEL: Ollama backend configuration
//   - INTAKE_PROMPT_TYPE: persona mode (default: structured-intake)
//   - INTAKE_MAX_TURNS: hard turn limit (default: 7)
//   - INTAKE_DATA_DIR: state/log directory (default: ~/.prizm-intake)
//
// # Usage
//
//	intake chat                 # start or resume a conversation
//	intake reset you@email.com  # clear a subject's stored conversation
package main

import (
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ricgene/prizm-intake/pkg/logging"
)

// harnessConfig is assembled from environment variables before commands run.
type harnessConfig struct {
	Backend    string
	PromptType string
	MaxTurns   int
	DataDir    string
}

var config harnessConfig

func main() {
	config = harnessConfig{
		Backend:    getEnvString("LLM_BACKEND_TYPE", "openai"),
		PromptType: getEnvString("INTAKE_PROMPT_TYPE", "structured-intake"),
		MaxTurns:   getEnvInt("INTAKE_MAX_TURNS", 7),
		DataDir:    getEnvString("INTAKE_DATA_DIR", defaultDataDir()),
	}

	logger := logging.New(logging.Config{
		Level:   logging.LevelInfo,
		LogDir:  filepath.Join(config.DataDir, "logs"),
		Service: "intake",
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".prizm-intake"
	}
	return filepath.Join(home, ".prizm-intake")
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

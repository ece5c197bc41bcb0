// Copyright (C) 2025 Prizm Real Estate Concierge Service
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ricgene/prizm-intake/services/intake/datatypes"
)

var langchainTracer = otel.Tracer("prizm-intake.llm.langchain")

// LangChainClient routes chat completions through langchaingo. The first
// deployment of this engine ran on LangChain, and keeping the backend
// around makes side-by-side comparisons against that behavior cheap.
type LangChainClient struct {
	model llms.Model
	name  string
}

// NewLangChainClient builds a langchaingo-backed OpenAI client from
// OPENAI_API_KEY and OPENAI_MODEL.
func NewLangChainClient() (*LangChainClient, error) {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	name := os.Getenv("OPENAI_MODEL")
	if name == "" {
		name = "gpt-4o-mini"
		slog.Warn("OPENAI_MODEL not set, defaulting to gpt-4o-mini")
	}
	model, err := lcopenai.New(lcopenai.WithModel(name))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize langchaingo OpenAI model: %w", err)
	}
	slog.Info("Initializing LangChain client", "model", name)
	return &LangChainClient{model: model, name: name}, nil
}

// Chat implements the LLMClient interface.
func (l *LangChainClient) Chat(ctx context.Context, messages []datatypes.Message,
	params GenerationParams) (string, error) {

	ctx, span := langchainTracer.Start(ctx, "LangChainClient.Chat")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", l.name))
	span.SetAttributes(attribute.Int("llm.num_messages", len(messages)))
	slog.Debug("Generating chat completion via LangChain", "model", l.name)

	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		role := llms.ChatMessageTypeHuman
		switch m.Role {
		case datatypes.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case datatypes.RoleAssistant:
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, m.Content))
	}

	var opts []llms.CallOption
	if params.Temperature != nil {
		opts = append(opts, llms.WithTemperature(float64(*params.Temperature)))
	}
	if params.TopP != nil {
		opts = append(opts, llms.WithTopP(float64(*params.TopP)))
	}
	if params.MaxTokens != nil {
		opts = append(opts, llms.WithMaxTokens(*params.MaxTokens))
	}
	if len(params.Stop) > 0 {
		opts = append(opts, llms.WithStopWords(params.Stop))
	}

	resp, err := l.model.GenerateContent(ctx, content, opts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("LangChain generate call failed", "error", err)
		return "", fmt.Errorf("langchain generate call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Warn("LangChain returned no choices")
		return "", fmt.Errorf("langchain returned no choices")
	}
	return resp.Choices[0].Content, nil
}

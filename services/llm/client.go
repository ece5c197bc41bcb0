// Package llm provides the language model client interface and backends.
//
// The turn engine talks to exactly one LLMClient per turn; which backend
// sits behind it (OpenAI, Ollama, LangChain) is wiring picked at startup
// via LLM_BACKEND_TYPE.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ricgene/prizm-intake/services/intake/datatypes"
)

// GenerationParams carries optional sampling parameters. Nil pointers mean
// "use the backend's default".
type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// LLMClient is the standard interface for any LLM backend.
//
// Chat sends an ordered message sequence and returns the model's raw text
// reply. It is a single blocking call; no streaming is required by the
// engine. Errors are returned as-is and never retried here.
type LLMClient interface {
	Chat(ctx context.Context, messages []datatypes.Message, params GenerationParams) (string, error)
}

// Supported backend names for NewClient.
const (
	BackendOpenAI    = "openai"
	BackendOllama    = "ollama"
	BackendLangChain = "langchain"
)

// NewClient constructs the backend named by backendType. Configuration is
// read from environment variables by each backend's constructor.
func NewClient(backendType string) (LLMClient, error) {
	switch strings.ToLower(strings.TrimSpace(backendType)) {
	case BackendOpenAI, "":
		return NewOpenAIClient()
	case BackendOllama:
		return NewOllamaClient()
	case BackendLangChain:
		return NewLangChainClient()
	default:
		return nil, fmt.Errorf("unknown LLM backend type: %q", backendType)
	}
}

// internal/llm/factory/factory.go
package factory

import (
	"context"
	"fmt"

	"github.com/newthinker/hedgeai/internal/config"
	"github.com/newthinker/hedgeai/internal/llm"
	"github.com/newthinker/hedgeai/internal/llm/claude"
	"github.com/newthinker/hedgeai/internal/llm/gemini"
	"github.com/newthinker/hedgeai/internal/llm/ollama"
	"github.com/newthinker/hedgeai/internal/llm/openai"
)

// New creates an LLM provider based on configuration.
func New(ctx context.Context, cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL)
	case "claude":
		return claude.New(cfg.Claude.APIKey, cfg.Claude.Model)
	case "openai":
		return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	case "ollama":
		return ollama.New(cfg.Ollama.Endpoint, cfg.Ollama.Model)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}

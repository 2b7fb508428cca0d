package factory

import (
	"context"
	"fmt"
	"time"

	"pm-assistant-be/pkg/llm"
	"pm-assistant-be/pkg/llm/gemini"
	"pm-assistant-be/pkg/llm/ollama"
)

type Params struct {
	Provider      string // "gemini" | "ollama"
	Model         string
	GeminiAPIKey  string
	OllamaBaseURL string
	Timeout       time.Duration
}

func NewLLMProvider(ctx context.Context, p Params) (llm.LLMProvider, error) {
	switch p.Provider {
	case "gemini", "":
		return gemini.NewGeminiProvider(ctx, gemini.Config{
			APIKey:  p.GeminiAPIKey,
			Model:   p.Model,
			Timeout: p.Timeout,
		})
	case "ollama":
		return ollama.NewProvider(ollama.Config{
			BaseURL: p.OllamaBaseURL,
			Model:   p.Model,
			Timeout: p.Timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", p.Provider)
	}
}

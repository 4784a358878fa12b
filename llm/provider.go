package llm

import (
	"fmt"
	"time"
)

// ProviderConfig carries the credentials and model names the factory
// needs. Kept separate from the app config so this package stays free of
// configuration machinery.
type ProviderConfig struct {
	OpenAIAPIKey string
	OpenAIModel  string
	GroqAPIKey   string
	GroqModel    string
	GeminiAPIKey string
	GeminiModel  string
	OllamaModel  string
	Timeout      time.Duration
}

// NewClientFor builds the Client for a provider name. "fallback" is not a
// client; callers short-circuit it before reaching the factory.
func NewClientFor(provider string, cfg ProviderConfig) (Client, error) {
	switch provider {
	case "openai":
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.Timeout)
	case "groq":
		return NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel, cfg.Timeout)
	case "gemini":
		return NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Timeout)
	case "ollama":
		return NewOllamaClient(cfg.OllamaModel)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", provider)
	}
}

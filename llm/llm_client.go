package llm

import (
	"context"
)

// Client is the provider-agnostic inference interface. Implementations
// call a hosted (or local) model and deliver the answer through the
// callback: once for non-streaming calls, per token chunk when
// streaming is enabled via WithStreaming.
type Client interface {
	GenerateInference(
		ctx context.Context,
		messages []Message,
		callback func(chunk string) error,
		opts ...Option,
	) error

	GetModel() string
}

type Settings struct {
	model       string  // model name
	temperature float64 // randomness (0.0 to 1.0)
	maxTokens   int     // maximum tokens to generate
	system      string  // system prompt
	stream      bool    // whether to stream response
}

type Option func(*Settings)

// Common options for all LLM providers
func WithTemperature(temp float64) Option {
	return func(s *Settings) { s.temperature = temp }
}

func WithMaxTokens(tokens int) Option {
	return func(s *Settings) { s.maxTokens = tokens }
}

func WithSystemPrompt(prompt string) Option {
	return func(s *Settings) { s.system = prompt }
}

func WithStreaming(stream bool) Option {
	return func(s *Settings) { s.stream = stream }
}

type Message struct {
	Role    string `json:"role"`    // "user", "assistant", "system"
	Content string `json:"content"` // the message content
}

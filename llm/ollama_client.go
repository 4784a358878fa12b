package llm

import (
	"context"
	"strings"

	"github.com/ollama/ollama/api"
)

// OllamaClient runs inference against a local Ollama daemon. Connection
// settings come from the OLLAMA_HOST environment, same as the ollama CLI.
type OllamaClient struct {
	client *api.Client
	model  string
}

func NewOllamaClient(model string) (*OllamaClient, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, err
	}
	return &OllamaClient{client: client, model: model}, nil
}

func (c *OllamaClient) GetModel() string {
	return c.model
}

func (c *OllamaClient) GenerateInference(ctx context.Context, messages []Message, callback func(chunk string) error, opts ...Option) error {
	settings := Settings{
		model:       c.model,
		temperature: 0.7,
		maxTokens:   4096,
	}
	for _, opt := range opts {
		opt(&settings)
	}

	msgs := make([]api.Message, 0, len(messages)+1)
	if settings.system != "" {
		msgs = append(msgs, api.Message{Role: "system", Content: settings.system})
	}
	for _, m := range messages {
		msgs = append(msgs, api.Message{Role: m.Role, Content: m.Content})
	}

	stream := settings.stream
	request := &api.ChatRequest{
		Model:    settings.model,
		Messages: msgs,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": settings.temperature,
			"num_predict": settings.maxTokens,
		},
	}

	// Ollama always drives a callback; buffer when the caller wants one shot.
	var full strings.Builder
	err := c.client.Chat(ctx, request, func(resp api.ChatResponse) error {
		if stream {
			if resp.Message.Content != "" && callback != nil {
				return callback(resp.Message.Content)
			}
			return nil
		}
		full.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return err
	}

	if !stream && callback != nil {
		return callback(full.String())
	}
	return nil
}

package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// chatCompletionsCore implements the OpenAI chat-completions wire format,
// which Groq serves verbatim. Both providers differ only in URL, key and
// default model.
type chatCompletionsCore struct {
	provider   string
	apiKey     string
	httpClient *http.Client
	url        string
	model      string
}

func (c *chatCompletionsCore) GetModel() string {
	return c.model
}

func (c *chatCompletionsCore) GenerateInference(ctx context.Context, messages []Message, callback func(chunk string) error, opts ...Option) error {
	settings := Settings{
		model:       c.model,
		temperature: 0.7,
		maxTokens:   4096,
	}
	for _, opt := range opts {
		opt(&settings)
	}

	request := chatCompletionsRequest{
		Model:       settings.model,
		Messages:    messages,
		Temperature: settings.temperature,
		MaxTokens:   settings.maxTokens,
		Stream:      settings.stream,
	}

	// System prompt goes in as the leading message.
	if settings.system != "" {
		systemMsg := Message{Role: "system", Content: settings.system}
		request.Messages = append([]Message{systemMsg}, request.Messages...)
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s API error %d: %s", c.provider, resp.StatusCode, string(body))
	}

	if settings.stream {
		return c.consumeStream(resp.Body, callback)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	var response chatCompletionsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("error unmarshaling response: %w", err)
	}

	if len(response.Choices) == 0 {
		return fmt.Errorf("no choices in response")
	}

	if callback != nil {
		return callback(response.Choices[0].Message.Content)
	}
	return nil
}

// consumeStream reads SSE frames ("data: {...}") until [DONE], forwarding
// each delta through the callback.
func (c *chatCompletionsCore) consumeStream(body io.Reader, callback func(chunk string) error) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			if payload == "[DONE]" {
				return nil
			}
			continue
		}

		var chunk chatCompletionsStreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			// Providers occasionally interleave keep-alive junk; skip it.
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" && callback != nil {
			if err := callback(content); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}

// GroqClient talks to the Groq chat-completions endpoint.
type GroqClient struct {
	chatCompletionsCore
}

func NewGroqClient(apiKey, model string, timeout time.Duration) (*GroqClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is not set")
	}
	return &GroqClient{chatCompletionsCore{
		provider:   "groq",
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		url:        "https://api.groq.com/openai/v1/chat/completions",
		model:      model,
	}}, nil
}

// OpenAIClient talks to the OpenAI chat-completions endpoint.
type OpenAIClient struct {
	chatCompletionsCore
}

func NewOpenAIClient(apiKey, model string, timeout time.Duration) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	return &OpenAIClient{chatCompletionsCore{
		provider:   "openai",
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		url:        "https://api.openai.com/v1/chat/completions",
		model:      model,
	}}, nil
}

// OpenAI-compatible API types
type chatCompletionsRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

type chatCompletionsResponse struct {
	ID      string                  `json:"id"`
	Object  string                  `json:"object"`
	Created int64                   `json:"created"`
	Model   string                  `json:"model"`
	Choices []chatCompletionsChoice `json:"choices"`
	Usage   chatCompletionsUsage    `json:"usage"`
}

type chatCompletionsChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type chatCompletionsUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatCompletionsStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

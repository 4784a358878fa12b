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

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient talks to the Gemini generateContent REST API. The key is
// passed as a query parameter, matching how the API is documented.
type GeminiClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewGeminiClient(apiKey, model string, timeout time.Duration) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	return &GeminiClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    geminiBaseURL,
		model:      model,
	}, nil
}

func (c *GeminiClient) GetModel() string {
	return c.model
}

func (c *GeminiClient) GenerateInference(ctx context.Context, messages []Message, callback func(chunk string) error, opts ...Option) error {
	settings := Settings{
		model:       c.model,
		temperature: 0.7,
		maxTokens:   4096,
	}
	for _, opt := range opts {
		opt(&settings)
	}

	msgs := messages
	if settings.system != "" {
		msgs = append([]Message{{Role: "system", Content: settings.system}}, msgs...)
	}

	request := geminiRequest{
		Contents: convertMessagesForGemini(msgs),
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     settings.temperature,
			MaxOutputTokens: settings.maxTokens,
			TopP:            0.8,
			TopK:            10,
		},
	}

	if settings.stream {
		return c.streamRequest(ctx, settings.model, request, callback)
	}

	resp, err := c.doRequest(ctx, settings.model, "generateContent", "", request)
	if err != nil {
		return err
	}

	text, err := geminiResponseText(resp)
	if err != nil {
		return err
	}
	if callback != nil {
		return callback(text)
	}
	return nil
}

// AnalyzeImage runs a vision prompt over inline image data. Used by the
// document-analysis path for uploaded images.
func (c *GeminiClient) AnalyzeImage(ctx context.Context, prompt, mimeType, base64Data string) (string, error) {
	request := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: prompt},
				{InlineData: &geminiInlineData{MimeType: mimeType, Data: base64Data}},
			},
		}},
	}

	resp, err := c.doRequest(ctx, c.model, "generateContent", "", request)
	if err != nil {
		return "", err
	}
	return geminiResponseText(resp)
}

func (c *GeminiClient) doRequest(ctx context.Context, model, verb, extraQuery string, request geminiRequest) (*geminiResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:%s?%skey=%s", c.baseURL, model, verb, extraQuery, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini API error %d: %s", resp.StatusCode, string(body))
	}

	var response geminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %w", err)
	}
	return &response, nil
}

func (c *GeminiClient) streamRequest(ctx context.Context, model string, request geminiRequest, callback func(chunk string) error) error {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("error marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse&key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gemini API error %d: %s", resp.StatusCode, string(body))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		var chunk geminiResponse
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		if len(chunk.Candidates) == 0 || len(chunk.Candidates[0].Content.Parts) == 0 {
			continue
		}
		for _, part := range chunk.Candidates[0].Content.Parts {
			if part.Text != "" && callback != nil {
				if err := callback(part.Text); err != nil {
					return err
				}
			}
		}
	}
	return scanner.Err()
}

// convertMessagesForGemini maps OpenAI-style messages to Gemini contents.
// Gemini has no system role; the system prompt is folded into the first
// user message.
func convertMessagesForGemini(messages []Message) []geminiContent {
	var contents []geminiContent
	var system string

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			system = msg.Content
		case "user":
			content := msg.Content
			if system != "" {
				content = fmt.Sprintf("System: %s\n\nUser: %s", system, content)
				system = "" // only fold the system message once
			}
			contents = append(contents, geminiContent{
				Role:  "user",
				Parts: []geminiPart{{Text: content}},
			})
		case "assistant":
			contents = append(contents, geminiContent{
				Role:  "model",
				Parts: []geminiPart{{Text: msg.Content}},
			})
		}
	}
	return contents
}

func geminiResponseText(resp *geminiResponse) (string, error) {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

// Gemini API types
type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	TopK            int     `json:"topK,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
			Role  string       `json:"role"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

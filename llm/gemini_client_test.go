package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiClient(t *testing.T) {
	_, err := NewGeminiClient("", "gemini-2.5-flash", time.Minute)
	assert.Error(t, err)

	client, err := NewGeminiClient("test-key", "gemini-2.5-flash", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", client.GetModel())
}

func TestGeminiGenerateInference(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Contains(t, r.URL.Path, "models/gemini-2.5-flash:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Contents)
		assert.Equal(t, "user", req.Contents[0].Role)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "System: be brief")

		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"Hi there"}],"role":"model"}}]}`)
	}))
	defer server.Close()

	client, err := NewGeminiClient("test-key", "gemini-2.5-flash", time.Minute)
	require.NoError(t, err)
	client.baseURL = server.URL

	var got string
	err = client.GenerateInference(context.Background(),
		[]Message{{Role: "user", Content: "hello"}},
		func(chunk string) error {
			got = chunk
			return nil
		},
		WithSystemPrompt("be brief"),
	)
	require.NoError(t, err)
	assert.Equal(t, "Hi there", got)
}

func TestGeminiGenerateInferenceAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"message": "invalid key"}}`)
	}))
	defer server.Close()

	client, err := NewGeminiClient("test-key", "gemini-2.5-flash", time.Minute)
	require.NoError(t, err)
	client.baseURL = server.URL

	err = client.GenerateInference(context.Background(),
		[]Message{{Role: "user", Content: "hello"}},
		func(string) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "invalid key")
}

func TestGeminiStreaming(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, ":streamGenerateContent")
		assert.Equal(t, "sse", r.URL.Query().Get("alt"))

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"Hel\"}],\"role\":\"model\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"lo\"}],\"role\":\"model\"}}]}\n\n")
	}))
	defer server.Close()

	client, err := NewGeminiClient("test-key", "gemini-2.5-flash", time.Minute)
	require.NoError(t, err)
	client.baseURL = server.URL

	var sb strings.Builder
	err = client.GenerateInference(context.Background(),
		[]Message{{Role: "user", Content: "hello"}},
		func(chunk string) error {
			sb.WriteString(chunk)
			return nil
		},
		WithStreaming(true),
	)
	require.NoError(t, err)
	assert.Equal(t, "Hello", sb.String())
}

func TestGeminiAnalyzeImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 2)
		assert.Equal(t, "describe this", req.Contents[0].Parts[0].Text)
		require.NotNil(t, req.Contents[0].Parts[1].InlineData)
		assert.Equal(t, "image/png", req.Contents[0].Parts[1].InlineData.MimeType)

		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"a red square"}],"role":"model"}}]}`)
	}))
	defer server.Close()

	client, err := NewGeminiClient("test-key", "gemini-2.5-flash", time.Minute)
	require.NoError(t, err)
	client.baseURL = server.URL

	got, err := client.AnalyzeImage(context.Background(), "describe this", "image/png", "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "a red square", got)
}

func TestConvertMessagesForGemini(t *testing.T) {
	tests := []struct {
		name     string
		messages []Message
		want     []geminiContent
	}{
		{
			name:     "user only",
			messages: []Message{{Role: "user", Content: "hi"}},
			want: []geminiContent{
				{Role: "user", Parts: []geminiPart{{Text: "hi"}}},
			},
		},
		{
			name: "system folded into first user message",
			messages: []Message{
				{Role: "system", Content: "be brief"},
				{Role: "user", Content: "hi"},
				{Role: "user", Content: "again"},
			},
			want: []geminiContent{
				{Role: "user", Parts: []geminiPart{{Text: "System: be brief\n\nUser: hi"}}},
				{Role: "user", Parts: []geminiPart{{Text: "again"}}},
			},
		},
		{
			name: "assistant maps to model role",
			messages: []Message{
				{Role: "user", Content: "hi"},
				{Role: "assistant", Content: "hello"},
				{Role: "user", Content: "bye"},
			},
			want: []geminiContent{
				{Role: "user", Parts: []geminiPart{{Text: "hi"}}},
				{Role: "model", Parts: []geminiPart{{Text: "hello"}}},
				{Role: "user", Parts: []geminiPart{{Text: "bye"}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, convertMessagesForGemini(tt.messages))
		})
	}
}

func TestNewClientFor(t *testing.T) {
	cfg := ProviderConfig{
		OpenAIAPIKey: "ok",
		OpenAIModel:  "gpt-3.5-turbo",
		GroqAPIKey:   "gk",
		GroqModel:    "llama-3.1-8b-instant",
		GeminiAPIKey: "gm",
		GeminiModel:  "gemini-2.5-flash",
		Timeout:      time.Minute,
	}

	for provider, model := range map[string]string{
		"openai": "gpt-3.5-turbo",
		"groq":   "llama-3.1-8b-instant",
		"gemini": "gemini-2.5-flash",
	} {
		client, err := NewClientFor(provider, cfg)
		require.NoError(t, err, provider)
		assert.Equal(t, model, client.GetModel())
	}

	_, err := NewClientFor("watson", cfg)
	assert.Error(t, err)
}

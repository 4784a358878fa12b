package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGroqClient(t *testing.T) {
	_, err := NewGroqClient("", "llama-3.1-8b-instant", time.Minute)
	assert.Error(t, err)

	client, err := NewGroqClient("test-key", "llama-3.1-8b-instant", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "llama-3.1-8b-instant", client.GetModel())
}

func TestNewOpenAIClient(t *testing.T) {
	_, err := NewOpenAIClient("", "gpt-3.5-turbo", time.Minute)
	assert.Error(t, err)

	client, err := NewOpenAIClient("test-key", "gpt-3.5-turbo", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", client.GetModel())
}

func TestChatCompletionsGenerateInference(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatCompletionsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama-3.1-8b-instant", req.Model)
		require.NotEmpty(t, req.Messages)
		// System prompt must lead the message list.
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "be brief", req.Messages[0].Content)

		response := chatCompletionsResponse{
			Choices: []chatCompletionsChoice{
				{Message: Message{Role: "assistant", Content: "Hello, this is a test response"}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client, err := NewGroqClient("test-key", "llama-3.1-8b-instant", time.Minute)
	require.NoError(t, err)
	client.url = server.URL

	var got string
	err = client.GenerateInference(context.Background(),
		[]Message{{Role: "user", Content: "hi"}},
		func(chunk string) error {
			got = chunk
			return nil
		},
		WithSystemPrompt("be brief"),
		WithTemperature(0.6),
		WithMaxTokens(256),
	)
	require.NoError(t, err)
	assert.Equal(t, "Hello, this is a test response", got)
}

func TestChatCompletionsGenerateInferenceAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"message": "rate limit"}}`)
	}))
	defer server.Close()

	client, err := NewOpenAIClient("test-key", "gpt-3.5-turbo", time.Minute)
	require.NoError(t, err)
	client.url = server.URL

	err = client.GenerateInference(context.Background(),
		[]Message{{Role: "user", Content: "hi"}},
		func(string) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limit")
}

func TestChatCompletionsStreaming(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n")
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client, err := NewGroqClient("test-key", "llama-3.1-8b-instant", time.Minute)
	require.NoError(t, err)
	client.url = server.URL

	var chunks []string
	err = client.GenerateInference(context.Background(),
		[]Message{{Role: "user", Content: "hi"}},
		func(chunk string) error {
			chunks = append(chunks, chunk)
			return nil
		},
		WithStreaming(true),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo"}, chunks)
}

func TestChatCompletionsStreamingCallbackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client, err := NewGroqClient("test-key", "llama-3.1-8b-instant", time.Minute)
	require.NoError(t, err)
	client.url = server.URL

	wantErr := fmt.Errorf("client went away")
	err = client.GenerateInference(context.Background(),
		[]Message{{Role: "user", Content: "hi"}},
		func(string) error { return wantErr },
		WithStreaming(true),
	)
	assert.ErrorIs(t, err, wantErr)
}

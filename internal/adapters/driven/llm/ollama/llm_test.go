package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driven"
)

func TestLLMProvider_Generate(t *testing.T) {
	var gotReq generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(generateResponse{Response: "generated text", Done: true})
	}))
	defer server.Close()

	provider := NewLLMProvider(LLMConfig{BaseURL: server.URL, Model: "llama3.2"})

	result, err := provider.Generate(context.Background(), "hello", driven.GenerateOptions{
		MaxTokens:   100,
		Temperature: 0.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "generated text", result)

	assert.Equal(t, "llama3.2", gotReq.Model)
	assert.Equal(t, "hello", gotReq.Prompt)
	assert.False(t, gotReq.Stream)
	require.NotNil(t, gotReq.Options)
	assert.Equal(t, 100, gotReq.Options.NumPredict)
	assert.InDelta(t, 0.5, gotReq.Options.Temperature, 0.001)
}

func TestLLMProvider_Generate_NoOptions(t *testing.T) {
	var gotReq generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(generateResponse{Response: "ok", Done: true})
	}))
	defer server.Close()

	provider := NewLLMProvider(LLMConfig{BaseURL: server.URL})

	_, err := provider.Generate(context.Background(), "hello", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Nil(t, gotReq.Options)
}

func TestLLMProvider_Chat(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: "the answer"},
			Done:    true,
		})
	}))
	defer server.Close()

	provider := NewLLMProvider(LLMConfig{BaseURL: server.URL})

	reply, err := provider.Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: "be helpful"},
		{Role: "user", Content: "what is the answer?"},
	}, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "the answer", reply)

	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "what is the answer?", gotReq.Messages[1].Content)
}

func TestLLMProvider_Chat_RateLimitRetriedThenSurfaced(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) > 1 {
			w.Header().Set("Retry-After", "9")
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := NewLLMProvider(LLMConfig{BaseURL: server.URL, MaxRetries: 1})
	provider.retryDelay = 0

	_, err := provider.Chat(context.Background(), []driven.ChatMessage{
		{Role: "user", Content: "hello"},
	}, driven.ChatOptions{})
	require.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, int32(2), calls.Load())

	var rateErr *domain.RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, 9*time.Second, rateErr.RetryAfter)
}

func TestLLMProvider_Chat_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	provider := NewLLMProvider(LLMConfig{BaseURL: server.URL, MaxRetries: 1})
	provider.retryDelay = 0

	_, err := provider.Chat(context.Background(), []driven.ChatMessage{
		{Role: "user", Content: "hello"},
	}, driven.ChatOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestLLMProvider_Chat_ServerErrorRetriedThenUnavailable(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("model not loaded"))
	}))
	defer server.Close()

	provider := NewLLMProvider(LLMConfig{BaseURL: server.URL, MaxRetries: 2})
	provider.retryDelay = 0

	_, err := provider.Chat(context.Background(), []driven.ChatMessage{
		{Role: "user", Content: "hello"},
	}, driven.ChatOptions{})
	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "model not loaded")
	assert.False(t, errors.Is(err, domain.ErrRateLimited))
	assert.Equal(t, int32(3), calls.Load())
}

func TestLLMProvider_Chat_RecoversAfterServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: "recovered"},
			Done:    true,
		})
	}))
	defer server.Close()

	provider := NewLLMProvider(LLMConfig{BaseURL: server.URL, MaxRetries: 2})
	provider.retryDelay = 0

	reply, err := provider.Chat(context.Background(), []driven.ChatMessage{
		{Role: "user", Content: "hello"},
	}, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "recovered", reply)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLLMProvider_Defaults(t *testing.T) {
	provider := NewLLMProvider(LLMConfig{})
	assert.Equal(t, DefaultLLMModel, provider.ModelName())
	assert.Equal(t, DefaultBaseURL, provider.baseURL)
}

func TestLLMProvider_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	provider := NewLLMProvider(LLMConfig{BaseURL: server.URL})
	require.NoError(t, provider.Ping(context.Background()))
}

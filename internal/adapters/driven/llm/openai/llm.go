// Package openai provides an LLM provider adapter using the OpenAI API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driven"
)

// Ensure LLMProvider implements the interface.
var _ driven.LLMProvider = (*LLMProvider)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second

	// DefaultRequestsPerMinute is a conservative client-side limit that
	// stays under the lowest published API tier.
	DefaultRequestsPerMinute = 60

	DefaultMaxRetries = 3
)

// LLMConfig holds configuration for the OpenAI LLM provider.
type LLMConfig struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the LLM model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// RequestsPerMinute caps outbound requests (default: 60).
	RequestsPerMinute int

	// MaxRetries is how many times a failed request is retried (default: 3).
	MaxRetries int
}

// LLMProvider provides LLM operations using the OpenAI API.
type LLMProvider struct {
	client     *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
	model      string
	maxRetries int
	retryDelay time.Duration
}

// chatCompletionRequest is the OpenAI /chat/completions request format.
type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature,omitempty"`
	Stop        []string            `json:"stop,omitempty"`
}

// chatCompletionMsg is the OpenAI chat message format.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the OpenAI /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewLLMProvider creates a new OpenAI LLM provider.
func NewLLMProvider(cfg LLMConfig) (*LLMProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	return &LLMProvider{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Second,
	}, nil
}

// Generate produces text completion from a prompt.
func (p *LLMProvider) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	messages := []driven.ChatMessage{
		{Role: "user", Content: prompt},
	}
	chatOpts := driven.ChatOptions{
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	return p.chatCompletion(ctx, messages, chatOpts, opts.StopWords)
}

// Chat conducts a multi-turn conversation.
func (p *LLMProvider) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	return p.chatCompletion(ctx, messages, opts, nil)
}

// chatCompletion calls the /chat/completions endpoint with retries.
// Connection errors, 5xx responses and rate limits are retried with
// exponential backoff; a rate limit waits the Retry-After hint when the
// server provides one. Exhausted retries surface the last rate limit
// error as is, anything else as domain.ErrProviderUnavailable.
func (p *LLMProvider) chatCompletion(
	ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions, stop []string,
) (string, error) {
	msgs := make([]chatCompletionMsg, len(messages))
	for i, msg := range messages {
		msgs[i] = chatCompletionMsg{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	reqBody := chatCompletionRequest{
		Model:       p.model,
		Messages:    msgs,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		Stop:        stop,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	delay := p.retryDelay
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			wait := delay
			delay *= 2
			var rateErr *domain.RateLimitError
			if errors.As(lastErr, &rateErr) && rateErr.RetryAfter > 0 {
				wait = rateErr.RetryAfter
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		reply, retryable, err := p.completeOnce(ctx, jsonBody)
		if err == nil {
			return reply, nil
		}
		if !retryable {
			return "", err
		}
		lastErr = err
	}

	if errors.Is(lastErr, domain.ErrRateLimited) {
		return "", lastErr
	}
	return "", fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, lastErr)
}

// completeOnce makes a single chat completion request. The status code
// is inspected before the body is decoded so a 5xx with a non-JSON body
// is still classified correctly. The second return value reports
// whether the failure is worth retrying.
func (p *LLMProvider) completeOnce(ctx context.Context, jsonBody []byte) (string, bool, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", false, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", true, &domain.RateLimitError{RetryAfter: retryAfter(resp)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := string(body)
		var apiErr chatCompletionResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != nil {
			message = apiErr.Error.Message
		}
		retryable := resp.StatusCode >= http.StatusInternalServerError
		return "", retryable, fmt.Errorf("openai error (status %d): %s", resp.StatusCode, message)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", false, fmt.Errorf("decode response: %w", err)
	}
	if chatResp.Error != nil {
		return "", false, fmt.Errorf("openai error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", false, fmt.Errorf("openai: no choices returned")
	}
	return chatResp.Choices[0].Message.Content, false, nil
}

// retryAfter parses the Retry-After header as a second count.
func retryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// ModelName returns the name of the LLM model being used.
func (p *LLMProvider) ModelName() string {
	return p.model
}

// Ping validates the service is reachable by checking the /models endpoint.
// This is a lightweight check that validates the API key without running inference.
func (p *LLMProvider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("openai: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("openai: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (p *LLMProvider) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// Package ollama provides an embedding provider adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driven"
	"github.com/positron-labs/positron/internal/logger"
)

// Ensure EmbeddingProvider implements the interface.
var _ driven.EmbeddingProvider = (*EmbeddingProvider)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 768 // nomic-embed-text default
	DefaultMaxRetries = 3
)

// Task prefixes required by nomic-embed-text. Mixing them is what makes
// asymmetric retrieval work: queries and documents are embedded into the
// same space from different instructions.
const (
	queryPrefix    = "search_query: "
	documentPrefix = "search_document: "
)

// Config holds configuration for the Ollama embedding provider.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the embedding model to use (default: nomic-embed-text).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// Dimensions is the embedding vector size (model-dependent).
	Dimensions int

	// MaxRetries is how many times a failed request is retried (default: 3).
	MaxRetries int
}

// EmbeddingProvider generates embeddings using Ollama.
type EmbeddingProvider struct {
	client     *http.Client
	baseURL    string
	model      string
	dimensions int
	maxRetries int
	retryDelay time.Duration
}

// embedRequest is the Ollama API request format.
type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// embedResponse is the Ollama API response format.
type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// NewEmbeddingProvider creates a new Ollama embedding provider.
func NewEmbeddingProvider(cfg Config) *EmbeddingProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		if d, ok := domain.EmbeddingDimensions()[cfg.Model]; ok {
			cfg.Dimensions = d
		} else {
			cfg.Dimensions = DefaultDimensions
		}
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	return &EmbeddingProvider{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Second,
	}
}

// EmbedDocuments generates embeddings for document chunks.
// Ollama has no native batch API, so each text is embedded in turn.
func (p *EmbeddingProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := p.embed(ctx, p.withPrefix(documentPrefix, text))
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// EmbedQuery generates an embedding for a search query.
func (p *EmbeddingProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return p.embed(ctx, p.withPrefix(queryPrefix, text))
}

// withPrefix applies the task prefix for models that require one.
func (p *EmbeddingProvider) withPrefix(prefix, text string) string {
	if !strings.HasPrefix(p.model, "nomic-embed") {
		return text
	}
	return prefix + text
}

// embed calls the Ollama embeddings endpoint with retries.
// Connection errors, 5xx responses and rate limits are retried with
// exponential backoff; a rate limit waits the Retry-After hint when the
// server provides one. Exhausted retries surface the last rate limit
// error as is, anything else as domain.ErrProviderUnavailable.
func (p *EmbeddingProvider) embed(ctx context.Context, text string) ([]float32, error) {
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
			logger.Debug("Retrying embedding request in %s (attempt %d/%d)", wait, attempt, p.maxRetries)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		embedding, retryable, err := p.embedOnce(ctx, text)
		if err == nil {
			return embedding, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	if errors.Is(lastErr, domain.ErrRateLimited) {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, lastErr)
}

// embedOnce makes a single embeddings request.
// The second return value reports whether the failure is worth retrying.
func (p *EmbeddingProvider) embedOnce(ctx context.Context, text string) ([]float32, bool, error) {
	reqBody := embedRequest{
		Model:  p.model,
		Prompt: text,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, false, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.baseURL+"/api/embeddings",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, &domain.RateLimitError{RetryAfter: retryAfter(resp)}
	}
	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			body = []byte("failed to read response")
		}
		retryable := resp.StatusCode >= http.StatusInternalServerError
		return nil, retryable, fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, false, fmt.Errorf("decode response: %w", err)
	}

	// Convert float64 to float32
	embedding := make([]float32, len(embedResp.Embedding))
	for i, v := range embedResp.Embedding {
		embedding[i] = float32(v)
	}

	if len(embedding) != p.dimensions {
		return nil, false, fmt.Errorf("%w: model returned %d, expected %d",
			domain.ErrDimensionMismatch, len(embedding), p.dimensions)
	}

	return embedding, false, nil
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

// Dimensions returns the embedding vector size.
func (p *EmbeddingProvider) Dimensions() int {
	return p.dimensions
}

// ModelName returns the name of the embedding model being used.
func (p *EmbeddingProvider) ModelName() string {
	return p.model
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
// This is a lightweight check that validates connectivity without running inference.
func (p *EmbeddingProvider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("ollama: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("ollama: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (p *EmbeddingProvider) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

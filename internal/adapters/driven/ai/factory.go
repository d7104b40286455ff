// Package ai provides factory functions for creating AI provider adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/positron-labs/positron/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/positron-labs/positron/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/positron-labs/positron/internal/adapters/driven/llm/ollama"
	openaillm "github.com/positron-labs/positron/internal/adapters/driven/llm/openai"
	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for provider connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingProvider creates the appropriate embedding provider based on settings.
func CreateEmbeddingProvider(settings *domain.EmbeddingSettings) (driven.EmbeddingProvider, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("embedding provider is not configured")
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMProvider creates the appropriate LLM provider based on settings.
func CreateLLMProvider(settings *domain.LLMSettings) (driven.LLMProvider, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("LLM provider is not configured")
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateAndValidateEmbeddingProvider creates an embedding provider and validates connectivity.
// Returns the provider if successful, or an error with guidance.
func CreateAndValidateEmbeddingProvider(settings *domain.EmbeddingSettings) (driven.EmbeddingProvider, error) {
	provider, err := CreateEmbeddingProvider(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := provider.Ping(ctx); err != nil {
		provider.Close()
		return nil, fmt.Errorf("%w: embedding provider unreachable (%v). Run 'positron config' to review settings",
			domain.ErrProviderUnavailable, err)
	}

	return provider, nil
}

// CreateAndValidateLLMProvider creates an LLM provider and validates connectivity.
// Returns the provider if successful, or an error with guidance.
func CreateAndValidateLLMProvider(settings *domain.LLMSettings) (driven.LLMProvider, error) {
	provider, err := CreateLLMProvider(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := provider.Ping(ctx); err != nil {
		provider.Close()
		return nil, fmt.Errorf("%w: LLM provider unreachable (%v). Run 'positron config' to review settings",
			domain.ErrProviderUnavailable, err)
	}

	return provider, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a provider and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	provider, err := CreateEmbeddingProvider(settings)
	if err != nil {
		return err
	}
	defer provider.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return provider.Ping(ctx)
}

// ValidateLLMConfig validates an LLM configuration by creating a provider and pinging it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	provider, err := CreateLLMProvider(settings)
	if err != nil {
		return err
	}
	defer provider.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return provider.Ping(ctx)
}

// createOllamaEmbedding creates an Ollama embedding provider.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingProvider {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingProvider(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding provider.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingProvider, error) {
	dimensions := domain.EmbeddingDimensions()[settings.Model]

	return openaiembed.NewEmbeddingProvider(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOllamaLLM creates an Ollama LLM provider.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMProvider {
	return ollamallm.NewLLMProvider(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAILLM creates an OpenAI LLM provider.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMProvider, error) {
	return openaillm.NewLLMProvider(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

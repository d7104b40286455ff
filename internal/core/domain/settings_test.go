package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAIProvider_IsValid tests all valid and invalid providers
func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{
			name:     "ollama is valid",
			provider: AIProviderOllama,
			expected: true,
		},
		{
			name:     "openai is valid",
			provider: AIProviderOpenAI,
			expected: true,
		},
		{
			name:     "empty string is invalid",
			provider: AIProvider(""),
			expected: false,
		},
		{
			name:     "unknown provider is invalid",
			provider: AIProvider("anthropic"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.provider.IsValid()
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestAIProvider_RequiresAPIKey tests API key requirements
func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
}

// TestAIProvider_IsLocal tests local provider detection
func TestAIProvider_IsLocal(t *testing.T) {
	assert.True(t, AIProviderOllama.IsLocal())
	assert.False(t, AIProviderOpenAI.IsLocal())
}

// TestEmbeddingSettings_IsConfigured tests configuration validation
func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{
			name: "ollama without API key is configured",
			settings: EmbeddingSettings{
				Provider: AIProviderOllama,
				Model:    "nomic-embed-text",
				BaseURL:  "http://localhost:11434",
			},
			expected: true,
		},
		{
			name: "openai with API key is configured",
			settings: EmbeddingSettings{
				Provider: AIProviderOpenAI,
				Model:    "text-embedding-3-small",
				APIKey:   "sk-test",
			},
			expected: true,
		},
		{
			name: "openai without API key is not configured",
			settings: EmbeddingSettings{
				Provider: AIProviderOpenAI,
				Model:    "text-embedding-3-small",
			},
			expected: false,
		},
		{
			name:     "empty settings are not configured",
			settings: EmbeddingSettings{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

// TestLLMSettings_IsConfigured tests configuration validation
func TestLLMSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings LLMSettings
		expected bool
	}{
		{
			name: "ollama without API key is configured",
			settings: LLMSettings{
				Provider: AIProviderOllama,
				Model:    "llama3.2",
				BaseURL:  "http://localhost:11434",
			},
			expected: true,
		},
		{
			name: "openai without API key is not configured",
			settings: LLMSettings{
				Provider: AIProviderOpenAI,
				Model:    "gpt-4o-mini",
			},
			expected: false,
		},
		{
			name: "invalid provider is not configured",
			settings: LLMSettings{
				Provider: AIProvider("gemini"),
				Model:    "gemini-pro",
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

// TestDefaultAppSettings tests default values
func TestDefaultAppSettings(t *testing.T) {
	settings := DefaultAppSettings()

	assert.Equal(t, AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, AIProviderOllama, settings.LLM.Provider)
	assert.Equal(t, 1000, settings.Chunking.ChunkSize)
	assert.Equal(t, 200, settings.Chunking.Overlap)
	assert.Equal(t, 10, settings.Chat.HistoryWindow)
	assert.Equal(t, 5, settings.Chat.TopK)

	assert.True(t, settings.Embedding.IsConfigured())
	assert.True(t, settings.LLM.IsConfigured())
}

// TestEmbeddingDimensions tests known model dimensions
func TestEmbeddingDimensions(t *testing.T) {
	dims := EmbeddingDimensions()

	assert.Equal(t, 768, dims["nomic-embed-text"])
	assert.Equal(t, 1536, dims["text-embedding-3-small"])
}

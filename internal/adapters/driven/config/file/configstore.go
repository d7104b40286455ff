package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// openAIKeyEnv is the environment variable checked for an OpenAI API key.
const openAIKeyEnv = "OPENAI_API_KEY"

// fileConfig is the on-disk TOML representation of application settings.
// All fields are optional; missing values fall back to defaults on load.
type fileConfig struct {
	Embedding providerConfig `toml:"embedding"`
	LLM       providerConfig `toml:"llm"`
	Chunking  chunkingConfig `toml:"chunking"`
	Chat      chatConfig     `toml:"chat"`
}

type providerConfig struct {
	Provider string `toml:"provider,omitempty"`
	Model    string `toml:"model,omitempty"`
	BaseURL  string `toml:"base_url,omitempty"`
	APIKey   string `toml:"api_key,omitempty"`
}

type chunkingConfig struct {
	ChunkSize    int `toml:"chunk_size,omitempty"`
	ChunkOverlap int `toml:"chunk_overlap,omitempty"`
}

type chatConfig struct {
	HistoryWindow int `toml:"history_window,omitempty"`
	TopK          int `toml:"top_k,omitempty"`
}

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
// Configuration is stored in a TOML file within the positron config directory.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
}

// NewConfigStore creates a new TOML-based config store.
// If configDir is empty, defaults to ~/.positron/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".positron")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Load reads settings from the TOML file, applying defaults for any
// missing values. A missing file yields pure defaults.
func (s *ConfigStore) Load() (domain.AppSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := domain.DefaultAppSettings()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&settings)
			return settings, nil
		}
		return settings, fmt.Errorf("reading config file: %w", err)
	}

	var cfg fileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return settings, fmt.Errorf("parsing config file: %w", err)
	}

	applyFileConfig(&settings, cfg)
	applyEnvOverrides(&settings)
	return settings, nil
}

// Save persists settings to the TOML file with restricted permissions.
func (s *ConfigStore) Save(settings domain.AppSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := fileConfig{
		Embedding: providerConfig{
			Provider: settings.Embedding.Provider.String(),
			Model:    settings.Embedding.Model,
			BaseURL:  settings.Embedding.BaseURL,
			APIKey:   settings.Embedding.APIKey,
		},
		LLM: providerConfig{
			Provider: settings.LLM.Provider.String(),
			Model:    settings.LLM.Model,
			BaseURL:  settings.LLM.BaseURL,
			APIKey:   settings.LLM.APIKey,
		},
		Chunking: chunkingConfig{
			ChunkSize:    settings.Chunking.ChunkSize,
			ChunkOverlap: settings.Chunking.Overlap,
		},
		Chat: chatConfig{
			HistoryWindow: settings.Chat.HistoryWindow,
			TopK:          settings.Chat.TopK,
		},
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	// API keys may be present, so keep the file private.
	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// applyFileConfig overlays non-empty file values onto settings.
func applyFileConfig(settings *domain.AppSettings, cfg fileConfig) {
	if cfg.Embedding.Provider != "" {
		settings.Embedding.Provider = domain.AIProvider(cfg.Embedding.Provider)
	}
	if cfg.Embedding.Model != "" {
		settings.Embedding.Model = cfg.Embedding.Model
	}
	if cfg.Embedding.BaseURL != "" {
		settings.Embedding.BaseURL = cfg.Embedding.BaseURL
	}
	if cfg.Embedding.APIKey != "" {
		settings.Embedding.APIKey = cfg.Embedding.APIKey
	}

	if cfg.LLM.Provider != "" {
		settings.LLM.Provider = domain.AIProvider(cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "" {
		settings.LLM.Model = cfg.LLM.Model
	}
	if cfg.LLM.BaseURL != "" {
		settings.LLM.BaseURL = cfg.LLM.BaseURL
	}
	if cfg.LLM.APIKey != "" {
		settings.LLM.APIKey = cfg.LLM.APIKey
	}

	if cfg.Chunking.ChunkSize > 0 {
		settings.Chunking.ChunkSize = cfg.Chunking.ChunkSize
	}
	if cfg.Chunking.ChunkOverlap > 0 {
		settings.Chunking.Overlap = cfg.Chunking.ChunkOverlap
	}

	if cfg.Chat.HistoryWindow > 0 {
		settings.Chat.HistoryWindow = cfg.Chat.HistoryWindow
	}
	if cfg.Chat.TopK > 0 {
		settings.Chat.TopK = cfg.Chat.TopK
	}
}

// applyEnvOverrides fills in API keys from the environment.
// Environment variables take precedence over file values.
func applyEnvOverrides(settings *domain.AppSettings) {
	if key := os.Getenv(openAIKeyEnv); key != "" {
		if settings.Embedding.Provider == domain.AIProviderOpenAI {
			settings.Embedding.APIKey = key
		}
		if settings.LLM.Provider == domain.AIProviderOpenAI {
			settings.LLM.APIKey = key
		}
	}
}

package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/positron-labs/positron/internal/core/domain"
)

func newTestStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestConfigStore_Load_MissingFileYieldsDefaults(t *testing.T) {
	store := newTestStore(t)

	settings, err := store.Load()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Embedding.Model, settings.Embedding.Model)
	assert.Equal(t, defaults.Chunking.ChunkSize, settings.Chunking.ChunkSize)
	assert.Equal(t, defaults.Chat.HistoryWindow, settings.Chat.HistoryWindow)
}

func TestConfigStore_SaveAndLoad_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	settings := domain.DefaultAppSettings()
	settings.Embedding.Provider = domain.AIProviderOpenAI
	settings.Embedding.Model = "text-embedding-3-small"
	settings.Embedding.APIKey = "sk-test"
	settings.LLM.Provider = domain.AIProviderOpenAI
	settings.LLM.Model = "gpt-4o-mini"
	settings.LLM.APIKey = "sk-test"
	settings.Chunking.ChunkSize = 500
	settings.Chat.TopK = 3

	require.NoError(t, store.Save(settings))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, loaded.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", loaded.Embedding.Model)
	assert.Equal(t, "sk-test", loaded.Embedding.APIKey)
	assert.Equal(t, "gpt-4o-mini", loaded.LLM.Model)
	assert.Equal(t, 500, loaded.Chunking.ChunkSize)
	assert.Equal(t, 3, loaded.Chat.TopK)
}

func TestConfigStore_Load_PartialFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	partial := `[llm]
model = "mistral"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(partial), 0600))

	settings, err := store.Load()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, "mistral", settings.LLM.Model)
	assert.Equal(t, defaults.LLM.Provider, settings.LLM.Provider)
	assert.Equal(t, defaults.Embedding.Model, settings.Embedding.Model)
	assert.Equal(t, defaults.Chunking.Overlap, settings.Chunking.Overlap)
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0600))

	_, err = store.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestConfigStore_EnvOverridesAPIKey(t *testing.T) {
	store := newTestStore(t)

	settings := domain.DefaultAppSettings()
	settings.LLM.Provider = domain.AIProviderOpenAI
	settings.LLM.APIKey = "from-file"
	require.NoError(t, store.Save(settings))

	t.Setenv(openAIKeyEnv, "from-env")

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", loaded.LLM.APIKey)
	// Ollama embedding settings are untouched by the env key.
	assert.Empty(t, loaded.Embedding.APIKey)
}

func TestConfigStore_Save_RestrictedPermissions(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(domain.DefaultAppSettings()))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Path(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

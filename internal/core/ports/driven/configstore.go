package driven

import "github.com/positron-labs/positron/internal/core/domain"

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and defaulting.
type ConfigStore interface {
	// Load reads settings from storage, applying defaults for any
	// missing values. A missing file yields pure defaults.
	Load() (domain.AppSettings, error)

	// Save persists settings to storage.
	Save(settings domain.AppSettings) error

	// Path returns the configuration file path.
	Path() string
}

// Package file provides a file-based configuration store using TOML.
//
// Configuration is stored in ~/.positron/config.toml by default. Missing
// fields fall back to the application defaults, so a partial config file
// is valid. API keys can also be supplied via environment variables
// (OPENAI_API_KEY), which take precedence over the file.
package file

package postprocessors

import (
	"github.com/positron-labs/positron/internal/core/ports/driven"
	"github.com/positron-labs/positron/internal/postprocessors/chunker"
)

// RegisterDefaults installs the built-in processors.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
}

// buildChunker reads chunk_size and overlap from the configuration
// map; unset or non-positive values fall back to the chunker defaults.
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option
	if size := intSetting(cfg, "chunk_size"); size > 0 {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if _, ok := cfg["overlap"]; ok {
		if overlap := intSetting(cfg, "overlap"); overlap >= 0 {
			opts = append(opts, chunker.WithOverlap(overlap))
		}
	}
	return chunker.New(opts...), nil
}

// intSetting coerces a config value to int. TOML decodes integers as
// int64 and JSON as float64, so both are accepted.
func intSetting(cfg map[string]any, key string) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

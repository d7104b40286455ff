package postprocessors

import (
	"fmt"

	"github.com/positron-labs/positron/internal/core/ports/driven"
)

// BuilderFunc constructs a processor from its configuration map. The
// map holds processor-specific keys parsed from the config file.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry resolves processor names to builders so pipelines can be
// assembled from configuration.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]BuilderFunc)}
}

// Register associates a builder with a name. The name must match what
// the built processor reports from Name().
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build constructs the named processor with the given configuration.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown processor: %s", name)
	}
	return builder(cfg)
}

// Has reports whether a builder is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names lists every registered processor name.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	return names
}

package normalisers

import (
	"context"
	"fmt"
	"sort"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches raw documents to normalisers by MIME type.
// When several normalisers claim a type, the highest priority wins.
type Registry struct {
	byType map[string][]driven.Normaliser
}

// NewRegistry creates a registry with the given normalisers.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{
		byType: make(map[string][]driven.Normaliser),
	}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser to the registry.
func (r *Registry) Register(normaliser driven.Normaliser) {
	for _, mimeType := range normaliser.SupportedMIMETypes() {
		r.byType[mimeType] = append(r.byType[mimeType], normaliser)
	}
}

// Normalise transforms a raw document using the best matching normaliser.
// Returns domain.ErrUnsupportedType when no normaliser handles the type.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	candidates := r.byType[raw.ContentType]
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, raw.ContentType)
	}

	best := candidates[0]
	for _, candidate := range candidates[1:] {
		if candidate.Priority() > best.Priority() {
			best = candidate
		}
	}

	return best.Normalise(ctx, raw)
}

// SupportedMIMETypes returns all MIME types that can be normalised, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	types := make([]string, 0, len(r.byType))
	for mimeType := range r.byType {
		types = append(types, mimeType)
	}
	sort.Strings(types)
	return types
}

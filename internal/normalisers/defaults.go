package normalisers

import (
	"github.com/positron-labs/positron/internal/normalisers/docx"
	"github.com/positron-labs/positron/internal/normalisers/html"
	"github.com/positron-labs/positron/internal/normalisers/markdown"
	"github.com/positron-labs/positron/internal/normalisers/pdf"
	"github.com/positron-labs/positron/internal/normalisers/plaintext"
)

// DefaultRegistry creates a registry with all built-in normalisers.
func DefaultRegistry() *Registry {
	return NewRegistry(
		plaintext.New(),
		markdown.New(),
		html.New(),
		pdf.New(),
		docx.New(),
	)
}

// Package pdf provides a normaliser for PDF documents.
//
// Text extraction shells out to pdftotext from poppler-utils. Page
// boundaries are recovered from the form feed characters pdftotext
// emits between pages, which lets chunk provenance carry page numbers.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// maxTitleLineLength is the longest first line considered a usable title.
const maxTitleLineLength = 200

// Normaliser handles PDF documents.
type Normaliser struct {
	runner driven.CommandRunner
}

// execRunner runs commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// New creates a new PDF normaliser using the system pdftotext.
func New() *Normaliser {
	return &Normaliser{runner: execRunner{}}
}

// NewWithRunner creates a PDF normaliser with a custom command runner.
func NewWithRunner(runner driven.CommandRunner) *Normaliser {
	return &Normaliser{runner: runner}
}

// CheckAvailable reports whether pdftotext is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns guidance for installing pdftotext.
func InstallInstructions() string {
	return strings.Join([]string{
		"pdftotext is required for PDF ingestion.",
		"  macOS:  brew install poppler",
		"  Debian: apt install poppler-utils",
		"  Fedora: dnf install poppler-utils",
	}, "\n")
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Format-specific normaliser
}

// Normalise extracts text from a PDF document.
// The Content field contains the extracted text and Pages records which
// page each offset range came from.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil || len(raw.Content) == 0 {
		return nil, domain.ErrInvalidInput
	}

	text, err := n.extractText(ctx, raw.Content)
	if err != nil {
		return nil, err
	}

	content, pages := splitPages(text)

	doc := domain.Document{
		Filename:    raw.Filename,
		SourceURL:   raw.SourceURL,
		ContentType: raw.ContentType,
		Title:       extractTitle(content, raw.Filename),
		Content:     content,
		Pages:       pages,
		Metadata:    copyMetadata(raw.Metadata),
	}

	return &driven.NormaliseResult{
		Document: doc,
	}, nil
}

// extractText writes the PDF to a temporary file and runs pdftotext on it.
func (n *Normaliser) extractText(ctx context.Context, pdf []byte) (string, error) {
	tmp, err := os.CreateTemp("", "positron-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(pdf); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	// "-" sends extracted text to stdout.
	output, err := n.runner.Run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", tmp.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}

	return string(output), nil
}

// splitPages converts pdftotext output into content and page spans.
// pdftotext separates pages with form feed characters.
func splitPages(text string) (string, []domain.PageSpan) {
	rawPages := strings.Split(text, "\f")

	var builder strings.Builder
	var spans []domain.PageSpan //nolint:prealloc // empty trailing pages are dropped

	for i, rawPage := range rawPages {
		page := strings.TrimSpace(rawPage)
		if page == "" {
			continue
		}

		if builder.Len() > 0 {
			builder.WriteString("\n")
		}

		start := builder.Len()
		builder.WriteString(page)
		spans = append(spans, domain.PageSpan{
			Page:  i + 1,
			Start: start,
			End:   builder.Len(),
		})
	}

	return builder.String(), spans
}

// extractTitle uses the first reasonably short non-empty line as the
// title, falling back to the filename.
func extractTitle(content, filename string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) < maxTitleLineLength {
			return line
		}
	}

	name := filepath.Base(filename)
	ext := filepath.Ext(name)
	if ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}

// copyMetadata creates a shallow copy of metadata.
func copyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

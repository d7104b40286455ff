package pdf

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
}

func (m *mockRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return m.output, m.err
}

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedMIMETypes(t *testing.T) {
	normaliser := New()
	mimeTypes := normaliser.SupportedMIMETypes()

	require.NotEmpty(t, mimeTypes)
	assert.Contains(t, mimeTypes, "application/pdf")
	assert.Len(t, mimeTypes, 1)
}

func TestPriority(t *testing.T) {
	normaliser := New()
	assert.Equal(t, 50, normaliser.Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	normaliser := New()

	result, err := normaliser.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_WithMockRunner(t *testing.T) {
	runner := &mockRunner{
		output: []byte("PDF Title\n\nThis is the content of the PDF.\n"),
	}
	normaliser := NewWithRunner(runner)

	raw := &domain.RawDocument{
		Filename:    "/path/to/document.pdf",
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.4 fake pdf content"),
	}

	result, err := normaliser.Normalise(context.Background(), raw)
	require.NoError(t, err)
	require.NotNil(t, result)

	doc := result.Document
	assert.Equal(t, "/path/to/document.pdf", doc.Filename)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, "PDF Title", doc.Title)
	assert.Contains(t, doc.Content, "This is the content of the PDF.")
}

func TestNormalise_PageSpans(t *testing.T) {
	runner := &mockRunner{
		output: []byte("Page one text.\fPage two text.\fPage three text.\f"),
	}
	normaliser := NewWithRunner(runner)

	raw := &domain.RawDocument{
		Filename:    "report.pdf",
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.4 fake"),
	}

	result, err := normaliser.Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	require.Len(t, doc.Pages, 3)
	assert.Equal(t, 1, doc.Pages[0].Page)
	assert.Equal(t, 2, doc.Pages[1].Page)
	assert.Equal(t, 3, doc.Pages[2].Page)

	// Offsets round-trip through PageAt.
	assert.Equal(t, 1, doc.PageAt(doc.Pages[0].Start))
	assert.Equal(t, 2, doc.PageAt(doc.Pages[1].Start))
	assert.Equal(t, 3, doc.PageAt(doc.Pages[2].End-1))

	// Span content matches the page text.
	span := doc.Pages[1]
	assert.Equal(t, "Page two text.", doc.Content[span.Start:span.End])
}

func TestNormalise_EmptyPagesSkipped(t *testing.T) {
	runner := &mockRunner{
		output: []byte("First page.\f\f\fFourth page.\f"),
	}
	normaliser := NewWithRunner(runner)

	raw := &domain.RawDocument{
		Filename:    "sparse.pdf",
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.4 fake"),
	}

	result, err := normaliser.Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, 1, doc.Pages[0].Page)
	assert.Equal(t, 4, doc.Pages[1].Page)
}

func TestNormalise_RunnerError(t *testing.T) {
	runner := &mockRunner{
		err: errors.New("pdftotext crashed"),
	}
	normaliser := NewWithRunner(runner)

	raw := &domain.RawDocument{
		Filename:    "document.pdf",
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.4 fake pdf content"),
	}

	result, err := normaliser.Normalise(context.Background(), raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext failed")
	assert.Nil(t, result)
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		filename string
		expected string
	}{
		{
			name:     "first line as title",
			content:  "Document Title\n\nSome content here.",
			filename: "/doc.pdf",
			expected: "Document Title",
		},
		{
			name:     "skip empty lines",
			content:  "\n\n\nActual Title\nContent",
			filename: "/doc.pdf",
			expected: "Actual Title",
		},
		{
			name:     "fallback to filename",
			content:  "",
			filename: "/path/to/my_document.pdf",
			expected: "my document",
		},
		{
			name:     "skip very long first line",
			content:  strings.Repeat("x", 250) + "\nShort Title\nContent",
			filename: "/doc.pdf",
			expected: "Short Title",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractTitle(tc.content, tc.filename))
		})
	}
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Error(t, ErrPDFToolNotFound)
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}

package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedMIMETypes(t *testing.T) {
	normaliser := New()
	mimeTypes := normaliser.SupportedMIMETypes()

	require.NotEmpty(t, mimeTypes)
	assert.Contains(t, mimeTypes, "text/plain")
	assert.Contains(t, mimeTypes, "text/csv")
	assert.Contains(t, mimeTypes, "application/json")
}

func TestPriority(t *testing.T) {
	normaliser := New()
	assert.Equal(t, 5, normaliser.Priority())
}

func TestNormalise(t *testing.T) {
	normaliser := New()

	raw := &domain.RawDocument{
		Filename:    "meeting_notes.txt",
		ContentType: "text/plain",
		Content:     []byte("Action items from the meeting."),
	}

	result, err := normaliser.Normalise(context.Background(), raw)
	require.NoError(t, err)
	require.NotNil(t, result)

	doc := result.Document
	assert.Equal(t, "meeting_notes.txt", doc.Filename)
	assert.Equal(t, "text/plain", doc.ContentType)
	assert.Equal(t, "meeting notes", doc.Title)
	assert.Equal(t, "Action items from the meeting.", doc.Content)
}

func TestNormalise_TitleFromMetadata(t *testing.T) {
	normaliser := New()

	raw := &domain.RawDocument{
		Filename:    "export-2024.txt",
		ContentType: "text/plain",
		Content:     []byte("content"),
		Metadata:    map[string]any{"title": "Quarterly Report"},
	}

	result, err := normaliser.Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly Report", result.Document.Title)
	assert.Equal(t, "Quarterly Report", result.Document.Metadata["title"])
}

func TestNormalise_NilDocument(t *testing.T) {
	normaliser := New()

	result, err := normaliser.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_InvalidUTF8(t *testing.T) {
	normaliser := New()

	raw := &domain.RawDocument{
		Filename:    "binary.txt",
		ContentType: "text/plain",
		Content:     []byte{0xff, 0xfe, 0x00, 0x01},
	}

	result, err := normaliser.Normalise(context.Background(), raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDecoding)
	assert.Nil(t, result)
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		expected string
	}{
		{
			name:     "simple filename",
			filename: "readme.txt",
			expected: "readme",
		},
		{
			name:     "underscores and dashes",
			filename: "my_project-notes.txt",
			expected: "my project notes",
		},
		{
			name:     "nested path",
			filename: "/docs/guides/setup_guide.md",
			expected: "setup guide",
		},
		{
			name:     "no extension",
			filename: "LICENSE",
			expected: "LICENSE",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, titleFromFilename(tc.filename))
		})
	}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}

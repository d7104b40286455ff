package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/positron-labs/positron/internal/core/domain"
)

func TestSupportedMIMETypes(t *testing.T) {
	normaliser := New()
	assert.Equal(t, []string{"text/html", "application/xhtml+xml"}, normaliser.SupportedMIMETypes())
}

func TestPriority(t *testing.T) {
	normaliser := New()
	assert.Equal(t, 50, normaliser.Priority())
}

func TestNormalise(t *testing.T) {
	normaliser := New()

	raw := &domain.RawDocument{
		Filename:    "https://example.com/article",
		SourceURL:   "https://example.com/article",
		ContentType: "text/html",
		Content: []byte(`<html>
<head><title>Article Title</title><style>body { color: red }</style></head>
<body>
	<script>console.log("ignore me")</script>
	<h1>Heading</h1>
	<p>First paragraph with <b>bold</b> text.</p>
	<p>Second &amp; final paragraph.</p>
</body>
</html>`),
	}

	result, err := normaliser.Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "Article Title", doc.Title)
	assert.Equal(t, "https://example.com/article", doc.SourceURL)
	assert.Contains(t, doc.Content, "Heading")
	assert.Contains(t, doc.Content, "First paragraph with bold text.")
	assert.Contains(t, doc.Content, "Second & final paragraph.")
	assert.NotContains(t, doc.Content, "console.log")
	assert.NotContains(t, doc.Content, "color: red")
	assert.NotContains(t, doc.Content, "<p>")
}

func TestNormalise_NilDocument(t *testing.T) {
	normaliser := New()

	result, err := normaliser.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_InvalidUTF8(t *testing.T) {
	normaliser := New()

	result, err := normaliser.Normalise(context.Background(), &domain.RawDocument{
		Filename:    "broken.html",
		ContentType: "text/html",
		Content:     []byte{'<', 'p', '>', 0xff, 0xfe},
	})
	assert.ErrorIs(t, err, domain.ErrDecoding)
	assert.Nil(t, result)
}

func TestExtractHTMLTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		filename string
		expected string
	}{
		{
			name:     "title tag",
			content:  "<head><title>Page Title</title></head>",
			filename: "page.html",
			expected: "Page Title",
		},
		{
			name:     "title with entities",
			content:  "<title>Q&amp;A Session</title>",
			filename: "page.html",
			expected: "Q&A Session",
		},
		{
			name:     "empty title falls back to filename",
			content:  "<title>  </title>",
			filename: "landing_page.html",
			expected: "landing page",
		},
		{
			name:     "no title tag",
			content:  "<body>text</body>",
			filename: "about-us.html",
			expected: "about us",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractHTMLTitle(tc.content, tc.filename))
		})
	}
}

func TestStripHTML_BlockElements(t *testing.T) {
	content := stripHTML("<div>one</div><div>two</div>")
	assert.Equal(t, "one\ntwo", content)
}

func TestStripHTML_LineBreaks(t *testing.T) {
	content := stripHTML("first<br>second<br/>third")
	assert.Equal(t, "first\nsecond\nthird", content)
}

func TestStripHTML_Comments(t *testing.T) {
	content := stripHTML("visible<!-- hidden -->text")
	assert.Equal(t, "visibletext", content)
}

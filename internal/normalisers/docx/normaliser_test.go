package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/positron-labs/positron/internal/core/domain"
)

const docxMIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// buildDocx constructs a minimal DOCX archive for testing.
func buildDocx(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := writer.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

const documentXMLSample = `<?xml version="1.0"?>
<document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
	<body>
		<p><r><t>First paragraph.</t></r></p>
		<p><r><t>Second </t></r><r><t>paragraph.</t></r></p>
	</body>
</document>`

func TestSupportedMIMETypes(t *testing.T) {
	normaliser := New()
	assert.Equal(t, []string{docxMIMEType}, normaliser.SupportedMIMETypes())
}

func TestPriority(t *testing.T) {
	normaliser := New()
	assert.Equal(t, 50, normaliser.Priority())
}

func TestNormalise(t *testing.T) {
	normaliser := New()

	raw := &domain.RawDocument{
		Filename:    "project_plan.docx",
		ContentType: docxMIMEType,
		Content: buildDocx(t, map[string]string{
			"word/document.xml": documentXMLSample,
		}),
	}

	result, err := normaliser.Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "project plan", doc.Title)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", doc.Content)
}

func TestNormalise_TitleFromCoreProperties(t *testing.T) {
	normaliser := New()

	raw := &domain.RawDocument{
		Filename:    "untitled.docx",
		ContentType: docxMIMEType,
		Content: buildDocx(t, map[string]string{
			"word/document.xml": documentXMLSample,
			"docProps/core.xml": `<?xml version="1.0"?><coreProperties><title>Project Plan Q3</title></coreProperties>`,
		}),
	}

	result, err := normaliser.Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Project Plan Q3", result.Document.Title)
}

func TestNormalise_NotAZip(t *testing.T) {
	normaliser := New()

	raw := &domain.RawDocument{
		Filename:    "broken.docx",
		ContentType: docxMIMEType,
		Content:     []byte("this is not a zip archive"),
	}

	result, err := normaliser.Normalise(context.Background(), raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDecoding)
	assert.Nil(t, result)
}

func TestNormalise_MissingDocumentXML(t *testing.T) {
	normaliser := New()

	raw := &domain.RawDocument{
		Filename:    "empty.docx",
		ContentType: docxMIMEType,
		Content: buildDocx(t, map[string]string{
			"other.txt": "unrelated",
		}),
	}

	result, err := normaliser.Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Empty(t, result.Document.Content)
}

func TestNormalise_NilDocument(t *testing.T) {
	normaliser := New()

	result, err := normaliser.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

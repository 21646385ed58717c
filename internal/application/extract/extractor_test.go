package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		mimeType string
		want     string
	}{
		{"pdf by mime", "file.bin", MimePDF, "pdf"},
		{"docx by mime", "file.bin", MimeDOCX, "docx"},
		{"pdf by extension", "paper.PDF", "", "pdf"},
		{"docx by extension", "thesis.docx", "application/octet-stream", "docx"},
		{"mime wins over extension", "file.docx", MimePDF, "pdf"},
		{"unknown", "image.png", "image/png", ""},
		{"no hints", "README", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectKind(tt.fileName, tt.mimeType))
		})
	}
}

func TestExtract_UnsupportedType(t *testing.T) {
	e := NewExtractor()
	text, ok, err := e.Extract(context.Background(), "slides.pptx", "application/vnd.ms-powerpoint", []byte("anything"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestExtract_CorruptPDFReturnsSupportedError(t *testing.T) {
	e := NewExtractor()
	_, ok, err := e.Extract(context.Background(), "broken.pdf", MimePDF, []byte("not a pdf"))
	assert.True(t, ok)
	assert.Error(t, err)
}

// buildDocx 构造只含 word/document.xml 的最小 OOXML 包
func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract_DOCXParagraphs(t *testing.T) {
	docXML := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
    <w:p></w:p>
    <w:p><w:r><w:t>Third.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	e := NewExtractor()
	text, ok, err := e.Extract(context.Background(), "notes.docx", MimeDOCX, buildDocx(t, docXML))
	require.NoError(t, err)
	assert.True(t, ok)

	lines := strings.Split(text, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "First paragraph.", lines[0])
	assert.Equal(t, "Second paragraph.", lines[1])
	assert.Equal(t, "Third.", lines[2])
}

func TestExtract_DOCXTabs(t *testing.T) {
	docXML := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>left</w:t></w:r><w:r><w:tab/></w:r><w:r><w:t>right</w:t></w:r></w:p>
  </w:body>
</w:document>`

	text, err := extractDOCX(buildDocx(t, docXML))
	require.NoError(t, err)
	assert.Equal(t, "left\tright", text)
}

func TestExtract_DOCXMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<styles/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = extractDOCX(buf.Bytes())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document.xml not found")
}

func TestExtract_DOCXNotAZip(t *testing.T) {
	_, err := extractDOCX([]byte("plain text, not an archive"))
	require.Error(t, err)
}

func TestExtract_DOCXIgnoresNonTextNodes(t *testing.T) {
	docXML := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:jc w:val="center"/></w:pPr>
      <w:r><w:rPr><w:b/></w:rPr><w:t>visible</w:t></w:r>
    </w:p>
  </w:body>
</w:document>`

	text, err := extractDOCX(buildDocx(t, docXML))
	require.NoError(t, err)
	assert.Equal(t, "visible", text)
}

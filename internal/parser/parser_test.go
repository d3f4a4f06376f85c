package parser_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/docproof-cli/internal/parser"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
  xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006">
  <w:body>
    <w:p>
      <w:pPr><w:pStyle w:val="Title"/><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr>
      <w:r><w:t>Sample Document</w:t></w:r>
    </w:p>
    <w:p><w:r><w:t xml:space="preserve">This is the orginal </w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t>text with some erors.</w:t></w:r></w:p>
    <w:p/>
    <w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell text</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
    <w:p>
      <w:r><w:t>Col A</w:t></w:r><w:r><w:tab/></w:r><w:r><w:t>Col B</w:t></w:r><w:r><w:br/></w:r><w:r><w:t>next line</w:t></w:r>
      <w:del><w:r><w:delText>removed</w:delText></w:r></w:del>
      <w:r><mc:AlternateContent><mc:Choice><w:drawing><w:txbxContent><w:p><w:r><w:t>box</w:t></w:r></w:p></w:txbxContent></w:drawing></mc:Choice><mc:Fallback><w:t>fallback</w:t></mc:Fallback></mc:AlternateContent></w:r>
    </w:p>
    <w:sectPr/>
  </w:body>
</w:document>`

func writeDocx(t *testing.T, dir, name string, files map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for n, body := range files {
		w, err := zw.Create(n)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0o644))
	return p
}

func TestParseParagraphsDOCX(t *testing.T) {
	p := writeDocx(t, t.TempDir(), "draft.docx", map[string]string{"word/document.xml": documentXML})

	paras, err := parser.ParseParagraphs(p)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Sample Document",
		"This is the orginal text with some erors.",
		"",
		"Col A\tCol B\nnext line",
	}, paras)
}

func TestParseParagraphsDOCXMissingDocumentXML(t *testing.T) {
	p := writeDocx(t, t.TempDir(), "empty.docx", map[string]string{"word/styles.xml": "<w:styles/>"})
	_, err := parser.ParseParagraphs(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document.xml not found")
}

func TestParseParagraphsCorruptDOCX(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.docx")
	require.NoError(t, os.WriteFile(p, []byte("not a zip"), 0o644))
	_, err := parser.ParseParagraphs(p)
	require.Error(t, err)
}

func TestParseParagraphsTruncatedXML(t *testing.T) {
	p := writeDocx(t, t.TempDir(), "cut.docx", map[string]string{"word/document.xml": documentXML[:400]})
	_, err := parser.ParseParagraphs(p)
	require.Error(t, err)
}

func TestParseParagraphsNotFound(t *testing.T) {
	_, err := parser.ParseParagraphs(filepath.Join(t.TempDir(), "missing.docx"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, parser.ErrNotFound))
}

func TestParseParagraphsTXT(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.txt")
	content := "hello world\nthis is txt\r\n\r\n\n  Second paragraph.  \n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	paras, err := parser.ParseParagraphs(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello world this is txt", "Second paragraph."}, paras)
}

func TestParseParagraphsMD(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.md")
	content := "# Title\n\nBody here\n\n```go\nfmt.Println(\"x\")\n```\n\n- list\n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	paras, err := parser.ParseParagraphs(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"# Title", "Body here", "- list"}, paras)
}

func TestParseParagraphsUnsupported(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.pdf")
	require.NoError(t, os.WriteFile(p, []byte("%PDF"), 0o644))
	_, err := parser.ParseParagraphs(p)
	assert.True(t, errors.Is(err, parser.ErrUnsupported))
}

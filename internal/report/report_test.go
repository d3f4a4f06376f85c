package report_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/docproof-cli/internal/parser"
	"github.com/KaramelBytes/docproof-cli/internal/report"
	"github.com/KaramelBytes/docproof-cli/internal/review"
)

func scenarioRecords() []review.Record {
	return []review.Record{
		{
			Index:     0,
			Original:  "This is the orginal text with some erors.",
			Corrected: "This is the original text with some errors.",
			Feedback:  []string{"- Fixed spelling: orginal -> original", "Fixed spelling: erors -> errors", "  "},
			Chunks:    1,
		},
		{
			Index:     1,
			Original:  "Second paragraph is fine.",
			Corrected: "Second paragraph is fine.",
			Feedback:  []string{},
			Chunks:    1,
		},
	}
}

func documentXML(t *testing.T, data []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			b, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(b)
		}
	}
	t.Fatalf("word/document.xml missing")
	return ""
}

func TestRenderDOCXLayout(t *testing.T) {
	records := scenarioRecords()
	data, err := report.Render(records, review.Summarize(records)).Bytes()
	require.NoError(t, err)

	xml := documentXML(t, data)
	assert.Equal(t, 1, strings.Count(xml, `<w:highlight w:val="yellow"/>`), "only the changed paragraph is highlighted")
	assert.Contains(t, xml, `<w:pStyle w:val="Title"/>`)
	assert.Contains(t, xml, `<w:pStyle w:val="Quote"/>`)
	assert.Equal(t, 2, strings.Count(xml, `<w:numId w:val="1"/>`), "one bullet per non-blank feedback item")
	assert.Contains(t, xml, "<w:b/>")

	dir := t.TempDir()
	p := filepath.Join(dir, "report.docx")
	require.NoError(t, os.WriteFile(p, data, 0o644))
	paras, err := parser.ParseParagraphs(p)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"AI Proofreading Report",
		"Summary: Processed 2 paragraphs. 1 paragraphs had corrections.",
		strings.Repeat("=", 50),
		"Paragraph 1: Original",
		"This is the orginal text with some erors.",
		"Paragraph 1: Corrected",
		"This is the original text with some errors.",
		"Paragraph 1: Feedback",
		"Fixed spelling: orginal -> original",
		"Fixed spelling: erors -> errors",
		strings.Repeat("-", 30),
		"Paragraph 2: Original",
		"Second paragraph is fine.",
		"Paragraph 2: Corrected",
		"Second paragraph is fine.",
		"Paragraph 2: Feedback",
		"No feedback provided.",
		strings.Repeat("-", 30),
	}, paras)
}

func TestRenderIsDeterministic(t *testing.T) {
	records := scenarioRecords()
	a, err := report.Render(records, review.Summarize(records)).Bytes()
	require.NoError(t, err)
	b, err := report.Render(records, review.Summarize(records)).Bytes()
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a, b))
}

func TestRenderEscapesAndKeepsBreaks(t *testing.T) {
	d := report.NewDocument()
	d.AddParagraph(report.Run{Text: "a < b & c\tcol\nnext"})
	data, err := d.Bytes()
	require.NoError(t, err)
	xml := documentXML(t, data)
	assert.Contains(t, xml, "a &lt; b &amp; c")
	assert.Contains(t, xml, "<w:tab/>")
	assert.Contains(t, xml, "<w:br/>")
}

func TestSummaryMentionsFailures(t *testing.T) {
	records := append(scenarioRecords(), review.Record{
		Index: 2, Original: "x", Corrected: "x", HadError: true, Feedback: []string{"Error: timeout"},
	})
	md := string(report.RenderMarkdown(records, review.Summarize(records)))
	assert.Contains(t, md, "**Summary:** Processed 3 paragraphs. 1 paragraphs had corrections. 1 paragraphs could not be proofread.")
	assert.Contains(t, md, "- Error: timeout")
}

func TestRenderMarkdown(t *testing.T) {
	records := scenarioRecords()
	md := string(report.RenderMarkdown(records, review.Summarize(records)))
	assert.True(t, strings.HasPrefix(md, "# AI Proofreading Report\n"))
	assert.Contains(t, md, "> This is the orginal text with some erors.")
	assert.Contains(t, md, "==This is the original text with some errors.==")
	assert.NotContains(t, md, "==Second paragraph is fine.==")
	assert.Contains(t, md, "- Fixed spelling: orginal -> original\n")
	assert.NotContains(t, md, "- - Fixed")
	assert.Contains(t, md, "No feedback provided.")
}

func TestRenderMarkdownHighlightsEachLine(t *testing.T) {
	records := []review.Record{{
		Index: 0, Original: "frist line\nsecnd line", Corrected: "first line\n\nsecond line", Feedback: []string{},
	}}
	md := string(report.RenderMarkdown(records, review.Summarize(records)))
	assert.Contains(t, md, "==first line==\n\n==second line==\n")
	assert.NotContains(t, md, "====")
}

func TestWritePicksFormatAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	records := scenarioRecords()
	summary := review.Summarize(records)

	jsonPath := filepath.Join(dir, "nested", "out.json")
	require.NoError(t, report.Write(jsonPath, records, summary))
	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var decoded struct {
		Summary struct {
			Total     int    `json:"total"`
			Corrected int    `json:"corrected"`
			Line      string `json:"line"`
		} `json:"summary"`
		Records []review.Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 2, decoded.Summary.Total)
	assert.Equal(t, "Processed 2 paragraphs. 1 paragraphs had corrections.", decoded.Summary.Line)
	assert.Equal(t, records, decoded.Records)

	docxPath := filepath.Join(dir, "out.docx")
	require.NoError(t, os.WriteFile(docxPath, []byte("stale"), 0o644))
	require.NoError(t, report.Write(docxPath, records, summary))
	data, err := os.ReadFile(docxPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))

	assert.Equal(t, report.FormatMarkdown, report.FormatFor("x.MD"))
	assert.Equal(t, report.FormatDOCX, report.FormatFor("x.out"))
}

func TestCheckWritable(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, report.CheckWritable(filepath.Join(dir, "new", "out.docx")))

	existing := filepath.Join(dir, "out.docx")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))
	assert.NoError(t, report.CheckWritable(existing))

	var we *report.WriteError
	require.ErrorAs(t, report.CheckWritable(dir), &we)
	assert.Contains(t, we.Hint(), "close the file")
	require.ErrorAs(t, report.CheckWritable(""), &we)
}

func TestCheckWritableReadOnlyFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	p := filepath.Join(t.TempDir(), "locked.docx")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o444))
	var we *report.WriteError
	require.ErrorAs(t, report.CheckWritable(p), &we)
}

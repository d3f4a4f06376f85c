package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/docproof-cli/internal/review"
	"github.com/KaramelBytes/docproof-cli/internal/utils"
)

const writeHint = "close the file if it is open in another program and check permissions"

// WriteError is an output I/O failure. It is always fatal.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cannot write report to %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Hint is a remediation suggestion for the user.
func (e *WriteError) Hint() string { return writeHint }

// Format is the report file format chosen from the output extension.
type Format string

const (
	FormatDOCX     Format = "docx"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// FormatFor returns the format for path; unknown extensions get DOCX.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".json":
		return FormatJSON
	default:
		return FormatDOCX
	}
}

// Encode renders the report in the given format.
func Encode(format Format, records []review.Record, summary review.Summary) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return RenderMarkdown(records, summary), nil
	case FormatJSON:
		if records == nil {
			records = []review.Record{}
		}
		return utils.PrettyJSON(jsonReport{
			Title:   Title,
			Summary: jsonSummary{Summary: summary, Line: summaryText(summary)},
			Records: records,
		})
	default:
		return Render(records, summary).Bytes()
	}
}

// Write renders the report in the format implied by path and writes it
// atomically. An existing file at path is replaced.
func Write(path string, records []review.Record, summary review.Summary) error {
	data, err := Encode(FormatFor(path), records, summary)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if err := utils.EnsureDir(path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := utils.SafeWriteFile(path, data); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// CheckWritable verifies up front that the report can be written to path, so
// a locked or read-only output fails before any paragraph is processed.
func CheckWritable(path string) error {
	if strings.TrimSpace(path) == "" {
		return &WriteError{Path: path, Err: errors.New("output path is empty")}
	}
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return &WriteError{Path: path, Err: errors.New("output path is a directory")}
	case err == nil:
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			return &WriteError{Path: path, Err: err}
		}
		return f.Close()
	case !errors.Is(err, os.ErrNotExist):
		return &WriteError{Path: path, Err: err}
	}
	if err := utils.EnsureDir(path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	probe, err := os.CreateTemp(filepath.Dir(path), ".docproof-probe-*")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}

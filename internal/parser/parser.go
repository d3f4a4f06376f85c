// Package parser reads the paragraphs of an input document.
package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Parser defines a document parser implementation.
type Parser interface {
	CanParse(filename string) bool
	// Parse returns paragraphs in document order. Blank paragraphs may be
	// included; callers decide whether to skip them.
	Parse(content []byte) ([]string, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ErrNotFound indicates the input document does not exist.
var ErrNotFound = errors.New("input document not found")

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported document format")

// ParseParagraphs selects a parser by file extension and returns the
// document's paragraphs. Files without a known extension are read as plain text.
func ParseParagraphs(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	p := parserFor(path)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	paras, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return paras, nil
}

func parserFor(path string) Parser {
	for _, p := range registry {
		if p.CanParse(path) {
			return p
		}
	}
	if ext := filepath.Ext(path); ext == "" || strings.EqualFold(ext, ".text") {
		return txtParser{}
	}
	return nil
}

// splitBlocks splits plain text into paragraphs at blank lines. Lines inside a
// paragraph are joined with a single space.
func splitBlocks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var (
		out   []string
		lines []string
	)
	flush := func() {
		if len(lines) > 0 {
			out = append(out, strings.Join(lines, " "))
			lines = lines[:0]
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		lines = append(lines, line)
	}
	flush()
	return out
}

func init() {
	Register(txtParser{})
	Register(markdownParser{})
	Register(docxParser{})
}

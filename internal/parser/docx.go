package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

type docxParser struct{}

func (docxParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".docx")
}

// Parse returns the text of every body-level paragraph, blank ones included.
// Tables, text boxes, paragraph properties and deleted revisions are skipped.
func (docxParser) Parse(content []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open document.xml: %w", err)
		}
		defer rc.Close()
		return readBodyParagraphs(rc)
	}
	return nil, errors.New("document.xml not found in DOCX")
}

// skipped elements never contribute paragraph text.
var skipped = map[string]bool{
	"pPr":         true,
	"rPr":         true,
	"del":         true,
	"delText":     true,
	"instrText":   true,
	"txbxContent": true,
	"Fallback":    true,
}

func readBodyParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		stack     []string
		paras     []string
		sb        strings.Builder
		inPara    bool
		skipDepth int // stack depth of the outermost skipped element, 0 if none
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			stack = append(stack, name)
			switch {
			case name == "p" && parent == "body":
				inPara = true
				sb.Reset()
			case !inPara || skipDepth > 0:
			case skipped[name]:
				skipDepth = len(stack)
			case name == "tab":
				sb.WriteByte('\t')
			case name == "br" || name == "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			if skipDepth == len(stack) {
				skipDepth = 0
			}
			name := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if name == "p" && inPara && len(stack) > 0 && stack[len(stack)-1] == "body" {
				paras = append(paras, sb.String())
				inPara = false
			}
		case xml.CharData:
			if inPara && skipDepth == 0 && len(stack) > 0 && stack[len(stack)-1] == "t" {
				sb.Write(t)
			}
		}
	}
	return paras, nil
}

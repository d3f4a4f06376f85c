// Package report turns review records into the proofreading report.
package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/docproof-cli/internal/review"
)

const (
	Title          = "AI Proofreading Report"
	noFeedback     = "No feedback provided."
	highlightColor = "yellow"
)

var (
	summarySeparator = strings.Repeat("=", 50)
	recordSeparator  = strings.Repeat("-", 30)
)

// summaryText is the sentence after the bold "Summary: " label.
func summaryText(s review.Summary) string {
	line := s.Line()
	if s.Failed > 0 {
		line += fmt.Sprintf(" %d paragraphs could not be proofread.", s.Failed)
	}
	return line
}

// feedbackItems drops blank items and a leading "- " the model may have added.
func feedbackItems(feedback []string) []string {
	var out []string
	for _, item := range feedback {
		item = strings.TrimSpace(item)
		item = strings.TrimSpace(strings.TrimPrefix(item, "- "))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Render builds the report document. Records are rendered in slice order and
// numbered from 1.
func Render(records []review.Record, summary review.Summary) *Document {
	d := NewDocument()
	d.AddHeading(Title, 0)
	d.AddParagraph(Run{Text: "Summary: ", Bold: true}, Run{Text: summaryText(summary)})
	d.AddParagraph(Run{Text: summarySeparator})

	for _, r := range records {
		n := r.Index + 1
		d.AddHeading(fmt.Sprintf("Paragraph %d: Original", n), 2)
		d.AddStyled("Quote", Run{Text: r.Original})

		d.AddHeading(fmt.Sprintf("Paragraph %d: Corrected", n), 2)
		corrected := Run{Text: r.Corrected}
		if r.Changed() {
			corrected.Highlight = highlightColor
		}
		d.AddParagraph(corrected)

		d.AddHeading(fmt.Sprintf("Paragraph %d: Feedback", n), 2)
		items := feedbackItems(r.Feedback)
		if len(items) == 0 {
			d.AddParagraph(Run{Text: noFeedback})
		}
		for _, item := range items {
			d.AddBullet(item)
		}
		d.AddParagraph(Run{Text: recordSeparator})
	}
	return d
}

// RenderMarkdown is the Markdown rendering of the same report. Changed
// corrected text is wrapped in ==highlight== marks.
func RenderMarkdown(records []review.Record, summary review.Summary) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", Title)
	fmt.Fprintf(&b, "**Summary:** %s\n\n", summaryText(summary))
	fmt.Fprintf(&b, "%s\n\n", summarySeparator)
	for _, r := range records {
		n := r.Index + 1
		fmt.Fprintf(&b, "## Paragraph %d: Original\n\n", n)
		for _, line := range strings.Split(r.Original, "\n") {
			fmt.Fprintf(&b, "> %s\n", line)
		}
		fmt.Fprintf(&b, "\n## Paragraph %d: Corrected\n\n", n)
		fmt.Fprintf(&b, "%s\n\n", markdownCorrected(r))
		fmt.Fprintf(&b, "## Paragraph %d: Feedback\n\n", n)
		items := feedbackItems(r.Feedback)
		if len(items) == 0 {
			fmt.Fprintf(&b, "%s\n", noFeedback)
		}
		for _, item := range items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		fmt.Fprintf(&b, "\n%s\n\n", recordSeparator)
	}
	return []byte(b.String())
}

// markdownCorrected highlights changed text line by line, since a ==mark==
// span cannot cross a line break.
func markdownCorrected(r review.Record) string {
	if !r.Changed() {
		return r.Corrected
	}
	lines := strings.Split(r.Corrected, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = "==" + line + "=="
		}
	}
	return strings.Join(lines, "\n")
}

type jsonReport struct {
	Title   string          `json:"title"`
	Summary jsonSummary     `json:"summary"`
	Records []review.Record `json:"records"`
}

type jsonSummary struct {
	review.Summary
	Line string `json:"line"`
}

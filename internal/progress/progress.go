// Package progress renders a one-line progress bar for paragraph processing.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

const (
	label    = "Proofreading paragraphs"
	barWidth = 30
)

// Terminal redraws a single status line on every update.
type Terminal struct {
	out   io.Writer
	bar   *color.Color
	count *color.Color
}

// NewTerminal writes to stderr so the bar never mixes with report output.
func NewTerminal() *Terminal { return NewTerminalTo(os.Stderr) }

func NewTerminalTo(w io.Writer) *Terminal {
	return &Terminal{
		out:   w,
		bar:   color.New(color.FgGreen),
		count: color.New(color.FgCyan, color.Bold),
	}
}

func (t *Terminal) Start(total int) { t.Advance(0, total) }

func (t *Terminal) Advance(done, total int) {
	fmt.Fprintf(t.out, "\r%s: %s [%s]", label, t.count.Sprintf("%d/%d", done, total), t.bar.Sprint(Bar(done, total, barWidth)))
}

func (t *Terminal) Finish() { fmt.Fprintln(t.out) }

// Bar returns a fixed-width bar of '#' and ' '.
func Bar(done, total, width int) string {
	filled := width
	if total > 0 {
		filled = done * width / total
	}
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("#", filled) + strings.Repeat(" ", width-filled)
}

// Noop discards progress updates.
type Noop struct{}

func (Noop) Start(int)        {}
func (Noop) Advance(int, int) {}
func (Noop) Finish()          {}

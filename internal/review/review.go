// Package review runs every paragraph of a document through the proofreader
// and collects one Record per non-blank paragraph.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/KaramelBytes/docproof-cli/internal/ai"
	"github.com/KaramelBytes/docproof-cli/internal/chunk"
	cfgpkg "github.com/KaramelBytes/docproof-cli/internal/config"
	"github.com/KaramelBytes/docproof-cli/internal/proofread"
	"github.com/KaramelBytes/docproof-cli/internal/tokens"
)

// minTextBudget is the smallest text allowance a request budget may leave.
// Anything less would split paragraphs word by word.
const minTextBudget = 64

// Record is the outcome for one non-blank paragraph.
type Record struct {
	Index     int      `json:"index"`
	Original  string   `json:"original"`
	Corrected string   `json:"corrected"`
	Feedback  []string `json:"feedback"`
	HadError  bool     `json:"had_error"`
	Chunks    int      `json:"chunks"`
}

// Changed reports whether the proofreader altered the paragraph.
func (r Record) Changed() bool { return r.Corrected != r.Original }

// Proofer corrects a single piece of text.
type Proofer interface {
	Proofread(ctx context.Context, text string) proofread.Result
}

// Estimator counts tokens for a model.
type Estimator interface {
	Estimate(text, model string) int
}

// Progress receives per-paragraph progress. It has no effect on processing.
type Progress interface {
	Start(total int)
	Advance(done, total int)
	Finish()
}

type Options struct {
	Model               string
	MaxTokensPerRequest int
	Logger              *zap.Logger
	Progress            Progress
}

// FatalError aborts a run before any record is produced.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return fmt.Sprintf("first request failed: %v", e.Err) }

func (e *FatalError) Unwrap() error { return e.Err }

type Processor struct {
	proofer Proofer
	est     Estimator
	opts    Options
	log     *zap.Logger
	usage   ai.Usage
}

func NewProcessor(p Proofer, est Estimator, opts Options) *Processor {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Progress == nil {
		opts.Progress = noProgress{}
	}
	return &Processor{proofer: p, est: est, opts: opts, log: log}
}

// Usage returns the token usage accumulated by Process.
func (p *Processor) Usage() ai.Usage { return p.usage }

// TextBudget is the largest paragraph, in tokens, sent in a single request:
// the request budget minus the fixed prompt overhead. A budget that leaves less
// than minTextBudget tokens for the text is a configuration error.
func (p *Processor) TextBudget() (int, error) {
	overhead := proofread.Overhead(p.count)
	budget := p.opts.MaxTokensPerRequest - overhead
	if budget < minTextBudget {
		msg := fmt.Sprintf("%d leaves %d tokens for text after the %d-token prompt",
			p.opts.MaxTokensPerRequest, budget, overhead)
		return 0, &cfgpkg.ConfigError{
			Field: "max_tokens_per_request",
			Msg:   msg,
			Hint:  fmt.Sprintf("set MAX_TOKENS_PER_API_REQUEST to at least %d", overhead+minTextBudget),
		}
	}
	return budget, nil
}

func (p *Processor) count(s string) int { return p.est.Estimate(s, p.opts.Model) }

// Process proofreads paragraphs in order. Blank paragraphs are skipped, so
// Record.Index counts non-blank paragraphs only.
func (p *Processor) Process(ctx context.Context, paragraphs []string) ([]Record, error) {
	var texts []string
	for _, para := range paragraphs {
		if strings.TrimSpace(para) != "" {
			texts = append(texts, para)
		}
	}
	budget, err := p.TextBudget()
	if err != nil {
		return nil, err
	}
	p.log.Debug("processing paragraphs",
		zap.Int("paragraphs", len(paragraphs)), zap.Int("non_blank", len(texts)), zap.Int("text_budget", budget))

	p.opts.Progress.Start(len(texts))
	defer p.opts.Progress.Finish()

	records := make([]Record, 0, len(texts))
	first := true
	for i, text := range texts {
		rec, err := p.processOne(ctx, i, text, budget, &first)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		p.opts.Progress.Advance(i+1, len(texts))
	}
	return records, nil
}

func (p *Processor) processOne(ctx context.Context, index int, text string, budget int, first *bool) (Record, error) {
	rec := Record{Index: index, Original: text}
	chunks := chunk.Split(text, budget, p.count)
	rec.Chunks = len(chunks)
	if len(chunks) > 1 {
		p.log.Info("paragraph exceeds request budget, splitting",
			zap.Int("paragraph", index+1),
			zap.Int("tokens", p.count(text)),
			zap.Int("chunks", len(chunks)),
			zap.String("preview", tokens.Truncate(text, 25)))
	}

	parts := make([]string, 0, len(chunks))
	var failures []string
	for ci, c := range chunks {
		res := p.proofer.Proofread(ctx, c.Text)
		p.usage.Add(res.Usage)
		if *first {
			*first = false
			if res.HadError && isFatal(res.Err) {
				return Record{}, &FatalError{Err: res.Err}
			}
		}
		if res.HadError {
			reason := "unknown error"
			if res.Err != nil {
				reason = res.Err.Error()
			}
			if len(chunks) > 1 {
				failures = append(failures, fmt.Sprintf("Error: chunk %d/%d: %s", ci+1, len(chunks), reason))
			} else {
				failures = append(failures, res.Feedback...)
			}
			continue
		}
		parts = append(parts, res.Corrected)
		rec.Feedback = append(rec.Feedback, res.Feedback...)
	}

	if len(failures) > 0 {
		p.log.Warn("paragraph could not be proofread",
			zap.Int("paragraph", index+1), zap.Strings("errors", failures))
		rec.HadError = true
		rec.Corrected = text
		rec.Feedback = failures
		return rec, nil
	}
	rec.Corrected = chunk.Join(parts, chunks)
	if rec.Feedback == nil {
		rec.Feedback = []string{}
	}
	return rec, nil
}

// isFatal reports whether a failure on the first request of a run means the
// setup is broken rather than the paragraph.
func isFatal(err error) bool {
	return ai.IsConfiguration(err) || errors.Is(err, proofread.ErrBudgetExhausted)
}

type noProgress struct{}

func (noProgress) Start(int)        {}
func (noProgress) Advance(int, int) {}
func (noProgress) Finish()          {}

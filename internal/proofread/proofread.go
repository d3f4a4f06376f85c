// Package proofread asks a completion runtime to correct one piece of text and
// retries transient failures inside a wall-clock budget.
package proofread

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/KaramelBytes/docproof-cli/internal/ai"
	"github.com/KaramelBytes/docproof-cli/internal/tokens"
)

// ErrBudgetExhausted is wrapped into the result error when retries ran out of time.
var ErrBudgetExhausted = errors.New("retry budget exhausted")

const (
	DefaultRetryBudget = 60 * time.Second
	DefaultBaseDelay   = time.Second
	DefaultMaxDelay    = 30 * time.Second
	jitterFraction     = 0.2
)

type Options struct {
	Model       string
	Temperature float64
	RetryBudget time.Duration
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Logger      *zap.Logger
}

// Result is the outcome of one Proofread call. When HadError is set,
// Corrected is the input text and Feedback carries the failure reason.
type Result struct {
	Corrected string
	Feedback  []string
	HadError  bool
	Err       error
	Attempts  int
	Usage     ai.Usage
}

type Proofreader struct {
	rt   ai.Runtime
	opts Options
	log  *zap.Logger

	now    func() time.Time
	sleep  func(context.Context, time.Duration) error
	jitter func() float64
}

func New(rt ai.Runtime, opts Options) *Proofreader {
	if opts.RetryBudget <= 0 {
		opts.RetryBudget = DefaultRetryBudget
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = DefaultBaseDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = DefaultMaxDelay
	}
	if opts.MaxDelay < opts.BaseDelay {
		opts.MaxDelay = opts.BaseDelay
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Proofreader{
		rt:     rt,
		opts:   opts,
		log:    log,
		now:    time.Now,
		sleep:  sleepContext,
		jitter: rand.Float64,
	}
}

// Proofread corrects text. It never returns an error: failures come back as a
// Result with HadError set.
func (p *Proofreader) Proofread(ctx context.Context, text string) Result {
	deadline := p.now().Add(p.opts.RetryBudget)
	var (
		usage ai.Usage
		wait  time.Duration
	)
	for attempt := 1; ; attempt++ {
		remaining := deadline.Sub(p.now())
		if remaining <= 0 {
			return p.fail(text, fmt.Errorf("%w before attempt %d", ErrBudgetExhausted, attempt), attempt-1, usage)
		}
		callCtx, cancel := context.WithTimeout(ctx, remaining)
		edit, u, err := p.attempt(callCtx, text)
		cancel()
		usage.Add(u)
		if err == nil {
			p.log.Debug("proofread ok", zap.Int("attempts", attempt), zap.Int("feedback_items", len(edit.Feedback)))
			return Result{Corrected: edit.Corrected, Feedback: edit.Feedback, Attempts: attempt, Usage: usage}
		}
		if !retryable(err) || ctx.Err() != nil {
			return p.fail(text, err, attempt, usage)
		}
		next := p.backoff(attempt, wait, err)
		if p.now().Add(next).After(deadline) {
			return p.fail(text, fmt.Errorf("%w after %d attempts: %w", ErrBudgetExhausted, attempt, err), attempt, usage)
		}
		p.log.Debug("retrying proofread request",
			zap.Int("attempt", attempt), zap.Duration("wait", next), zap.Error(err))
		if serr := p.sleep(ctx, next); serr != nil {
			return p.fail(text, serr, attempt, usage)
		}
		wait = next
	}
}

func (p *Proofreader) attempt(ctx context.Context, text string) (Edit, ai.Usage, error) {
	resp, err := p.rt.Generate(ctx, ai.GenerateRequest{
		Model: p.opts.Model,
		Messages: []ai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(text)},
		},
		Temperature:    p.opts.Temperature,
		ResponseFormat: &ai.ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return Edit{}, ai.Usage{}, err
	}
	edit, err := parseEdit(resp.Content())
	if err != nil {
		p.log.Debug("unparseable completion",
			zap.String("request_id", resp.RequestID), zap.String("content", tokens.Truncate(resp.Content(), 64)))
	}
	return edit, resp.Usage, err
}

// backoff returns the wait before the next attempt: base doubled per attempt,
// jittered by ±20%, capped at MaxDelay, raised to Retry-After and never below prev.
func (p *Proofreader) backoff(attempt int, prev time.Duration, err error) time.Duration {
	d := p.opts.MaxDelay
	if attempt < 32 {
		if exp := p.opts.BaseDelay << (attempt - 1); exp > 0 && exp < d {
			d = exp
		}
	}
	d = time.Duration(math.Round(float64(d) * (1 - jitterFraction + 2*jitterFraction*p.jitter())))
	if d > p.opts.MaxDelay {
		d = p.opts.MaxDelay
	}
	var rl *ai.RateLimitError
	if errors.As(err, &rl) && rl.RetryAfter > d {
		d = rl.RetryAfter
	}
	if d < prev {
		d = prev
	}
	return d
}

func (p *Proofreader) fail(text string, err error, attempts int, usage ai.Usage) Result {
	p.log.Warn("proofread failed, keeping original text",
		zap.Int("attempts", attempts), zap.Error(err))
	return Result{
		Corrected: text,
		Feedback:  []string{"Error: " + err.Error()},
		HadError:  true,
		Err:       err,
		Attempts:  attempts,
		Usage:     usage,
	}
}

// retryable covers transient API errors, malformed replies and connection
// failures. A dead endpoint is still fatal for the run once the first request
// has spent its budget on it.
func retryable(err error) bool {
	var (
		mal *MalformedResponseError
		unr *ai.UnreachableError
	)
	return ai.IsTransient(err) || errors.As(err, &mal) || errors.As(err, &unr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/docproof-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/docproof-cli/internal/config"
	"github.com/KaramelBytes/docproof-cli/internal/proofread"
	"github.com/KaramelBytes/docproof-cli/internal/tokens"
)

type heuristicEstimator struct{}

func (heuristicEstimator) Estimate(text, _ string) int { return tokens.Heuristic(text) }

type fakeProofer struct {
	fn    func(text string) proofread.Result
	calls []string
}

func (f *fakeProofer) Proofread(_ context.Context, text string) proofread.Result {
	f.calls = append(f.calls, text)
	return f.fn(text)
}

func echo(text string) proofread.Result {
	return proofread.Result{Corrected: text, Feedback: []string{}, Attempts: 1, Usage: ai.Usage{TotalTokens: 3}}
}

func failed(text string, err error) proofread.Result {
	return proofread.Result{Corrected: text, Feedback: []string{"Error: " + err.Error()}, HadError: true, Err: err}
}

type recordingProgress struct {
	started  int
	advances []int
	finished bool
}

func (r *recordingProgress) Start(total int)         { r.started = total }
func (r *recordingProgress) Advance(done, total int) { r.advances = append(r.advances, done) }
func (r *recordingProgress) Finish()                 { r.finished = true }

func newTestProcessor(p Proofer, progress Progress) *Processor {
	return NewProcessor(p, heuristicEstimator{}, Options{
		Model:               "test-model",
		MaxTokensPerRequest: 4000,
		Progress:            progress,
	})
}

func TestProcessSkipsBlankAndKeepsOrder(t *testing.T) {
	fp := &fakeProofer{fn: func(text string) proofread.Result {
		if text == "This is the orginal text with some erors." {
			return proofread.Result{
				Corrected: "This is the original text with some errors.",
				Feedback:  []string{"Fixed spelling: orginal -> original", "Fixed spelling: erors -> errors"},
			}
		}
		return echo(text)
	}}
	prog := &recordingProgress{}
	proc := newTestProcessor(fp, prog)

	paras := []string{"This is the orginal text with some erors.", "", "   ", "Second paragraph is fine."}
	records, err := proc.Process(context.Background(), paras)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 0, records[0].Index)
	assert.Equal(t, paras[0], records[0].Original)
	assert.True(t, records[0].Changed())
	assert.Len(t, records[0].Feedback, 2)

	assert.Equal(t, 1, records[1].Index)
	assert.Equal(t, paras[3], records[1].Original)
	assert.False(t, records[1].Changed())
	assert.Equal(t, 1, records[1].Chunks)

	assert.Equal(t, 2, prog.started)
	assert.Equal(t, []int{1, 2}, prog.advances)
	assert.True(t, prog.finished)

	s := Summarize(records)
	assert.Equal(t, Summary{Total: 2, Corrected: 1}, s)
	assert.Equal(t, "Processed 2 paragraphs. 1 paragraphs had corrections.", s.Line())
}

func longParagraph(sentences int) string {
	var sb strings.Builder
	for i := 0; i < sentences; i++ {
		if i > 0 {
			sb.WriteString("  ")
		}
		fmt.Fprintf(&sb, "Sentence number %d talks about the quarterly report and its many appendices.", i+1)
	}
	return sb.String()
}

// tightOptions leaves exactly minTextBudget tokens for paragraph text.
func tightOptions() Options {
	return Options{Model: "test-model", MaxTokensPerRequest: proofread.Overhead(tokens.Heuristic) + minTextBudget}
}

func TestProcessChunksLongParagraphAndReassembles(t *testing.T) {
	fp := &fakeProofer{fn: echo}
	proc := NewProcessor(fp, heuristicEstimator{}, tightOptions())
	budget, err := proc.TextBudget()
	require.NoError(t, err)
	require.Equal(t, minTextBudget, budget)

	text := longParagraph(40)
	records, err := proc.Process(context.Background(), []string{text})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Greater(t, rec.Chunks, 1)
	assert.Len(t, fp.calls, rec.Chunks)
	for _, c := range fp.calls {
		assert.LessOrEqual(t, tokens.Heuristic(c), minTextBudget)
	}
	assert.Equal(t, strings.Join(strings.Fields(text), " "), strings.Join(strings.Fields(rec.Corrected), " "))
	assert.False(t, rec.HadError)
	assert.Equal(t, rec.Chunks*3, proc.Usage().TotalTokens)
}

func TestProcessChunkFailureMarksWholeRecord(t *testing.T) {
	n := 0
	fp := &fakeProofer{fn: func(text string) proofread.Result {
		n++
		if n == 2 {
			return failed(text, &ai.ServerError{APIError: &ai.APIError{StatusCode: 502, Message: "bad gateway"}})
		}
		return proofread.Result{Corrected: strings.ToUpper(text), Feedback: []string{"shouted"}}
	}}
	proc := NewProcessor(fp, heuristicEstimator{}, tightOptions())

	text := longParagraph(40)
	records, err := proc.Process(context.Background(), []string{text})
	require.NoError(t, err)
	rec := records[0]
	assert.True(t, rec.HadError)
	assert.Equal(t, text, rec.Corrected)
	require.Len(t, rec.Feedback, 1)
	assert.True(t, strings.HasPrefix(rec.Feedback[0], fmt.Sprintf("Error: chunk 2/%d: ", rec.Chunks)), rec.Feedback[0])
	assert.Equal(t, Summary{Total: 1, Failed: 1}, Summarize(records))
}

func TestProcessFailureContinues(t *testing.T) {
	bad := &ai.BadRequestError{APIError: &ai.APIError{StatusCode: 400, Message: "nope"}}
	fp := &fakeProofer{fn: func(text string) proofread.Result {
		if text == "second" {
			return failed(text, bad)
		}
		return proofread.Result{Corrected: text + "!", Feedback: []string{"added emphasis"}}
	}}
	proc := newTestProcessor(fp, nil)

	records, err := proc.Process(context.Background(), []string{"first", "second", "third"})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.False(t, records[0].HadError)
	assert.True(t, records[1].HadError)
	assert.Equal(t, "second", records[1].Corrected)
	assert.Equal(t, []string{"Error: bad request: " + bad.APIError.Error()}, records[1].Feedback)
	assert.Equal(t, "third!", records[2].Corrected)
	assert.Equal(t, Summary{Total: 3, Corrected: 2, Failed: 1}, Summarize(records))
}

func TestProcessFirstRequestConfigurationErrorIsFatal(t *testing.T) {
	auth := &ai.AuthError{APIError: &ai.APIError{StatusCode: 401, Message: "invalid key"}}
	fp := &fakeProofer{fn: func(text string) proofread.Result { return failed(text, auth) }}
	proc := newTestProcessor(fp, nil)

	records, err := proc.Process(context.Background(), []string{"", "one", "two"})
	require.Error(t, err)
	assert.Nil(t, records)
	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	var ae *ai.AuthError
	assert.True(t, errors.As(err, &ae))
	assert.Len(t, fp.calls, 1)
}

func TestProcessFirstRequestBudgetExhaustionIsFatal(t *testing.T) {
	exhausted := fmt.Errorf("%w after 4 attempts: timeout", proofread.ErrBudgetExhausted)
	fp := &fakeProofer{fn: func(text string) proofread.Result { return failed(text, exhausted) }}
	proc := newTestProcessor(fp, nil)

	_, err := proc.Process(context.Background(), []string{"one", "two"})
	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
}

func TestProcessLaterBudgetExhaustionIsNotFatal(t *testing.T) {
	exhausted := fmt.Errorf("%w after 4 attempts: timeout", proofread.ErrBudgetExhausted)
	fp := &fakeProofer{fn: func(text string) proofread.Result {
		if text == "two" {
			return failed(text, exhausted)
		}
		return echo(text)
	}}
	proc := newTestProcessor(fp, nil)

	records, err := proc.Process(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[1].HadError)
}

func TestTextBudget(t *testing.T) {
	proc := newTestProcessor(&fakeProofer{fn: echo}, nil)
	overhead := proofread.Overhead(tokens.Heuristic)
	budget, err := proc.TextBudget()
	require.NoError(t, err)
	assert.Equal(t, 4000-overhead, budget)
}

func TestProcessSendsParagraphWithinBudgetWhole(t *testing.T) {
	fp := &fakeProofer{fn: echo}
	proc := newTestProcessor(fp, nil)
	budget, err := proc.TextBudget()
	require.NoError(t, err)

	text := longParagraph(140)
	n := tokens.Heuristic(text)
	require.Greater(t, n, budget/2)
	require.LessOrEqual(t, n, budget)

	records, err := proc.Process(context.Background(), []string{text})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].Chunks)
	assert.Equal(t, []string{text}, fp.calls)
}

func TestProcessRequestBudgetBelowOverheadIsConfigError(t *testing.T) {
	fp := &fakeProofer{fn: echo}
	opts := tightOptions()
	opts.MaxTokensPerRequest--
	proc := NewProcessor(fp, heuristicEstimator{}, opts)

	records, err := proc.Process(context.Background(), []string{"one"})
	assert.Nil(t, records)
	var ce *cfgpkg.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "max_tokens_per_request", ce.Field)
	assert.Contains(t, ce.Hint, fmt.Sprint(opts.MaxTokensPerRequest+1))
	assert.Empty(t, fp.calls)
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/docproof-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/docproof-cli/internal/config"
	"github.com/KaramelBytes/docproof-cli/internal/parser"
	"github.com/KaramelBytes/docproof-cli/internal/progress"
	"github.com/KaramelBytes/docproof-cli/internal/proofread"
	"github.com/KaramelBytes/docproof-cli/internal/report"
	"github.com/KaramelBytes/docproof-cli/internal/review"
	"github.com/KaramelBytes/docproof-cli/internal/tokens"
)

// runProofread is the default command: load, proofread, write the report.
func runProofread(ctx context.Context, out io.Writer) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	rt, provider, err := newRuntime(s)
	if err != nil {
		return err
	}
	if quiet {
		out = io.Discard
	}
	return proofreadDocument(ctx, s, rt, provider, out)
}

func proofreadDocument(ctx context.Context, s *cfgpkg.Settings, rt ai.Runtime, provider string, out io.Writer) error {
	runID := uuid.NewString()
	log := logger.With(zap.String("run_id", runID))

	fmt.Fprintf(out, "Starting AI proofreading (run %s)\n", runID)
	fmt.Fprintf(out, "  Input file:  %s\n", s.InputPath)
	fmt.Fprintf(out, "  Output file: %s\n", s.OutputPath)
	fmt.Fprintf(out, "  Model:       %s (%s)\n", s.Model, provider)
	fmt.Fprintln(out, strings.Repeat("-", 50))

	paragraphs, err := parser.ParseParagraphs(s.InputPath)
	if err != nil {
		return err
	}
	// Fail on a locked or read-only output before spending any API calls.
	if err := report.CheckWritable(s.OutputPath); err != nil {
		return err
	}
	nonBlank := 0
	for _, p := range paragraphs {
		if strings.TrimSpace(p) != "" {
			nonBlank++
		}
	}
	if nonBlank == 0 {
		fmt.Fprintf(out, "%s No paragraphs found in '%s'. Nothing to proofread.\n", color.YellowString("⚠"), s.InputPath)
		return nil
	}
	fmt.Fprintf(out, "Loaded %d paragraphs from '%s'.\n", nonBlank, s.InputPath)

	if mi, ok := ai.LookupModel(s.Model); ok && mi.ContextTokens > 0 && s.MaxTokensPerRequest > mi.ContextTokens {
		fmt.Fprintf(out, "%s MAX_TOKENS_PER_API_REQUEST (%d) exceeds the %s context window (%d tokens)\n",
			color.YellowString("⚠"), s.MaxTokensPerRequest, s.Model, mi.ContextTokens)
	}

	est := tokens.NewEstimator(s.ExactTokenizer(), log)
	proofer := proofread.New(rt, proofread.Options{
		Model:       s.Model,
		Temperature: s.Temperature,
		RetryBudget: s.RetryBudget(),
		BaseDelay:   s.RetryBaseDelay(),
		MaxDelay:    s.RetryMaxDelay(),
		Logger:      log,
	})
	var bar review.Progress = progress.Noop{}
	if !quiet {
		bar = progress.NewTerminal()
	}
	proc := review.NewProcessor(proofer, est, review.Options{
		Model:               s.Model,
		MaxTokensPerRequest: s.MaxTokensPerRequest,
		Logger:              log,
		Progress:            bar,
	})

	records, err := proc.Process(ctx, paragraphs)
	if err != nil {
		return err
	}
	summary := review.Summarize(records)
	if err := report.Write(s.OutputPath, records, summary); err != nil {
		return err
	}
	log.Debug("report written", zap.String("path", s.OutputPath), zap.Int("records", len(records)))

	fmt.Fprintf(out, "%s Report saved to '%s'\n", color.GreenString("✓"), s.OutputPath)
	fmt.Fprintf(out, "Summary: %s\n", summary.Line())
	fmt.Fprintf(out, "  %d/%d paragraphs were corrected.\n", summary.Corrected, summary.Total)
	if summary.Failed > 0 {
		fmt.Fprintf(out, "%s %d paragraphs could not be proofread; see the report for details.\n",
			color.YellowString("⚠"), summary.Failed)
	}
	usage := proc.Usage()
	if cost, ok := ai.EstimateCostUSD(s.Model, usage.PromptTokens, usage.CompletionTokens); ok {
		fmt.Fprintf(out, "  Estimated cost: ~$%.4f (%d prompt + %d completion tokens)\n",
			cost, usage.PromptTokens, usage.CompletionTokens)
	} else if usage.TotalTokens > 0 {
		fmt.Fprintf(out, "  Tokens used: %d\n", usage.TotalTokens)
	}
	return nil
}

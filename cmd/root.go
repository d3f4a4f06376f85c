package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/KaramelBytes/docproof-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/docproof-cli/internal/config"
	"github.com/KaramelBytes/docproof-cli/internal/parser"
	"github.com/KaramelBytes/docproof-cli/internal/proofread"
	"github.com/KaramelBytes/docproof-cli/internal/report"
	"github.com/KaramelBytes/docproof-cli/internal/review"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	quiet   bool
	// Overrides for the matching configuration keys
	flagInput    string
	flagOutput   string
	flagModel    string
	flagProvider string

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "docproof",
	Short: "DocProof CLI: AI proofreading for Word documents",
	Long: `DocProof sends every paragraph of a document to a chat-completion model for
grammar and style correction and writes a report with the original text, the
corrected text and itemized feedback.

Configuration comes from the environment (OPENAI_API_KEY, OPENAI_MODEL,
INPUT_DOCX_PATH, OUTPUT_DOCX_PATH, ...), a .env file in the working directory
or ~/.docproof/config.yaml.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initLogger,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProofread(cmd.Context(), cmd.OutOrStdout())
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.docproof/config.yaml)")
	pf.BoolVar(&debug, "debug", false, "enable debug logging")
	pf.BoolVarP(&quiet, "quiet", "q", false, "suppress progress and status output")

	f := rootCmd.Flags()
	f.StringVarP(&flagInput, "input", "i", "", "input document (overrides INPUT_DOCX_PATH)")
	f.StringVarP(&flagOutput, "output", "o", "", "report path; .docx, .md or .json (overrides OUTPUT_DOCX_PATH)")
	f.StringVarP(&flagModel, "model", "m", "", "model name (overrides OPENAI_MODEL)")
	f.StringVar(&flagProvider, "provider", "", "openai, openrouter or ollama (overrides DOCPROOF_PROVIDER)")
}

func initLogger(cmd *cobra.Command, args []string) error {
	if quiet && !debug {
		logger = zap.NewNop()
		return nil
	}
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.DisableStacktrace = true
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = l
	return nil
}

// loadSettings resolves configuration and applies command-line overrides.
func loadSettings() (*cfgpkg.Settings, error) {
	s, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if flagInput != "" {
		s.InputPath = flagInput
	}
	if flagOutput != "" {
		s.OutputPath = flagOutput
	}
	if flagModel != "" {
		s.Model = flagModel
	}
	if flagProvider != "" {
		s.Provider = ai.NormalizeProvider(flagProvider)
	}
	return s, nil
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, color.RedString("✗ Error:"), err)
	if h := hintFor(err); h != "" {
		fmt.Fprintln(w, "  Hint:", h)
	}
}

// hintFor returns a remediation hint for errors the user can fix.
func hintFor(err error) string {
	var (
		ce    *cfgpkg.ConfigError
		we    *report.WriteError
		auth  *ai.AuthError
		nf    *ai.ModelNotFoundError
		unr   *ai.UnreachableError
		quota *ai.QuotaExceededError
	)
	switch {
	case errors.As(err, &ce):
		return ce.Hint
	case errors.As(err, &we):
		return we.Hint()
	case errors.Is(err, parser.ErrNotFound):
		return "check INPUT_DOCX_PATH, or run `docproof sample` to create a draft"
	case errors.Is(err, parser.ErrUnsupported):
		return "use a .docx, .txt or .md input document"
	case errors.As(err, &auth):
		return "check OPENAI_API_KEY"
	case errors.As(err, &nf):
		return "check OPENAI_MODEL; `docproof models` lists known models"
	case errors.As(err, &unr):
		return "check that the endpoint is running (OPENAI_BASE_URL or DOCPROOF_OLLAMA_HOST)"
	case errors.As(err, &quota):
		return "check your plan and billing details with the provider"
	case errors.Is(err, proofread.ErrBudgetExhausted):
		return "the API did not answer within MAX_RETRY_TIME_SECONDS; try again later or raise the limit"
	}
	var fatal *review.FatalError
	if errors.As(err, &fatal) {
		return "the first request failed; check the API key, model and network"
	}
	return ""
}

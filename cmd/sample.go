package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/docproof-cli/internal/report"
	"github.com/KaramelBytes/docproof-cli/internal/utils"
)

const sampleTitle = "Sample Document for AI Proofreading"

// sampleParagraphs contain deliberate mistakes for trying the proofreader.
var sampleParagraphs = []string{
	"This is the frist paragraph of the sample document. It contians some speling errors and grammer mistakes that the AI proofreader should be able to catch and fix.",
	"The secound paragraph has different types of issues. For example, it have subject-verb disagreement, missing commas and some akward phrasing that could be improved.",
	"In this third paragrpah, we're testing whether the AI can identify redundant words words and improve the overall clarity and conciseness of the writting.",
	"The forth paragraph test the AI's ability to catch more subtle errors like incorect word usage (e.g., 'affect' vs 'effect'), improper capitalization, and run-on sentences that should really be broken up into multiple sentences for better readability and comprehension.",
	"Finally the last paragraph deliberately omits punctuation at the end It also has some very long sentences that might benefit from being shortened and simplified for better clarity and reader comprehension which is always important in good writing",
}

var sampleForce bool

var sampleCmd = &cobra.Command{
	Use:   "sample [path]",
	Short: "Write a sample draft with deliberate errors",
	Long:  "Writes a .docx draft with spelling, grammar and punctuation mistakes. The default path is the configured input path (INPUT_DOCX_PATH).",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			path = s.InputPath
		}
		if utils.FileExists(path) && !sampleForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		data, err := sampleDocument().Bytes()
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(path); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
		if err := utils.SafeWriteFile(path, data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Sample document '%s' created with %d paragraphs of intentional errors.\n", path, len(sampleParagraphs))
		return nil
	},
}

func sampleDocument() *report.Document {
	d := report.NewDocument()
	d.AddHeading(sampleTitle, 0)
	for _, p := range sampleParagraphs {
		d.AddParagraph(report.Run{Text: p})
	}
	return d
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	sampleCmd.Flags().BoolVarP(&sampleForce, "force", "f", false, "overwrite an existing file")
}

package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/KaramelBytes/docproof-cli/internal/ai"
	"github.com/spf13/cobra"
)

var modelsJSON bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Show the model catalog used for budget warnings and cost estimates",
	Example: `  docproof models
  docproof models --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := ai.Catalog()
		keys := make([]string, 0, len(cat))
		for k := range cat {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := cmd.OutOrStdout()
		if modelsJSON {
			list := make([]ai.ModelInfo, 0, len(keys))
			for _, k := range keys {
				list = append(list, cat[k])
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "MODEL\tCONTEXT\tINPUT $/1K\tOUTPUT $/1K")
		for _, k := range keys {
			mi := cat[k]
			fmt.Fprintf(tw, "%s\t%d\t%.5f\t%.5f\n", mi.Name, mi.ContextTokens, mi.InputPerK, mi.OutputPerK)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "print the catalog as JSON")
}

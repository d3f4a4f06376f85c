package cmd

import (
	"fmt"

	cfgpkg "github.com/KaramelBytes/docproof-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set DocProof configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, key := range cfgpkg.Keys() {
			v, _ := s.Get(key)
			if key == "api_key" {
				v = mask(v)
			}
			fmt.Fprintf(out, "%s: %s\n", key, v)
		}
		if err := s.Validate(); err != nil {
			fmt.Fprintf(out, "\n⚠ %v\n", err)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Start from the file alone so environment values are not persisted.
		s, err := cfgpkg.LoadFrom(cfgFile, "")
		if err != nil {
			return err
		}
		if err := s.Set(key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(s, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}

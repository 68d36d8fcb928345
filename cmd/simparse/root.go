package main

import (
	"github.com/spf13/cobra"

	"dorfbook/simparse/pkg/cli"
	"dorfbook/simparse/pkg/config"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "simparse",
	Short: "simparse - dorfbook simulation rule language tools",
	Long: `simparse reads the dorfbook rule language: markdown-like documents where
each "###" heading starts a rule, a "> " line describes it, and indented bind
lines list the tags an entity must have, must lack, gains and loses.

It parses and lints rule files from the command line and serves the same
parser over HTTP, together with a watched rule library and a parse history.`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads --config with SIMPARSE_* environment overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	return cfg, nil
}

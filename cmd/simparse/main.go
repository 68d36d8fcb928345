// simparse parses, lints and serves dorfbook simulation rule documents.
//
// Usage:
//
//	# Parse a rule file and print it as JSON
//	simparse parse rules/social.md
//
//	# Parse from stdin as YAML
//	cat rules/social.md | simparse parse - --format yaml
//
//	# Lint a rule directory
//	simparse lint --dir rules/ --strict
//
//	# Run the HTTP service
//	simparse serve --config config.yaml
//
//	# Inspect recent parses
//	simparse history list --limit 20
package main

import (
	"fmt"
	"os"

	"dorfbook/simparse/pkg/cli"
)

func main() {
	err := rootCmd.Execute()
	code, report := cli.ExitCode(err)
	if report {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(code)
}

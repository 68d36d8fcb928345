package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dorfbook/simparse/pkg/cli"
	"dorfbook/simparse/pkg/library"
	"dorfbook/simparse/pkg/sim/encoding"
	simErrors "dorfbook/simparse/pkg/sim/errors"
	"dorfbook/simparse/pkg/sim/parser"
	"dorfbook/simparse/pkg/sim/validator"
)

var lintFlags struct {
	file     string
	dir      string
	pattern  string
	strict   bool
	format   string
	progress bool
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate rule files",
	Long: `Validate rule files for syntax errors and suspicious rules.

The lint command parses each file and then checks the rule set:
  - duplicate rule titles
  - empty descriptions (warning)
  - tags both required and prohibited, or both added and removed
  - effects that change nothing (warning)
  - entities that appear only after the separator (warning)

Examples:
  # Lint single file
  simparse lint --file rules/social.md

  # Lint a directory tree
  simparse lint --dir rules/

  # Strict mode (warnings as errors)
  simparse lint --dir rules/ --strict

  # JSON output for CI
  simparse lint --dir rules/ --format json`,
	RunE: lintRules,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "rule file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of rule files")
	lintCmd.Flags().StringVar(&lintFlags.pattern, "pattern", "", "file name pattern inside --dir (default from config)")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json, yaml, csv")
	lintCmd.Flags().BoolVar(&lintFlags.progress, "progress", false, "show progress on stderr")
}

// LintResult is the lint outcome for one file.
type LintResult struct {
	File   string           `json:"file" yaml:"file"`
	Valid  bool             `json:"valid" yaml:"valid"`
	Rules  int              `json:"rules" yaml:"rules"`
	Issues []encoding.Issue `json:"issues" yaml:"issues"`
}

// LintReport is the output of the lint command.
type LintReport []LintResult

// Failed reports whether any file is invalid.
func (r LintReport) Failed() bool {
	for _, res := range r {
		if !res.Valid {
			return true
		}
	}
	return false
}

// Header implements cli.Rows.
func (r LintReport) Header() []string {
	return []string{"file", "valid", "severity", "type", "line", "column", "message", "suggestion"}
}

// Rows implements cli.Rows with one row per issue, or one row for a clean
// file.
func (r LintReport) Rows() [][]string {
	var rows [][]string
	for _, res := range r {
		valid := strconv.FormatBool(res.Valid)
		if len(res.Issues) == 0 {
			rows = append(rows, []string{res.File, valid, "", "", "", "", "", ""})
			continue
		}
		for _, is := range res.Issues {
			rows = append(rows, []string{
				res.File, valid, is.Severity, is.Type,
				strconv.Itoa(is.Line), strconv.Itoa(is.Column),
				is.Message, is.Suggestion,
			})
		}
	}
	return rows
}

func (r LintReport) String() string {
	var b strings.Builder
	var errs, warnings int

	for i, res := range r {
		if i > 0 {
			b.WriteString("\n")
		}
		mark := "✓"
		if !res.Valid {
			mark = "✗"
		}
		fmt.Fprintf(&b, "%s %s (%d rules)\n", mark, res.File, res.Rules)
		for _, is := range res.Issues {
			if is.Severity == string(simErrors.SeverityWarning) {
				warnings++
			} else {
				errs++
			}
			fmt.Fprintf(&b, "  %s:%d:%d: %s: %s\n", res.File, is.Line, is.Column, is.Severity, is.Message)
			if is.Suggestion != "" {
				fmt.Fprintf(&b, "    suggestion: %s\n", is.Suggestion)
			}
		}
	}

	fmt.Fprintf(&b, "\n%d files, %d errors, %d warnings", len(r), errs, warnings)
	return b.String()
}

func lintRules(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return cli.NewConfigError("lint", "either --file or --dir must be specified")
	}

	format, err := cli.ParseFormat(lintFlags.format, cli.FormatText, cli.FormatJSON, cli.FormatYAML, cli.FormatCSV)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var files []string
	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}
	if lintFlags.dir != "" {
		pattern := lintFlags.pattern
		if pattern == "" {
			pattern = cfg.Library.Pattern
		}
		matches, err := library.CollectFiles(lintFlags.dir, pattern)
		if err != nil {
			return fmt.Errorf("failed to list rule files: %w", err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no rule files found")
	}

	p := parser.NewParser().
		WithMaxSize(cfg.Parser.MaxFileSize).
		WithContextLines(cfg.Parser.ContextLines)
	v := validator.NewValidator().WithStrictMode(lintFlags.strict || cfg.Parser.StrictLint)

	var progress cli.ProgressReporter = cli.NoProgress{}
	if lintFlags.progress {
		progress = cli.NewProgressReporter(cmd.ErrOrStderr())
	}

	report := make(LintReport, 0, len(files))
	progress.Start(int64(len(files)))
	for i, file := range files {
		report = append(report, lintFile(p, v, file))
		progress.Update(int64(i + 1))
	}
	progress.Finish()

	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	if report.Failed() {
		return cli.NewSilentExit(fmt.Errorf("lint found errors"))
	}
	return nil
}

func lintFile(p *parser.Parser, v *validator.Validator, path string) LintResult {
	result := LintResult{File: path, Valid: true, Issues: []encoding.Issue{}}

	rs, err := p.Parse(path)
	if err != nil {
		result.Valid = false
		var perr *simErrors.Error
		if simErrors.As(err, &perr) {
			result.Issues = append(result.Issues, encoding.NewIssue(perr))
		} else {
			result.Issues = append(result.Issues, encoding.Issue{
				Type:     string(simErrors.ErrorTypeIO),
				Severity: string(simErrors.SeverityError),
				Message:  err.Error(),
				File:     path,
			})
		}
		return result
	}

	result.Rules = rs.Len()
	result.Issues = encoding.NewIssues(v.Lint(rs))
	result.Valid = v.Validate(rs) == nil
	return result
}

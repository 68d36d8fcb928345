package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dorfbook/simparse/pkg/cli"
	"dorfbook/simparse/pkg/config"
	"dorfbook/simparse/pkg/history"
	"dorfbook/simparse/pkg/history/storage"
	"dorfbook/simparse/pkg/sim/ast"
	"dorfbook/simparse/pkg/sim/encoding"
	"dorfbook/simparse/pkg/sim/parser"
)

// stdinSource names documents read from standard input.
const stdinSource = "<stdin>"

var parseFlags struct {
	format string
	record bool
}

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]...",
	Short: "Parse rule documents",
	Long: `Parse rule documents and print the resulting rule set.

With no argument, or "-", the document is read from standard input. Several
files are parsed as one batch and their rules concatenated in argument
order; any failing file fails the batch. A batch that does not parse prints
the format's failure form on stdout (null for JSON), the diagnostic on
stderr and exits with status 1.

Examples:
  # Parse a file as JSON
  simparse parse rules/social.md

  # Merge a rule library into one document
  simparse parse rules/*.md

  # Parse stdin into the text form
  simparse parse - --format text < rules/social.md

  # Also store the outcome in the configured parse history
  simparse parse rules/social.md --record --config config.yaml`,
	Args: cobra.ArbitraryArgs,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseFlags.format, "format", "f", "json", "output format: json, text, yaml")
	parseCmd.Flags().BoolVar(&parseFlags.record, "record", false, "store the outcome in the parse history")
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	enc, err := encoding.Lookup(parseFlags.format)
	if err != nil {
		return cli.NewConfigError("format", err.Error())
	}

	p := parser.NewParser().
		WithMaxSize(cfg.Parser.MaxFileSize).
		WithContextLines(cfg.Parser.ContextLines)

	sources := []string{stdinSource}
	if len(args) > 0 {
		sources = make([]string, len(args))
		for i, arg := range args {
			if arg == "-" {
				arg = stdinSource
			}
			sources[i] = arg
		}
	}
	source := strings.Join(sources, ",")

	start := time.Now()
	data, rs, parseErr := parseSources(p, sources, cmd.InOrStdin())
	duration := time.Since(start)

	if parseFlags.record {
		if err := recordParse(cmd.Context(), cfg, history.NewRecord(history.OriginCLI, source, data, rs, parseErr, duration)); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: parse history not recorded: %v\n", err)
		}
	}

	out := cmd.OutOrStdout()
	if parseErr != nil {
		_ = enc.EncodeFailure(out, parseErr)
		fmt.Fprintln(cmd.ErrOrStderr(), parseErr)
		return cli.NewSilentExit(parseErr)
	}
	return enc.Encode(out, rs)
}

// parseSources reads every named document once, or r for stdin, and
// parses them as one batch. data is the concatenated input, returned for
// hashing even when parsing fails.
func parseSources(p *parser.Parser, sources []string, r io.Reader) ([]byte, *ast.RuleSet, error) {
	docs := make([]parser.Document, 0, len(sources))
	var data []byte

	for _, source := range sources {
		var (
			doc []byte
			err error
		)
		if source == stdinSource {
			doc, err = io.ReadAll(r)
			if err != nil {
				return data, nil, fmt.Errorf("failed to read standard input: %w", err)
			}
		} else if doc, err = p.ReadFile(source); err != nil {
			return data, nil, err
		}
		docs = append(docs, parser.Document{Path: source, Data: doc})
		data = append(data, doc...)
	}

	rs, err := p.ParseDocuments(docs)
	return data, rs, err
}

// recordParse stores one record synchronously; the CLI has no recorder
// goroutine to hand it to.
func recordParse(ctx context.Context, cfg *config.Config, record *history.Record) error {
	if !cfg.History.Enabled {
		return fmt.Errorf("history is disabled in configuration")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := storage.NewFromConfig(&cfg.History)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Store(ctx, record); err != nil {
		return err
	}
	slog.Debug("parse recorded", "id", record.ID, "backend", cfg.History.Backend)
	return nil
}

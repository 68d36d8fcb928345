package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dorfbook/simparse/pkg/cli"
	"dorfbook/simparse/pkg/config"
	"dorfbook/simparse/pkg/history"
	"dorfbook/simparse/pkg/history/export"
	"dorfbook/simparse/pkg/history/retention"
	"dorfbook/simparse/pkg/history/storage"
)

var historyFlags struct {
	limit  int
	offset int
	origin string
	result string
	source string
	since  string
	format string

	days       int
	maxRecords int64
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and prune the parse history",
	Long: `Inspect and prune the parse history kept by "simparse serve".

The history backend is read from the configuration file. Only the sqlite
backend persists between processes.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent parses, newest first",
	Long: `List recent parses, newest first.

Examples:
  # Last 20 parses as a table
  simparse history list --limit 20 --config config.yaml

  # Failed parses from the last day as CSV
  simparse history list --result error --since 24h --format csv`,
	RunE: listHistory,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy once",
	Long: `Delete parse records older than the retention period and trim the history
to its record limit. Flags override the configured retention values.`,
	RunE: pruneHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyPruneCmd)

	historyListCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 0, "maximum records (default from config)")
	historyListCmd.Flags().IntVar(&historyFlags.offset, "offset", 0, "records to skip")
	historyListCmd.Flags().StringVar(&historyFlags.origin, "origin", "", "filter by origin: http, cli, library")
	historyListCmd.Flags().StringVar(&historyFlags.result, "result", "", "filter by result: ok, error")
	historyListCmd.Flags().StringVar(&historyFlags.source, "source", "", "filter by document source")
	historyListCmd.Flags().StringVar(&historyFlags.since, "since", "", "only records newer than a duration (24h) or RFC 3339 time")
	historyListCmd.Flags().StringVar(&historyFlags.format, "format", "table", "output format: table, json, csv")

	historyPruneCmd.Flags().IntVar(&historyFlags.days, "days", 0, "retention period in days (default from config)")
	historyPruneCmd.Flags().Int64Var(&historyFlags.maxRecords, "max-records", 0, "records to keep (default from config)")
}

func openHistory() (*config.Config, history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.History.Enabled {
		return nil, nil, cli.NewConfigError("history.enabled", "parse history is disabled")
	}
	store, err := storage.NewFromConfig(&cfg.History)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history: %w", err)
	}
	return cfg, store, nil
}

func listHistory(cmd *cobra.Command, args []string) error {
	exporter, err := export.New(historyFlags.format)
	if err != nil {
		return cli.NewConfigError("format", err.Error())
	}

	cfg, store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	query := &history.Query{
		Origin: historyFlags.origin,
		Result: historyFlags.result,
		Source: historyFlags.source,
		Limit:  historyFlags.limit,
		Offset: historyFlags.offset,
	}
	if query.Limit <= 0 {
		query.Limit = cfg.History.QueryDefaultLimit
	}
	if historyFlags.since != "" {
		since, err := parseSince(historyFlags.since, time.Now())
		if err != nil {
			return cli.NewConfigError("since", err.Error())
		}
		query.Since = &since
	}

	records, err := store.Query(cmd.Context(), query)
	if err != nil {
		return cli.NewCommandError("history list", err)
	}
	return exporter.Export(cmd.Context(), records, cmd.OutOrStdout())
}

// parseSince accepts a duration back from now or an absolute RFC 3339 time.
func parseSince(s string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return time.Time{}, fmt.Errorf("duration must be positive: %s", s)
		}
		return now.Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected a duration like 24h or an RFC 3339 time: %q", s)
	}
	return t, nil
}

func pruneHistory(cmd *cobra.Command, args []string) error {
	cfg, store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	rcfg := retention.ConfigFrom(cfg.History.Retention)
	if cmd.Flags().Changed("days") {
		rcfg.RetentionDays = historyFlags.days
	}
	if cmd.Flags().Changed("max-records") {
		rcfg.MaxRecords = historyFlags.maxRecords
	}

	pruned, err := retention.NewPruner(store, rcfg, nil).Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("history prune", err)
	}

	remaining, err := store.Count(cmd.Context(), &history.Query{})
	if err != nil {
		return cli.NewCommandError("history prune", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Pruned %d records (%d remaining)\n", pruned, remaining)
	return nil
}

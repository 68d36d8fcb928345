package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dorfbook/simparse/pkg/history"
)

func useSQLiteHistory(t *testing.T) {
	t.Helper()
	db := filepath.Join(t.TempDir(), "history.db")
	useConfig(t, fmt.Sprintf("history:\n  backend: sqlite\n  sqlite:\n    path: %q\n", db))
}

func resetHistoryFlags() {
	historyFlags.limit = 0
	historyFlags.offset = 0
	historyFlags.origin = ""
	historyFlags.result = ""
	historyFlags.source = ""
	historyFlags.since = ""
	historyFlags.format = "table"
	historyFlags.days = 0
	historyFlags.maxRecords = 0
}

func recordParses(t *testing.T, docs ...string) {
	t.Helper()
	resetParseFlags()
	parseFlags.record = true
	defer resetParseFlags()

	for _, doc := range docs {
		_ = runParse(newTestCommand(doc).cmd, nil)
	}
}

func TestHistory_RecordAndList(t *testing.T) {
	useSQLiteHistory(t)
	resetHistoryFlags()
	recordParses(t, validRules, brokenRules, validRules)

	historyFlags.format = "json"
	io := newTestCommand("")
	if err := listHistory(io.cmd, nil); err != nil {
		t.Fatalf("listHistory() error = %v", err)
	}

	var records []*history.Record
	if err := json.Unmarshal(io.stdout.Bytes(), &records); err != nil {
		t.Fatalf("invalid JSON %q: %v", io.stdout.String(), err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	for _, r := range records {
		if r.Origin != history.OriginCLI || r.Source != stdinSource {
			t.Errorf("record = %+v", r)
		}
	}

	historyFlags.result = history.ResultError
	historyFlags.format = "table"
	io = newTestCommand("")
	if err := listHistory(io.cmd, nil); err != nil {
		t.Fatalf("listHistory() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(io.stdout.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "line 6:") {
		t.Errorf("table should list one failure on line 6:\n%s", io.stdout.String())
	}
}

func TestHistory_Prune(t *testing.T) {
	useSQLiteHistory(t)
	resetHistoryFlags()
	recordParses(t, validRules, validRules, validRules)

	io := newTestCommand("")
	if err := historyPruneCmd.Flags().Set("max-records", "1"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { historyPruneCmd.Flags().Lookup("max-records").Changed = false })

	io.cmd = historyPruneCmd
	io.cmd.SetOut(io.stdout)
	io.cmd.SetContext(context.Background())
	t.Cleanup(func() { historyPruneCmd.SetOut(nil) })
	if err := pruneHistory(io.cmd, nil); err != nil {
		t.Fatalf("pruneHistory() error = %v", err)
	}
	if !strings.Contains(io.stdout.String(), "Pruned 2 records (1 remaining)") {
		t.Errorf("output = %q", io.stdout.String())
	}
}

func TestHistory_Disabled(t *testing.T) {
	useConfig(t, "history:\n  enabled: false\n")
	resetHistoryFlags()

	if err := listHistory(newTestCommand("").cmd, nil); err == nil {
		t.Fatal("expected an error when history is disabled")
	}
}

func TestParseSince(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := parseSince("2h", now)
	if err != nil || !got.Equal(now.Add(-2*time.Hour)) {
		t.Errorf("parseSince(2h) = %v, %v", got, err)
	}
	got, err = parseSince("2026-02-01T00:00:00Z", now)
	if err != nil || got.Month() != time.February {
		t.Errorf("parseSince(RFC3339) = %v, %v", got, err)
	}
	for _, bad := range []string{"-1h", "yesterday"} {
		if _, err := parseSince(bad, now); err == nil {
			t.Errorf("parseSince(%q) should fail", bad)
		}
	}
}

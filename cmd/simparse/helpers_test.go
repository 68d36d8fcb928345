package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

const validRules = `### Hoarding
> {hoarder} keeps {thing}
	hoarder +greedy -generous
	thing -owned
	->
	hoarder +rich
	thing +owned
`

const brokenRules = `### Double separator
> {a} twice
	a +x
	->
	a -x
	->
	a +y
`

type testIO struct {
	cmd    *cobra.Command
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestCommand(stdin string) *testIO {
	cmd := &cobra.Command{}
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetContext(context.Background())
	return &testIO{cmd: cmd, stdout: stdout, stderr: stderr}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// useConfig points the global --config flag at a file for one test.
func useConfig(t *testing.T, content string) {
	t.Helper()
	path := ""
	if content != "" {
		path = writeFile(t, t.TempDir(), "config.yaml", content)
	}
	prev, prevVerbose := cfgFile, verbose
	cfgFile, verbose = path, false
	t.Cleanup(func() { cfgFile, verbose = prev, prevVerbose })
}

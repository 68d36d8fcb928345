//go:build integration

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

// TestServeEndToEnd builds the binary, serves a rule library and parses a
// document over HTTP, then stops the server with SIGINT.
func TestServeEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	tmpDir := t.TempDir()
	rulesDir := filepath.Join(tmpDir, "rules")
	writeFile(t, rulesDir, "hoarding.md", validRules)

	addr := freeAddress(t)
	configFile := writeFile(t, tmpDir, "config.yaml", fmt.Sprintf(`
server:
  listen_address: %q
library:
  enabled: true
  dir: %q
history:
  backend: sqlite
  sqlite:
    path: %q
telemetry:
  logging:
    level: warn
`, addr, rulesDir, filepath.Join(tmpDir, "history.db")))

	binaryPath := buildBinary(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binaryPath, "serve", "--config", configFile)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	defer func() {
		if cmd.ProcessState == nil {
			_ = cmd.Process.Kill()
		}
	}()

	baseURL := "http://" + addr
	if !waitForHealthy(baseURL+"/ready", 10*time.Second) {
		t.Fatalf("server never became ready\nstdout: %s\nstderr: %s", stdout.String(), stderr.String())
	}

	resp, err := http.Post(baseURL+"/sim_parse?format=json", "text/markdown", strings.NewReader(validRules))
	if err != nil {
		t.Fatalf("parse request: %v", err)
	}
	var doc struct {
		Rules []json.RawMessage `json:"rules"`
	}
	err = json.NewDecoder(resp.Body).Decode(&doc)
	resp.Body.Close()
	if err != nil || len(doc.Rules) != 1 {
		t.Fatalf("parse response: rules=%d err=%v", len(doc.Rules), err)
	}

	resp, err = http.Get(baseURL + "/api/v1/library")
	if err != nil {
		t.Fatalf("library request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("library status = %d", resp.StatusCode)
	}

	if err := cmd.Process.Signal(syscall.SIGINT); err != nil {
		t.Fatalf("signal: %v", err)
	}
	if err := cmd.Wait(); err != nil {
		t.Fatalf("server exited with %v\nstderr: %s", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), "✓ Server stopped") {
		t.Errorf("missing shutdown message:\n%s", stdout.String())
	}
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "simparse")
	t.Log("Building simparse binary...")
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to build simparse: %v\nOutput: %s", err, output)
	}
	return binaryPath
}

func freeAddress(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().String()
}

// waitForHealthy waits for a health endpoint to return 200
func waitForHealthy(url string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 1 * time.Second}

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return true
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return false
}

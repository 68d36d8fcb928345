package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		err  *ConfigError
		want string
	}{
		{NewConfigError("history.backend", "unknown backend"), "config error in history.backend: unknown backend"},
		{NewConfigError("", "file not found"), "config error: file not found"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestCommandError_Unwrap(t *testing.T) {
	base := errors.New("listen failed")
	err := NewCommandError("serve", base)

	if !errors.Is(err, base) {
		t.Error("CommandError should unwrap to its cause")
	}
	if got := err.Error(); got != "command serve failed: listen failed" {
		t.Errorf("Error() = %q", got)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantReport bool
	}{
		{"nil", nil, ExitOK, false},
		{"plain error", errors.New("boom"), ExitFailure, true},
		{"config error", NewConfigError("server", "bad"), ExitUsage, true},
		{"wrapped config error", fmt.Errorf("loading: %w", NewConfigError("server", "bad")), ExitUsage, true},
		{"silent exit", NewSilentExit(errors.New("already printed")), ExitFailure, false},
		{"explicit code", &ExitError{Code: 3, Err: errors.New("x")}, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, report := ExitCode(tt.err)
			if code != tt.wantCode || report != tt.wantReport {
				t.Errorf("ExitCode() = (%d, %v), want (%d, %v)", code, report, tt.wantCode, tt.wantReport)
			}
		})
	}
}

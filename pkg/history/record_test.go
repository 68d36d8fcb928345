package history

import (
	"errors"
	"testing"
	"time"

	"dorfbook/simparse/pkg/sim/ast"
	simErrors "dorfbook/simparse/pkg/sim/errors"
)

func TestNewRecord_Success(t *testing.T) {
	rs := &ast.RuleSet{Rules: []*ast.Rule{
		{Title: "a", Binds: []*ast.Bind{ast.NewBind("x", ast.Location{}), ast.NewBind("y", ast.Location{})}},
		{Title: "b", Binds: []*ast.Bind{ast.NewBind("x", ast.Location{})}},
	}}
	data := []byte("### a\n")

	r := NewRecord(OriginCLI, "rules.md", data, rs, nil, 3*time.Millisecond)

	if r.ID == "" {
		t.Error("expected an id")
	}
	if r.Result != ResultOK || r.Failed() {
		t.Errorf("Result = %q, want ok", r.Result)
	}
	if r.Rules != 2 || r.Binds != 3 {
		t.Errorf("Rules/Binds = %d/%d, want 2/3", r.Rules, r.Binds)
	}
	if r.Bytes != len(data) {
		t.Errorf("Bytes = %d, want %d", r.Bytes, len(data))
	}
	if r.DocumentHash != HashContent(data) {
		t.Error("document hash mismatch")
	}
	if r.Duration != 3*time.Millisecond {
		t.Errorf("Duration = %v", r.Duration)
	}
}

func TestNewRecord_ParseError(t *testing.T) {
	perr := &simErrors.Error{
		Type:     simErrors.ErrorTypeSyntax,
		Severity: simErrors.SeverityError,
		Message:  "expected a description",
		Location: ast.Location{File: "memory://rules", Line: 4},
	}

	r := NewRecord(OriginHTTP, "memory://rules", []byte("### x\n"), nil, perr, 0).WithRequestID("req-1")

	if !r.Failed() {
		t.Fatal("expected failed record")
	}
	if r.ErrorLine != 4 || r.ErrorType != "syntax" || r.ErrorMessage != "expected a description" {
		t.Errorf("unexpected error fields: %+v", r)
	}
	if r.RequestID != "req-1" {
		t.Errorf("RequestID = %q", r.RequestID)
	}
}

func TestNewRecord_OtherError(t *testing.T) {
	r := NewRecord(OriginLibrary, "gone.md", nil, nil, errors.New("no such file"), 0)

	if r.ErrorType != "io" || r.ErrorLine != 0 || r.ErrorMessage != "no such file" {
		t.Errorf("unexpected error fields: %+v", r)
	}
	if r.DocumentHash != "" {
		t.Errorf("empty document should have no hash, got %q", r.DocumentHash)
	}
}

func TestHashContent(t *testing.T) {
	// sha256("abc")
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := HashContent([]byte("abc")); got != want {
		t.Errorf("HashContent = %s, want %s", got, want)
	}

	big := make([]byte, MaxHashSize+10)
	if HashContent(big) != HashContent(big[:MaxHashSize]) {
		t.Error("content beyond MaxHashSize should not affect the hash")
	}
}

func TestStorageError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("sqlite", "store", cause)
	if !errors.Is(err, cause) {
		t.Error("expected StorageError to unwrap to its cause")
	}
	if err.Error() != "storage error [backend=sqlite, operation=store]: disk full" {
		t.Errorf("Error() = %q", err.Error())
	}
}

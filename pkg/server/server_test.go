package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"dorfbook/simparse/pkg/config"
	"dorfbook/simparse/pkg/history"
	"dorfbook/simparse/pkg/history/storage"
	"dorfbook/simparse/pkg/library"
	"dorfbook/simparse/pkg/sim/parser"
	"dorfbook/simparse/pkg/telemetry/metrics"
)

const validDocument = `### Hoarding
> {hoarder}   keeps   {thing}
	hoarder +greedy -generous
	thing -owned
	->
	hoarder +rich
	thing +owned
`

const brokenDocument = `### Double separator
> {a} twice
	a +x
	->
	a -x
	->
	a +y
`

// syncRecorder stores records straight away so tests can query them.
type syncRecorder struct {
	store history.Store
}

func (r *syncRecorder) Record(ctx context.Context, rec *history.Record) error {
	return r.store.Store(ctx, rec)
}

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Server.ListenAddress = "127.0.0.1:0"
	cfg.Server.MaxBodyBytes = 4096
	cfg.Server.ShutdownTimeout = 2 * time.Second
	cfg.Telemetry.Metrics.Namespace = "test"
	cfg.Telemetry.Metrics.Subsystem = "sim"
	return cfg
}

type testEnv struct {
	server  *Server
	store   history.Store
	metrics *metrics.Collector
	handler http.Handler
}

func newTestEnv(t *testing.T, lib *library.Library) *testEnv {
	t.Helper()
	cfg := testConfig()
	store := storage.NewMemoryStorage(100)
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())

	s := NewServer(cfg, Dependencies{
		Library:  lib,
		History:  store,
		Recorder: &syncRecorder{store: store},
		Metrics:  collector,
		Build:    BuildInfo{Version: "test"},
	})
	return &testEnv{server: s, store: store, metrics: collector, handler: s.Handler()}
}

func (e *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestParse_JSON(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/sim_parse", validDocument)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type = %q", ct)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}

	var body struct {
		Rules []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Binds       []struct {
				Entity string `json:"entity"`
			} `json:"binds"`
		} `json:"rules"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Rules) != 1 {
		t.Fatalf("rules = %d, want 1", len(body.Rules))
	}
	if body.Rules[0].Title != "Hoarding" {
		t.Errorf("title = %q", body.Rules[0].Title)
	}
	if len(body.Rules[0].Binds) != 2 {
		t.Errorf("binds = %d, want 2", len(body.Rules[0].Binds))
	}
}

func TestParse_FailureForm(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/sim_parse?format=json", brokenDocument)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "null" {
		t.Errorf("body = %q, want null", got)
	}
	if got := rec.Header().Get(ParseErrorLineHeader); got != "6" {
		t.Errorf("%s = %q, want 6", ParseErrorLineHeader, got)
	}

	records, err := env.store.Query(context.Background(), &history.Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 1 || !records[0].Failed() {
		t.Fatalf("expected one failed history record, got %+v", records)
	}
	if records[0].RequestID == "" {
		t.Error("history record has no request id")
	}
}

func TestParse_TextFormat(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/sim_parse?format=text", validDocument)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Hoarding") {
		t.Errorf("text output missing title: %q", rec.Body.String())
	}
}

func TestParse_UnknownFormat(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/sim_parse?format=xml", validDocument)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Type != ErrorTypeInvalidRequest {
		t.Errorf("error type = %q", body.Error.Type)
	}
}

func TestParse_BodyTooLarge(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/sim_parse", strings.Repeat("#", 5000))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}

func TestParse_WrongMethod(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/sim_parse", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestLint(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name       string
		target     string
		body       string
		wantStatus int
		wantValid  bool
		wantIssues bool
	}{
		{"valid document", "/api/v1/lint", validDocument, http.StatusOK, true, false},
		{"parse error", "/api/v1/lint", brokenDocument, http.StatusUnprocessableEntity, false, true},
		{"empty description", "/api/v1/lint?strict=false", "### Quiet\n> \n\ta +x\n", http.StatusOK, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, tt.target, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var body LintResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Valid != tt.wantValid {
				t.Errorf("valid = %v, want %v", body.Valid, tt.wantValid)
			}
			if (len(body.Issues) > 0) != tt.wantIssues {
				t.Errorf("issues = %+v", body.Issues)
			}
		})
	}
}

func TestLint_ParseErrorIssue(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/api/v1/lint?source=broken.md", brokenDocument)
	var body LintResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(body.Issues))
	}
	issue := body.Issues[0]
	if issue.Line != 6 || issue.File != "broken.md" {
		t.Errorf("issue = %+v", issue)
	}
}

func TestLint_InvalidStrict(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/api/v1/lint?strict=maybe", validDocument)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func newTestLibrary(t *testing.T) *library.Library {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hoarding.md"), []byte(validDocument), 0o644); err != nil {
		t.Fatal(err)
	}
	return library.New(&config.LibraryConfig{
		Enabled:  true,
		Dir:      dir,
		Pattern:  "*.md",
		Debounce: 20 * time.Millisecond,
	}, parser.NewParser())
}

func TestLibrary(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		env := newTestEnv(t, nil)
		if rec := env.do(http.MethodGet, "/api/v1/library", ""); rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("not loaded", func(t *testing.T) {
		env := newTestEnv(t, newTestLibrary(t))
		if rec := env.do(http.MethodGet, "/api/v1/library", ""); rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("loaded", func(t *testing.T) {
		lib := newTestLibrary(t)
		if err := lib.Load(context.Background()); err != nil {
			t.Fatalf("load: %v", err)
		}
		env := newTestEnv(t, lib)

		rec := env.do(http.MethodGet, "/api/v1/library", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var doc library.SnapshotDocument
		if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(doc.Files) != 1 || len(doc.Rules) != 1 {
			t.Errorf("files = %d, rules = %d", len(doc.Files), len(doc.Rules))
		}
		if doc.Version != lib.Snapshot().Version {
			t.Errorf("version = %q", doc.Version)
		}

		rec = env.do(http.MethodGet, "/api/v1/library?format=text", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("text status = %d", rec.Code)
		}
		if rec.Header().Get("X-Library-Version") == "" {
			t.Error("missing X-Library-Version")
		}
	})
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t, nil)

	for i := 0; i < 3; i++ {
		env.do(http.MethodPost, "/sim_parse", validDocument)
	}
	env.do(http.MethodPost, "/sim_parse", brokenDocument)

	rec := env.do(http.MethodGet, "/api/v1/history?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body HistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 4 {
		t.Errorf("total = %d, want 4", body.Total)
	}
	if len(body.Records) != 2 || body.Limit != 2 {
		t.Fatalf("records = %d, limit = %d", len(body.Records), body.Limit)
	}
	if body.Records[0].Result != history.ResultError {
		t.Errorf("newest record result = %q, want error", body.Records[0].Result)
	}

	rec = env.do(http.MethodGet, "/api/v1/history?result=error", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 1 {
		t.Errorf("error total = %d, want 1", body.Total)
	}

	rec = env.do(http.MethodGet, "/api/v1/history?format=csv", "")
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 5 {
		t.Errorf("csv lines = %d, want header plus 4", len(lines))
	}
}

func TestHistory_BadQuery(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, target := range []string{
		"/api/v1/history?limit=0",
		"/api/v1/history?offset=-1",
		"/api/v1/history?since=yesterday",
		"/api/v1/history?result=maybe",
	} {
		if rec := env.do(http.MethodGet, target, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestHistory_Disabled(t *testing.T) {
	s := NewServer(testConfig(), Dependencies{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(http.MethodPost, "/sim_parse?source=rules.md", validDocument)

	rec := env.do(http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"test_sim_parses_total",
		"test_sim_http_requests_total",
		`route="POST /sim_parse"`,
		`source="rules.md"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}

func TestProbes(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, target := range []string{"/health", "/ready", "/version"} {
		if rec := env.do(http.MethodGet, target, ""); rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", target, rec.Code)
		}
	}
}

func TestWebsocket_LibraryEvents(t *testing.T) {
	lib := newTestLibrary(t)
	if err := lib.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	env := newTestEnv(t, lib)

	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/library"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var hello library.Event
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read hello: %v", err)
	}
	if hello.Trigger != "connect" || hello.Rules != 1 {
		t.Errorf("hello = %+v", hello)
	}

	if err := lib.Reload(context.Background(), "hoarding.md"); err != nil {
		t.Fatalf("reload: %v", err)
	}

	var event library.Event
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.Type != library.EventReloaded {
		t.Errorf("event type = %q", event.Type)
	}
	if event.Trigger != "hoarding.md" {
		t.Errorf("trigger = %q", event.Trigger)
	}

	if got := env.server.hub.Clients(); got != 1 {
		t.Errorf("clients = %d, want 1", got)
	}
}

func TestWebsocket_NoLibrary(t *testing.T) {
	env := newTestEnv(t, nil)
	if rec := env.do(http.MethodGet, "/ws/library", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestServer_StartShutdown(t *testing.T) {
	s := NewServer(testConfig(), Dependencies{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for !s.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("server did not start")
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Get("http://" + s.Addr() + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("start returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
	if s.IsRunning() {
		t.Error("server still running")
	}
}

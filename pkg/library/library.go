package library

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"dorfbook/simparse/pkg/config"
	"dorfbook/simparse/pkg/history"
	"dorfbook/simparse/pkg/sim/ast"
	simErrors "dorfbook/simparse/pkg/sim/errors"
	"dorfbook/simparse/pkg/sim/parser"
	"dorfbook/simparse/pkg/telemetry/tracing"
)

// Metrics receives reload and per-file parse observations.
type Metrics interface {
	RecordLibraryReload(ok bool, rules, files int)
	RecordParse(origin, result string, duration time.Duration, rules int)
	RecordParseError(errType string)
}

// Recorder receives one history record per parsed file.
type Recorder interface {
	Record(ctx context.Context, record *history.Record) error
}

// Library loads every rule file under a directory into one snapshot and
// keeps it current. A failed reload keeps the previous snapshot.
type Library struct {
	config   *config.LibraryConfig
	parser   *parser.Parser
	logger   *slog.Logger
	tracer   *tracing.Tracer
	metrics  Metrics
	recorder Recorder

	mu       sync.RWMutex
	snapshot *Snapshot
	lastErr  error
	lastLoad time.Time

	subMu       sync.Mutex
	subscribers map[chan Event]struct{}

	watchMu     sync.Mutex
	watchCancel context.CancelFunc
	watchDone   chan struct{}
}

// New creates a library over cfg.Dir. Nothing is read until Load.
func New(cfg *config.LibraryConfig, p *parser.Parser) *Library {
	if p == nil {
		p = parser.NewParser()
	}
	return &Library{
		config:      cfg,
		parser:      p,
		logger:      slog.Default().With("component", "library"),
		tracer:      tracing.Noop(),
		subscribers: make(map[chan Event]struct{}),
	}
}

// WithTracer sets the tracer used for load spans.
func (l *Library) WithTracer(t *tracing.Tracer) *Library {
	if t != nil {
		l.tracer = t
	}
	return l
}

// WithMetrics sets the metrics sink.
func (l *Library) WithMetrics(m Metrics) *Library {
	l.metrics = m
	return l
}

// WithRecorder sets the history sink.
func (l *Library) WithRecorder(r Recorder) *Library {
	l.recorder = r
	return l
}

// Load parses every matching file and swaps in the new snapshot. On any
// failure the previous snapshot stays active and the error is returned.
func (l *Library) Load(ctx context.Context) error {
	return l.load(ctx, "startup")
}

// Reload is Load triggered by a change to path.
func (l *Library) Reload(ctx context.Context, path string) error {
	return l.load(ctx, path)
}

func (l *Library) load(ctx context.Context, trigger string) error {
	ctx, span := l.tracer.Start(ctx, "library.load")
	defer span.End()

	start := time.Now()
	snapshot, err := l.build(ctx)

	l.mu.Lock()
	l.lastLoad = time.Now()
	l.lastErr = err
	if err == nil {
		l.snapshot = snapshot
	}
	l.mu.Unlock()

	event := Event{Trigger: trigger, At: time.Now().UTC()}

	if err != nil {
		tracing.SetError(span, err)
		if l.metrics != nil {
			l.metrics.RecordLibraryReload(false, 0, 0)
		}
		l.logger.Error("library load failed, keeping previous rules",
			"dir", l.config.Dir,
			"trigger", trigger,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		event.Type = EventReloadError
		event.Error = err.Error()
		l.broadcast(event)
		return err
	}

	span.SetAttributes(tracing.AttrLibraryFile.Int(len(snapshot.Files)))
	tracing.SetResultAttributes(span, snapshot.RuleCount(), countBinds(snapshot.Rules))
	if l.metrics != nil {
		l.metrics.RecordLibraryReload(true, snapshot.RuleCount(), len(snapshot.Files))
	}

	l.logger.Info("library loaded",
		"dir", l.config.Dir,
		"trigger", trigger,
		"files", len(snapshot.Files),
		"rules", snapshot.RuleCount(),
		"version", snapshot.Version,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	event.Type = EventReloaded
	event.Version = snapshot.Version
	event.Files = len(snapshot.Files)
	event.Rules = snapshot.RuleCount()
	l.broadcast(event)
	return nil
}

// build parses all files; it stops at the first failing file.
func (l *Library) build(ctx context.Context) (*Snapshot, error) {
	paths, err := CollectFiles(l.config.Dir, l.config.Pattern)
	if err != nil {
		return nil, err
	}

	merged := &ast.RuleSet{Source: l.config.Dir, Rules: []*ast.Rule{}}
	files := make([]FileInfo, 0, len(paths))
	version := sha256.New()

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, rs, err := l.parseFile(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		hash := history.HashContent(data)
		rel, relErr := filepath.Rel(l.config.Dir, path)
		if relErr != nil {
			rel = path
		}
		files = append(files, FileInfo{Path: rel, Hash: hash, Bytes: len(data), Rules: rs.Len()})
		merged.Rules = append(merged.Rules, rs.Rules...)

		fmt.Fprintf(version, "%s\x00%s\x00", rel, hash)
	}

	return &Snapshot{
		Version:  hex.EncodeToString(version.Sum(nil))[:16],
		LoadedAt: time.Now().UTC(),
		Files:    files,
		Rules:    merged,
	}, nil
}

func (l *Library) parseFile(ctx context.Context, path string) ([]byte, *ast.RuleSet, error) {
	start := time.Now()

	data, err := os.ReadFile(path)
	var rs *ast.RuleSet
	if err != nil {
		err = &simErrors.Error{
			Type:     simErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Failed to read file: %v", err),
			Location: ast.Location{File: path},
		}
	} else {
		rs, err = l.parser.ParseBytes(data, path)
	}
	duration := time.Since(start)

	if l.metrics != nil {
		if err != nil {
			var perr *simErrors.Error
			errType := string(simErrors.ErrorTypeIO)
			if simErrors.As(err, &perr) {
				errType = string(perr.Type)
			}
			l.metrics.RecordParse(history.OriginLibrary, history.ResultError, duration, 0)
			l.metrics.RecordParseError(errType)
		} else {
			l.metrics.RecordParse(history.OriginLibrary, history.ResultOK, duration, rs.Len())
		}
	}

	if l.recorder != nil {
		record := history.NewRecord(history.OriginLibrary, path, data, rs, err, duration)
		if recErr := l.recorder.Record(ctx, record); recErr != nil {
			l.logger.Warn("failed to record library parse", "path", path, "error", recErr)
		}
	}

	return data, rs, err
}

// Snapshot returns the active snapshot, or nil before the first
// successful load.
func (l *Library) Snapshot() *Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot
}

// LastError returns the error of the most recent load attempt.
func (l *Library) LastError() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastErr
}

// LastLoadTime returns when the most recent load attempt finished.
func (l *Library) LastLoadTime() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastLoad
}

// HealthCheck fails until a snapshot has been loaded.
func (l *Library) HealthCheck(ctx context.Context) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.snapshot == nil {
		if l.lastErr != nil {
			return fmt.Errorf("library not loaded: %w", l.lastErr)
		}
		return fmt.Errorf("library not loaded")
	}
	return nil
}

// Subscribe returns a channel receiving every subsequent Event and a
// function that unsubscribes and closes it. Slow subscribers miss events
// rather than block reloads.
func (l *Library) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	l.subMu.Lock()
	l.subscribers[ch] = struct{}{}
	l.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.subMu.Lock()
			defer l.subMu.Unlock()
			// Close may already have closed ch.
			if _, ok := l.subscribers[ch]; ok {
				delete(l.subscribers, ch)
				close(ch)
			}
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (l *Library) Subscribers() int {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	return len(l.subscribers)
}

func (l *Library) broadcast(event Event) {
	l.subMu.Lock()
	defer l.subMu.Unlock()

	for ch := range l.subscribers {
		select {
		case ch <- event:
		default:
			l.logger.Warn("library subscriber is slow, dropping event", "type", event.Type)
		}
	}
}

// Watch reloads the library on filesystem changes until ctx is cancelled
// or Close is called. It returns once the watcher is running.
func (l *Library) Watch(ctx context.Context) error {
	l.watchMu.Lock()
	defer l.watchMu.Unlock()

	if l.watchCancel != nil {
		return fmt.Errorf("watch already started")
	}

	watcher, err := NewFileWatcher(&FileWatcherConfig{
		Dir:              l.config.Dir,
		Pattern:          l.config.Pattern,
		DebounceInterval: l.config.Debounce,
	}, l.logger)
	if err != nil {
		return err
	}

	if err := watcher.Prepare(); err != nil {
		_ = watcher.Stop()
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		err := watcher.Watch(watchCtx, func(path string) {
			_ = l.Reload(watchCtx, path)
		})
		if err != nil {
			l.logger.Error("library watcher failed", "error", err)
		}
		if stopErr := watcher.Stop(); stopErr != nil {
			l.logger.Error("failed to stop library watcher", "error", stopErr)
		}
	}()

	l.watchCancel = cancel
	l.watchDone = done
	return nil
}

// Close stops watching and closes all subscriber channels.
func (l *Library) Close() error {
	l.watchMu.Lock()
	if l.watchCancel != nil {
		l.watchCancel()
		<-l.watchDone
		l.watchCancel = nil
	}
	l.watchMu.Unlock()

	l.subMu.Lock()
	for ch := range l.subscribers {
		delete(l.subscribers, ch)
		close(ch)
	}
	l.subMu.Unlock()
	return nil
}

// CollectFiles returns the sorted paths under dir whose base name matches
// pattern, skipping hidden files and directories.
func CollectFiles(dir, pattern string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid library pattern %q: %w", pattern, err)
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if matchPattern(pattern, path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &simErrors.Error{
			Type:     simErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Failed to scan library directory: %v", err),
			Location: ast.Location{File: dir},
		}
	}

	sort.Strings(files)
	return files, nil
}

func countBinds(rs *ast.RuleSet) int {
	n := 0
	for _, rule := range rs.Rules {
		n += len(rule.Binds)
	}
	return n
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

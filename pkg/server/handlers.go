package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"dorfbook/simparse/pkg/history"
	"dorfbook/simparse/pkg/history/export"
	"dorfbook/simparse/pkg/sim/ast"
	"dorfbook/simparse/pkg/sim/encoding"
	simErrors "dorfbook/simparse/pkg/sim/errors"
	"dorfbook/simparse/pkg/sim/parser"
	"dorfbook/simparse/pkg/telemetry/logging"
	"dorfbook/simparse/pkg/telemetry/tracing"
)

// ParseErrorLineHeader carries the failing line of a parse error.
const ParseErrorLineHeader = "X-Parse-Error-Line"

// handleParse parses the request body and answers with the chosen
// encoding. A document that fails to parse is still a 200 carrying the
// encoder's failure form; the failing line is also sent in a header.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	enc, ok := s.encoderFor(w, r)
	if !ok {
		return
	}

	data, ok := s.readBody(w, r)
	if !ok {
		return
	}

	source := documentSource(r)
	rs, err := s.parse(r.Context(), data, source, enc.Name())

	if err != nil {
		var perr *simErrors.Error
		if !simErrors.As(err, &perr) || perr.Type != simErrors.ErrorTypeSyntax {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorTypeTooLarge, errMessage(err))
			return
		}
		w.Header().Set("Content-Type", enc.ContentType())
		w.Header().Set(ParseErrorLineHeader, strconv.Itoa(perr.Line()))
		w.WriteHeader(http.StatusOK)
		_ = enc.EncodeFailure(w, err)
		return
	}

	var buf bytes.Buffer
	if err := enc.Encode(&buf, rs); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to encode rule set", "format", enc.Name(), "error", err)
		writeError(w, http.StatusInternalServerError, ErrorTypeInternal, "failed to encode result")
		return
	}
	w.Header().Set("Content-Type", enc.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// LintResponse is the body of POST /api/v1/lint.
type LintResponse struct {
	Valid  bool             `json:"valid"`
	Rules  int              `json:"rules"`
	Issues []encoding.Issue `json:"issues"`
}

// handleLint parses and lints the body. A parse error is reported as a
// single issue with status 422.
func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}

	rs, err := s.parse(r.Context(), data, documentSource(r), "lint")
	if err != nil {
		var perr *simErrors.Error
		if !simErrors.As(err, &perr) || perr.Type != simErrors.ErrorTypeSyntax {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorTypeTooLarge, errMessage(err))
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, LintResponse{
			Valid:  false,
			Issues: []encoding.Issue{encoding.NewIssue(perr)},
		})
		return
	}

	v := s.deps.Validator
	if strict := r.URL.Query().Get("strict"); strict != "" {
		on, err := strconv.ParseBool(strict)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest, "strict must be a boolean")
			return
		}
		v = v.Clone().WithStrictMode(on)
	}

	findings := v.Lint(rs)
	errorsFound, warnings := countFindings(findings)
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordLintFindings(errorsFound, warnings)
	}

	writeJSON(w, http.StatusOK, LintResponse{
		Valid:  v.Validate(rs) == nil,
		Rules:  rs.Len(),
		Issues: encoding.NewIssues(findings),
	})
}

// handleLibrary returns the active library snapshot. ?format=text|yaml
// returns only the rules in that encoding.
func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	if s.deps.Library == nil {
		writeError(w, http.StatusNotFound, ErrorTypeNotFound, "rule library is not enabled")
		return
	}

	snapshot := s.deps.Library.Snapshot()
	if snapshot == nil {
		msg := "rule library has not been loaded"
		if err := s.deps.Library.LastError(); err != nil {
			msg = fmt.Sprintf("%s: %s", msg, errMessage(err))
		}
		writeError(w, http.StatusServiceUnavailable, ErrorTypeUnavailable, msg)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		writeJSON(w, http.StatusOK, snapshot.Document())
		return
	}

	enc, err := encoding.Lookup(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, snapshot.Rules); err != nil {
		writeError(w, http.StatusInternalServerError, ErrorTypeInternal, "failed to encode library")
		return
	}
	w.Header().Set("Content-Type", enc.ContentType())
	w.Header().Set("X-Library-Version", snapshot.Version)
	_, _ = w.Write(buf.Bytes())
}

// HistoryResponse is the JSON body of GET /api/v1/history.
type HistoryResponse struct {
	Records []*history.Record `json:"records"`
	Total   int64             `json:"total"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
}

// handleHistory lists recent parse records, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		writeError(w, http.StatusNotFound, ErrorTypeNotFound, "parse history is not enabled")
		return
	}

	query, err := s.historyQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest, err.Error())
		return
	}

	records, err := s.deps.History.Query(r.Context(), query)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "history query failed", "error", err)
		writeError(w, http.StatusInternalServerError, ErrorTypeInternal, "history query failed")
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		if err := export.NewCSVExporter(true).Export(r.Context(), records, w); err != nil {
			s.logger.ErrorContext(r.Context(), "history export failed", "error", err)
		}
		return
	}

	countQuery := *query
	countQuery.Limit, countQuery.Offset = 0, 0
	total, err := s.deps.History.Count(r.Context(), &countQuery)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "history count failed", "error", err)
		writeError(w, http.StatusInternalServerError, ErrorTypeInternal, "history query failed")
		return
	}

	writeJSON(w, http.StatusOK, HistoryResponse{
		Records: records,
		Total:   total,
		Limit:   query.Limit,
		Offset:  query.Offset,
	})
}

func (s *Server) historyQuery(r *http.Request) (*history.Query, error) {
	q := r.URL.Query()
	cfg := s.config.History

	query := &history.Query{
		Limit:  cfg.QueryDefaultLimit,
		Origin: q.Get("origin"),
		Result: q.Get("result"),
		Source: q.Get("source"),
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("limit must be a positive integer")
		}
		query.Limit = n
	}
	if cfg.QueryMaxLimit > 0 && query.Limit > cfg.QueryMaxLimit {
		query.Limit = cfg.QueryMaxLimit
	}

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("offset must be a non-negative integer")
		}
		query.Offset = n
	}

	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("since must be an RFC 3339 timestamp")
		}
		query.Since = &t
	}

	switch query.Result {
	case "", history.ResultOK, history.ResultError:
	default:
		return nil, fmt.Errorf("result must be %q or %q", history.ResultOK, history.ResultError)
	}

	return query, nil
}

// parse runs the parser inside a span and records metrics and history.
func (s *Server) parse(ctx context.Context, data []byte, source, format string) (*ast.RuleSet, error) {
	ctx, span := s.deps.Tracer.Start(ctx, "sim.parse")
	defer span.End()

	tracing.SetDocumentAttributes(span, source, len(data))
	span.SetAttributes(tracing.AttrFormat.String(format))

	start := time.Now()
	rs, err := s.deps.Parser.ParseBytes(data, source)
	duration := time.Since(start)

	record := history.NewRecord(history.OriginHTTP, source, data, rs, err, duration).
		WithRequestID(logging.GetRequestID(ctx))

	if err != nil {
		tracing.SetParseErrorAttributes(span, err, record.ErrorType, record.ErrorLine)
		s.logger.InfoContext(ctx, "document rejected",
			"source", source,
			"error_type", record.ErrorType,
			"line", record.ErrorLine,
			"message", record.ErrorMessage,
		)
	} else {
		tracing.SetResultAttributes(span, record.Rules, record.Binds)
	}

	if m := s.deps.Metrics; m != nil {
		m.RecordParse(history.OriginHTTP, record.Result, duration, record.Rules)
		m.RecordSourceParse(source)
		if err != nil {
			m.RecordParseError(record.ErrorType)
		}
	}

	if s.deps.Recorder != nil {
		if recErr := s.deps.Recorder.Record(ctx, record); recErr != nil {
			s.logger.WarnContext(ctx, "failed to record parse history", "error", recErr)
		}
	}

	return rs, err
}

func (s *Server) encoderFor(w http.ResponseWriter, r *http.Request) (encoding.Encoder, bool) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = s.config.Server.DefaultFormat
	}
	enc, err := encoding.Lookup(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest, err.Error())
		return nil, false
	}
	return enc, true
}

// readBody reads at most MaxBodyBytes, answering 413 beyond that.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body := http.MaxBytesReader(w, r.Body, s.config.Server.MaxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorTypeTooLarge,
				fmt.Sprintf("rule document exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest, "failed to read request body")
		return nil, false
	}
	return data, true
}

// documentSource names the posted document; ?source= overrides the
// default memory source.
func documentSource(r *http.Request) string {
	if src := r.URL.Query().Get("source"); src != "" && len(src) <= 256 {
		return src
	}
	return parser.MemorySource
}

func countFindings(el *simErrors.ErrorList) (errs, warnings int) {
	if el == nil {
		return 0, 0
	}
	for _, e := range el.Errors {
		if e.IsWarning() {
			warnings++
		} else {
			errs++
		}
	}
	return errs, warnings
}

func errMessage(err error) string {
	var perr *simErrors.Error
	if simErrors.As(err, &perr) {
		return perr.Message
	}
	return err.Error()
}

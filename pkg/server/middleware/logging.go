package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"dorfbook/simparse/pkg/telemetry/logging"
)

// Logging logs one structured line per request. Status >= 500 logs at
// error level and >= 400 at warn; request_id is added by the context-aware
// handler from pkg/telemetry/logging.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := WrapResponseWriter(w)
			ctx := r.Context()

			logger.DebugContext(ctx, "request started",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			next.ServeHTTP(rw, r)

			level := slog.LevelInfo
			if rw.StatusCode() >= 500 {
				level = slog.LevelError
			} else if rw.StatusCode() >= 400 {
				level = slog.LevelWarn
			}

			logger.Log(ctx, level, "request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.StatusCode(),
				"bytes", rw.BytesWritten(),
				"latency_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"request_id", logging.GetRequestID(ctx),
			)
		})
	}
}

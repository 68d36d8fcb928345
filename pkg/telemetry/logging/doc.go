// Package logging builds the service's log/slog logger.
//
// New returns a JSON or text logger whose handler copies request-scoped
// fields out of the context:
//
//	logger, _ := logging.Setup(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
//	ctx = logging.WithRequestID(ctx, id)
//	logger.InfoContext(ctx, "parsed", "rules", n) // includes request_id
//
// Components derive their logger from the default:
//
//	slog.Default().With("component", "history.sqlite")
package logging

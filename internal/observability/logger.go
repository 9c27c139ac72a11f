package observability

import (
	"io"
	"log/slog"
	"os"
)

const serviceName = "hivelog"

// NewLogger returns the JSON logger for the API process. Every record carries
// the service name and, when the context holds a span, its trace and span ids.
// Debug records are only emitted in dev.
func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if env == "dev" {
		opts.Level = slog.LevelDebug
	}

	return slog.New(NewTraceHandler(slog.NewJSONHandler(w, opts))).
		With("service", serviceName, "env", env)
}

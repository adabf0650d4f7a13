package logger

import (
	"log/slog"
	"os"
)

// New creates a preconfigured slog.Logger. Every record carries the service
// name so the subsystem's lines are filterable in shared log aggregation.
func New() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(handler).With(slog.String("service", "caterpay"))
}

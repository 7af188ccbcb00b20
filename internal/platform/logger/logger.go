package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. Audit write-path log lines
// add log_type=audit so they are separable downstream.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

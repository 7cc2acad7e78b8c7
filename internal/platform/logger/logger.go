package logger

import (
	"log/slog"
	"os"
)

// New returns a structured JSON logger using slog. Debug level is opt-in via
// the FRAUDGATE_DEBUG_LOG env switch so production logs stay quiet unless an
// operator is chasing a false positive.
func New(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

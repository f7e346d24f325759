// Package logger builds the process-wide slog logger.
package logger

import (
	"log/slog"
	"os"

	"github.com/quillsec/privlog/internal/domain"
)

// New returns a text logger at the given level. Unknown level names fall
// back to info rather than failing startup.
func New(level string) *slog.Logger {
	parsed, err := domain.ParseLevel(level)
	if err != nil {
		parsed = domain.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel(parsed),
	}))
}

func slogLevel(l domain.Level) slog.Level {
	switch l {
	case domain.LevelDebug:
		return slog.LevelDebug
	case domain.LevelInfo:
		return slog.LevelInfo
	case domain.LevelWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

package logger

import (
	"log/slog"
	"os"
	"strings"
)

// InitLogger sets the process-wide slog default to a JSON handler on stdout.
// Level comes from BUILDER_LOG_LEVEL (debug|info|warn|error), defaulting to info.
func InitLogger() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("BUILDER_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

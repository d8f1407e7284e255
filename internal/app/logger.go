package app

import (
	"io"
	"log/slog"
)

// logLevels maps the accepted -log-level values to slog levels. The CLI
// validates the string before it reaches here; unknown values fall back to
// info for embedding callers that bypass the CLI.
var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger builds the app's isolated logger on the run's output stream.
// The global slog default is left untouched so embedding callers keep
// their own logging.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	level, ok := logLevels[levelStr]
	if !ok {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if formatStr == "text" {
		return slog.New(slog.NewTextHandler(outW, opts))
	}
	return slog.New(slog.NewJSONHandler(outW, opts))
}

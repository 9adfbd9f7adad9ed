package logging

import (
	"log/slog"
	"os"
)

// InitLogger initializes the process-wide structured logger.
// level: "debug", "info", "warn", "error" (defaults to "info")
// format: "json" or "text" (defaults to "text")
func InitLogger(level, format string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// WithStream returns a logger carrying the stream_id field.
func WithStream(streamID string) *slog.Logger {
	return slog.Default().With("stream_id", streamID)
}

// WithShop returns a logger carrying the shop field.
func WithShop(shop string) *slog.Logger {
	return slog.Default().With("shop", shop)
}

package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Init installs the process-wide slog logger. Production gets JSON lines for
// log aggregation; anything else gets the text handler at debug level.
func Init(env string, w io.Writer) *slog.Logger {
	var handler slog.Handler
	if strings.EqualFold(env, "production") {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ForUser scopes a logger to one user's request.
func ForUser(logger *slog.Logger, userID string) *slog.Logger {
	return logger.With("user_id", userID)
}

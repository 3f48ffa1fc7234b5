// Package logging configures the process-wide logger.
//
// Setup is an explicit call made once by the hosting process; nothing
// in this module configures logging at init time.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Setup installs a text handler on stdout emitting records at or above
// the given level.
func Setup(level slog.Level) {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// ParseLevel converts a verbosity name (debug, info, warn, error) to a
// slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}

package vlist

import (
	"log/slog"
	"os"
)

// vlistLogLevel controls the log level for engine debug logging.
// Default is LevelInfo, which suppresses Debug messages.
// SetVerbose(true) sets it to LevelDebug.
var vlistLogLevel = new(slog.LevelVar)

// vlistLogger is the logger for engine debugging.
var vlistLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: vlistLogLevel}))

func init() {
	if os.Getenv("VLIST_LOG") == "debug" {
		vlistLogLevel.Set(slog.LevelDebug)
	}
}

// SetVerbose enables or disables verbose/debug logging for engine components.
// Call this from main() after parsing flags.
func SetVerbose(v bool) {
	if v {
		vlistLogLevel.Set(slog.LevelDebug)
	} else {
		vlistLogLevel.Set(slog.LevelInfo)
	}
}

// vlistVerbose returns true if engine debug logging is enabled.
func vlistVerbose() bool {
	return vlistLogLevel.Level() <= slog.LevelDebug
}

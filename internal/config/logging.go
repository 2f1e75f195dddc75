package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the process-wide slog.Logger from a LoggingConfig
// (cmd/mysqldiff calls it with the loaded config's Logging section):
// a JSON handler at LevelInfo, raised to LevelDebug, writing to stdout
// unless debug_file/logs_folder redirect it through a rotating file.
func NewLogger(cfg LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stdout
	if path := cfg.logFilePath(); path != "" {
		w = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	return logger
}

// logFilePath resolves debug_file/logs_folder into the single rotating
// log file path lumberjack should write to, or "" to keep logging on
// stdout.
func (c LoggingConfig) logFilePath() string {
	if c.DebugFile != "" {
		return c.DebugFile
	}
	if c.LogsFolder != "" {
		return filepath.Join(c.LogsFolder, "mysqldiff.log")
	}
	return ""
}

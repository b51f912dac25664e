package util

import (
	"fmt"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

const (
	LogTemplate   = "[{{datetime}}] [{{level}}] {{message}}\n"
	LogTimeFormat = "2006-01-02 15:04:05"
)

// NewLogger logs to the console and appends to logFile. Only records at
// level or more severe are written.
func NewLogger(logFile string, level string) (*slog.Logger, error) {
	if err := MkdirFor(logFile); err != nil {
		return nil, fmt.Errorf("NewLogger -> %w", err)
	}
	levels := LevelsFrom(level)

	fh, err := handler.NewFileHandler(logFile, handler.WithLogLevels(levels))
	if err != nil {
		return nil, fmt.Errorf("NewLogger -> %w", err)
	}
	fh.SetFormatter(newFormatter())

	ch := handler.NewConsoleHandler(levels)
	ch.SetFormatter(newFormatter())

	return slog.NewWithHandlers(ch, fh), nil
}

// LevelsFrom returns level and every level more severe than it.
func LevelsFrom(level string) []slog.Level {
	max := slog.LevelByName(level)
	var levels []slog.Level
	for _, l := range slog.AllLevels {
		if l <= max {
			levels = append(levels, l)
		}
	}
	return levels
}

func newFormatter() *slog.TextFormatter {
	//no color codes in the log file
	f := slog.NewTextFormatter(LogTemplate)
	f.EnableColor = false
	f.TimeFormat = LogTimeFormat
	return f
}

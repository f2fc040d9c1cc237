// Package logging builds the process logger: logrus writing through a
// size-rotated log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/runnerr0/recipeledger/internal/config"
)

// New returns a logger configured from cfg and the closer of its log file.
// When verbose is set, entries are also mirrored to stderr and the level
// drops to debug.
func New(cfg config.LoggingConfig, path string, verbose bool) (*logrus.Logger, io.Closer, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o744); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}

	lumberjackLogger := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}

	logFormatter := new(logrus.TextFormatter)
	logFormatter.TimestampFormat = time.RFC3339
	logFormatter.FullTimestamp = true

	logger := logrus.New()
	logger.SetFormatter(logFormatter)
	logger.SetLevel(level)

	var out io.Writer = lumberjackLogger
	if verbose {
		out = io.MultiWriter(lumberjackLogger, os.Stderr)
		logger.SetLevel(logrus.DebugLevel)
	}
	logger.SetOutput(out)

	return logger, lumberjackLogger, nil
}

// Discard returns a logger that drops everything. Used where no log file
// has been configured, e.g. in tests.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

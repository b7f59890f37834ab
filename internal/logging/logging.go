package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the structured logger
var Log = zap.NewNop()

// InitFile routes logs to a file. The TUI owns the terminal, so it never logs to stderr.
func InitFile(path, level string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	set(zap.New(zapcore.NewCore(encoder, zapcore.AddSync(f), parseLevel(level))))
	return nil
}

// InitConsole logs human-readable lines to stderr (used by the store service)
func InitConsole(level string) error {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	set(logger)
	return nil
}

// Sync flushes buffered entries
func Sync() {
	_ = Log.Sync()
}

func set(l *zap.Logger) {
	Log = l
}

func parseLevel(level string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

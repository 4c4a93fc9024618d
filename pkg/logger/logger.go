// Package logger holds the process-wide zap logger. Packages derive child
// loggers through WithModule.
package logger

import (
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every entry written by a logger built with Init.
const ServiceName = "siteutil"

var current atomic.Pointer[zap.Logger]

func init() {
	current.Store(zap.NewNop())
}

// Init replaces the global logger. Unknown levels fall back to info; encoding
// "console" selects zap's development config, anything else JSON.
func Init(level, encoding string) error {
	cfg := zap.NewProductionConfig()
	if strings.EqualFold(strings.TrimSpace(encoding), "console") {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.InitialFields = map[string]any{"service": ServiceName}

	built, err := cfg.Build()
	if err != nil {
		return err
	}
	current.Store(built)
	return nil
}

func parseLevel(level string) zapcore.Level {
	parsed, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return zapcore.InfoLevel
	}
	return parsed
}

// Logger returns the global logger.
func Logger() *zap.Logger {
	return current.Load()
}

// Sync flushes buffered entries.
func Sync() error {
	return Logger().Sync()
}

// WithModule returns a child logger tagged with module.
func WithModule(module string) *zap.Logger {
	return Logger().With(zap.String("module", module))
}

// ReplaceForTest installs l and returns a func restoring the previous logger.
func ReplaceForTest(l *zap.Logger) func() {
	prev := current.Swap(l)
	return func() { current.Store(prev) }
}

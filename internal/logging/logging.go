package logging

import (
	"strings"

	"go.uber.org/zap"
)

// New builds a production JSON logger at the given level. Unknown levels
// fall back to info; a build failure yields a no-op logger. Output goes to
// stderr unless paths are given.
func New(level string, paths ...string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if len(paths) > 0 {
		cfg.OutputPaths = paths
	}
	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

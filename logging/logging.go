// Package logging builds the zap logger. The terminal belongs to the UI, so output goes to a file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"ktx-reserve-cli/store"
)

const (
	appName     = "ktx-reserve-cli"
	defaultFile = "ktx.log"
	// Disabled as a log_file value turns logging off.
	Disabled = "-"
)

// New returns a logger writing JSON lines to path, or to the cache dir when path is empty.
func New(level string, path string) (*zap.Logger, error) {
	if path == Disabled {
		return zap.NewNop(), nil
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	if path == "" {
		dir, err := store.CacheDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, defaultFile)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.InitialFields = map[string]interface{}{"app": appName}
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Sampling = nil

	return config.Build()
}

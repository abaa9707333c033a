// Package logging provides zap logger helpers shared by every command.
package logging

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L is the process-wide logger. It defaults to a no-op logger so packages
// touched before InitLogger runs (and unit tests) never hit a nil pointer.
var L = zap.NewNop()

var initOnce sync.Once

// InitLogger initializes the global logger exactly once. Development mode is
// selected with the DEVICEFEED_DEV environment variable because the logger
// must exist before configuration is loaded.
func InitLogger() {
	initOnce.Do(func() {
		logger, err := New(os.Getenv("DEVICEFEED_DEV") != "")
		if err != nil {
			return
		}
		L = logger
	})
}

// New builds a zap.Logger configured for development or production.
func New(development bool) (*zap.Logger, error) {
	if development {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build dev logger: %w", err)
		}
		return logger, nil
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = false
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build prod logger: %w", err)
	}
	return logger, nil
}

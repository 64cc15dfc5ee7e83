// Package logging builds the structured loggers used by the server (zap)
// and client (zerolog) binaries, following go-server-3/internal/logging
// and ws/internal/shared/monitoring/logger.go respectively.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewServerLogger builds a zap logger for the given level name
// ("debug", "info", "warn", "error").
func NewServerLogger(levelName string) (*zap.Logger, error) {
	level := zap.InfoLevel
	if levelName != "" {
		if err := level.Set(levelName); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", levelName, err)
		}
	}

	cfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stack",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return cfg.Build()
}

package logging

import (
	"fmt"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"

	"github.com/xlml/bench-metrics/internal/config"
)

// NewLogger builds the slog logger used throughout the service. Records are
// written by zap; the returned func flushes its buffers.
func NewLogger(cfg *config.LoggingConfig, serviceName string) (*slog.Logger, func(), error) {
	level := zapcore.InfoLevel
	format := "json"
	if cfg != nil {
		if cfg.Level != "" {
			l, err := zapcore.ParseLevel(cfg.Level)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
			}
			level = l
		}
		if cfg.Format != "" {
			format = cfg.Format
		}
	}

	zapConfig := zap.NewProductionConfig()
	if format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.DisableStacktrace = true

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, nil, err
	}

	handler := zapslog.NewHandler(zapLogger.Core(), zapslog.WithName(serviceName), zapslog.WithCaller(true))
	return slog.New(handler), func() { _ = zapLogger.Sync() }, nil
}

// NewNopLogger discards all records.
func NewNopLogger() *slog.Logger {
	return slog.New(zapslog.NewHandler(zap.NewNop().Core()))
}

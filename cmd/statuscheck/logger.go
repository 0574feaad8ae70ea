package main

import (
	"go.uber.org/zap"

	"github.com/amartya2002/status-checker/internal/config"
	"github.com/amartya2002/status-checker/statuscheck"
)

// newLogger builds the process logger: production JSON on stdout plus any
// configured file sinks, or zap's development console format with --verbose.
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Verbose {
		zc = zap.NewDevelopmentConfig()
	}
	zc.OutputPaths = append([]string{"stdout"}, cfg.Files...)

	level, err := statuscheck.ParseLogLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if level == statuscheck.LogDebug || !cfg.Verbose {
		zc.Level = zap.NewAtomicLevelAt(level.ZapLevel())
	}
	return zc.Build()
}

// checkerOptions maps loaded settings onto checker options.
func checkerOptions(cfg *config.Config, logger *zap.Logger) ([]statuscheck.Option, error) {
	level, err := statuscheck.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return []statuscheck.Option{
		statuscheck.WithWorkers(cfg.Workers),
		statuscheck.WithTimeout(cfg.TimeoutDuration()),
		statuscheck.WithMaxRetries(cfg.Retries),
		statuscheck.WithLogger(logger),
		statuscheck.WithLogLevel(level),
		statuscheck.WithInternalLogs(cfg.Log.Internal),
	}, nil
}

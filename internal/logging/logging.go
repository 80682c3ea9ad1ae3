// Package logging builds the zap logger used by the blockform host.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-blockform/internal/config"
)

// Option adjusts the zap configuration before the logger is built.
type Option func(*zap.Config)

// WithOutputPaths replaces the default stderr sink.
func WithOutputPaths(paths ...string) Option {
	return func(cfg *zap.Config) {
		if len(paths) == 0 {
			return
		}
		cfg.OutputPaths = paths
		cfg.ErrorOutputPaths = paths
	}
}

// WithConsoleEncoding switches from JSON to the human-readable encoder.
func WithConsoleEncoding() Option {
	return func(cfg *zap.Config) {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
}

// New builds a production logger at level. The returned AtomicLevel changes
// the level of the running logger.
func New(level string, options ...Option) (*zap.Logger, zap.AtomicLevel, error) {
	name, err := config.ParseLevel(level)
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	atom, err := zap.ParseAtomicLevel(name)
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("logging: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = atom
	cfg.Sampling = nil
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger.Named("blockform"), atom, nil
}

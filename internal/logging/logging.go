// Package logging builds the process logger: zap underneath, logr on top.
package logging

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the zap configuration.
type Options struct {
	// Development switches to the console encoder with debug level.
	Development bool
	// Verbosity enables logr V-levels up to this value.
	Verbosity int
}

// New returns a logr.Logger backed by zap and a flush func to call on exit.
func New(opts Options) (logr.Logger, func(), error) {
	config := zap.NewProductionConfig()
	if opts.Development {
		config = zap.NewDevelopmentConfig()
	}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	if opts.Verbosity > 0 {
		config.Level = zap.NewAtomicLevelAt(zapcore.Level(-opts.Verbosity))
	}
	zapLogger, err := config.Build()
	if err != nil {
		return logr.Discard(), func() {}, fmt.Errorf("failed to create logger: %w", err)
	}
	return zapr.NewLogger(zapLogger), func() { _ = zapLogger.Sync() }, nil
}

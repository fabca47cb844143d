// Package logging wraps zap construction so every command and pipeline
// stage logs the same way. Library code defaults to a nop logger;
// only the CLI turns logging on.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the logger profile
type Options struct {
	Verbose bool // debug level instead of info
	JSON    bool // machine-readable output instead of console
}

// New builds a logger writing to stderr, keeping stdout free for
// purified output.
func New(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	if opts.JSON {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if opts.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return cfg.Build()
}

// Nop returns the silent logger used as the library default
func Nop() *zap.Logger { return zap.NewNop() }

// Named scopes a logger to one pipeline stage
func Named(logger *zap.Logger, stage string) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger.Named(stage)
}

// Package logging builds the process-wide logger.
//
// Diagnostics go to stderr only; stdout is reserved for model output so the
// command stays pipe-friendly.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options control logger verbosity.
type Options struct {
	Verbose bool
	Debug   bool
}

// New returns a sugared logger writing console output to w.
// The default level is Warn; Verbose raises it to Info, Debug to Debug.
func New(w io.Writer, opts Options) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()

	cfg.Level.SetLevel(zap.WarnLevel)
	if opts.Verbose {
		cfg.Level.SetLevel(zap.InfoLevel)
	}
	if opts.Debug {
		cfg.Level.SetLevel(zap.DebugLevel)
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg.EncoderConfig),
		zapcore.AddSync(w),
		cfg.Level,
	)
	return zap.New(core).Sugar()
}

// NewStderr is the common construction used by the CLI entry point.
func NewStderr(opts Options) *zap.SugaredLogger {
	return New(os.Stderr, opts)
}

// Nop returns a logger that discards everything. Used in tests.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

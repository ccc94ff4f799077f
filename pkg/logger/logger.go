// Package logger builds the structured loggers used throughout maras-go.
//
// Every subsystem takes a *zap.SugaredLogger from its caller (through a
// Config struct or a constructor argument) rather than reaching for a
// package-level global, so tests can inject an
// observed or no-op logger without touching process state.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-configured sugared logger scoped to service.
// The service name is attached to every log line so that multi-index
// deployments can be told apart in shared log output.
func New(service string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	base, err := cfg.Build()
	if err != nil {
		// Build only fails on a malformed config; fall back to a minimal
		// logger rather than letting callers deal with a nil logger.
		base = zap.NewNop()
	}

	return base.Sugar().With("service", service)
}

// NewNop returns a logger that discards everything. Useful for tests and
// for callers that have not configured logging but still need to satisfy
// a *zap.SugaredLogger dependency.
func NewNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

package observability

import "context"

// NewNoopLogger returns a Logger that discards everything. It is the
// default for components constructed without an explicit logger.
func NewNoopLogger() Logger {
	return noopLogger{}
}

type noopLogger struct{}

func (noopLogger) Debug(ctx context.Context, msg string, fields ...Field) {}

func (noopLogger) Info(ctx context.Context, msg string, fields ...Field) {}

func (noopLogger) Warn(ctx context.Context, msg string, fields ...Field) {}

func (noopLogger) Error(ctx context.Context, msg string, fields ...Field) {}

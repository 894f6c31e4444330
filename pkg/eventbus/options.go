package eventbus

import (
	"time"

	"github.com/rust-lang-libs/eventure/pkg/observability"
)

// Option configures a Bus at construction time.
type Option func(*Bus)

// WithQueueCapacity bounds the queue used by the asynchronous modes.
func WithQueueCapacity(capacity int) Option {
	return func(b *Bus) {
		b.cfg.QueueCapacity = capacity
	}
}

// WithWorkerPoolSize sets the number of pooled workers in
// AsyncConcurrent mode.
func WithWorkerPoolSize(size int) Option {
	return func(b *Bus) {
		b.cfg.WorkerPoolSize = size
	}
}

// WithShutdownTimeout bounds the graceful drain performed by Shutdown.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(b *Bus) {
		b.cfg.ShutdownTimeout = timeout
	}
}

// WithDiscardOnShutdown makes Shutdown discard queued messages instead
// of draining them.
func WithDiscardOnShutdown() Option {
	return func(b *Bus) {
		b.cfg.DrainOnShutdown = false
	}
}

// WithLogger injects a structured logger. The default discards
// everything.
func WithLogger(logger observability.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// WithMetrics attaches prometheus instrumentation created by NewMetrics.
func WithMetrics(metrics *Metrics) Option {
	return func(b *Bus) {
		b.metrics = metrics
	}
}

// WithTransport attaches an outbound transport. Every accepted publish
// is forwarded to the transport in addition to local dispatch; a Send
// failure is surfaced to the publisher as a *TransportError without
// suppressing the local outcome.
func WithTransport(transport Transport) Option {
	return func(b *Bus) {
		b.transport = transport
	}
}

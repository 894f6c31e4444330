package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rust-lang-libs/eventure/pkg/observability"
)

// Bus binds a handler Registry, a dispatch engine and an optional
// outbound Transport into one addressable unit. Each Bus owns its own
// registry, queue and workers; multiple instances in one process are
// fully independent.
type Bus struct {
	cfg       Config
	mode      DeliveryMode
	registry  *Registry
	engine    *engine
	logger    observability.Logger
	metrics   *Metrics
	transport Transport

	worker *singleWorker
	pool   *workerPool

	closed       atomic.Bool
	shutdownOnce sync.Once
}

// New creates a Bus with the given delivery mode. The asynchronous
// modes start their worker goroutines here; Shutdown releases them.
func New(mode DeliveryMode, opts ...Option) (*Bus, error) {
	b := &Bus{
		cfg:      DefaultConfig(),
		mode:     mode,
		registry: NewRegistry(),
		logger:   observability.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	b.engine = &engine{logger: b.logger, metrics: b.metrics}

	switch mode {
	case Synchronous:
		// Dispatch happens on the publisher's goroutine.
	case AsyncSingleWorker:
		b.worker = newSingleWorker(b.cfg.QueueCapacity, b.cfg.DrainOnShutdown, b.engine, b.metrics)
	case AsyncConcurrent:
		b.pool = newWorkerPool(b.cfg.WorkerPoolSize, b.cfg.QueueCapacity, b.cfg.DrainOnShutdown, b.engine, b.metrics)
	default:
		return nil, fmt.Errorf("eventbus: unknown delivery mode %d", mode)
	}

	b.logger.Info(context.Background(), "event bus created",
		observability.String("mode", mode.String()),
		observability.Int("queue_capacity", b.cfg.QueueCapacity),
		observability.Int("worker_pool_size", b.cfg.WorkerPoolSize),
	)
	return b, nil
}

// Mode returns the delivery mode fixed at construction.
func (b *Bus) Mode() DeliveryMode {
	return b.mode
}

// Subscribe registers a handler for a topic pattern and returns its id.
// Subscribing the same handler again adds a second registration rather
// than replacing the first.
func (b *Bus) Subscribe(pattern string, handler Handler) (HandlerID, error) {
	if b.closed.Load() {
		return "", ErrBusClosed
	}

	id, err := b.registry.Register(pattern, handler)
	if err != nil {
		return "", err
	}

	b.logger.Debug(context.Background(), "handler subscribed",
		observability.String("handler_id", string(id)),
		observability.String("pattern", pattern),
	)
	return id, nil
}

// Unsubscribe removes the handler with the given id. It is idempotent.
func (b *Bus) Unsubscribe(id HandlerID) {
	b.registry.Deregister(id)
}

// Publish constructs a message and submits it for dispatch. See
// PublishMessage for the returned values per delivery mode.
func (b *Bus) Publish(ctx context.Context, topic string, payload []byte, headers ...Header) (DispatchOutcome, error) {
	msg, err := NewMessage(topic, payload, WithHeaders(headers...))
	if err != nil {
		return nil, err
	}
	return b.PublishMessage(ctx, msg)
}

// PublishMessage submits a constructed message for dispatch.
//
// In Synchronous mode it returns the complete DispatchOutcome: handler
// failures are enumerated there, never escalated into the error return.
// In the asynchronous modes a nil outcome with a nil error acknowledges
// the enqueue; ErrBackpressure reports a full queue. Publishing to a
// topic with zero matching handlers succeeds with an empty outcome.
//
// When an outbound transport is attached, its Send failure is returned
// as a *TransportError alongside whatever local dispatch produced.
func (b *Bus) PublishMessage(ctx context.Context, msg *Message) (DispatchOutcome, error) {
	if msg == nil {
		return nil, ErrNilMessage
	}
	if b.closed.Load() {
		return nil, ErrBusClosed
	}

	// Snapshot before anything else: handlers registered from here on
	// must not receive this message.
	regs := b.registry.Lookup(msg.Topic())

	var transportErr error
	if b.transport != nil {
		if err := b.transport.Send(ctx, msg); err != nil {
			transportErr = &TransportError{Err: err}
			b.logger.Error(ctx, "outbound transport send failed",
				observability.String("topic", msg.Topic()),
				observability.String("message_id", msg.ID()),
				observability.Error(err),
			)
		}
	}

	switch b.mode {
	case Synchronous:
		b.metrics.incPublished(b.mode)
		return b.engine.run(ctx, msg, regs), transportErr

	case AsyncSingleWorker:
		job := dispatchJob{ctx: context.WithoutCancel(ctx), msg: msg, regs: regs}
		if err := b.worker.enqueue(job); err != nil {
			b.metrics.incBackpressure()
			return nil, errors.Join(err, transportErr)
		}
		b.metrics.incPublished(b.mode)
		return nil, transportErr

	default: // AsyncConcurrent
		detached := context.WithoutCancel(ctx)
		for _, reg := range regs {
			if err := b.pool.submit(poolTask{ctx: detached, msg: msg, reg: reg}); err != nil {
				b.metrics.incBackpressure()
				b.logger.Warn(ctx, "worker pool backlog full, handler tasks dropped",
					observability.String("topic", msg.Topic()),
					observability.String("message_id", msg.ID()),
					observability.String("handler_id", string(reg.ID)),
				)
				return nil, errors.Join(err, transportErr)
			}
		}
		b.metrics.incPublished(b.mode)
		return nil, transportErr
	}
}

// Shutdown stops accepting publishes, drains queued messages (or
// discards them when configured with WithDiscardOnShutdown) and waits
// for in-flight handler executions to finish. The wait is bounded by
// the context deadline, or by the configured ShutdownTimeout when the
// context carries none; on timeout a *ShutdownError enumerates the
// abandoned work. Shutdown is idempotent: later calls return nil.
func (b *Bus) Shutdown(ctx context.Context) error {
	var shutdownErr error

	b.shutdownOnce.Do(func() {
		b.closed.Store(true)
		b.logger.Info(ctx, "initiating graceful shutdown",
			observability.String("mode", b.mode.String()),
		)

		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, b.cfg.ShutdownTimeout)
			defer cancel()
		}

		var abandoned int
		var err error
		switch b.mode {
		case AsyncSingleWorker:
			abandoned, err = b.worker.stop(ctx)
		case AsyncConcurrent:
			abandoned, err = b.pool.stop(ctx)
		default:
			// Synchronous mode has no background work to drain.
		}

		switch {
		case err != nil:
			shutdownErr = &ShutdownError{Abandoned: abandoned, Err: err}
			b.logger.Warn(ctx, "shutdown timeout exceeded",
				observability.Int("abandoned", abandoned),
			)
		case abandoned > 0:
			b.logger.Info(ctx, "queued messages discarded on shutdown",
				observability.Int("discarded", abandoned),
			)
		}

		if b.transport != nil {
			if err := b.transport.Close(); err != nil {
				shutdownErr = errors.Join(shutdownErr, err)
			}
		}

		b.logger.Info(ctx, "graceful shutdown completed")
	})

	return shutdownErr
}

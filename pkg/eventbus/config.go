package eventbus

import (
	"errors"
	"time"
)

// DeliveryMode is the execution discipline governing how and when
// handlers run relative to Publish. It is fixed at Bus construction.
type DeliveryMode int

const (
	// Synchronous runs handlers on the publisher's goroutine, in
	// registration order. Publish returns the complete DispatchOutcome.
	Synchronous DeliveryMode = iota

	// AsyncSingleWorker enqueues messages to a bounded FIFO queue
	// drained by one dedicated worker goroutine. Handler execution is
	// totally ordered across messages. Publish returns on enqueue.
	AsyncSingleWorker

	// AsyncConcurrent submits one task per matching handler to a bounded
	// worker pool. No ordering is guaranteed, across handlers for one
	// message or across messages.
	AsyncConcurrent
)

// String returns the mode name used in logs and metric labels.
func (m DeliveryMode) String() string {
	switch m {
	case Synchronous:
		return "synchronous"
	case AsyncSingleWorker:
		return "async_single_worker"
	case AsyncConcurrent:
		return "async_concurrent"
	default:
		return "unknown"
	}
}

const (
	defaultQueueCapacity   = 256
	defaultWorkerPoolSize  = 5
	defaultShutdownTimeout = 30 * time.Second
)

// Config holds the tunables of a Bus instance.
type Config struct {
	// QueueCapacity bounds the FIFO queue in AsyncSingleWorker mode and
	// the task backlog in AsyncConcurrent mode. Publishing beyond it
	// fails with ErrBackpressure. Default: 256.
	QueueCapacity int

	// WorkerPoolSize is the number of pooled workers in AsyncConcurrent
	// mode. Default: 5.
	WorkerPoolSize int

	// ShutdownTimeout bounds the graceful drain performed by Shutdown
	// when the caller's context carries no earlier deadline. Default: 30s.
	ShutdownTimeout time.Duration

	// DrainOnShutdown controls whether queued messages are still
	// dispatched during Shutdown (true) or discarded (false).
	// Default: true.
	DrainOnShutdown bool
}

// DefaultConfig returns a Config with conservative defaults.
func DefaultConfig() Config {
	return Config{
		QueueCapacity:   defaultQueueCapacity,
		WorkerPoolSize:  defaultWorkerPoolSize,
		ShutdownTimeout: defaultShutdownTimeout,
		DrainOnShutdown: true,
	}
}

// Validate checks the configuration and returns every violation joined
// into one error.
func (c Config) Validate() error {
	var errs []error

	if c.QueueCapacity <= 0 {
		errs = append(errs, errors.New("QueueCapacity must be greater than 0"))
	}
	if c.WorkerPoolSize <= 0 {
		errs = append(errs, errors.New("WorkerPoolSize must be greater than 0"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("ShutdownTimeout must be greater than 0"))
	}

	return errors.Join(errs...)
}

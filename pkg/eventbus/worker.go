package eventbus

import (
	"context"
	"sync"
)

// dispatchJob pairs a message with the registry snapshot taken when the
// publish was accepted. Snapshotting at publish time keeps the
// consistency guarantee: handlers registered afterwards never receive
// an already-dispatched message.
type dispatchJob struct {
	ctx  context.Context
	msg  *Message
	regs []Registration
}

// singleWorker owns the bounded FIFO queue of AsyncSingleWorker mode
// and the one goroutine draining it. All handler execution for all
// messages funnels through that goroutine, which is what makes the
// total-order guarantee hold.
type singleWorker struct {
	queue   chan dispatchJob
	quit    chan struct{}
	abort   chan struct{}
	drain   bool
	engine  *engine
	metrics *Metrics
	wg      sync.WaitGroup
}

func newSingleWorker(capacity int, drain bool, engine *engine, metrics *Metrics) *singleWorker {
	w := &singleWorker{
		queue:   make(chan dispatchJob, capacity),
		quit:    make(chan struct{}),
		abort:   make(chan struct{}),
		drain:   drain,
		engine:  engine,
		metrics: metrics,
	}
	w.wg.Add(1)
	go w.loop()
	return w
}

// enqueue offers a job to the queue without blocking. A full queue is
// reported as ErrBackpressure instead of growing unboundedly.
func (w *singleWorker) enqueue(job dispatchJob) error {
	select {
	case w.queue <- job:
		w.metrics.setQueueDepth(len(w.queue))
		return nil
	default:
		return ErrBackpressure
	}
}

func (w *singleWorker) loop() {
	defer w.wg.Done()

	for {
		// Check quit first so a closed bus stops promptly instead of
		// racing the queue in the select below.
		select {
		case <-w.quit:
			w.finish()
			return
		default:
		}

		select {
		case job := <-w.queue:
			w.engine.run(job.ctx, job.msg, job.regs)
			w.metrics.setQueueDepth(len(w.queue))
		case <-w.quit:
			w.finish()
			return
		}
	}
}

// finish empties the queue when draining is configured, stopping early
// if the shutdown deadline aborts it.
func (w *singleWorker) finish() {
	if !w.drain {
		return
	}
	for {
		select {
		case <-w.abort:
			return
		case job := <-w.queue:
			w.engine.run(job.ctx, job.msg, job.regs)
		default:
			return
		}
	}
}

// stop initiates shutdown and waits for the worker to finish, bounded
// by ctx. On timeout the drain is aborted after the in-flight handler
// completes; the number of still-queued messages is returned.
func (w *singleWorker) stop(ctx context.Context) (abandoned int, err error) {
	close(w.quit)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return len(w.queue), nil
	case <-ctx.Done():
		close(w.abort)
		return len(w.queue), ctx.Err()
	}
}

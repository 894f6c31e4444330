package eventbus

import (
	"context"
	"sync"
)

// poolTask is one handler invocation for one message in AsyncConcurrent
// mode.
type poolTask struct {
	ctx context.Context
	msg *Message
	reg Registration
}

// workerPool is the bounded pool backing AsyncConcurrent mode. One task
// is submitted per matching handler per message, so handlers for the
// same message run independently; the pool size caps resource usage
// under burst load.
type workerPool struct {
	tasks   chan poolTask
	quit    chan struct{}
	abort   chan struct{}
	drain   bool
	engine  *engine
	metrics *Metrics
	wg      sync.WaitGroup
}

func newWorkerPool(size, backlog int, drain bool, engine *engine, metrics *Metrics) *workerPool {
	p := &workerPool{
		tasks:   make(chan poolTask, backlog),
		quit:    make(chan struct{}),
		abort:   make(chan struct{}),
		drain:   drain,
		engine:  engine,
		metrics: metrics,
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// submit offers a task to the backlog without blocking, reporting
// ErrBackpressure when it is full.
func (p *workerPool) submit(task poolTask) error {
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrBackpressure
	}
}

func (p *workerPool) worker() {
	defer p.wg.Done()

	for {
		// Check quit first so a closed bus stops promptly instead of
		// racing the backlog in the select below.
		select {
		case <-p.quit:
			p.finish()
			return
		default:
		}

		select {
		case task := <-p.tasks:
			p.execute(task)
		case <-p.quit:
			p.finish()
			return
		}
	}
}

// finish empties the backlog when draining is configured, stopping
// early if the shutdown deadline aborts it.
func (p *workerPool) finish() {
	if !p.drain {
		return
	}
	for {
		select {
		case <-p.abort:
			return
		case task := <-p.tasks:
			p.execute(task)
		default:
			return
		}
	}
}

func (p *workerPool) execute(task poolTask) {
	err := p.engine.invoke(task.ctx, task.reg, task.msg)
	p.metrics.observeResult(HandlerResult{HandlerID: task.reg.ID, Err: err})
}

// stop initiates shutdown and waits for all pooled workers, bounded by
// ctx. On timeout the drain is aborted once in-flight handlers return;
// the number of pending tasks is returned.
func (p *workerPool) stop(ctx context.Context) (abandoned int, err error) {
	close(p.quit)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return len(p.tasks), nil
	case <-ctx.Done():
		close(p.abort)
		return len(p.tasks), ctx.Err()
	}
}

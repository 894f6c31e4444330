package eventbus

import (
	"context"
	"fmt"

	"github.com/rust-lang-libs/eventure/pkg/observability"
)

// engine executes a snapshot of matching handlers for one message and
// aggregates the per-handler outcomes. It is shared by all delivery
// modes: the synchronous path calls it on the publisher's goroutine,
// the single worker calls it from its drain loop, and the concurrent
// pool calls invoke once per handler task.
type engine struct {
	logger  observability.Logger
	metrics *Metrics
}

// run invokes every handler in regs, in order, isolating failures: a
// handler error or panic is recorded in the outcome and the remaining
// handlers still execute. Context cancellation is the one exception:
// once ctx is done, handlers not yet started are recorded as failed
// with the context error, since the publisher itself gave up.
//
// Queue-kind messages stop after the first handler, competing-consumer
// style; the outcome then holds a single entry.
func (e *engine) run(ctx context.Context, msg *Message, regs []Registration) DispatchOutcome {
	outcome := make(DispatchOutcome, 0, len(regs))

	for i, reg := range regs {
		if err := ctx.Err(); err != nil {
			for _, rest := range regs[i:] {
				outcome = append(outcome, HandlerResult{HandlerID: rest.ID, Err: err})
			}
			break
		}

		err := e.invoke(ctx, reg, msg)
		outcome = append(outcome, HandlerResult{HandlerID: reg.ID, Err: err})

		if msg.Kind() == KindQueue {
			break
		}
	}

	e.metrics.observeDispatch(outcome)
	return outcome
}

// invoke runs one handler with panic recovery so a faulty handler can
// never take down the worker goroutine or the publisher.
func (e *engine) invoke(ctx context.Context, reg Registration, msg *Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
			e.logger.Error(ctx, "handler panicked during dispatch",
				observability.String("handler_id", string(reg.ID)),
				observability.String("topic", msg.Topic()),
				observability.Any("panic", r),
			)
		}
	}()

	if err := reg.Handler.Handle(ctx, msg); err != nil {
		e.logger.Warn(ctx, "handler returned error",
			observability.String("handler_id", string(reg.ID)),
			observability.String("topic", msg.Topic()),
			observability.Error(err),
		)
		return err
	}
	return nil
}

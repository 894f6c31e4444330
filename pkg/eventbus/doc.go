// Package eventbus provides a broker-agnostic event bus: a single
// programming model for publishing messages and registering handlers
// that can be backed by an in-process dispatcher or, through the
// Transport boundary, by external brokers (Kafka, RabbitMQ, Redis).
//
// A Bus binds a thread-safe handler Registry and a dispatch engine
// under one of three delivery modes:
//
//   - Synchronous: handlers run on the publisher's goroutine, in
//     registration order; Publish returns the full DispatchOutcome.
//   - AsyncSingleWorker: messages are enqueued to a bounded FIFO queue
//     drained by one worker goroutine, guaranteeing total order of
//     handler execution across messages; Publish returns on enqueue.
//   - AsyncConcurrent: each matching handler runs as an independent
//     task on a bounded worker pool; no ordering guarantees.
//
// Failure isolation is mandatory in every mode: a handler error or
// panic is captured in the outcome and never prevents sibling handlers
// from running, nor does it corrupt bus state.
package eventbus

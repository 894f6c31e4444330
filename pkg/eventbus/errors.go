package eventbus

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTopic is returned when an empty topic or topic pattern is
	// passed to Publish, Subscribe or NewMessage.
	ErrInvalidTopic = errors.New("eventbus: topic cannot be empty")

	// ErrNilHandler is returned when a nil handler is passed to Subscribe.
	ErrNilHandler = errors.New("eventbus: handler cannot be nil")

	// ErrNilMessage is returned when a nil message is passed to PublishMessage.
	ErrNilMessage = errors.New("eventbus: message cannot be nil")

	// ErrBackpressure is returned when the bounded queue of an asynchronous
	// bus is full. The message was not accepted; callers may retry later.
	ErrBackpressure = errors.New("eventbus: queue is full, retry later")

	// ErrBusClosed is returned when publishing or subscribing on a bus
	// that has been shut down.
	ErrBusClosed = errors.New("eventbus: bus is closed")
)

// HandlerError wraps a failure produced by a single handler during
// dispatch. It carries the id of the failing handler so callers can
// correlate failures with registrations.
type HandlerError struct {
	HandlerID HandlerID
	Err       error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("eventbus: handler %s failed: %v", e.HandlerID, e.Err)
}

// Unwrap returns the underlying error for errors.Is and errors.As.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failure reported by an outbound Transport's
// Send. The bus does not interpret it beyond surfacing it verbatim to
// the publisher.
type TransportError struct {
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("eventbus: transport send failed: %v", e.Err)
}

// Unwrap returns the underlying error for errors.Is and errors.As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ShutdownError is returned by Shutdown when the graceful drain exceeded
// the configured timeout. Abandoned counts the queued messages (single
// worker mode) or pending handler tasks (concurrent mode) that were
// discarded.
type ShutdownError struct {
	Abandoned int
	Err       error
}

// Error implements the error interface.
func (e *ShutdownError) Error() string {
	return fmt.Sprintf("eventbus: shutdown timeout exceeded, %d unit(s) of work abandoned: %v", e.Abandoned, e.Err)
}

// Unwrap returns the underlying error for errors.Is and errors.As.
func (e *ShutdownError) Unwrap() error {
	return e.Err
}

package eventbus

import (
	"context"
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// HandlerID identifies one registration. Ids are ULIDs, so they sort by
// registration time.
type HandlerID string

// Handler processes messages dispatched for a matching topic.
// Implementations shared across goroutines must be safe for concurrent
// use: in asynchronous modes the bus invokes handlers from worker
// goroutines.
type Handler interface {
	// Handle processes a single message. The message must be treated as
	// read-only. Returning an error marks this handler's entry in the
	// DispatchOutcome as failed; it never affects sibling handlers.
	Handle(ctx context.Context, msg *Message) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, msg *Message) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, msg *Message) error {
	return f(ctx, msg)
}

// newHandlerID generates a ULID-based handler id. crypto/rand keeps it
// safe under concurrent registration.
func newHandlerID() (HandlerID, error) {
	id, err := ulid.New(ulid.Now(), rand.Reader)
	if err != nil {
		return "", err
	}
	return HandlerID(id.String()), nil
}

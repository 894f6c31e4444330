package eventbus

import "context"

// Transport is the outbound boundary to an external broker. The bus
// only requires a single Send; connection management, wire format and
// delivery bookkeeping belong to the adapter.
type Transport interface {
	// Send forwards one message to the external broker.
	Send(ctx context.Context, msg *Message) error

	// Close releases the adapter's resources.
	Close() error
}

// Publisher is the narrow intake surface of a Bus. Inbound transport
// adapters depend on it instead of the concrete Bus so they can be
// tested against fakes.
type Publisher interface {
	// PublishMessage submits a constructed message for dispatch.
	PublishMessage(ctx context.Context, msg *Message) (DispatchOutcome, error)
}

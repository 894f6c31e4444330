// Package rabbitmq bridges the event bus to RabbitMQ: an outbound
// Transport publishing bus messages to an exchange, and an inbound
// Consumer feeding queue deliveries into a bus.
package rabbitmq

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/rust-lang-libs/eventure/pkg/eventbus"
	"github.com/rust-lang-libs/eventure/pkg/observability"
)

// Transport is the outbound adapter. The message topic becomes the
// routing key on the configured exchange. The amqp channel is not safe
// for concurrent publishes, so Send serializes on a mutex.
type Transport struct {
	channel  *amqp.Channel
	exchange string
	logger   observability.Logger
	mu       sync.Mutex
	closed   bool
}

// TransportOption configures the outbound transport.
type TransportOption func(*Transport)

// WithTransportLogger injects a structured logger.
func WithTransportLogger(logger observability.Logger) TransportOption {
	return func(t *Transport) {
		t.logger = logger
	}
}

// NewTransport creates an outbound RabbitMQ transport over an open
// channel. Exchange declaration and bindings belong to the caller.
func NewTransport(channel *amqp.Channel, exchange string, opts ...TransportOption) (*Transport, error) {
	if channel == nil {
		return nil, ErrNilChannel
	}

	t := &Transport{
		channel:  channel,
		exchange: exchange,
		logger:   observability.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Send implements eventbus.Transport.
func (t *Transport) Send(ctx context.Context, msg *eventbus.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTransportClosed
	}

	headers := amqp.Table{}
	for _, h := range msg.Headers() {
		headers[h.Key] = h.Value
	}

	publishing := amqp.Publishing{
		MessageId: msg.ID(),
		Timestamp: time.Now(),
		Body:      msg.Payload(),
		Headers:   headers,
	}

	if err := t.channel.PublishWithContext(ctx, t.exchange, msg.Topic(), false, false, publishing); err != nil {
		t.logger.Error(ctx, "failed to publish message to rabbitmq",
			observability.String("exchange", t.exchange),
			observability.String("routing_key", msg.Topic()),
			observability.String("message_id", msg.ID()),
			observability.Error(err),
		)
		return err
	}
	return nil
}

// Close implements eventbus.Transport.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	return t.channel.Close()
}

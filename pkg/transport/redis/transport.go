// Package redis bridges the event bus to Redis pub/sub. Bus messages
// travel as a JSON envelope on one Redis channel per topic; the inbound
// consumer pattern-subscribes to the whole namespace.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/rust-lang-libs/eventure/pkg/eventbus"
	"github.com/rust-lang-libs/eventure/pkg/observability"
)

var (
	// ErrNilClient indicates no redis client was provided.
	ErrNilClient = errors.New("redis: client is required")

	// ErrTransportClosed indicates the outbound transport has been closed.
	ErrTransportClosed = errors.New("redis: transport is closed")
)

// DefaultNamespace prefixes the Redis channels used by this adapter.
const DefaultNamespace = "eventure:"

// envelope is the wire format owned by this adapter. Payload is
// base64-encoded by encoding/json.
type envelope struct {
	ID      string            `json:"id"`
	Topic   string            `json:"topic"`
	Headers []eventbus.Header `json:"headers,omitempty"`
	Payload []byte            `json:"payload,omitempty"`
}

// Transport is the outbound adapter.
type Transport struct {
	client    redis.UniversalClient
	namespace string
	logger    observability.Logger
	closed    atomic.Bool
}

// Option configures the transport and the consumer.
type Option func(*options)

type options struct {
	namespace string
	logger    observability.Logger
}

// WithNamespace overrides the Redis channel prefix.
func WithNamespace(namespace string) Option {
	return func(o *options) {
		o.namespace = namespace
	}
}

// WithLogger injects a structured logger.
func WithLogger(logger observability.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(opts []Option) options {
	o := options{
		namespace: DefaultNamespace,
		logger:    observability.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewTransport creates an outbound Redis transport. The client's
// lifecycle stays with the caller; Close does not close it.
func NewTransport(client redis.UniversalClient, opts ...Option) (*Transport, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	o := applyOptions(opts)
	return &Transport{
		client:    client,
		namespace: o.namespace,
		logger:    o.logger,
	}, nil
}

// Send implements eventbus.Transport.
func (t *Transport) Send(ctx context.Context, msg *eventbus.Message) error {
	if t.closed.Load() {
		return ErrTransportClosed
	}

	data, err := json.Marshal(envelope{
		ID:      msg.ID(),
		Topic:   msg.Topic(),
		Headers: msg.Headers(),
		Payload: msg.Payload(),
	})
	if err != nil {
		return fmt.Errorf("redis: encode envelope: %w", err)
	}

	if err := t.client.Publish(ctx, t.namespace+msg.Topic(), data).Err(); err != nil {
		t.logger.Error(ctx, "failed to publish message to redis",
			observability.String("topic", msg.Topic()),
			observability.String("message_id", msg.ID()),
			observability.Error(err),
		)
		return err
	}
	return nil
}

// Close implements eventbus.Transport.
func (t *Transport) Close() error {
	t.closed.Store(true)
	return nil
}

// Consumer is the inbound adapter: it pattern-subscribes to the
// namespace and publishes every decoded envelope onto a bus. Redis
// pub/sub is fire-and-forget, so a message rejected with backpressure
// is logged and dropped rather than redelivered.
type Consumer struct {
	client    redis.UniversalClient
	namespace string
	bus       eventbus.Publisher
	logger    observability.Logger
}

// NewConsumer creates an inbound Redis consumer bound to a bus.
func NewConsumer(client redis.UniversalClient, bus eventbus.Publisher, opts ...Option) (*Consumer, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if bus == nil {
		return nil, errors.New("redis: bus is required")
	}

	o := applyOptions(opts)
	return &Consumer{
		client:    client,
		namespace: o.namespace,
		bus:       bus,
		logger:    o.logger,
	}, nil
}

// Run subscribes and publishes inbound messages until ctx is cancelled
// or the bus shuts down.
func (c *Consumer) Run(ctx context.Context) error {
	pubsub := c.client.PSubscribe(ctx, c.namespace+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case received, ok := <-ch:
			if !ok {
				return errors.New("redis: subscription channel closed")
			}

			msg, err := c.toMessage(received)
			if err != nil {
				c.logger.Error(ctx, "skipping malformed redis message",
					observability.String("channel", received.Channel),
					observability.Error(err),
				)
				continue
			}

			if _, err := c.bus.PublishMessage(ctx, msg); err != nil {
				if errors.Is(err, eventbus.ErrBusClosed) {
					return err
				}
				c.logger.Error(ctx, "failed to publish inbound message",
					observability.String("topic", msg.Topic()),
					observability.String("message_id", msg.ID()),
					observability.Error(err),
				)
			}
		}
	}
}

func (c *Consumer) toMessage(received *redis.Message) (*eventbus.Message, error) {
	var env envelope
	if err := json.Unmarshal([]byte(received.Payload), &env); err != nil || env.Topic == "" {
		// Not an envelope from this adapter: deliver the raw payload
		// under the channel-derived topic.
		topic := strings.TrimPrefix(received.Channel, c.namespace)
		return eventbus.NewMessage(topic, []byte(received.Payload))
	}

	opts := []eventbus.MessageOption{eventbus.WithHeaders(env.Headers...)}
	if env.ID != "" {
		opts = append(opts, eventbus.WithID(env.ID))
	}
	return eventbus.NewMessage(env.Topic, env.Payload, opts...)
}

package rabbitmq

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/rust-lang-libs/eventure/pkg/eventbus"
	"github.com/rust-lang-libs/eventure/pkg/observability"
)

// Consumer is the inbound adapter: it drains a queue and publishes each
// delivery onto a bus. Deliveries are acknowledged once the bus accepts
// them; bus backpressure nacks with requeue so the broker redelivers.
type Consumer struct {
	channel *amqp.Channel
	queue   string
	bus     eventbus.Publisher
	logger  observability.Logger
}

// ConsumerOption configures the inbound consumer.
type ConsumerOption func(*Consumer)

// WithConsumerLogger injects a structured logger.
func WithConsumerLogger(logger observability.Logger) ConsumerOption {
	return func(c *Consumer) {
		c.logger = logger
	}
}

// NewConsumer creates an inbound RabbitMQ consumer bound to a bus.
// Queue declaration and bindings belong to the caller.
func NewConsumer(channel *amqp.Channel, queue string, bus eventbus.Publisher, opts ...ConsumerOption) (*Consumer, error) {
	if channel == nil {
		return nil, ErrNilChannel
	}
	if queue == "" {
		return nil, ErrNoQueue
	}
	if bus == nil {
		return nil, errors.New("rabbitmq: bus is required")
	}

	c := &Consumer{
		channel: channel,
		queue:   queue,
		bus:     bus,
		logger:  observability.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run consumes deliveries until ctx is cancelled, the bus shuts down or
// the broker closes the stream.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.channel.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq: consume on queue %s: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return ErrDeliveriesClosed
			}
			if err := c.handle(ctx, delivery); err != nil {
				return err
			}
		}
	}
}

func (c *Consumer) handle(ctx context.Context, delivery amqp.Delivery) error {
	msg, err := c.toMessage(delivery)
	if err != nil {
		c.logger.Error(ctx, "rejecting malformed delivery",
			observability.String("queue", c.queue),
			observability.Error(err),
		)
		return delivery.Nack(false, false)
	}

	outcome, err := c.bus.PublishMessage(ctx, msg)
	switch {
	case errors.Is(err, eventbus.ErrBusClosed):
		// Requeue so another consumer picks it up, then stop.
		if nackErr := delivery.Nack(false, true); nackErr != nil {
			return errors.Join(err, nackErr)
		}
		return err
	case errors.Is(err, eventbus.ErrBackpressure):
		c.logger.Warn(ctx, "bus backpressure, requeueing delivery",
			observability.String("queue", c.queue),
			observability.String("message_id", msg.ID()),
		)
		return delivery.Nack(false, true)
	case err != nil:
		c.logger.Error(ctx, "failed to publish inbound delivery",
			observability.String("queue", c.queue),
			observability.String("message_id", msg.ID()),
			observability.Error(err),
		)
		return delivery.Nack(false, false)
	}

	for _, failure := range outcome.Failures() {
		c.logger.Warn(ctx, "handler failed for inbound delivery",
			observability.String("queue", c.queue),
			observability.String("handler_id", string(failure.HandlerID)),
			observability.Error(failure.Err),
		)
	}
	return delivery.Ack(false)
}

func (c *Consumer) toMessage(delivery amqp.Delivery) (*eventbus.Message, error) {
	opts := []eventbus.MessageOption{}
	if delivery.MessageId != "" {
		opts = append(opts, eventbus.WithID(delivery.MessageId))
	}
	for key, value := range delivery.Headers {
		if s, ok := value.(string); ok {
			opts = append(opts, eventbus.WithHeader(key, s))
		}
	}
	return eventbus.NewMessage(delivery.RoutingKey, delivery.Body, opts...)
}

// Close releases the consumer's channel.
func (c *Consumer) Close() error {
	return c.channel.Close()
}

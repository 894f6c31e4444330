package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"

	"github.com/rust-lang-libs/eventure/pkg/eventbus"
	"github.com/rust-lang-libs/eventure/pkg/observability"
)

// Consumer is the inbound adapter: it reads records from a consumer
// group and publishes each onto a bus. Offset management stays with
// kafka-go's group reader; dispatch outcomes do not affect commits.
type Consumer struct {
	reader  *kafka.Reader
	bus     eventbus.Publisher
	logger  observability.Logger
	backoff backoff.BackOff
}

// ConsumerOption configures the inbound consumer.
type ConsumerOption func(*Consumer)

// WithConsumerLogger injects a structured logger.
func WithConsumerLogger(logger observability.Logger) ConsumerOption {
	return func(c *Consumer) {
		c.logger = logger
	}
}

// WithBackoff overrides the read-error backoff policy.
func WithBackoff(b backoff.BackOff) ConsumerOption {
	return func(c *Consumer) {
		c.backoff = b
	}
}

// NewConsumer creates an inbound Kafka consumer bound to a bus.
func NewConsumer(cfg Config, bus eventbus.Publisher, opts ...ConsumerOption) (*Consumer, error) {
	if err := cfg.validateConsumer(); err != nil {
		return nil, err
	}
	if bus == nil {
		return nil, errors.New("kafka: bus is required")
	}

	c := &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.Brokers,
			GroupID:     cfg.GroupID,
			GroupTopics: cfg.Topics,
			MinBytes:    cfg.MinBytes,
			MaxBytes:    cfg.MaxBytes,
		}),
		bus:     bus,
		logger:  observability.NewNoopLogger(),
		backoff: backoff.NewExponentialBackOff(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run consumes records and publishes them until ctx is cancelled or the
// bus shuts down. Read errors are retried with exponential backoff;
// bus backpressure re-offers the same message after a backoff pause.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		record, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !c.wait(ctx, "kafka read failed", err) {
				return ctx.Err()
			}
			continue
		}
		c.backoff.Reset()

		msg, err := c.toMessage(record)
		if err != nil {
			c.logger.Error(ctx, "skipping malformed kafka record",
				observability.String("topic", record.Topic),
				observability.Error(err),
			)
			continue
		}

		if err := c.publish(ctx, msg); err != nil {
			return err
		}
	}
}

// publish retries on backpressure and stops when the bus is closed.
func (c *Consumer) publish(ctx context.Context, msg *eventbus.Message) error {
	for {
		outcome, err := c.bus.PublishMessage(ctx, msg)
		switch {
		case errors.Is(err, eventbus.ErrBusClosed):
			return err
		case errors.Is(err, eventbus.ErrBackpressure):
			if !c.wait(ctx, "bus backpressure, retrying publish", err) {
				return ctx.Err()
			}
			continue
		case err != nil:
			c.logger.Error(ctx, "failed to publish inbound message",
				observability.String("topic", msg.Topic()),
				observability.String("message_id", msg.ID()),
				observability.Error(err),
			)
			return nil
		}

		for _, failure := range outcome.Failures() {
			c.logger.Warn(ctx, "handler failed for inbound message",
				observability.String("topic", msg.Topic()),
				observability.String("handler_id", string(failure.HandlerID)),
				observability.Error(failure.Err),
			)
		}
		return nil
	}
}

func (c *Consumer) toMessage(record kafka.Message) (*eventbus.Message, error) {
	headers := make([]eventbus.Header, 0, len(record.Headers))
	for _, h := range record.Headers {
		headers = append(headers, eventbus.Header{Key: h.Key, Value: string(h.Value)})
	}
	return eventbus.NewMessage(record.Topic, record.Value,
		eventbus.WithID(string(record.Key)),
		eventbus.WithHeaders(headers...),
	)
}

// wait sleeps for the next backoff interval. It returns false when ctx
// is cancelled first.
func (c *Consumer) wait(ctx context.Context, reason string, err error) bool {
	interval := c.backoff.NextBackOff()
	if interval == backoff.Stop {
		interval = time.Second
	}

	c.logger.Warn(ctx, reason,
		observability.Duration("retry_in", interval),
		observability.Error(err),
	)

	timer := time.NewTimer(interval)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close releases the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// Package kafka bridges the event bus to Apache Kafka: an outbound
// Transport writing bus messages to topics, and an inbound Consumer
// feeding broker records into a bus.
package kafka

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rust-lang-libs/eventure/pkg/eventbus"
	"github.com/rust-lang-libs/eventure/pkg/observability"
)

// Transport is the outbound adapter. The message topic selects the
// Kafka topic; the message id becomes the record key so retries of the
// same message land on the same partition.
type Transport struct {
	writer *kafka.Writer
	logger observability.Logger
	closed atomic.Bool
}

// TransportOption configures the outbound transport.
type TransportOption func(*Transport)

// WithTransportLogger injects a structured logger.
func WithTransportLogger(logger observability.Logger) TransportOption {
	return func(t *Transport) {
		t.logger = logger
	}
}

// NewTransport creates an outbound Kafka transport.
func NewTransport(cfg Config, opts ...TransportOption) (*Transport, error) {
	if err := cfg.validateProducer(); err != nil {
		return nil, err
	}

	t := &Transport{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchSize:    cfg.BatchSize,
			BatchTimeout: cfg.BatchTimeout,
			MaxAttempts:  cfg.MaxAttempts,
			RequiredAcks: kafka.RequireAll,
		},
		logger: observability.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Send implements eventbus.Transport.
func (t *Transport) Send(ctx context.Context, msg *eventbus.Message) error {
	if t.closed.Load() {
		return ErrTransportClosed
	}

	record := kafka.Message{
		Topic: msg.Topic(),
		Key:   []byte(msg.ID()),
		Value: msg.Payload(),
		Time:  time.Now(),
	}
	for _, h := range msg.Headers() {
		record.Headers = append(record.Headers, kafka.Header{
			Key:   h.Key,
			Value: []byte(h.Value),
		})
	}

	if err := t.writer.WriteMessages(ctx, record); err != nil {
		t.logger.Error(ctx, "failed to write message to kafka",
			observability.String("topic", msg.Topic()),
			observability.String("message_id", msg.ID()),
			observability.Error(err),
		)
		return err
	}

	t.logger.Debug(ctx, "message written to kafka",
		observability.String("topic", msg.Topic()),
		observability.String("message_id", msg.ID()),
	)
	return nil
}

// Close implements eventbus.Transport.
func (t *Transport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	return t.writer.Close()
}

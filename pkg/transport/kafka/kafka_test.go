package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rust-lang-libs/eventure/pkg/eventbus"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, time.Second, cfg.BatchTimeout)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 1, cfg.MinBytes)
	assert.Equal(t, 10<<20, cfg.MaxBytes)
}

func TestNewTransport_RequiresBrokers(t *testing.T) {
	_, err := NewTransport(DefaultConfig())
	assert.ErrorIs(t, err, ErrNoBrokers)
}

func TestNewTransport(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Brokers = []string{"localhost:9092"}

	transport, err := NewTransport(cfg)
	require.NoError(t, err)
	require.NoError(t, transport.Close())

	// Closed transports reject sends without touching the writer.
	msg, err := eventbus.NewMessage("orders", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, transport.Send(context.Background(), msg), ErrTransportClosed)
}

func TestNewConsumer_Validation(t *testing.T) {
	bus, err := eventbus.New(eventbus.Synchronous)
	require.NoError(t, err)

	scenarios := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "missing brokers",
			mutate:  func(cfg *Config) { cfg.Brokers = nil },
			wantErr: ErrNoBrokers,
		},
		{
			name:    "missing topics",
			mutate:  func(cfg *Config) { cfg.Topics = nil },
			wantErr: ErrNoTopics,
		},
		{
			name:    "missing group id",
			mutate:  func(cfg *Config) { cfg.GroupID = "" },
			wantErr: ErrNoGroupID,
		},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Brokers = []string{"localhost:9092"}
			cfg.GroupID = "billing"
			cfg.Topics = []string{"orders"}
			scenario.mutate(&cfg)

			_, err := NewConsumer(cfg, bus)
			assert.ErrorIs(t, err, scenario.wantErr)
		})
	}
}

func TestNewConsumer_RequiresBus(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Brokers = []string{"localhost:9092"}
	cfg.GroupID = "billing"
	cfg.Topics = []string{"orders"}

	_, err := NewConsumer(cfg, nil)
	assert.Error(t, err)
}

func TestConsumer_ToMessage(t *testing.T) {
	bus, err := eventbus.New(eventbus.Synchronous)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Brokers = []string{"localhost:9092"}
	cfg.GroupID = "billing"
	cfg.Topics = []string{"orders"}

	consumer, err := NewConsumer(cfg, bus)
	require.NoError(t, err)
	defer consumer.Close()

	msg, err := consumer.toMessage(kafka.Message{
		Topic: "orders",
		Key:   []byte("msg-7"),
		Value: []byte(`{"order":42}`),
		Headers: []kafka.Header{
			{Key: "correlation_id", Value: []byte("corr-1")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "msg-7", msg.ID())
	assert.Equal(t, "orders", msg.Topic())
	assert.Equal(t, []byte(`{"order":42}`), msg.Payload())

	correlation, ok := msg.Header(eventbus.HeaderCorrelationID)
	assert.True(t, ok)
	assert.Equal(t, "corr-1", correlation)
}

func TestConsumer_ToMessage_EmptyTopic(t *testing.T) {
	bus, err := eventbus.New(eventbus.Synchronous)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Brokers = []string{"localhost:9092"}
	cfg.GroupID = "billing"
	cfg.Topics = []string{"orders"}

	consumer, err := NewConsumer(cfg, bus)
	require.NoError(t, err)
	defer consumer.Close()

	_, err = consumer.toMessage(kafka.Message{Topic: ""})
	assert.ErrorIs(t, err, eventbus.ErrInvalidTopic)
}

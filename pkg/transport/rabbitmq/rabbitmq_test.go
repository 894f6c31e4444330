package rabbitmq

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rust-lang-libs/eventure/pkg/eventbus"
)

func TestNewTransport_RequiresChannel(t *testing.T) {
	_, err := NewTransport(nil, "events")
	assert.ErrorIs(t, err, ErrNilChannel)
}

func TestNewConsumer_Validation(t *testing.T) {
	bus, err := eventbus.New(eventbus.Synchronous)
	require.NoError(t, err)

	_, err = NewConsumer(nil, "orders", bus)
	assert.ErrorIs(t, err, ErrNilChannel)

	_, err = NewConsumer(&amqp.Channel{}, "", bus)
	assert.ErrorIs(t, err, ErrNoQueue)

	_, err = NewConsumer(&amqp.Channel{}, "orders", nil)
	assert.Error(t, err)
}

func TestConsumer_ToMessage(t *testing.T) {
	bus, err := eventbus.New(eventbus.Synchronous)
	require.NoError(t, err)

	consumer, err := NewConsumer(&amqp.Channel{}, "orders", bus)
	require.NoError(t, err)

	msg, err := consumer.toMessage(amqp.Delivery{
		RoutingKey: "orders.created",
		MessageId:  "msg-7",
		Body:       []byte(`{"order":42}`),
		Headers: amqp.Table{
			"correlation_id": "corr-1",
			"attempts":       int32(3), // non-string values are dropped
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "msg-7", msg.ID())
	assert.Equal(t, "orders.created", msg.Topic())
	assert.Equal(t, []byte(`{"order":42}`), msg.Payload())

	correlation, ok := msg.Header(eventbus.HeaderCorrelationID)
	assert.True(t, ok)
	assert.Equal(t, "corr-1", correlation)

	_, ok = msg.Header("attempts")
	assert.False(t, ok)
}

func TestConsumer_ToMessage_GeneratesIDWhenMissing(t *testing.T) {
	bus, err := eventbus.New(eventbus.Synchronous)
	require.NoError(t, err)

	consumer, err := NewConsumer(&amqp.Channel{}, "orders", bus)
	require.NoError(t, err)

	msg, err := consumer.toMessage(amqp.Delivery{RoutingKey: "orders"})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID())
}

func TestConsumer_ToMessage_EmptyRoutingKey(t *testing.T) {
	bus, err := eventbus.New(eventbus.Synchronous)
	require.NoError(t, err)

	consumer, err := NewConsumer(&amqp.Channel{}, "orders", bus)
	require.NoError(t, err)

	_, err = consumer.toMessage(amqp.Delivery{})
	assert.ErrorIs(t, err, eventbus.ErrInvalidTopic)
}

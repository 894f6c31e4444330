package rabbitmq

import "errors"

var (
	// ErrNilChannel indicates no AMQP channel was provided.
	ErrNilChannel = errors.New("rabbitmq: channel is required")

	// ErrNoQueue indicates the consumer was configured without a queue name.
	ErrNoQueue = errors.New("rabbitmq: queue name is required")

	// ErrTransportClosed indicates the outbound transport has been closed.
	ErrTransportClosed = errors.New("rabbitmq: transport is closed")

	// ErrDeliveriesClosed indicates the broker closed the delivery stream.
	ErrDeliveriesClosed = errors.New("rabbitmq: delivery channel closed by broker")
)

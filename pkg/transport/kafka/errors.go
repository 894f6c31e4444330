package kafka

import "errors"

var (
	// ErrNoBrokers indicates no broker address was provided.
	ErrNoBrokers = errors.New("kafka: at least one broker address is required")

	// ErrNoTopics indicates the consumer was configured without topics.
	ErrNoTopics = errors.New("kafka: at least one topic is required")

	// ErrNoGroupID indicates the consumer was configured without a group id.
	ErrNoGroupID = errors.New("kafka: consumer group id is required")

	// ErrTransportClosed indicates the outbound transport has been closed.
	ErrTransportClosed = errors.New("kafka: transport is closed")
)

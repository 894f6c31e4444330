package kafka

import (
	"errors"
	"time"
)

const (
	defaultBatchSize    = 100
	defaultBatchTimeout = time.Second
	defaultMaxAttempts  = 3
	defaultMinBytes     = 1
	defaultMaxBytes     = 10 << 20 // 10 MiB
)

// Config holds the settings shared by the outbound transport and the
// inbound consumer.
type Config struct {
	// Brokers is the list of broker addresses (required).
	Brokers []string

	// GroupID is the consumer group id (required for consumers).
	GroupID string

	// Topics is the list of topics the consumer subscribes to
	// (required for consumers).
	Topics []string

	// BatchSize is the producer batch size. Default: 100.
	BatchSize int

	// BatchTimeout is how long the producer waits to fill a batch.
	// Default: 1s.
	BatchTimeout time.Duration

	// MaxAttempts is the producer write retry limit. Default: 3.
	MaxAttempts int

	// MinBytes and MaxBytes bound the consumer fetch size.
	// Defaults: 1 and 10 MiB.
	MinBytes int
	MaxBytes int
}

// DefaultConfig returns a Config with production defaults. Brokers,
// GroupID and Topics must still be filled in by the caller.
func DefaultConfig() Config {
	return Config{
		BatchSize:    defaultBatchSize,
		BatchTimeout: defaultBatchTimeout,
		MaxAttempts:  defaultMaxAttempts,
		MinBytes:     defaultMinBytes,
		MaxBytes:     defaultMaxBytes,
	}
}

func (c Config) validateProducer() error {
	if len(c.Brokers) == 0 {
		return ErrNoBrokers
	}
	return nil
}

func (c Config) validateConsumer() error {
	var errs []error
	if len(c.Brokers) == 0 {
		errs = append(errs, ErrNoBrokers)
	}
	if len(c.Topics) == 0 {
		errs = append(errs, ErrNoTopics)
	}
	if c.GroupID == "" {
		errs = append(errs, ErrNoGroupID)
	}
	return errors.Join(errs...)
}

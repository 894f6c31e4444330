package eventbus

import (
	"time"

	"github.com/google/uuid"
)

// Well-known header keys. Transports map these onto their native
// metadata where one exists.
const (
	HeaderCorrelationID = "correlation_id"
	HeaderSource        = "source"
	HeaderTimestamp     = "timestamp"
)

// Header is a single message metadata entry. Headers are kept as an
// ordered slice rather than a map so insertion order survives transit.
type Header struct {
	Key   string
	Value string
}

// MessageKind selects the delivery semantics of a single message.
type MessageKind int

const (
	// KindTopic delivers the message to every matching handler.
	KindTopic MessageKind = iota

	// KindQueue delivers the message to the first matching handler only,
	// competing-consumer style.
	KindQueue
)

// Message is one immutable event: a topic identifier, an opaque payload
// and optional metadata headers. The bus never interprets the payload.
type Message struct {
	id      string
	topic   string
	payload []byte
	headers []Header
	kind    MessageKind
}

// MessageOption configures a message at construction time.
type MessageOption func(*Message)

// WithHeader appends a metadata header.
func WithHeader(key, value string) MessageOption {
	return func(m *Message) {
		m.headers = append(m.headers, Header{Key: key, Value: value})
	}
}

// WithHeaders appends multiple metadata headers, preserving order.
func WithHeaders(headers ...Header) MessageOption {
	return func(m *Message) {
		m.headers = append(m.headers, headers...)
	}
}

// WithCorrelationID sets the correlation id header.
func WithCorrelationID(id string) MessageOption {
	return WithHeader(HeaderCorrelationID, id)
}

// WithKind sets the delivery kind. The default is KindTopic.
func WithKind(kind MessageKind) MessageOption {
	return func(m *Message) {
		m.kind = kind
	}
}

// WithID overrides the generated message id. Inbound transport adapters
// use this to preserve the id assigned by the producing process.
func WithID(id string) MessageOption {
	return func(m *Message) {
		m.id = id
	}
}

// NewMessage creates an immutable message for the given topic. It
// returns ErrInvalidTopic when topic is empty. A unique id and a
// timestamp header are assigned unless the caller supplies them.
func NewMessage(topic string, payload []byte, opts ...MessageOption) (*Message, error) {
	if topic == "" {
		return nil, ErrInvalidTopic
	}

	m := &Message{
		topic:   topic,
		payload: payload,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.id == "" {
		m.id = uuid.NewString()
	}
	if _, ok := m.Header(HeaderTimestamp); !ok {
		m.headers = append(m.headers, Header{
			Key:   HeaderTimestamp,
			Value: time.Now().UTC().Format(time.RFC3339Nano),
		})
	}
	return m, nil
}

// ID returns the unique message id.
func (m *Message) ID() string {
	return m.id
}

// Topic returns the topic identifier. Never empty.
func (m *Message) Topic() string {
	return m.topic
}

// Payload returns the opaque payload bytes. Handlers must treat the
// returned slice as read-only.
func (m *Message) Payload() []byte {
	return m.payload
}

// Headers returns a copy of the metadata headers in insertion order.
func (m *Message) Headers() []Header {
	headers := make([]Header, len(m.headers))
	copy(headers, m.headers)
	return headers
}

// Header returns the value of the first header with the given key.
func (m *Message) Header(key string) (string, bool) {
	for _, h := range m.headers {
		if h.Key == key {
			return h.Value, true
		}
	}
	return "", false
}

// Kind returns the delivery kind of this message.
func (m *Message) Kind() MessageKind {
	return m.kind
}

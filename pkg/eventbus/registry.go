package eventbus

import (
	"strings"
	"sync"
)

// Registration is one immutable entry in the Registry: a handler bound
// to a topic pattern under a unique id.
type Registration struct {
	ID      HandlerID
	Pattern string
	Handler Handler
}

type registration struct {
	id      HandlerID
	pattern string
	prefix  string // pattern without the trailing '*'
	glob    bool
	handler Handler
}

func (r registration) matches(topic string) bool {
	if r.glob {
		return strings.HasPrefix(topic, r.prefix)
	}
	return r.pattern == topic
}

// Registry is the thread-safe mapping from topic patterns to handlers.
// Registrations are held in one ordered slice so that exact-match and
// wildcard handlers interleave strictly by registration order during
// lookup. This is a deliberate simplicity-over-precedence choice: a
// wildcard registered before an exact match runs first, and no
// specificity ranking is applied.
//
// Topic patterns are matched by equality, except that a trailing '*'
// turns the pattern into a prefix wildcard: "orders.*" matches
// "orders.created", and a bare "*" matches every topic.
type Registry struct {
	mu      sync.RWMutex
	entries []registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a handler under the given topic pattern and returns its
// id. Registering a second handler under the same pattern adds it; it
// never replaces the first. Returns ErrInvalidTopic for an empty
// pattern and ErrNilHandler for a nil handler.
func (r *Registry) Register(pattern string, handler Handler) (HandlerID, error) {
	if pattern == "" {
		return "", ErrInvalidTopic
	}
	if handler == nil {
		return "", ErrNilHandler
	}

	id, err := newHandlerID()
	if err != nil {
		return "", err
	}

	entry := registration{
		id:      id,
		pattern: pattern,
		handler: handler,
	}
	if strings.HasSuffix(pattern, "*") {
		entry.glob = true
		entry.prefix = strings.TrimSuffix(pattern, "*")
	}

	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()
	return id, nil
}

// Deregister removes the handler with the given id. It is idempotent:
// removing an id that is absent (or already removed) is a no-op.
func (r *Registry) Deregister(id HandlerID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, entry := range r.entries {
		if entry.id == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// Lookup returns a stable snapshot of all registrations matching topic,
// in registration order. The snapshot is a copy: registrations made
// after Lookup returns never join a dispatch already in flight, and
// handler execution happens without holding the registry lock.
func (r *Registry) Lookup(topic string) []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]Registration, 0, len(r.entries))
	for _, entry := range r.entries {
		if entry.matches(topic) {
			matched = append(matched, Registration{
				ID:      entry.id,
				Pattern: entry.pattern,
				Handler: entry.handler,
			})
		}
	}
	return matched
}

// Len returns the number of registered handlers across all patterns.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

package eventbus

import (
	"context"
	"sync"
	"testing"
)

func nopHandler() Handler {
	return HandlerFunc(func(ctx context.Context, msg *Message) error {
		return nil
	})
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	id, err := registry.Register("orders", nopHandler())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if id == "" {
		t.Fatal("Register returned empty handler id")
	}
	if registry.Len() != 1 {
		t.Errorf("expected 1 registration, got %d", registry.Len())
	}
}

func TestRegistry_Register_EmptyPattern(t *testing.T) {
	registry := NewRegistry()

	if _, err := registry.Register("", nopHandler()); err != ErrInvalidTopic {
		t.Errorf("expected ErrInvalidTopic, got %v", err)
	}
}

func TestRegistry_Register_NilHandler(t *testing.T) {
	registry := NewRegistry()

	if _, err := registry.Register("orders", nil); err != ErrNilHandler {
		t.Errorf("expected ErrNilHandler, got %v", err)
	}
}

func TestRegistry_Register_SamePatternAdds(t *testing.T) {
	registry := NewRegistry()

	first, _ := registry.Register("orders", nopHandler())
	second, _ := registry.Register("orders", nopHandler())

	if first == second {
		t.Error("expected distinct handler ids")
	}
	if got := len(registry.Lookup("orders")); got != 2 {
		t.Errorf("expected 2 matches, got %d", got)
	}
}

func TestRegistry_Lookup_RegistrationOrder(t *testing.T) {
	registry := NewRegistry()

	// Wildcard and exact patterns interleave strictly by registration
	// order, with no specificity ranking.
	first, _ := registry.Register("orders.*", nopHandler())
	second, _ := registry.Register("orders.created", nopHandler())
	third, _ := registry.Register("*", nopHandler())

	matched := registry.Lookup("orders.created")
	if len(matched) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matched))
	}

	want := []HandlerID{first, second, third}
	for i, reg := range matched {
		if reg.ID != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], reg.ID)
		}
	}
}

func TestRegistry_Lookup_ExactAndWildcard(t *testing.T) {
	registry := NewRegistry()

	registry.Register("orders.created", nopHandler())
	registry.Register("orders.*", nopHandler())
	registry.Register("payments.*", nopHandler())

	scenarios := []struct {
		topic string
		want  int
	}{
		{"orders.created", 2},
		{"orders.canceled", 1},
		{"payments.settled", 1},
		{"shipments.dispatched", 0},
	}

	for _, scenario := range scenarios {
		if got := len(registry.Lookup(scenario.topic)); got != scenario.want {
			t.Errorf("topic %q: expected %d matches, got %d", scenario.topic, scenario.want, got)
		}
	}
}

func TestRegistry_Lookup_BareWildcardMatchesEverything(t *testing.T) {
	registry := NewRegistry()
	registry.Register("*", nopHandler())

	for _, topic := range []string{"orders", "payments.settled", "a"} {
		if got := len(registry.Lookup(topic)); got != 1 {
			t.Errorf("topic %q: expected 1 match, got %d", topic, got)
		}
	}
}

func TestRegistry_Deregister(t *testing.T) {
	registry := NewRegistry()

	id, _ := registry.Register("orders", nopHandler())
	keep, _ := registry.Register("orders", nopHandler())

	registry.Deregister(id)

	matched := registry.Lookup("orders")
	if len(matched) != 1 {
		t.Fatalf("expected 1 match after deregister, got %d", len(matched))
	}
	if matched[0].ID != keep {
		t.Errorf("wrong handler removed: expected %s to remain, got %s", keep, matched[0].ID)
	}
}

func TestRegistry_Deregister_Idempotent(t *testing.T) {
	registry := NewRegistry()

	id, _ := registry.Register("orders", nopHandler())
	other, _ := registry.Register("orders", nopHandler())

	registry.Deregister(id)
	registry.Deregister(id) // second removal is a no-op

	matched := registry.Lookup("orders")
	if len(matched) != 1 || matched[0].ID != other {
		t.Error("repeated deregister affected other handlers")
	}
}

func TestRegistry_Lookup_SnapshotIsStable(t *testing.T) {
	registry := NewRegistry()
	registry.Register("orders", nopHandler())

	snapshot := registry.Lookup("orders")
	registry.Register("orders", nopHandler())

	if len(snapshot) != 1 {
		t.Errorf("snapshot grew after later registration: %d entries", len(snapshot))
	}
}

func TestRegistry_ConcurrentRegisterLookupDeregister(t *testing.T) {
	registry := NewRegistry()
	var wg sync.WaitGroup

	ids := make(chan HandlerID, 100)

	numOperations := 100
	wg.Add(numOperations * 3)

	for i := 0; i < numOperations; i++ {
		go func() {
			defer wg.Done()
			id, err := registry.Register("stress.*", nopHandler())
			if err != nil {
				t.Errorf("Register failed: %v", err)
				return
			}
			ids <- id
		}()

		go func() {
			defer wg.Done()
			registry.Lookup("stress.event")
		}()

		go func() {
			defer wg.Done()
			select {
			case id := <-ids:
				registry.Deregister(id)
			default:
			}
		}()
	}

	wg.Wait()
}

func BenchmarkRegistry_Lookup(b *testing.B) {
	registry := NewRegistry()
	for i := 0; i < 10; i++ {
		registry.Register("bench.*", nopHandler())
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		registry.Lookup("bench.event")
	}
}

func BenchmarkRegistry_Register(b *testing.B) {
	registry := NewRegistry()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		registry.Register("bench.event", nopHandler())
	}
}

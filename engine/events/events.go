// Package events implements single-pass delivery of committed state
// changes to subscribers. Handlers receive each batch once; they are not
// re-dispatched.
package events

import (
	"sync"

	"github.com/nathoo/elysium/types"
)

// Event types emitted by the engine.
const (
	GameStarted          = "game_started"
	GoalDrawn            = "goal_drawn"
	GoalCast             = "goal_cast"
	EnergyBound          = "energy_bound"
	EnergyToggled        = "energy_toggled"
	CriterionSet         = "criterion_set"
	GoalCompleted        = "goal_completed"
	EnergyReleased       = "energy_released"
	GoalAdded            = "goal_added"
	StackReordered       = "stack_reordered"
	BattlefieldReordered = "battlefield_reordered"
	StateRestored        = "state_restored"
)

// Handler receives the events produced by one mutating engine call.
type Handler func(batch []types.Event)

// Bus fans event batches out to subscribers in subscription order.
type Bus struct {
	mu       sync.Mutex
	next     int
	handlers []subscription
}

type subscription struct {
	id int
	fn Handler
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	id := b.next
	b.handlers = append(b.handlers, subscription{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.handlers {
			if s.id == id {
				b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
				return
			}
		}
	}
}

// Dispatch delivers batch to every subscriber. Empty batches are dropped:
// a rejected transition produces no notification.
func (b *Bus) Dispatch(batch []types.Event) {
	if len(batch) == 0 {
		return
	}

	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, s := range b.handlers {
		handlers = append(handlers, s.fn)
	}
	b.mu.Unlock()

	for _, fn := range handlers {
		fn(batch)
	}
}

// New builds an event with the given type and key/value pairs.
func New(eventType string, kv ...any) types.Event {
	data := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			data[k] = kv[i+1]
		}
	}
	return types.Event{Type: eventType, Data: data}
}

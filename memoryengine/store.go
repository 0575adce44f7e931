package memoryengine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marketboomer/event-sourcery-postgres/reactor"
)

// EventStore is an in-memory, append-only event log implementing both
// reactor.EventSource and reactor.EventSink. Sequence IDs start at 1 and
// increase by one per append.
type EventStore struct {
	mu     sync.RWMutex
	events reactor.Events
}

// NewEventStore constructs an empty in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{}
}

// Append stores a copy of the event with the next sequence ID assigned and
// returns the stored event. A missing UUID or OccurredAt is filled in, so
// hand-built test events round-trip like store-built ones.
func (s *EventStore) Append(_ context.Context, event reactor.Event) (reactor.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event.ID = int64(len(s.events)) + 1

	if event.UUID == "" {
		event.UUID = uuid.NewString()
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	event.Body = copyBody(event.Body)
	s.events = append(s.events, event)

	return event, nil
}

// GetNextFrom returns up to limit events with ID greater than position,
// ascending by ID.
func (s *EventStore) GetNextFrom(_ context.Context, position int64, limit int) (reactor.Events, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if position < 0 {
		position = 0
	}

	next := make(reactor.Events, 0, limit)

	for _, event := range s.events {
		if event.ID <= position {
			continue
		}

		next = append(next, event)

		if limit > 0 && len(next) == limit {
			break
		}
	}

	return next, nil
}

// Size returns the number of events in the store.
func (s *EventStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.events)
}

// copyBody shields stored events from later mutation of the caller's map.
func copyBody(body reactor.Body) reactor.Body {
	copied := make(reactor.Body, len(body))

	for key, value := range body {
		copied[key] = value
	}

	return copied
}

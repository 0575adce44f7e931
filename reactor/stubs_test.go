package reactor_test

import (
	"context"
	"sync"

	"github.com/marketboomer/event-sourcery-postgres/reactor"
)

// trackerStub is an in-memory reactor.PositionTracker recording call counts
// for assertions.
type trackerStub struct {
	mu         sync.Mutex
	positions  map[string]int64
	setupCalls int
}

func newTrackerStub() *trackerStub {
	return &trackerStub{positions: make(map[string]int64)}
}

func (t *trackerStub) Setup(_ context.Context, processorName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.setupCalls++

	if _, ok := t.positions[processorName]; !ok {
		t.positions[processorName] = 0
	}

	return nil
}

func (t *trackerStub) Reset(_ context.Context, processorName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.positions[processorName] = 0

	return nil
}

func (t *trackerStub) LastProcessedEventID(_ context.Context, processorName string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.positions[processorName], nil
}

func (t *trackerStub) Advance(_ context.Context, processorName string, eventID int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if eventID > t.positions[processorName] {
		t.positions[processorName] = eventID
	}

	return nil
}

// sinkStub is a reactor.EventSink recording appended events, optionally
// failing every append with err.
type sinkStub struct {
	events      []reactor.Event
	err         error
	appendCalls int
}

func (s *sinkStub) Append(_ context.Context, event reactor.Event) (reactor.Event, error) {
	s.appendCalls++

	if s.err != nil {
		return reactor.Event{}, s.err
	}

	event.ID = int64(len(s.events)) + 1
	s.events = append(s.events, event)

	return event, nil
}

// sourceStub is a reactor.EventSource serving a fixed slice of events.
type sourceStub struct {
	events reactor.Events
}

func (s *sourceStub) GetNextFrom(_ context.Context, position int64, limit int) (reactor.Events, error) {
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

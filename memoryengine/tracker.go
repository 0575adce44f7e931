package memoryengine

import (
	"context"
	"sync"
)

// Tracker is an in-memory reactor.PositionTracker. Positions only move
// forward; Advance is atomic per processor name.
type Tracker struct {
	mu        sync.RWMutex
	positions map[string]int64
}

// NewTracker constructs an empty in-memory tracker.
func NewTracker() *Tracker {
	return &Tracker{
		positions: make(map[string]int64),
	}
}

// Setup idempotently creates the position record at zero if absent.
func (t *Tracker) Setup(_ context.Context, processorName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.positions[processorName]; !ok {
		t.positions[processorName] = 0
	}

	return nil
}

// Reset sets the recorded position back to zero.
func (t *Tracker) Reset(_ context.Context, processorName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.positions[processorName] = 0

	return nil
}

// LastProcessedEventID returns the recorded position, defaulting to zero.
func (t *Tracker) LastProcessedEventID(_ context.Context, processorName string) (int64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.positions[processorName], nil
}

// Advance records eventID as the last processed position if it is greater
// than the current one.
func (t *Tracker) Advance(_ context.Context, processorName string, eventID int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if eventID > t.positions[processorName] {
		t.positions[processorName] = eventID
	}

	return nil
}

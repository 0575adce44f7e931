package reactor

import "context"

// EventSource enumerates events from a given position onward.
type EventSource interface {
	// GetNextFrom returns up to limit events with ID greater than position,
	// ascending by ID. It returns an empty slice when the stream is exhausted.
	GetNextFrom(ctx context.Context, position int64, limit int) (Events, error)
}

// EventSink durably appends a new event.
type EventSink interface {
	// Append persists the event and returns the stored event with its
	// assigned sequence ID. It fails with a store-level error if the
	// append cannot be durably committed.
	Append(ctx context.Context, event Event) (Event, error)
}

// PositionTracker is a durable mapping from processor name to the last
// processed event sequence number.
//
// Implementations must tolerate concurrent use across distinct processor
// names; Advance must be atomic per processor name (compare-and-set or
// equivalent) so that positions never move backwards.
type PositionTracker interface {
	// Setup idempotently ensures a position record exists for the processor,
	// creating it at zero if absent. Calling it repeatedly is a no-op.
	Setup(ctx context.Context, processorName string) error

	// Reset sets the recorded position for the processor back to zero.
	Reset(ctx context.Context, processorName string) error

	// LastProcessedEventID returns the recorded position for the processor,
	// defaulting to zero if it was never set.
	LastProcessedEventID(ctx context.Context, processorName string) (int64, error)

	// Advance records eventID as the last processed position for the
	// processor. Positions only move forward; advancing to a position at or
	// below the current one is a no-op.
	Advance(ctx context.Context, processorName string, eventID int64) error
}

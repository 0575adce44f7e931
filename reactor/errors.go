package reactor

import (
	"errors"
	"fmt"
)

var (
	// ErrNilDefinition is returned when a Reactor is constructed without a Definition.
	ErrNilDefinition = errors.New("reactor definition must be provided")

	// ErrEmptyProcessorName is returned when a Definition is built with an empty name.
	ErrEmptyProcessorName = errors.New("processor name must not be empty")

	// ErrNilHandler is returned when a handler registration supplies a nil function.
	ErrNilHandler = errors.New("event handler must not be nil")

	// ErrTrackerMissing is returned when a Reactor is constructed without a
	// position tracker and none is available from the supplied defaults.
	ErrTrackerMissing = errors.New("position tracker must be provided")

	// ErrEmitterDependenciesMissing is returned when a Definition declares
	// emittable event types but the Reactor is constructed without both an
	// event source and an event sink.
	ErrEmitterDependenciesMissing = errors.New(
		"reactor declares emittable event types but event source and/or event sink are missing")

	// ErrEventSinkMissing is returned when an emission is attempted on a
	// Reactor that has no event sink bound.
	ErrEventSinkMissing = errors.New("emission attempted without an event sink")
)

// ProcessingError signals a failure inside the emission pipeline while a
// handler was processing a source event. It satisfies errors.Is for the
// sentinel it wraps.
type ProcessingError struct {
	ProcessorName string
	EventType     EventTypeString
	Err           error
}

// Error returns the error message naming the offending event type.
func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: processor %q, event type %q", e.Err, e.ProcessorName, e.EventType)
}

// Unwrap returns the wrapped sentinel error.
func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// ErrEmittingUndeclaredEventType is wrapped in a ProcessingError when emit
// is called with an event type that is not in the definition's emit whitelist.
var ErrEmittingUndeclaredEventType = errors.New("event type is not declared as emittable")

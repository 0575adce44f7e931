package reactor

import "context"

// Reactor binds a Definition to a concrete PositionTracker, EventSource and
// EventSink and processes events dispatched to it.
//
// A Reactor is not internally concurrent: Process is expected to be invoked
// sequentially, once per event, by a single dispatch loop per instance.
// Multiple Reactor instances may run concurrently against the same store.
type Reactor struct {
	definition *Definition
	tracker    PositionTracker
	source     EventSource
	sink       EventSink
	state      State
}

// Option configures a Reactor during construction.
type Option func(*Reactor)

// WithTracker binds the position tracker.
func WithTracker(tracker PositionTracker) Option {
	return func(r *Reactor) {
		r.tracker = tracker
	}
}

// WithEventSource binds the event source used by emitting reactors.
func WithEventSource(source EventSource) Option {
	return func(r *Reactor) {
		r.source = source
	}
}

// WithEventSink binds the event sink that emitted events are appended to.
func WithEventSink(sink EventSink) Option {
	return func(r *Reactor) {
		r.sink = sink
	}
}

// New constructs a Reactor for the given Definition.
//
// A tracker is always required. An event source and an event sink are
// individually optional, unless the definition declares emittable event
// types, in which case both must be supplied and construction fails with
// ErrEmitterDependenciesMissing otherwise.
func New(definition *Definition, options ...Option) (*Reactor, error) {
	if definition == nil {
		return nil, ErrNilDefinition
	}

	r := &Reactor{
		definition: definition,
		state:      make(State),
	}

	for _, option := range options {
		option(r)
	}

	if r.tracker == nil {
		return nil, ErrTrackerMissing
	}

	if definition.declaresEmissions() && (r.source == nil || r.sink == nil) {
		return nil, ErrEmitterDependenciesMissing
	}

	return r, nil
}

// Definition returns the immutable definition this Reactor was built from.
func (r *Reactor) Definition() *Definition {
	return r.definition
}

// State returns the mutable instance state handlers write to. It is safe to
// inspect between Process calls; the Reactor itself never interprets it.
func (r *Reactor) State() State {
	return r.state
}

// Setup idempotently ensures a position record exists for this reactor's
// processor name, creating it at zero if absent. It never requires an event
// source or sink, even for definitions that declare emissions.
func (r *Reactor) Setup(ctx context.Context) error {
	return r.tracker.Setup(ctx, r.definition.processorName)
}

// Reset sets the recorded stream position for this reactor back to zero.
// Previously emitted events are untouched; only where the dispatch loop
// resumes reading from is affected.
func (r *Reactor) Reset(ctx context.Context) error {
	return r.tracker.Reset(ctx, r.definition.processorName)
}

// LastProcessedEventID returns the reactor's recorded stream position.
func (r *Reactor) LastProcessedEventID(ctx context.Context) (int64, error) {
	return r.tracker.LastProcessedEventID(ctx, r.definition.processorName)
}

// Process dispatches the event to the handler registered for its type.
//
// Events with no registered handler are silently ignored; this lets a
// reactor bound to a shared stream react selectively. Handler errors
// propagate to the caller unchanged; this layer neither retries nor
// swallows them.
func (r *Reactor) Process(ctx context.Context, event Event) error {
	handler, ok := r.definition.handlerFor(event.Type)
	if !ok {
		return nil
	}

	emitter := &Emitter{
		reactor:     r,
		sourceEvent: event,
	}

	return handler(ctx, event, emitter, r.state)
}

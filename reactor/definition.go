package reactor

import "context"

// Handler processes a single event. The Emitter is only usable while the
// handler runs; state is the reactor's mutable instance state, which
// survives the Process call for inspection by callers and tests.
type Handler func(ctx context.Context, event Event, emitter *Emitter, state State) error

// State is the per-reactor-instance mutable state handlers may read and
// write. It is not part of the runtime's contract beyond surviving
// individual Process calls.
type State = map[string]any

// Definition is the immutable, per-reactor-type registry built at
// declaration time: the mapping from event type to handler and the set of
// event types the reactor is permitted to emit.
//
// Build one with NewDefinition and share it between any number of Reactor
// instances.
type Definition struct {
	processorName  string
	handlers       map[EventTypeString]Handler
	emittableTypes map[EventTypeString]struct{}
}

// DefinitionOption registers handlers and emission declarations on a
// Definition while it is being built.
type DefinitionOption func(*Definition) error

// Process registers handler to run whenever an event of the given type is
// processed. It may be supplied multiple times for distinct types.
// Registering the same event type twice overwrites the previous handler;
// the last registration wins.
func Process(eventType EventTypeString, handler Handler) DefinitionOption {
	return func(d *Definition) error {
		if handler == nil {
			return ErrNilHandler
		}

		d.handlers[CanonicalEventType(eventType)] = handler

		return nil
	}
}

// EmitsEvents declares event types this reactor may emit. Multiple
// declarations are additive: the emit whitelist is the union of all
// declared types.
func EmitsEvents(eventTypes ...EventTypeString) DefinitionOption {
	return func(d *Definition) error {
		for _, eventType := range eventTypes {
			d.emittableTypes[CanonicalEventType(eventType)] = struct{}{}
		}

		return nil
	}
}

// NewDefinition builds an immutable reactor Definition. The processor name
// is the tracking key under which this reactor type records its stream
// position.
func NewDefinition(processorName string, options ...DefinitionOption) (*Definition, error) {
	if processorName == "" {
		return nil, ErrEmptyProcessorName
	}

	def := &Definition{
		processorName:  processorName,
		handlers:       make(map[EventTypeString]Handler),
		emittableTypes: make(map[EventTypeString]struct{}),
	}

	for _, option := range options {
		if err := option(def); err != nil {
			return nil, err
		}
	}

	return def, nil
}

// ProcessorName returns the tracking key for this reactor type.
func (d *Definition) ProcessorName() string {
	return d.processorName
}

// Processes reports whether a handler is registered for the given event
// type name. The name is canonicalized before comparison, so any
// representation of the registered type matches.
func (d *Definition) Processes(eventType EventTypeString) bool {
	_, ok := d.handlers[CanonicalEventType(eventType)]

	return ok
}

// EmitsEvent reports whether the given event type is in the emit whitelist.
// It returns false, not an error, for definitions with no emission
// declarations at all.
func (d *Definition) EmitsEvent(eventType EventTypeString) bool {
	_, ok := d.emittableTypes[CanonicalEventType(eventType)]

	return ok
}

// HandledEventTypes returns the canonical names of all event types a
// handler is registered for.
func (d *Definition) HandledEventTypes() []EventTypeString {
	types := make([]EventTypeString, 0, len(d.handlers))

	for eventType := range d.handlers {
		types = append(types, eventType)
	}

	return types
}

// EmittableEventTypes returns the canonical names of the emit whitelist.
func (d *Definition) EmittableEventTypes() []EventTypeString {
	types := make([]EventTypeString, 0, len(d.emittableTypes))

	for eventType := range d.emittableTypes {
		types = append(types, eventType)
	}

	return types
}

// declaresEmissions reports whether the emit whitelist is non-empty.
func (d *Definition) declaresEmissions() bool {
	return len(d.emittableTypes) > 0
}

func (d *Definition) handlerFor(eventType EventTypeString) (Handler, bool) {
	handler, ok := d.handlers[CanonicalEventType(eventType)]

	return handler, ok
}

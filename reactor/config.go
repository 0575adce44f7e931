package reactor

// Defaults is the process-wide default configuration a composition root can
// set up once at process start: a default event source, event sink and
// position tracker. It is a convenience for wiring many reactors against
// shared infrastructure; every dependency stays independently overridable
// per instance.
type Defaults struct {
	EventSource EventSource
	EventSink   EventSink
	Tracker     PositionTracker
}

// NewReactor constructs a Reactor with the defaults filled in for every
// dependency not explicitly supplied through options. Options are applied
// after the defaults, so WithTracker, WithEventSource and WithEventSink
// override them per instance.
func (d Defaults) NewReactor(definition *Definition, options ...Option) (*Reactor, error) {
	resolved := make([]Option, 0, len(options)+3)

	if d.Tracker != nil {
		resolved = append(resolved, WithTracker(d.Tracker))
	}

	if d.EventSource != nil {
		resolved = append(resolved, WithEventSource(d.EventSource))
	}

	if d.EventSink != nil {
		resolved = append(resolved, WithEventSink(d.EventSink))
	}

	resolved = append(resolved, options...)

	return New(definition, resolved...)
}

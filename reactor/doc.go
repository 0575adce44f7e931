// Package reactor provides the runtime for event-sourced reactors:
// stream consumers that react to declared event types and may emit new,
// causally linked events back into the stream while doing so.
//
// A reactor is described by an immutable Definition which maps event types
// to handlers and declares the closed set of event types the reactor is
// permitted to emit:
//
//	def, _ := reactor.NewDefinition("welcome_email",
//		reactor.Process(TermsAcceptedEventType, sendWelcomeEmail),
//		reactor.EmitsEvents(WelcomeEmailSentEventType),
//	)
//
// A Reactor binds a Definition to a PositionTracker and, when the definition
// declares emissions, to an EventSource and an EventSink:
//
//	r, _ := reactor.New(def,
//		reactor.WithTracker(tracker),
//		reactor.WithEventSource(store),
//		reactor.WithEventSink(store),
//	)
//
// Handlers receive the event being processed together with an Emitter.
// Every event emitted through the Emitter is stamped with causation and
// correlation identifiers derived from the event being processed, checked
// against the definition's emit whitelist, and appended before any
// caller-supplied side-effecting action runs.
//
// The Runner drives a Reactor against an EventSource, resuming from the
// tracker's recorded position and advancing it per processed event. Retry
// and backoff policy live outside this package.
package reactor

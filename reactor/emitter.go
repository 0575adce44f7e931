package reactor

import "context"

// BodyMutation is invoked with the mutable body of an event about to be
// emitted, allowing last-moment enrichment before the event is appended.
type BodyMutation func(body Body)

// PostAppendAction runs only after the emitted event has been durably
// appended. Use it for side effects with external consequences (sending an
// email, calling a third-party API) that must never run without a matching
// event in the store.
type PostAppendAction func() error

// EmitOption configures a single emission.
type EmitOption func(*emitConfig)

type emitConfig struct {
	mutation BodyMutation
	action   PostAppendAction
}

// WithBodyMutation supplies a callback that mutates the event body in place
// before the append, after the whitelist check and causal stamping.
func WithBodyMutation(mutation BodyMutation) EmitOption {
	return func(cfg *emitConfig) {
		cfg.mutation = mutation
	}
}

// WithPostAppendAction supplies an action that runs once, only after the
// append succeeded. If the append fails the action does not run.
func WithPostAppendAction(action PostAppendAction) EmitOption {
	return func(cfg *emitConfig) {
		cfg.action = action
	}
}

// Emitter is the emission capability handed to handlers. It is bound to the
// source event currently being processed; the pipeline owns the causal
// metadata of every emitted event, the caller owns type, aggregate ID and
// body.
type Emitter struct {
	reactor     *Reactor
	sourceEvent Event
}

// SourceEvent returns the event whose processing this Emitter belongs to.
func (e *Emitter) SourceEvent() Event {
	return e.sourceEvent
}

// Emit runs the emission pipeline for the given event:
//
//  1. The event type is checked against the definition's emit whitelist; an
//     undeclared type fails with a ProcessingError and nothing is appended.
//  2. CausationID is set to the source event's UUID and CorrelationID to the
//     source event's CorrelationID, or to the source event's UUID when it
//     starts a new causal chain. Caller-supplied values are overwritten.
//  3. An optional body mutation runs against the event body.
//  4. The event is appended via the sink, which assigns its sequence ID.
//  5. An optional post-append action runs, only after a successful append.
//
// Emit returns the stored event. Append failures propagate and suppress
// the action.
func (e *Emitter) Emit(ctx context.Context, event Event, options ...EmitOption) (Event, error) {
	var cfg emitConfig

	for _, option := range options {
		option(&cfg)
	}

	if e.reactor.sink == nil {
		return Event{}, ErrEventSinkMissing
	}

	if !e.reactor.definition.EmitsEvent(event.Type) {
		return Event{}, &ProcessingError{
			ProcessorName: e.reactor.definition.processorName,
			EventType:     event.Type,
			Err:           ErrEmittingUndeclaredEventType,
		}
	}

	event.CausationID = e.sourceEvent.UUID

	if e.sourceEvent.CorrelationID != "" {
		event.CorrelationID = e.sourceEvent.CorrelationID
	} else {
		event.CorrelationID = e.sourceEvent.UUID
	}

	if cfg.mutation != nil {
		if event.Body == nil {
			event.Body = Body{}
		}

		cfg.mutation(event.Body)
	}

	storedEvent, err := e.reactor.sink.Append(ctx, event)
	if err != nil {
		return Event{}, err
	}

	if cfg.action != nil {
		if actionErr := cfg.action(); actionErr != nil {
			return storedEvent, actionErr
		}
	}

	return storedEvent, nil
}

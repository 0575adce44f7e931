package reactor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketboomer/event-sourcery-postgres/reactor"
)

// emitThrough constructs an emitting reactor around the given sink, runs a
// handler processing sourceEvent which emits emitted with the given
// options, and returns the stored event and the emit error.
func emitThrough(
	t *testing.T,
	sink *sinkStub,
	sourceEvent reactor.Event,
	emitted reactor.Event,
	options ...reactor.EmitOption,
) (reactor.Event, error) {
	t.Helper()

	var (
		stored  reactor.Event
		emitErr error
	)

	def, err := reactor.NewDefinition("emitting_reactor",
		reactor.Process(sourceEvent.Type, func(
			ctx context.Context, _ reactor.Event, emitter *reactor.Emitter, _ reactor.State,
		) error {
			stored, emitErr = emitter.Emit(ctx, emitted, options...)
			return nil
		}),
		reactor.EmitsEvents("welcome_email_sent"),
	)
	require.NoError(t, err)

	r, err := reactor.New(def,
		reactor.WithTracker(newTrackerStub()),
		reactor.WithEventSource(&sourceStub{}),
		reactor.WithEventSink(sink),
	)
	require.NoError(t, err)

	require.NoError(t, r.Process(context.Background(), sourceEvent))

	return stored, emitErr
}

func Test_Emit_When_SourceEventCarriesACorrelationID(t *testing.T) {
	// arrange
	sink := &sinkStub{}
	sourceEvent := reactor.NewEvent("terms_accepted", "user-1", nil)
	sourceEvent.CorrelationID = "corr-1"

	// act
	stored, err := emitThrough(t, sink, sourceEvent,
		reactor.NewEvent("welcome_email_sent", "user-1", nil))

	// assert
	require.NoError(t, err)
	assert.Equal(t, sourceEvent.UUID, stored.CausationID)
	assert.Equal(t, "corr-1", stored.CorrelationID)
	assert.Equal(t, int64(1), stored.ID)
}

func Test_Emit_When_SourceEventStartsANewCausalChain(t *testing.T) {
	// arrange
	sink := &sinkStub{}
	sourceEvent := reactor.NewEvent("terms_accepted", "user-1", nil)

	// act
	stored, err := emitThrough(t, sink, sourceEvent,
		reactor.NewEvent("welcome_email_sent", "user-1", nil))

	// assert: correlation falls back to the source event's own uuid
	require.NoError(t, err)
	assert.Equal(t, sourceEvent.UUID, stored.CausationID)
	assert.Equal(t, sourceEvent.UUID, stored.CorrelationID)
}

func Test_Emit_When_CallerPresetsCausalMetadata(t *testing.T) {
	// arrange
	sink := &sinkStub{}
	sourceEvent := reactor.NewEvent("terms_accepted", "user-1", nil)

	emitted := reactor.NewEvent("welcome_email_sent", "user-1", nil)
	emitted.CausationID = "spoofed-causation"
	emitted.CorrelationID = "spoofed-correlation"

	// act
	stored, err := emitThrough(t, sink, sourceEvent, emitted)

	// assert: the pipeline owns the causal metadata
	require.NoError(t, err)
	assert.Equal(t, sourceEvent.UUID, stored.CausationID)
	assert.Equal(t, sourceEvent.UUID, stored.CorrelationID)
}

func Test_Emit_When_EventTypeIsNotDeclared(t *testing.T) {
	// arrange
	sink := &sinkStub{}
	sourceEvent := reactor.NewEvent("terms_accepted", "user-1", nil)

	// act
	_, err := emitThrough(t, sink, sourceEvent,
		reactor.NewEvent("account_closed", "user-1", nil))

	// assert: processing error naming the type, nothing appended
	require.ErrorIs(t, err, reactor.ErrEmittingUndeclaredEventType)

	var processingErr *reactor.ProcessingError
	require.ErrorAs(t, err, &processingErr)
	assert.Equal(t, "account_closed", processingErr.EventType)
	assert.Equal(t, "emitting_reactor", processingErr.ProcessorName)
	assert.Equal(t, 0, sink.appendCalls)
}

func Test_Emit_When_BodyMutationIsSupplied(t *testing.T) {
	// arrange
	sink := &sinkStub{}
	sourceEvent := reactor.NewEvent("terms_accepted", "user-1", nil)

	// act
	stored, err := emitThrough(t, sink, sourceEvent,
		reactor.NewEvent("welcome_email_sent", "user-1", reactor.Body{"email": "a@b.c"}),
		reactor.WithBodyMutation(func(body reactor.Body) {
			body["token"] = "generated-token"
		}),
	)

	// assert: the mutation ran before the append and is visible in the stored event
	require.NoError(t, err)
	assert.Equal(t, "generated-token", stored.Body["token"])
	assert.Equal(t, "a@b.c", stored.Body["email"])
	assert.Equal(t, "generated-token", sink.events[0].Body["token"])
}

func Test_Emit_When_PostAppendActionIsSupplied(t *testing.T) {
	// arrange
	sink := &sinkStub{}
	sourceEvent := reactor.NewEvent("terms_accepted", "user-1", nil)

	actionCalls := 0
	appendsWhenActionRan := -1

	// act
	_, err := emitThrough(t, sink, sourceEvent,
		reactor.NewEvent("welcome_email_sent", "user-1", nil),
		reactor.WithPostAppendAction(func() error {
			actionCalls++
			appendsWhenActionRan = sink.appendCalls
			return nil
		}),
	)

	// assert: the action ran exactly once, after the append
	require.NoError(t, err)
	assert.Equal(t, 1, actionCalls)
	assert.Equal(t, 1, appendsWhenActionRan)
}

func Test_Emit_When_AppendFails(t *testing.T) {
	// arrange
	storeErr := errors.New("disk on fire")
	sink := &sinkStub{err: storeErr}
	sourceEvent := reactor.NewEvent("terms_accepted", "user-1", nil)

	actionCalls := 0

	// act
	_, err := emitThrough(t, sink, sourceEvent,
		reactor.NewEvent("welcome_email_sent", "user-1", nil),
		reactor.WithPostAppendAction(func() error {
			actionCalls++
			return nil
		}),
	)

	// assert: the failure propagates and the action never ran
	require.ErrorIs(t, err, storeErr)
	assert.Equal(t, 0, actionCalls)
}

func Test_Emit_When_ReactorHasNoSinkBound(t *testing.T) {
	// arrange: empty whitelist, so construction without a sink is legal
	var emitErr error

	def, err := reactor.NewDefinition("non_emitting_reactor",
		reactor.Process("terms_accepted", func(
			ctx context.Context, _ reactor.Event, emitter *reactor.Emitter, _ reactor.State,
		) error {
			_, emitErr = emitter.Emit(ctx, reactor.NewEvent("welcome_email_sent", "user-1", nil))
			return nil
		}),
	)
	require.NoError(t, err)

	r, err := reactor.New(def, reactor.WithTracker(newTrackerStub()))
	require.NoError(t, err)

	// act
	require.NoError(t, r.Process(context.Background(), reactor.NewEvent("terms_accepted", "user-1", nil)))

	// assert: emit fails fast
	assert.ErrorIs(t, emitErr, reactor.ErrEventSinkMissing)
}

package reactor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketboomer/event-sourcery-postgres/memoryengine"
	"github.com/marketboomer/event-sourcery-postgres/reactor"
)

func Test_NewRunner_When_ReactorHasNoEventSource(t *testing.T) {
	// arrange
	r, err := reactor.New(trackingOnlyDefinition(t), reactor.WithTracker(newTrackerStub()))
	require.NoError(t, err)

	// act
	_, err = reactor.NewRunner(r)

	// assert
	assert.ErrorIs(t, err, reactor.ErrRunnerSourceMissing)
}

func Test_RunOnce_When_StreamContainsAMixOfHandledAndUnhandledEvents(t *testing.T) {
	// setup
	ctx := context.Background()
	store := memoryengine.NewEventStore()
	tracker := memoryengine.NewTracker()

	// arrange: baseline stream of 4 events, 2 of the handled type
	for _, eventType := range []string{
		"terms_accepted", "item_added", "terms_accepted", "item_removed",
	} {
		_, err := store.Append(ctx, reactor.NewEvent(eventType, "user-1", nil))
		require.NoError(t, err)
	}

	def, err := reactor.NewDefinition("welcome_email",
		reactor.Process("terms_accepted", func(
			handlerCtx context.Context, _ reactor.Event, emitter *reactor.Emitter, _ reactor.State,
		) error {
			_, emitErr := emitter.Emit(handlerCtx, reactor.NewEvent("welcome_email_sent", "user-1", nil))
			return emitErr
		}),
		reactor.EmitsEvents("welcome_email_sent"),
	)
	require.NoError(t, err)

	r, err := reactor.New(def,
		reactor.WithTracker(tracker),
		reactor.WithEventSource(store),
		reactor.WithEventSink(store),
	)
	require.NoError(t, err)
	require.NoError(t, r.Setup(ctx))

	runner, err := reactor.NewRunner(r, reactor.WithBatchSize(2))
	require.NoError(t, err)

	// act: drain the baseline, then append one more handled event and drain again
	processedFirst, err := runner.RunOnce(ctx)
	require.NoError(t, err)

	_, err = store.Append(ctx, reactor.NewEvent("terms_accepted", "user-2", nil))
	require.NoError(t, err)

	processedSecond, err := runner.RunOnce(ctx)
	require.NoError(t, err)

	// assert: one emission per handled event, 8 events in the store total
	assert.Equal(t, 6, processedFirst) // 4 baseline + 2 emissions read back and ignored
	assert.Equal(t, 2, processedSecond)
	assert.Equal(t, 8, store.Size())

	position, err := r.LastProcessedEventID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), position)
}

func Test_RunOnce_When_HandlerFails(t *testing.T) {
	// setup
	ctx := context.Background()
	store := memoryengine.NewEventStore()
	tracker := memoryengine.NewTracker()

	handlerErr := errors.New("handler blew up")

	// arrange
	for range 3 {
		_, err := store.Append(ctx, reactor.NewEvent("terms_accepted", "user-1", nil))
		require.NoError(t, err)
	}

	def, err := reactor.NewDefinition("failing_reactor",
		reactor.Process("terms_accepted", func(
			_ context.Context, event reactor.Event, _ *reactor.Emitter, _ reactor.State,
		) error {
			if event.ID == 2 {
				return handlerErr
			}
			return nil
		}),
	)
	require.NoError(t, err)

	r, err := reactor.New(def, reactor.WithTracker(tracker))
	require.NoError(t, err)
	require.NoError(t, r.Setup(ctx))

	runner, err := reactor.NewRunner(r, reactor.WithRunnerEventSource(store))
	require.NoError(t, err)

	// act
	processed, err := runner.RunOnce(ctx)

	// assert: the loop stops at the failing event, position marks the last success
	require.ErrorIs(t, err, handlerErr)
	assert.Equal(t, 1, processed)

	position, err := r.LastProcessedEventID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), position)
}

func Test_RunOnce_When_CalledAgainAfterADrain(t *testing.T) {
	// setup
	ctx := context.Background()
	store := memoryengine.NewEventStore()
	tracker := memoryengine.NewTracker()

	_, err := store.Append(ctx, reactor.NewEvent("terms_accepted", "user-1", nil))
	require.NoError(t, err)

	seen := 0

	def, err := reactor.NewDefinition("idempotent_resume",
		reactor.Process("terms_accepted", func(
			_ context.Context, _ reactor.Event, _ *reactor.Emitter, _ reactor.State,
		) error {
			seen++
			return nil
		}),
	)
	require.NoError(t, err)

	r, err := reactor.New(def, reactor.WithTracker(tracker))
	require.NoError(t, err)
	require.NoError(t, r.Setup(ctx))

	runner, err := reactor.NewRunner(r, reactor.WithRunnerEventSource(store))
	require.NoError(t, err)

	// act
	_, err = runner.RunOnce(ctx)
	require.NoError(t, err)

	processedAgain, err := runner.RunOnce(ctx)

	// assert: nothing is processed twice
	require.NoError(t, err)
	assert.Equal(t, 0, processedAgain)
	assert.Equal(t, 1, seen)
}

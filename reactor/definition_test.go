package reactor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketboomer/event-sourcery-postgres/reactor"
)

func noopHandler(_ context.Context, _ reactor.Event, _ *reactor.Emitter, _ reactor.State) error {
	return nil
}

func Test_NewDefinition_When_ProcessorNameIsEmpty(t *testing.T) {
	// act
	_, err := reactor.NewDefinition("")

	// assert
	assert.ErrorIs(t, err, reactor.ErrEmptyProcessorName)
}

func Test_NewDefinition_When_HandlerIsNil(t *testing.T) {
	// act
	_, err := reactor.NewDefinition("some_reactor",
		reactor.Process("terms_accepted", nil),
	)

	// assert
	assert.ErrorIs(t, err, reactor.ErrNilHandler)
}

func Test_Processes_When_HandlersAreRegistered(t *testing.T) {
	// arrange
	def, err := reactor.NewDefinition("some_reactor",
		reactor.Process("TermsAccepted", noopHandler),
		reactor.Process("item_added", noopHandler),
	)
	require.NoError(t, err)

	// assert
	assert.True(t, def.Processes("TermsAccepted"))
	assert.True(t, def.Processes("terms_accepted"))
	assert.True(t, def.Processes(" terms_accepted "))
	assert.True(t, def.Processes("item_added"))
	assert.True(t, def.Processes("ItemAdded"))
	assert.False(t, def.Processes("item_removed"))
	assert.Equal(t, "some_reactor", def.ProcessorName())
}

func Test_Process_When_SameEventTypeIsRegisteredTwice(t *testing.T) {
	// arrange
	var calledFirst, calledSecond bool

	first := func(_ context.Context, _ reactor.Event, _ *reactor.Emitter, _ reactor.State) error {
		calledFirst = true
		return nil
	}
	second := func(_ context.Context, _ reactor.Event, _ *reactor.Emitter, _ reactor.State) error {
		calledSecond = true
		return nil
	}

	def, err := reactor.NewDefinition("some_reactor",
		reactor.Process("terms_accepted", first),
		reactor.Process("terms_accepted", second),
	)
	require.NoError(t, err)

	r, err := reactor.New(def, reactor.WithTracker(newTrackerStub()))
	require.NoError(t, err)

	// act
	err = r.Process(context.Background(), reactor.NewEvent("terms_accepted", "user-1", nil))

	// assert: last registration wins
	assert.NoError(t, err)
	assert.False(t, calledFirst)
	assert.True(t, calledSecond)
	assert.Len(t, def.HandledEventTypes(), 1)
}

func Test_EmitsEvent_When_TypesAreDeclared(t *testing.T) {
	// arrange
	def, err := reactor.NewDefinition("some_reactor",
		reactor.EmitsEvents("EmailSent"),
		reactor.EmitsEvents("TokenIssued", "email_bounced"),
	)
	require.NoError(t, err)

	// assert: declarations from multiple calls are additive
	assert.True(t, def.EmitsEvent("EmailSent"))
	assert.True(t, def.EmitsEvent("email_sent"))
	assert.True(t, def.EmitsEvent("token_issued"))
	assert.True(t, def.EmitsEvent("EmailBounced"))
	assert.False(t, def.EmitsEvent("email_opened"))
	assert.ElementsMatch(t,
		[]string{"email_sent", "token_issued", "email_bounced"},
		def.EmittableEventTypes())
}

func Test_EmitsEvent_When_NothingIsDeclared(t *testing.T) {
	// arrange
	def, err := reactor.NewDefinition("some_reactor",
		reactor.Process("terms_accepted", noopHandler),
	)
	require.NoError(t, err)

	// assert: false for any input, never an error
	assert.False(t, def.EmitsEvent("terms_accepted"))
	assert.False(t, def.EmitsEvent(""))
	assert.False(t, def.EmitsEvent("anything"))
}

package postgresengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marketboomer/event-sourcery-postgres/postgresengine"
)

func Test_NewEventStore_When_DatabaseHandleIsNil(t *testing.T) {
	// act + assert
	_, err := postgresengine.NewEventStoreFromPGXPool(nil)
	assert.ErrorIs(t, err, postgresengine.ErrNilDatabaseConnection)

	_, err = postgresengine.NewEventStoreFromSQLDB(nil)
	assert.ErrorIs(t, err, postgresengine.ErrNilDatabaseConnection)

	_, err = postgresengine.NewEventStoreFromSQLX(nil)
	assert.ErrorIs(t, err, postgresengine.ErrNilDatabaseConnection)
}

func Test_NewTracker_When_DatabaseHandleIsNil(t *testing.T) {
	// act + assert
	_, err := postgresengine.NewTrackerFromPGXPool(nil)
	assert.ErrorIs(t, err, postgresengine.ErrNilDatabaseConnection)

	_, err = postgresengine.NewTrackerFromSQLDB(nil)
	assert.ErrorIs(t, err, postgresengine.ErrNilDatabaseConnection)

	_, err = postgresengine.NewTrackerFromSQLX(nil)
	assert.ErrorIs(t, err, postgresengine.ErrNilDatabaseConnection)
}

func Test_Options_When_TableNamesAreEmpty(t *testing.T) {
	// arrange
	pool := newTestPGXPool(t)
	if pool == nil {
		t.Skip("skipping, no database pool available without the integration flag")
	}

	// act + assert
	_, err := postgresengine.NewEventStoreFromPGXPool(pool, postgresengine.WithEventsTableName(""))
	assert.ErrorIs(t, err, postgresengine.ErrEmptyEventsTableName)

	_, err = postgresengine.NewTrackerFromPGXPool(pool, postgresengine.WithTrackerTableName(""))
	assert.ErrorIs(t, err, postgresengine.ErrEmptyTrackerTableName)
}

package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/marketboomer/event-sourcery-postgres/postgresengine/internal/adapters"
)

const (
	colProcessorName        = "processor_name"
	colLastProcessedEventID = "last_processed_event_id"

	logMsgTrackerSetup    = "tracker position initialized"
	logMsgTrackerReset    = "tracker position reset"
	logMsgTrackerAdvanced = "tracker position advanced"
	logAttrProcessor      = "processor"

	logActionTrackerSetup   = "tracker setup"
	logActionTrackerReset   = "tracker reset"
	logActionTrackerRead    = "tracker read"
	logActionTrackerAdvance = "tracker advance"
)

var (
	// ErrTrackerSetupFailed is returned when the position record cannot be initialized.
	ErrTrackerSetupFailed = errors.New("tracker setup failed")

	// ErrTrackerResetFailed is returned when the position record cannot be reset.
	ErrTrackerResetFailed = errors.New("tracker reset failed")

	// ErrTrackerReadFailed is returned when the recorded position cannot be read.
	ErrTrackerReadFailed = errors.New("tracker read failed")

	// ErrTrackerAdvanceFailed is returned when the recorded position cannot be advanced.
	ErrTrackerAdvanceFailed = errors.New("tracker advance failed")
)

// Tracker is the Postgres-backed reactor.PositionTracker: a durable mapping
// from processor name to last processed event sequence number.
//
// Advance is a guarded upsert that only moves positions forward, so
// concurrent writers for the same processor name cannot cause lost updates.
type Tracker struct {
	db               adapters.DBAdapter
	trackerTableName string
	observability
}

// NewTrackerFromPGXPool creates a new Tracker using a pgx pool.
func NewTrackerFromPGXPool(pool *pgxpool.Pool, options ...Option) (*Tracker, error) {
	if pool == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newTracker(adapters.NewPGXAdapter(pool), options)
}

// NewTrackerFromSQLDB creates a new Tracker using a database/sql DB.
func NewTrackerFromSQLDB(db *sql.DB, options ...Option) (*Tracker, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newTracker(adapters.NewSQLAdapter(db), options)
}

// NewTrackerFromSQLX creates a new Tracker using a sqlx.DB.
func NewTrackerFromSQLX(db *sqlx.DB, options ...Option) (*Tracker, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newTracker(adapters.NewSQLXAdapter(db), options)
}

func newTracker(db adapters.DBAdapter, options []Option) (*Tracker, error) {
	s, err := applyOptions(options)
	if err != nil {
		return nil, err
	}

	return &Tracker{
		db:               db,
		trackerTableName: s.trackerTableName,
		observability:    s.observability,
	}, nil
}

// InstallSchema creates the tracker table if it does not exist yet. It is
// idempotent and safe to call on every startup.
func (t *Tracker) InstallSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			%s TEXT PRIMARY KEY,
			%s BIGINT NOT NULL DEFAULT 0
		);`,
		t.trackerTableName, colProcessorName, colLastProcessedEventID,
	)

	start := time.Now()
	_, execErr := t.db.Exec(ctx, ddl)
	t.logSQLWithDuration(ctx, logActionInstallSchema, ddl, time.Since(start))

	if execErr != nil {
		t.logError(ctx, logMsgDBExecFailed, execErr)
		t.recordErrorMetrics(logActionInstallSchema, "exec")

		return errors.Join(ErrInstallingSchemaFailed, execErr)
	}

	return nil
}

// Setup idempotently ensures a position record exists for the processor,
// creating it at zero if absent. Calling it repeatedly is a no-op.
func (t *Tracker) Setup(ctx context.Context, processorName string) error {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(t.trackerTableName).
		Cols(colProcessorName, colLastProcessedEventID).
		Vals(goqu.Vals{processorName, 0}).
		OnConflict(goqu.DoNothing())

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, execErr := t.exec(ctx, logActionTrackerSetup, sqlQuery)
	if execErr != nil {
		return errors.Join(ErrTrackerSetupFailed, execErr)
	}

	if rowsAffected > 0 {
		t.logOperation(ctx, logMsgTrackerSetup, logAttrProcessor, processorName)
	}

	return nil
}

// Reset sets the recorded position for the processor back to zero, creating
// the record if it does not exist.
func (t *Tracker) Reset(ctx context.Context, processorName string) error {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(t.trackerTableName).
		Cols(colProcessorName, colLastProcessedEventID).
		Vals(goqu.Vals{processorName, 0}).
		OnConflict(goqu.DoUpdate(colProcessorName, goqu.Record{colLastProcessedEventID: 0}))

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	if _, execErr := t.exec(ctx, logActionTrackerReset, sqlQuery); execErr != nil {
		return errors.Join(ErrTrackerResetFailed, execErr)
	}

	t.logOperation(ctx, logMsgTrackerReset, logAttrProcessor, processorName)

	return nil
}

// LastProcessedEventID returns the recorded position for the processor,
// defaulting to zero if it was never set.
func (t *Tracker) LastProcessedEventID(ctx context.Context, processorName string) (int64, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(t.trackerTableName).
		Select(colLastProcessedEventID).
		Where(goqu.C(colProcessorName).Eq(processorName))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return 0, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	rows, queryErr := t.db.Query(ctx, sqlQuery)
	t.logSQLWithDuration(ctx, logActionTrackerRead, sqlQuery, time.Since(start))

	if queryErr != nil {
		t.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		t.recordErrorMetrics(logActionTrackerRead, "query")

		return 0, errors.Join(ErrTrackerReadFailed, queryErr)
	}
	defer t.closeRows(ctx, rows)

	if !rows.Next() {
		return 0, nil
	}

	var position int64

	if scanErr := rows.Scan(&position); scanErr != nil {
		t.logError(ctx, logMsgScanRowFailed, scanErr)
		t.recordErrorMetrics(logActionTrackerRead, "scan")

		return 0, errors.Join(ErrScanningDBRowFailed, scanErr)
	}

	return position, nil
}

// Advance records eventID as the last processed position for the processor.
// The update is guarded: a position at or below the currently recorded one
// leaves the record unchanged.
func (t *Tracker) Advance(ctx context.Context, processorName string, eventID int64) error {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(t.trackerTableName).
		Cols(colProcessorName, colLastProcessedEventID).
		Vals(goqu.Vals{processorName, eventID}).
		OnConflict(
			goqu.DoUpdate(colProcessorName, goqu.Record{colLastProcessedEventID: eventID}).
				Where(goqu.I(t.trackerTableName + "." + colLastProcessedEventID).Lt(eventID)),
		)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	if _, execErr := t.exec(ctx, logActionTrackerAdvance, sqlQuery); execErr != nil {
		return errors.Join(ErrTrackerAdvanceFailed, execErr)
	}

	t.logOperation(ctx, logMsgTrackerAdvanced,
		logAttrProcessor, processorName,
		logAttrPosition, eventID)

	return nil
}

// exec runs a statement with SQL debug logging and error metrics.
func (t *Tracker) exec(ctx context.Context, action, sqlQuery string) (int64, error) {
	start := time.Now()
	result, execErr := t.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	t.logSQLWithDuration(ctx, action, sqlQuery, duration)

	if execErr != nil {
		t.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		t.recordErrorMetrics(action, "exec")

		return 0, execErr
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		t.logWarning(ctx, logMsgDBExecFailed, logAttrError, rowsAffectedErr.Error())

		return 0, nil
	}

	t.recordOperationDuration(action, duration)

	return rowsAffected, nil
}

// closeRows safely closes database rows and logs any errors.
func (t *Tracker) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		t.logWarning(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

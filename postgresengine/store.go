package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/marketboomer/event-sourcery-postgres/postgresengine/internal/adapters"
	"github.com/marketboomer/event-sourcery-postgres/reactor"
)

const (
	defaultEventsTableName  = "events"
	defaultTrackerTableName = "reactor_tracker"

	dialectPostgres = "postgres"
	castJsonb       = "?::jsonb"

	colID            = "id"
	colUUID          = "uuid"
	colEventType     = "event_type"
	colAggregateID   = "aggregate_id"
	colBody          = "body"
	colCausationID   = "causation_id"
	colCorrelationID = "correlation_id"
	colOccurredAt    = "occurred_at"

	logMsgBuildInsertQueryFailed = "failed to build insert query"
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgDBExecFailed           = "database execution failed"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgEventAppended          = "event appended"
	logMsgEventsRead             = "events read"
	logAttrEventType             = "event_type"
	logAttrEventID               = "event_id"
	logAttrEventCount            = "event_count"
	logAttrPosition              = "position"
	logActionAppend              = "append"
	logActionRead                = "read"
	logActionInstallSchema       = "install schema"
)

var (
	// ErrBuildingQueryFailed is returned when the SQL statement cannot be built.
	ErrBuildingQueryFailed = errors.New("building sql query failed")

	// ErrAppendingEventFailed is returned when an event cannot be durably appended.
	ErrAppendingEventFailed = errors.New("appending event failed")

	// ErrQueryingEventsFailed is returned when reading events fails.
	ErrQueryingEventsFailed = errors.New("querying events failed")

	// ErrScanningDBRowFailed is returned when a result row cannot be scanned.
	ErrScanningDBRowFailed = errors.New("scanning database row failed")

	// ErrEncodingBodyFailed is returned when an event body cannot be marshaled to JSON.
	ErrEncodingBodyFailed = errors.New("encoding event body failed")

	// ErrDecodingBodyFailed is returned when a stored event body cannot be unmarshaled.
	ErrDecodingBodyFailed = errors.New("decoding event body failed")

	// ErrInstallingSchemaFailed is returned when schema installation fails.
	ErrInstallingSchemaFailed = errors.New("installing schema failed")
)

// EventStore is the Postgres-backed durable, ordered event log. It
// implements both reactor.EventSource and reactor.EventSink: Append assigns
// the monotonically increasing sequence ID, GetNextFrom enumerates events
// from a position onward.
type EventStore struct {
	db              adapters.DBAdapter
	eventsTableName string
	observability
}

// NewEventStoreFromPGXPool creates a new EventStore using a pgx pool.
func NewEventStoreFromPGXPool(pool *pgxpool.Pool, options ...Option) (*EventStore, error) {
	if pool == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapter(pool), options)
}

// NewEventStoreFromSQLDB creates a new EventStore using a database/sql DB.
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLAdapter(db), options)
}

// NewEventStoreFromSQLX creates a new EventStore using a sqlx.DB.
func NewEventStoreFromSQLX(db *sqlx.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLXAdapter(db), options)
}

func newEventStore(db adapters.DBAdapter, options []Option) (*EventStore, error) {
	s, err := applyOptions(options)
	if err != nil {
		return nil, err
	}

	return &EventStore{
		db:              db,
		eventsTableName: s.eventsTableName,
		observability:   s.observability,
	}, nil
}

// InstallSchema creates the events table and its indexes if they do not
// exist yet. It is idempotent and safe to call on every startup.
func (es *EventStore) InstallSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %[1]s (
			%[2]s BIGSERIAL PRIMARY KEY,
			%[3]s TEXT NOT NULL UNIQUE,
			%[4]s TEXT NOT NULL,
			%[5]s TEXT NOT NULL DEFAULT '',
			%[6]s JSONB NOT NULL DEFAULT '{}',
			%[7]s TEXT NOT NULL DEFAULT '',
			%[8]s TEXT NOT NULL DEFAULT '',
			%[9]s TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_%[4]s ON %[1]s (%[4]s);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_%[10]s ON %[1]s (%[10]s);`,
		es.eventsTableName,
		colID, colUUID, colEventType, colAggregateID, colBody,
		colCausationID, colCorrelationID, colOccurredAt, colCorrelationID,
	)

	start := time.Now()
	_, execErr := es.db.Exec(ctx, ddl)
	es.logSQLWithDuration(ctx, logActionInstallSchema, ddl, time.Since(start))

	if execErr != nil {
		es.logError(ctx, logMsgDBExecFailed, execErr)
		es.recordErrorMetrics(logActionInstallSchema, "exec")

		return errors.Join(ErrInstallingSchemaFailed, execErr)
	}

	return nil
}

// Append persists the event and returns the stored event with its assigned
// sequence ID. A missing UUID or OccurredAt is filled in before the insert.
func (es *EventStore) Append(ctx context.Context, event reactor.Event) (reactor.Event, error) {
	var empty reactor.Event

	if event.UUID == "" {
		event.UUID = uuid.NewString()
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	if event.Body == nil {
		event.Body = reactor.Body{}
	}

	sqlQuery, buildErr := es.buildInsertQuery(event)
	if buildErr != nil {
		es.logError(ctx, logMsgBuildInsertQueryFailed, buildErr, logAttrEventType, event.Type)

		return empty, buildErr
	}

	start := time.Now()
	rows, queryErr := es.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	es.logSQLWithDuration(ctx, logActionAppend, sqlQuery, duration)

	if queryErr != nil {
		es.logError(ctx, logMsgDBExecFailed, queryErr, logAttrQuery, sqlQuery)
		es.recordErrorMetrics(logActionAppend, "exec")

		return empty, errors.Join(ErrAppendingEventFailed, queryErr)
	}
	defer es.closeRows(ctx, rows)

	if !rows.Next() {
		es.recordErrorMetrics(logActionAppend, "no_row_returned")

		return empty, ErrAppendingEventFailed
	}

	if scanErr := rows.Scan(&event.ID); scanErr != nil {
		es.logError(ctx, logMsgScanRowFailed, scanErr)
		es.recordErrorMetrics(logActionAppend, "scan")

		return empty, errors.Join(ErrScanningDBRowFailed, scanErr)
	}

	es.recordOperationDuration(logActionAppend, duration)
	es.logOperation(ctx, logMsgEventAppended,
		logAttrEventType, event.Type,
		logAttrEventID, event.ID,
		logAttrDurationMS, toMilliseconds(duration))

	return event, nil
}

// GetNextFrom returns up to limit events with ID greater than position,
// ascending by ID.
func (es *EventStore) GetNextFrom(ctx context.Context, position int64, limit int) (reactor.Events, error) {
	sqlQuery, buildErr := es.buildSelectQuery(position, limit)
	if buildErr != nil {
		es.logError(ctx, logMsgBuildSelectQueryFailed, buildErr)

		return nil, buildErr
	}

	start := time.Now()
	rows, queryErr := es.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	es.logSQLWithDuration(ctx, logActionRead, sqlQuery, duration)

	if queryErr != nil {
		es.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		es.recordErrorMetrics(logActionRead, "query")

		return nil, errors.Join(ErrQueryingEventsFailed, queryErr)
	}
	defer es.closeRows(ctx, rows)

	events, scanErr := es.scanEvents(ctx, rows)
	if scanErr != nil {
		return nil, scanErr
	}

	es.recordOperationDuration(logActionRead, duration)
	es.logOperation(ctx, logMsgEventsRead,
		logAttrEventCount, len(events),
		logAttrPosition, position,
		logAttrDurationMS, toMilliseconds(duration))

	return events, nil
}

func (es *EventStore) buildInsertQuery(event reactor.Event) (string, error) {
	bodyJSON, marshalErr := jsoniter.ConfigFastest.Marshal(event.Body)
	if marshalErr != nil {
		return "", errors.Join(ErrEncodingBodyFailed, marshalErr)
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(es.eventsTableName).
		Cols(colUUID, colEventType, colAggregateID, colBody, colCausationID, colCorrelationID, colOccurredAt).
		Vals(goqu.Vals{
			event.UUID,
			event.Type,
			event.AggregateID,
			goqu.L(castJsonb, string(bodyJSON)),
			event.CausationID,
			event.CorrelationID,
			event.OccurredAt,
		}).
		Returning(colID)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es *EventStore) buildSelectQuery(position int64, limit int) (string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.eventsTableName).
		Select(colID, colUUID, colEventType, colAggregateID, colBody, colCausationID, colCorrelationID, colOccurredAt).
		Where(goqu.C(colID).Gt(position)).
		Order(goqu.I(colID).Asc())

	if limit > 0 {
		selectStmt = selectStmt.Limit(uint(limit))
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es *EventStore) scanEvents(ctx context.Context, rows adapters.DBRows) (reactor.Events, error) {
	events := make(reactor.Events, 0)

	for rows.Next() {
		var (
			event    reactor.Event
			bodyJSON []byte
		)

		scanErr := rows.Scan(
			&event.ID,
			&event.UUID,
			&event.Type,
			&event.AggregateID,
			&bodyJSON,
			&event.CausationID,
			&event.CorrelationID,
			&event.OccurredAt,
		)
		if scanErr != nil {
			es.logError(ctx, logMsgScanRowFailed, scanErr)
			es.recordErrorMetrics(logActionRead, "scan")

			return nil, errors.Join(ErrScanningDBRowFailed, scanErr)
		}

		if unmarshalErr := jsoniter.ConfigFastest.Unmarshal(bodyJSON, &event.Body); unmarshalErr != nil {
			es.recordErrorMetrics(logActionRead, "decode")

			return nil, errors.Join(ErrDecodingBodyFailed, unmarshalErr)
		}

		events = append(events, event)
	}

	return events, nil
}

func (es *EventStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		es.logWarning(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

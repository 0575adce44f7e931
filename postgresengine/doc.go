// Package postgresengine provides the PostgreSQL implementations of the
// reactor collaborator contracts: a durable, ordered event store acting as
// event source and event sink, and a position tracker recording each
// reactor's last processed sequence number.
//
// Both run on any of three database clients through an internal adapter
// seam (pgx pool, database/sql, sqlx):
//
//	pool, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewEventStoreFromPGXPool(pool)
//	tracker, _ := postgresengine.NewTrackerFromPGXPool(pool)
//
//	_ = store.InstallSchema(ctx)
//	_ = tracker.InstallSchema(ctx)
//
// Table names, logging and metrics are configurable through functional
// options:
//
//	store, _ := postgresengine.NewEventStoreFromPGXPool(
//		pool,
//		postgresengine.WithEventsTableName("events"),
//		postgresengine.WithLogger(slog.Default()),
//	)
//
// The tracker's Advance is a guarded update that only ever moves a position
// forward, making it safe against lost updates if the same processor name
// is driven from more than one process.
package postgresengine

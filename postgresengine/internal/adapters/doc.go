// Package adapters abstracts the concrete Postgres client libraries behind
// a minimal DBAdapter interface, so the engine can run unchanged on a pgx
// pool, a database/sql DB or a sqlx DB.
package adapters

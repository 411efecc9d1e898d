// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx driver. Row locks taken with SELECT ... FOR UPDATE
// serialize concurrent graders; serialization and deadlock failures are
// reported as store.ErrConflict and never retried here.
package postgres

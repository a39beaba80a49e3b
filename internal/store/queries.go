// Package store provides SQLite-backed persistence: connection setup,
// embedded goose migrations and typed query methods over database/sql.
package store

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by query methods. Both *sql.DB
// and *sql.Tx satisfy it, so queries run inside or outside a transaction.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds typed query methods bound to a database or transaction.
type Queries struct {
	db DBTX
}

// New creates a Queries bound to the given database or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

package postgres

import (
	"context"
	"database/sql"
)

// dbExecutor is satisfied by both *sqlx.DB and *sqlx.Tx, so helpers can
// run inside or outside a transaction
type dbExecutor interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}

package repository

import (
	"context"
	"database/sql"
)

// Queryer abstracts over *sql.DB and *sql.Tx so the same query helpers serve
// plain reads and transactional check-and-insert paths.
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Queryer = (*sql.DB)(nil)
	_ Queryer = (*sql.Tx)(nil)
)

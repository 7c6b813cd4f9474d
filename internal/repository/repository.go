package repository

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrBookNotFound = errors.New("book not found")
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repositories are constructed over it so the same code serves plain reads
// and transactional ingestion.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

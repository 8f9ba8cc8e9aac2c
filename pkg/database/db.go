// Package database opens the stores the storefront reads from and traces the
// queries it runs against them.
package database

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// DBTX is the read surface shared by *pgxpool.Pool, pgx.Tx and the pgxmock
// pool, so repositories can be tested without a server.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier es el subconjunto de operaciones que comparten *pgxpool.Pool y
// pgx.Tx. Los repos que participan en transacciones reciben un Querier en vez
// del pool: el TxRunner los construye atados a la tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgxScanner es la interfaz mínima de lectura que comparten pgx.Row y pgx.Rows.
// Permite helpers de scan únicos para QueryRow y Query.
type pgxScanner interface {
	Scan(dest ...any) error
}

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Tablero-api/internal/application/billing"
	"github.com/jhoicas/Tablero-api/internal/domain/repository"
)

var _ billing.InvoicingTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunInvoicing inicia una transacción, ejecuta fn con los repos del motor de
// tablas y de series atados a la tx, y hace Commit o Rollback. El ensamblador
// de facturas escribe esquema, filas, celdas y contador por estos repos: si
// fn falla, nada queda visible.
func (r *TxRunner) RunInvoicing(ctx context.Context, fn func(
	tables repository.TableRepository,
	rows repository.RowRepository,
	series repository.SeriesRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storageErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tableRepo := NewTableRepository(tx)
	rowRepo := NewRowRepository(tx)
	seriesRepo := NewSeriesRepository(tx)

	if err := fn(tableRepo, rowRepo, seriesRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storageErr("commit transaction", err)
	}
	return nil
}

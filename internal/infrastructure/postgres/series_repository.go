package postgres

import (
	"context"

	"github.com/jhoicas/Tablero-api/internal/domain"
	"github.com/jhoicas/Tablero-api/internal/domain/billing"
	"github.com/jhoicas/Tablero-api/internal/domain/entity"
	"github.com/jhoicas/Tablero-api/internal/domain/repository"
)

var _ repository.SeriesRepository = (*SeriesRepo)(nil)

// SeriesRepo implementación de SeriesRepository (usable con pool o tx).
// El contador vive en invoice_series con clave (tenant, database, serie).
type SeriesRepo struct {
	q Querier
}

// NewSeriesRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSeriesRepository(q Querier) *SeriesRepo {
	return &SeriesRepo{q: q}
}

const seriesCols = `tenant_id, database_id, series, prefix, suffix, separator,
		include_year, include_month, reset_yearly, pad_width,
		current_number, last_year, created_at, updated_at`

func scanSeries(row pgxScanner) (*entity.InvoiceSeries, error) {
	var s entity.InvoiceSeries
	err := row.Scan(&s.TenantID, &s.DatabaseID, &s.Series, &s.Prefix, &s.Suffix, &s.Separator,
		&s.IncludeYear, &s.IncludeMonth, &s.ResetYearly, &s.PadWidth,
		&s.CurrentNumber, &s.LastYear, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Allocate incrementa y lee el contador en un solo upsert: si la serie no
// existe se crea con cfg y el contador arranca en StartNumber; si existe, la
// configuración almacenada manda y el contador avanza en 1 (o reinicia en 1
// cuando reset_yearly y cambió el año; last_year = 0 significa "nunca asignó"
// y no cuenta como cambio de año). El ON CONFLICT toma el lock de fila,
// así que dos transacciones concurrentes serializan y jamás ven el mismo
// número. domain.ErrConflict ante fallos de concurrencia reintentables.
func (r *SeriesRepo) Allocate(ctx context.Context, tenantID, databaseID string, cfg billing.NumberingConfig, year int) (*entity.InvoiceSeries, error) {
	query := `
		INSERT INTO invoice_series AS s
			(tenant_id, database_id, series, prefix, suffix, separator,
			 include_year, include_month, reset_yearly, pad_width,
			 current_number, last_year)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (tenant_id, database_id, series) DO UPDATE SET
			current_number = CASE
				WHEN s.reset_yearly AND s.last_year <> 0
					AND s.last_year <> EXCLUDED.last_year THEN 1
				ELSE s.current_number + 1
			END,
			last_year  = EXCLUDED.last_year,
			updated_at = now()
		RETURNING ` + seriesCols
	s, err := scanSeries(r.q.QueryRow(ctx, query,
		tenantID, databaseID, cfg.Series, cfg.Prefix, cfg.Suffix, cfg.Separator,
		cfg.IncludeYear, cfg.IncludeMonth, cfg.ResetYearly, cfg.PadWidth,
		cfg.StartNumber, year,
	))
	if err != nil {
		if isSerialization(err) {
			return nil, domain.ErrConflict
		}
		return nil, storageErr("allocate series", err)
	}
	return s, nil
}

// Create registra una serie explícitamente con su configuración completa.
// domain.ErrDuplicate si la serie ya existe.
func (r *SeriesRepo) Create(ctx context.Context, series *entity.InvoiceSeries) error {
	query := `
		INSERT INTO invoice_series
			(tenant_id, database_id, series, prefix, suffix, separator,
			 include_year, include_month, reset_yearly, pad_width,
			 current_number, last_year, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		series.TenantID, series.DatabaseID, series.Series, series.Prefix, series.Suffix, series.Separator,
		series.IncludeYear, series.IncludeMonth, series.ResetYearly, series.PadWidth,
		series.CurrentNumber, series.LastYear, series.CreatedAt, series.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return storageErr("insert series", err)
	}
	return nil
}

// GetBySeries devuelve la fila de una serie. domain.ErrNotFound si no existe.
func (r *SeriesRepo) GetBySeries(ctx context.Context, tenantID, databaseID, series string) (*entity.InvoiceSeries, error) {
	query := `
		SELECT ` + seriesCols + `
		FROM invoice_series
		WHERE tenant_id = $1 AND database_id = $2 AND series = $3`
	s, err := scanSeries(r.q.QueryRow(ctx, query, tenantID, databaseID, series))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("get series", err)
	}
	return s, nil
}

// ListByDatabase lista las series de una database en orden alfabético.
func (r *SeriesRepo) ListByDatabase(ctx context.Context, tenantID, databaseID string) ([]*entity.InvoiceSeries, error) {
	query := `
		SELECT ` + seriesCols + `
		FROM invoice_series
		WHERE tenant_id = $1 AND database_id = $2 ORDER BY series`
	rows, err := r.q.Query(ctx, query, tenantID, databaseID)
	if err != nil {
		return nil, storageErr("list series", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceSeries
	for rows.Next() {
		s, err := scanSeries(rows)
		if err != nil {
			return nil, storageErr("scan series", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

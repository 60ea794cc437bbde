package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Tablero-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard de facturación.
// Agrega directamente sobre el esquema genérico de filas/celdas: el SQL
// localiza la tabla invoices y sus columnas por etiqueta semántica, igual que
// el índice en memoria (primera columna etiquetada por posición gana).
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// invoiceSchema resuelve la tabla invoices de la database y sus columnas por
// etiqueta semántica. Las etiquetas espejan domain/semantic; si la tabla o
// una columna no existe, las consultas degradan a cero filas sin error.
// $1 = tenant_id, $2 = database_id.
const invoiceSchema = `
	WITH inv AS (
	    SELECT t.id AS table_id,
	           (SELECT c.id FROM data_columns c
	             WHERE c.table_id = t.id AND c.semantic_type = 'invoice_date'
	             ORDER BY c.position LIMIT 1)                                    AS date_col,
	           (SELECT c.id FROM data_columns c
	             WHERE c.table_id = t.id AND c.semantic_type = 'total_amount'
	             ORDER BY c.position LIMIT 1)                                    AS total_col,
	           (SELECT c.id FROM data_columns c
	             WHERE c.table_id = t.id AND c.semantic_type = 'base_currency'
	             ORDER BY c.position LIMIT 1)                                    AS currency_col,
	           (SELECT c.id FROM data_columns c
	             WHERE c.table_id = t.id AND c.semantic_type = 'status'
	             ORDER BY c.position LIMIT 1)                                    AS status_col
	    FROM data_tables t
	    JOIN databases d ON d.id = t.database_id
	    WHERE d.tenant_id = $1 AND t.database_id = $2 AND t.name = 'invoices'
	)`

// GetInvoiceTotals devuelve cantidad y suma de facturas en el rango dado.
// Los totales viven como texto JSON en las celdas; el cast a numeric agrega
// con precisión exacta. COALESCE devuelve cero si no hay facturas.
func (r *AnalyticsRepo) GetInvoiceTotals(
	ctx context.Context,
	tenantID, databaseID string,
	from, to time.Time,
) (repository.PeriodTotals, error) {
	const query = invoiceSchema + `
	SELECT
	    COUNT(r.id)                                     AS invoice_count,
	    COALESCE(SUM((ct.value #>> '{}')::numeric), 0)  AS total
	FROM inv
	JOIN data_rows  r  ON r.table_id  = inv.table_id
	JOIN data_cells cd ON cd.row_id   = r.id AND cd.column_id = inv.date_col
	LEFT JOIN data_cells ct ON ct.row_id = r.id AND ct.column_id = inv.total_col
	WHERE (cd.value #>> '{}')::timestamptz BETWEEN $3 AND $4`

	var totals repository.PeriodTotals
	err := r.pool.QueryRow(ctx, query, tenantID, databaseID, from, to).
		Scan(&totals.InvoiceCount, &totals.Total)
	if err != nil {
		return repository.PeriodTotals{}, storageErr("analytics.GetInvoiceTotals", err)
	}
	return totals, nil
}

// GetTotalsByCurrency agrupa lo facturado del rango por moneda base de la
// factura, de mayor a menor total. Facturas sin celda de moneda agrupan en ''.
func (r *AnalyticsRepo) GetTotalsByCurrency(
	ctx context.Context,
	tenantID, databaseID string,
	from, to time.Time,
) ([]repository.CurrencyTotal, error) {
	const query = invoiceSchema + `
	SELECT
	    COALESCE(cc.value #>> '{}', '')                 AS currency,
	    COUNT(r.id)                                     AS invoice_count,
	    COALESCE(SUM((ct.value #>> '{}')::numeric), 0)  AS total
	FROM inv
	JOIN data_rows  r  ON r.table_id  = inv.table_id
	JOIN data_cells cd ON cd.row_id   = r.id AND cd.column_id = inv.date_col
	LEFT JOIN data_cells cc ON cc.row_id = r.id AND cc.column_id = inv.currency_col
	LEFT JOIN data_cells ct ON ct.row_id = r.id AND ct.column_id = inv.total_col
	WHERE (cd.value #>> '{}')::timestamptz BETWEEN $3 AND $4
	GROUP BY COALESCE(cc.value #>> '{}', '')
	ORDER BY total DESC, currency`

	rows, err := r.pool.Query(ctx, query, tenantID, databaseID, from, to)
	if err != nil {
		return nil, storageErr("analytics.GetTotalsByCurrency", err)
	}
	defer rows.Close()

	var results []repository.CurrencyTotal
	for rows.Next() {
		var row repository.CurrencyTotal
		if err := rows.Scan(&row.Currency, &row.Count, &row.Total); err != nil {
			return nil, storageErr("analytics.GetTotalsByCurrency scan", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetTotalsByStatus agrupa las facturas por estado sobre el histórico
// completo, las más numerosas primero.
func (r *AnalyticsRepo) GetTotalsByStatus(
	ctx context.Context,
	tenantID, databaseID string,
) ([]repository.StatusCount, error) {
	const query = invoiceSchema + `
	SELECT
	    COALESCE(cs.value #>> '{}', '')                 AS status,
	    COUNT(r.id)                                     AS invoice_count,
	    COALESCE(SUM((ct.value #>> '{}')::numeric), 0)  AS total
	FROM inv
	JOIN data_rows  r  ON r.table_id = inv.table_id
	LEFT JOIN data_cells cs ON cs.row_id = r.id AND cs.column_id = inv.status_col
	LEFT JOIN data_cells ct ON ct.row_id = r.id AND ct.column_id = inv.total_col
	GROUP BY COALESCE(cs.value #>> '{}', '')
	ORDER BY invoice_count DESC, status`

	rows, err := r.pool.Query(ctx, query, tenantID, databaseID)
	if err != nil {
		return nil, storageErr("analytics.GetTotalsByStatus", err)
	}
	defer rows.Close()

	var results []repository.StatusCount
	for rows.Next() {
		var row repository.StatusCount
		if err := rows.Scan(&row.Status, &row.Count, &row.Total); err != nil {
			return nil, storageErr("analytics.GetTotalsByStatus scan", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetMonthlyTotals devuelve los últimos months meses como serie cronológica,
// el mes corriente incluido. generate_series rellena con cero los meses sin
// facturas para que las gráficas no tengan huecos.
func (r *AnalyticsRepo) GetMonthlyTotals(
	ctx context.Context,
	tenantID, databaseID string,
	months int,
) ([]repository.MonthlyTotal, error) {
	const query = invoiceSchema + `,
	per_month AS (
	    SELECT
	        date_trunc('month', (cd.value #>> '{}')::timestamptz) AS month,
	        COUNT(r.id)                                           AS invoice_count,
	        SUM((ct.value #>> '{}')::numeric)                     AS total
	    FROM inv
	    JOIN data_rows  r  ON r.table_id  = inv.table_id
	    JOIN data_cells cd ON cd.row_id   = r.id AND cd.column_id = inv.date_col
	    LEFT JOIN data_cells ct ON ct.row_id = r.id AND ct.column_id = inv.total_col
	    WHERE (cd.value #>> '{}')::timestamptz
	          >= date_trunc('month', now()) - make_interval(months => $3 - 1)
	    GROUP BY 1
	)
	SELECT
	    m.month,
	    COALESCE(p.invoice_count, 0) AS invoice_count,
	    COALESCE(p.total, 0)         AS total
	FROM generate_series(
	        date_trunc('month', now()) - make_interval(months => $3 - 1),
	        date_trunc('month', now()),
	        interval '1 month') AS m(month)
	LEFT JOIN per_month p ON p.month = m.month
	ORDER BY m.month`

	rows, err := r.pool.Query(ctx, query, tenantID, databaseID, months)
	if err != nil {
		return nil, storageErr("analytics.GetMonthlyTotals", err)
	}
	defer rows.Close()

	var results []repository.MonthlyTotal
	for rows.Next() {
		var row repository.MonthlyTotal
		if err := rows.Scan(&row.Month, &row.Count, &row.Total); err != nil {
			return nil, storageErr("analytics.GetMonthlyTotals scan", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

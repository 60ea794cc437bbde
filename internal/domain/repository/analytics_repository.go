package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodTotals resultado crudo de la consulta de facturación en un rango.
// Lo produce la DB; el use case lo convierte en DTO.
type PeriodTotals struct {
	InvoiceCount int
	Total        decimal.Decimal // suma de total_amount en la moneda de cada factura
}

// CurrencyTotal total facturado agrupado por moneda base de la factura.
type CurrencyTotal struct {
	Currency string
	Count    int
	Total    decimal.Decimal
}

// StatusCount facturas agrupadas por estado.
type StatusCount struct {
	Status string
	Count  int
	Total  decimal.Decimal
}

// MonthlyTotal punto de la serie mensual para las gráficas del dashboard.
type MonthlyTotal struct {
	Month time.Time // primer día del mes, UTC
	Count int
	Total decimal.Decimal
}

// AnalyticsRepository define las consultas de lectura para el resumen del
// dashboard de facturación. Las implementaciones son read-only y agregan
// sobre el esquema genérico de filas/celdas resolviendo columnas por
// etiqueta semántica dentro del SQL.
type AnalyticsRepository interface {
	// GetInvoiceTotals devuelve cantidad y suma de facturas de la database
	// en el rango dado. Cero si no hay facturas (COALESCE en la consulta).
	GetInvoiceTotals(ctx context.Context, tenantID, databaseID string, from, to time.Time) (PeriodTotals, error)

	// GetTotalsByCurrency agrupa lo facturado por moneda base de la factura.
	GetTotalsByCurrency(ctx context.Context, tenantID, databaseID string, from, to time.Time) ([]CurrencyTotal, error)

	// GetTotalsByStatus agrupa las facturas por estado (histórico completo).
	GetTotalsByStatus(ctx context.Context, tenantID, databaseID string) ([]StatusCount, error)

	// GetMonthlyTotals devuelve los últimos months meses como serie para
	// gráficas, el mes corriente incluido, en orden cronológico.
	GetMonthlyTotals(ctx context.Context, tenantID, databaseID string, months int) ([]MonthlyTotal, error)
}

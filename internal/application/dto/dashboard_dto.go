package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// Es el alimento de datos de los widgets del dashboard: KPIs de hoy y del mes,
// desglose por moneda y estado, y la serie mensual para las gráficas.
type DashboardSummaryDTO struct {
	// Métricas del día actual (00:00 – 23:59)
	TodayInvoices int             `json:"today_invoices"`
	TodayTotal    decimal.Decimal `json:"today_total"`

	// Métricas del mes en curso (día 1 – hoy)
	MonthInvoices int             `json:"month_invoices"`
	MonthTotal    decimal.Decimal `json:"month_total"`

	// Desglose del mes por moneda base de la factura
	ByCurrency []CurrencyTotalDTO `json:"by_currency"`

	// Histórico completo por estado
	ByStatus []StatusCountDTO `json:"by_status"`

	// Últimos 6 meses (mes corriente incluido), orden cronológico
	Monthly []MonthlyPointDTO `json:"monthly"`

	// Metadatos del período
	DateLabel string `json:"date_label"` // ej: "Agosto 2026"
}

// CurrencyTotalDTO total facturado en una moneda.
type CurrencyTotalDTO struct {
	Currency string          `json:"currency"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
}

// StatusCountDTO facturas agrupadas por estado.
type StatusCountDTO struct {
	Status string          `json:"status"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// MonthlyPointDTO punto de la serie mensual (para gráficas de barras/línea).
type MonthlyPointDTO struct {
	Month string          `json:"month"` // YYYY-MM
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// Package analytics contiene el caso de uso del dashboard de facturación.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Tablero-api/internal/application/dto"
	"github.com/jhoicas/Tablero-api/internal/domain"
	"github.com/jhoicas/Tablero-api/internal/domain/repository"
)

const dashboardMonths = 6 // meses de la serie para las gráficas

// DashboardUseCase genera el resumen de facturación del día y del mes en curso.
//
// Fuente de datos: AnalyticsRepository (consultas read-only que agregan sobre
// las celdas resolviendo columnas por etiqueta semántica). No toca el motor de
// tablas directamente.
type DashboardUseCase struct {
	dbRepo        repository.DatabaseRepository
	analyticsRepo repository.AnalyticsRepository
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(dbRepo repository.DatabaseRepository, analyticsRepo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{dbRepo: dbRepo, analyticsRepo: analyticsRepo}
}

// GetSummary construye el DashboardSummaryDTO de la database indicada.
//
// Cinco consultas en paralelo:
//  1. GetInvoiceTotals(hoy)        → TodayInvoices + TodayTotal
//  2. GetInvoiceTotals(mes)        → MonthInvoices + MonthTotal
//  3. GetTotalsByCurrency(mes)     → ByCurrency
//  4. GetTotalsByStatus(histórico) → ByStatus
//  5. GetMonthlyTotals(6 meses)    → Monthly
func (uc *DashboardUseCase) GetSummary(
	ctx context.Context,
	tenantID, databaseID string,
) (*dto.DashboardSummaryDTO, error) {
	db, err := uc.dbRepo.GetByID(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	if db.TenantID != tenantID {
		return nil, domain.ErrForbidden
	}

	now := time.Now()

	// ── Rangos de fecha ────────────────────────────────────────────────────────
	// Hoy: 00:00:00.000 – 23:59:59.999
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.Add(24*time.Hour - time.Nanosecond)

	// Mes en curso: día 1 a las 00:00 – hoy a las 23:59:59
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := todayEnd

	// ── Goroutines para paralelizar las 5 consultas DB ────────────────────────
	type totalsResult struct {
		totals repository.PeriodTotals
		err    error
	}
	type currencyResult struct {
		totals []repository.CurrencyTotal
		err    error
	}
	type statusResult struct {
		counts []repository.StatusCount
		err    error
	}
	type monthlyResult struct {
		points []repository.MonthlyTotal
		err    error
	}

	todayCh := make(chan totalsResult, 1)
	monthCh := make(chan totalsResult, 1)
	currencyCh := make(chan currencyResult, 1)
	statusCh := make(chan statusResult, 1)
	monthlyCh := make(chan monthlyResult, 1)

	go func() {
		t, err := uc.analyticsRepo.GetInvoiceTotals(ctx, tenantID, databaseID, todayStart, todayEnd)
		todayCh <- totalsResult{t, err}
	}()
	go func() {
		t, err := uc.analyticsRepo.GetInvoiceTotals(ctx, tenantID, databaseID, monthStart, monthEnd)
		monthCh <- totalsResult{t, err}
	}()
	go func() {
		c, err := uc.analyticsRepo.GetTotalsByCurrency(ctx, tenantID, databaseID, monthStart, monthEnd)
		currencyCh <- currencyResult{c, err}
	}()
	go func() {
		s, err := uc.analyticsRepo.GetTotalsByStatus(ctx, tenantID, databaseID)
		statusCh <- statusResult{s, err}
	}()
	go func() {
		m, err := uc.analyticsRepo.GetMonthlyTotals(ctx, tenantID, databaseID, dashboardMonths)
		monthlyCh <- monthlyResult{m, err}
	}()

	today := <-todayCh
	month := <-monthCh
	byCurrency := <-currencyCh
	byStatus := <-statusCh
	monthly := <-monthlyCh

	if today.err != nil {
		return nil, fmt.Errorf("dashboard: totales de hoy: %w", today.err)
	}
	if month.err != nil {
		return nil, fmt.Errorf("dashboard: totales del mes: %w", month.err)
	}
	if byCurrency.err != nil {
		return nil, fmt.Errorf("dashboard: desglose por moneda: %w", byCurrency.err)
	}
	if byStatus.err != nil {
		return nil, fmt.Errorf("dashboard: desglose por estado: %w", byStatus.err)
	}
	if monthly.err != nil {
		return nil, fmt.Errorf("dashboard: serie mensual: %w", monthly.err)
	}

	// ── Construir DTO ──────────────────────────────────────────────────────────
	out := &dto.DashboardSummaryDTO{
		TodayInvoices: today.totals.InvoiceCount,
		TodayTotal:    today.totals.Total.Round(2),
		MonthInvoices: month.totals.InvoiceCount,
		MonthTotal:    month.totals.Total.Round(2),
		ByCurrency:    make([]dto.CurrencyTotalDTO, 0, len(byCurrency.totals)),
		ByStatus:      make([]dto.StatusCountDTO, 0, len(byStatus.counts)),
		Monthly:       make([]dto.MonthlyPointDTO, 0, len(monthly.points)),
		DateLabel:     monthLabel(now),
	}
	for _, c := range byCurrency.totals {
		out.ByCurrency = append(out.ByCurrency, dto.CurrencyTotalDTO{Currency: c.Currency, Count: c.Count, Total: c.Total})
	}
	for _, s := range byStatus.counts {
		out.ByStatus = append(out.ByStatus, dto.StatusCountDTO{Status: s.Status, Count: s.Count, Total: s.Total})
	}
	for _, m := range monthly.points {
		out.Monthly = append(out.Monthly, dto.MonthlyPointDTO{Month: m.Month.Format("2006-01"), Count: m.Count, Total: m.Total})
	}
	return out, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}

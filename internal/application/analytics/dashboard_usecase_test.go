package analytics_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tablero-api/internal/application/analytics"
	"github.com/jhoicas/Tablero-api/internal/domain"
	"github.com/jhoicas/Tablero-api/internal/domain/entity"
	"github.com/jhoicas/Tablero-api/internal/domain/repository"
)

const (
	testTenantID   = "00000000-0000-0000-0000-0000000000a1"
	testDatabaseID = "00000000-0000-0000-0000-0000000000b1"
)

type fakeDatabaseRepo struct{ db *entity.Database }

func (r fakeDatabaseRepo) Create(ctx context.Context, db *entity.Database) error { return nil }
func (r fakeDatabaseRepo) GetByID(ctx context.Context, id string) (*entity.Database, error) {
	if r.db == nil || r.db.ID != id {
		return nil, domain.ErrNotFound
	}
	return r.db, nil
}
func (r fakeDatabaseRepo) ListByTenant(ctx context.Context, tenantID string) ([]*entity.Database, error) {
	return nil, nil
}
func (r fakeDatabaseRepo) Update(ctx context.Context, db *entity.Database) error { return nil }

// fakeAnalyticsRepo responde valores fijos y registra los rangos consultados.
// Las cinco consultas llegan en paralelo: el registro va tras un mutex.
type fakeAnalyticsRepo struct {
	periodTotals repository.PeriodTotals
	byCurrency   []repository.CurrencyTotal
	byStatus     []repository.StatusCount
	monthly      []repository.MonthlyTotal

	monthlyErr error

	mu     sync.Mutex
	ranges [][2]time.Time
}

func (r *fakeAnalyticsRepo) GetInvoiceTotals(ctx context.Context, tenantID, databaseID string, from, to time.Time) (repository.PeriodTotals, error) {
	r.mu.Lock()
	r.ranges = append(r.ranges, [2]time.Time{from, to})
	r.mu.Unlock()
	return r.periodTotals, nil
}

func (r *fakeAnalyticsRepo) GetTotalsByCurrency(ctx context.Context, tenantID, databaseID string, from, to time.Time) ([]repository.CurrencyTotal, error) {
	return r.byCurrency, nil
}

func (r *fakeAnalyticsRepo) GetTotalsByStatus(ctx context.Context, tenantID, databaseID string) ([]repository.StatusCount, error) {
	return r.byStatus, nil
}

func (r *fakeAnalyticsRepo) GetMonthlyTotals(ctx context.Context, tenantID, databaseID string, months int) ([]repository.MonthlyTotal, error) {
	if r.monthlyErr != nil {
		return nil, r.monthlyErr
	}
	return r.monthly, nil
}

func testDatabase() *entity.Database {
	return &entity.Database{ID: testDatabaseID, TenantID: testTenantID, Name: "ventas"}
}

// Caso 1: El resumen junta las cinco consultas en un solo DTO y consulta los
// rangos correctos (hoy desde medianoche, mes desde el día 1).
func TestDashboard_ResumenCompleto(t *testing.T) {
	repo := &fakeAnalyticsRepo{
		periodTotals: repository.PeriodTotals{InvoiceCount: 7, Total: decimal.RequireFromString("158.004")},
		byCurrency: []repository.CurrencyTotal{
			{Currency: "USD", Count: 30, Total: decimal.RequireFromString("2500")},
			{Currency: "EUR", Count: 10, Total: decimal.RequireFromString("600")},
		},
		byStatus: []repository.StatusCount{
			{Status: "draft", Count: 5, Total: decimal.RequireFromString("400")},
			{Status: "paid", Count: 35, Total: decimal.RequireFromString("2700")},
		},
		monthly: []repository.MonthlyTotal{
			{Month: time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC), Count: 12, Total: decimal.RequireFromString("900")},
			{Month: time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), Count: 40, Total: decimal.RequireFromString("3100")},
		},
	}
	uc := analytics.NewDashboardUseCase(fakeDatabaseRepo{db: testDatabase()}, repo)

	got, err := uc.GetSummary(context.Background(), testTenantID, testDatabaseID)
	require.NoError(t, err)

	assert.Equal(t, 7, got.TodayInvoices)
	assert.Equal(t, 7, got.MonthInvoices)
	assert.True(t, got.TodayTotal.Equal(decimal.RequireFromString("158")),
		"el KPI llega redondeado a 2 decimales: %s", got.TodayTotal)

	require.Len(t, got.ByCurrency, 2)
	assert.Equal(t, "USD", got.ByCurrency[0].Currency)
	require.Len(t, got.ByStatus, 2)
	assert.Equal(t, "paid", got.ByStatus[1].Status)

	require.Len(t, got.Monthly, 2)
	assert.Equal(t, "2026-07", got.Monthly[0].Month, "la serie sale como YYYY-MM")

	assert.NotEmpty(t, got.DateLabel)

	// Dos consultas de totales: ambas arrancan a medianoche y una en el día 1.
	require.Len(t, repo.ranges, 2)
	monthSeen := false
	for _, rng := range repo.ranges {
		assert.Equal(t, 0, rng[0].Hour(), "los rangos arrancan a las 00:00")
		if rng[0].Day() == 1 {
			monthSeen = true
		}
	}
	assert.True(t, monthSeen, "una de las consultas cubre el mes desde el día 1")
}

// Caso 2: Si una de las consultas falla, el resumen completo falla con el
// contexto de cuál fue.
func TestDashboard_ErrorEnUnaConsulta(t *testing.T) {
	boom := errors.New("timeout")
	repo := &fakeAnalyticsRepo{monthlyErr: boom}
	uc := analytics.NewDashboardUseCase(fakeDatabaseRepo{db: testDatabase()}, repo)

	_, err := uc.GetSummary(context.Background(), testTenantID, testDatabaseID)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "serie mensual")
}

// Caso 3: Database de otro tenant → ErrForbidden.
func TestDashboard_DatabaseAjenaProhibida(t *testing.T) {
	uc := analytics.NewDashboardUseCase(fakeDatabaseRepo{db: testDatabase()}, &fakeAnalyticsRepo{})

	_, err := uc.GetSummary(context.Background(), "otro-tenant", testDatabaseID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

package repository

import (
	"context"

	"github.com/jhoicas/Tablero-api/internal/domain/billing"
	"github.com/jhoicas/Tablero-api/internal/domain/entity"
)

// SeriesRepository define el puerto de persistencia para series de
// numeración de facturas. La clave natural es (tenant, database, serie).
type SeriesRepository interface {
	// Allocate incrementa y lee el contador de la serie en una sola operación
	// indivisible, creándola con la configuración dada si no existe (el
	// contador arranca en StartNumber). Si ResetYearly está activo y year
	// difiere del último año asignado, el contador reinicia en 1. Devuelve la
	// fila de serie con CurrentNumber ya asignado a este caller: dos llamadas
	// concurrentes jamás ven el mismo valor.
	//
	// La configuración cfg solo manda en la creación; una serie existente
	// conserva su formato almacenado.
	Allocate(ctx context.Context, tenantID, databaseID string, cfg billing.NumberingConfig, year int) (*entity.InvoiceSeries, error)

	// Create registra una serie explícitamente con su configuración completa.
	// Devuelve domain.ErrDuplicate si la serie ya existe.
	Create(ctx context.Context, series *entity.InvoiceSeries) error

	// GetBySeries devuelve la fila de una serie. domain.ErrNotFound si no existe.
	GetBySeries(ctx context.Context, tenantID, databaseID, series string) (*entity.InvoiceSeries, error)

	// ListByDatabase lista las series de una database.
	ListByDatabase(ctx context.Context, tenantID, databaseID string) ([]*entity.InvoiceSeries, error)
}

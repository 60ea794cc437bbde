package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jhoicas/Tablero-api/internal/application/dto"
	"github.com/jhoicas/Tablero-api/internal/domain"
	"github.com/jhoicas/Tablero-api/internal/domain/billing"
	"github.com/jhoicas/Tablero-api/internal/domain/entity"
	"github.com/jhoicas/Tablero-api/internal/domain/repository"
	"github.com/jhoicas/Tablero-api/pkg/logger"
)

// InvoicingDefaults valores por defecto del módulo de facturación (vienen de
// la configuración de la aplicación).
type InvoicingDefaults struct {
	Series    string
	Currency  string
	PadWidth  int
	Separator string
}

// Reintentos del upsert de asignación ante conflictos de serialización.
const allocateMaxRetries = 3

// SeriesAllocator asigna números de factura por serie y administra las
// series de una database. La asignación es un único upsert atómico contra
// invoice_series: dos callers concurrentes jamás reciben el mismo contador.
type SeriesAllocator struct {
	dbRepo     repository.DatabaseRepository
	seriesRepo repository.SeriesRepository
	defaults   InvoicingDefaults
	log        *logger.Logger
}

// NewSeriesAllocator construye el asignador.
func NewSeriesAllocator(dbRepo repository.DatabaseRepository, seriesRepo repository.SeriesRepository, defaults InvoicingDefaults, log *logger.Logger) *SeriesAllocator {
	return &SeriesAllocator{dbRepo: dbRepo, seriesRepo: seriesRepo, defaults: defaults, log: log}
}

// NextNumber asigna el siguiente número de la serie usando el repo recibido
// (el caller pasa el repo ligado a su transacción: si la factura hace
// rollback, el contador también, y no quedan huecos). Crea la serie si no
// existía; si ya existe, la configuración almacenada manda sobre cfg.
// Reintenta un número acotado de veces ante conflictos de serialización y
// devuelve domain.ErrConflict si se agotan.
func (a *SeriesAllocator) NextNumber(ctx context.Context, seriesRepo repository.SeriesRepository, tenantID, databaseID string, cfg billing.NumberingConfig) (billing.InvoiceNumber, error) {
	cfg = a.applyDefaults(cfg)
	now := time.Now()

	var row *entity.InvoiceSeries
	var err error
	for attempt := 1; attempt <= allocateMaxRetries; attempt++ {
		row, err = seriesRepo.Allocate(ctx, tenantID, databaseID, cfg, now.Year())
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrConflict) {
			return billing.InvoiceNumber{}, err
		}
		a.log.Warn().
			Str("series", cfg.Series).
			Str("database_id", databaseID).
			Int("attempt", attempt).
			Msg("conflicto de concurrencia asignando número de serie, reintentando")
	}
	if err != nil {
		return billing.InvoiceNumber{}, err
	}

	return billing.InvoiceNumber{
		Number: billing.FormatInvoiceNumber(*row, row.CurrentNumber, now),
		Series: row.Series,
	}, nil
}

// CreateSeries aprovisiona una serie explícitamente con su configuración
// completa, antes del primer uso. Devuelve domain.ErrDuplicate si ya existe.
func (a *SeriesAllocator) CreateSeries(ctx context.Context, tenantID, databaseID string, in dto.CreateSeriesRequest) (*dto.SeriesResponse, error) {
	if err := a.authorizeDatabase(ctx, tenantID, databaseID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Series) == "" {
		return nil, domain.NewValidationError("series", "es obligatoria")
	}

	cfg := a.applyDefaults(billing.NumberingConfig{
		Series:       in.Series,
		Prefix:       in.Prefix,
		Suffix:       in.Suffix,
		Separator:    in.Separator,
		IncludeYear:  in.IncludeYear,
		IncludeMonth: in.IncludeMonth,
		ResetYearly:  in.ResetYearly,
		StartNumber:  in.StartNumber,
		PadWidth:     in.PadWidth,
	})

	now := time.Now()
	s := &entity.InvoiceSeries{
		TenantID:      tenantID,
		DatabaseID:    databaseID,
		Series:        cfg.Series,
		Prefix:        cfg.Prefix,
		Suffix:        cfg.Suffix,
		Separator:     cfg.Separator,
		IncludeYear:   cfg.IncludeYear,
		IncludeMonth:  cfg.IncludeMonth,
		ResetYearly:   cfg.ResetYearly,
		PadWidth:      cfg.PadWidth,
		CurrentNumber: cfg.StartNumber - 1, // la primera asignación entrega StartNumber
		LastYear:      now.Year(),          // el reinicio anual aplica solo en un cambio de año real
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := a.seriesRepo.Create(ctx, s); err != nil {
		return nil, err
	}
	return seriesToResponse(s), nil
}

// ListSeries lista las series de la database.
func (a *SeriesAllocator) ListSeries(ctx context.Context, tenantID, databaseID string) ([]dto.SeriesResponse, error) {
	if err := a.authorizeDatabase(ctx, tenantID, databaseID); err != nil {
		return nil, err
	}
	list, err := a.seriesRepo.ListByDatabase(ctx, tenantID, databaseID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SeriesResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *seriesToResponse(s))
	}
	return out, nil
}

// GetSeries devuelve una serie con su contador actual (para auditar la
// numeración sin asignar nada).
func (a *SeriesAllocator) GetSeries(ctx context.Context, tenantID, databaseID, series string) (*dto.SeriesResponse, error) {
	if err := a.authorizeDatabase(ctx, tenantID, databaseID); err != nil {
		return nil, err
	}
	s, err := a.seriesRepo.GetBySeries(ctx, tenantID, databaseID, series)
	if err != nil {
		return nil, err
	}
	return seriesToResponse(s), nil
}

// applyDefaults completa cfg con los defaults de la aplicación.
func (a *SeriesAllocator) applyDefaults(cfg billing.NumberingConfig) billing.NumberingConfig {
	if cfg.Separator == "" {
		cfg.Separator = a.defaults.Separator
	}
	if cfg.PadWidth <= 0 {
		cfg.PadWidth = a.defaults.PadWidth
	}
	return cfg.WithDefaults(a.defaults.Series)
}

func (a *SeriesAllocator) authorizeDatabase(ctx context.Context, tenantID, databaseID string) error {
	db, err := a.dbRepo.GetByID(ctx, databaseID)
	if err != nil {
		return err
	}
	if db.TenantID != tenantID {
		return domain.ErrForbidden
	}
	return nil
}

func seriesToResponse(s *entity.InvoiceSeries) *dto.SeriesResponse {
	return &dto.SeriesResponse{
		TenantID:      s.TenantID,
		DatabaseID:    s.DatabaseID,
		Series:        s.Series,
		Prefix:        s.Prefix,
		Suffix:        s.Suffix,
		Separator:     s.Separator,
		IncludeYear:   s.IncludeYear,
		IncludeMonth:  s.IncludeMonth,
		ResetYearly:   s.ResetYearly,
		PadWidth:      s.PadWidth,
		CurrentNumber: s.CurrentNumber,
		LastYear:      s.LastYear,
	}
}

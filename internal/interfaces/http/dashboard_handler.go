package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/Tablero-api/internal/application/analytics"
	"github.com/jhoicas/Tablero-api/internal/application/dto"
	"github.com/jhoicas/Tablero-api/internal/domain"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve el resumen de facturación del día y del mes en curso.
// GET /api/dashboard/summary?database_id=...
//
// Respuesta: DashboardSummaryDTO (today_count, today_total, monthly_count,
// monthly_total, by_currency, by_status, monthly[6], date_label).
// Las fechas se calculan automáticamente en el servidor.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Code: "UNAUTHORIZED", Message: "tenant_id no encontrado en el token",
		})
	}

	databaseID := c.Query("database_id")
	if databaseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: "database_id es requerido",
		})
	}

	summary, err := h.uc.GetSummary(c.Context(), tenantID, databaseID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Code: "NOT_FOUND", Message: "database no encontrada",
			})
		}
		if errors.Is(err, domain.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code: "FORBIDDEN", Message: "acceso denegado a la database",
			})
		}
		return writeUnexpected(c, err)
	}

	return c.JSON(summary)
}

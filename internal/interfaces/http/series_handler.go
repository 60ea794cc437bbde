package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Tablero-api/internal/application/billing"
	"github.com/jhoicas/Tablero-api/internal/application/dto"
	"github.com/jhoicas/Tablero-api/internal/domain"
)

// SeriesHandler maneja las series de numeración de facturas (protegido, admin).
type SeriesHandler struct {
	uc *billing.SeriesAllocator
}

// NewSeriesHandler construye el handler.
func NewSeriesHandler(uc *billing.SeriesAllocator) *SeriesHandler {
	return &SeriesHandler{uc: uc}
}

// Create POST /api/databases/:databaseID/series
//
// Aprovisiona una serie explícitamente con su configuración completa antes del
// primer uso. Las series también se crean solas al facturar con los defaults.
func (h *SeriesHandler) Create(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	databaseID := c.Params("databaseID")
	if databaseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "databaseID es requerido"})
	}
	var in dto.CreateSeriesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	series, err := h.uc.CreateSeries(c.Context(), tenantID, databaseID, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return writeValidation(c, err)
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "la serie ya existe en esta database"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "database no encontrada"})
		}
		if errors.Is(err, domain.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado a la database"})
		}
		return writeUnexpected(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(series)
}

// List GET /api/databases/:databaseID/series
func (h *SeriesHandler) List(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	databaseID := c.Params("databaseID")
	if databaseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "databaseID es requerido"})
	}
	list, err := h.uc.ListSeries(c.Context(), tenantID, databaseID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "database no encontrada"})
		}
		if errors.Is(err, domain.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado a la database"})
		}
		return writeUnexpected(c, err)
	}
	return c.JSON(list)
}

// Get GET /api/databases/:databaseID/series/:series
func (h *SeriesHandler) Get(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	databaseID, series := c.Params("databaseID"), c.Params("series")
	if databaseID == "" || series == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "databaseID y series son requeridos"})
	}
	out, err := h.uc.GetSeries(c.Context(), tenantID, databaseID, series)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "database o serie no encontrada"})
		}
		if errors.Is(err, domain.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado a la database"})
		}
		return writeUnexpected(c, err)
	}
	return c.JSON(out)
}

package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Tablero-api/internal/application/dto"
	"github.com/jhoicas/Tablero-api/internal/application/usecase"
	"github.com/jhoicas/Tablero-api/internal/domain"
)

// DatabaseHandler maneja las peticiones HTTP de databases (protegido).
type DatabaseHandler struct {
	uc *usecase.DatabaseUseCase
}

// NewDatabaseHandler construye el handler.
func NewDatabaseHandler(uc *usecase.DatabaseUseCase) *DatabaseHandler {
	return &DatabaseHandler{uc: uc}
}

// Create godoc
// @Summary      Crear database
// @Tags         databases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDatabaseRequest  true  "name"
// @Success      201   {object}  dto.DatabaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/databases [post]
func (h *DatabaseHandler) Create(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateDatabaseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.Context(), tenantID, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return writeValidation(c, err)
		}
		return writeUnexpected(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar databases del tenant
// @Tags         databases
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.DatabaseResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/databases [get]
func (h *DatabaseHandler) List(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	out, err := h.uc.List(c.Context(), tenantID)
	if err != nil {
		return writeUnexpected(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener database por ID
// @Tags         databases
// @Security     Bearer
// @Produce      json
// @Param        databaseID  path  string  true  "ID de la database"
// @Success      200  {object}  dto.DatabaseResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/databases/{databaseID} [get]
func (h *DatabaseHandler) GetByID(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("databaseID")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "databaseID es requerido"})
	}
	out, err := h.uc.GetByID(c.Context(), tenantID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "database no encontrada"})
		}
		if errors.Is(err, domain.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado a la database"})
		}
		return writeUnexpected(c, err)
	}
	return c.JSON(out)
}

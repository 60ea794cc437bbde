package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Tablero-api/internal/application/dto"
	"github.com/jhoicas/Tablero-api/internal/application/usecase"
)

// ModuleHandler expone los módulos SaaS del tenant.
type ModuleHandler struct {
	uc *usecase.ModuleService
}

// NewModuleHandler construye el handler.
func NewModuleHandler(uc *usecase.ModuleService) *ModuleHandler {
	return &ModuleHandler{uc: uc}
}

// List GET /api/modules
//
// Lista los módulos del tenant con su estado, para que el frontend sepa qué
// superficies mostrar. No lleva gate de módulo: es el punto de descubrimiento.
func (h *ModuleHandler) List(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	modules, err := h.uc.ListModules(c.Context(), tenantID)
	if err != nil {
		return writeUnexpected(c, err)
	}
	return c.JSON(modules)
}

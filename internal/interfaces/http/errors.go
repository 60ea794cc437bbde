package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/jhoicas/Tablero-api/internal/application/dto"
	"github.com/jhoicas/Tablero-api/internal/domain"
)

// writeValidation responde 400 con el detalle por campo cuando err envuelve
// domain.ErrInvalidInput. Los handlers la usan como primera rama del mapeo.
func writeValidation(c *fiber.Ctx, err error) error {
	var v *domain.ValidationError
	resp := dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	if errors.As(err, &v) {
		resp.Fields = v.Fields
	}
	return c.Status(fiber.StatusBadRequest).JSON(resp)
}

// writeUnexpected es la rama final del mapeo de errores: 503 genérico cuando
// err envuelve domain.ErrStorage y 500 en cualquier otro caso. El mensaje al
// cliente nunca lleva detalle interno (SQL, driver); eso viaja solo en el
// error encadenado hacia el log.
func writeUnexpected(c *fiber.Ctx, err error) error {
	log.Error().Err(err).Str("path", c.Path()).Msg("error no mapeado en handler")
	if errors.Is(err, domain.ErrStorage) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code: "STORAGE", Message: "almacenamiento no disponible, intente más tarde",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Code: "INTERNAL", Message: "error interno del servidor",
	})
}

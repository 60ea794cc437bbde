package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tablero-api/internal/application/dto"
	"github.com/jhoicas/Tablero-api/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests writeUnexpected: la rama final del mapeo de errores de los handlers.
// El cliente nunca debe ver detalle interno (SQL, driver, rutas de código).
// ──────────────────────────────────────────────────────────────────────────────

func appConError(err error) *fiber.App {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return writeUnexpected(c, err)
	})
	return app
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// Caso 1: Un error que envuelve el sentinela de almacenamiento → 503 con
// mensaje genérico de reintento, sin el detalle del driver.
func TestWriteUnexpected_AlmacenCaido(t *testing.T) {
	cause := fmt.Errorf("insert row: %w: ERROR: connection refused (SQLSTATE 08006)", domain.ErrStorage)
	app := appConError(cause)

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, "STORAGE", body.Code)
	assert.NotContains(t, body.Message, "SQLSTATE", "el detalle del driver no sale al cliente")
	assert.NotContains(t, body.Message, "insert row")
}

// Caso 2: Un error no clasificado → 500 con mensaje genérico; el texto del
// error jamás se copia a la respuesta.
func TestWriteUnexpected_ErrorNoClasificadoSinDetalle(t *testing.T) {
	app := appConError(errors.New("pq: duplicate key value violates unique constraint"))

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, "INTERNAL", body.Code)
	assert.NotContains(t, body.Message, "duplicate key", "el texto interno no sale al cliente")
}

package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Tablero-api/internal/application/dto"
	"github.com/jhoicas/Tablero-api/internal/application/usecase"
	"github.com/jhoicas/Tablero-api/internal/domain"
)

// TableHandler maneja las peticiones HTTP de tablas, columnas y filas (protegido).
type TableHandler struct {
	uc *usecase.TablesUseCase
}

// NewTableHandler construye el handler.
func NewTableHandler(uc *usecase.TablesUseCase) *TableHandler {
	return &TableHandler{uc: uc}
}

// CreateTable godoc
// @Summary      Crear tabla
// @Description  Crea una tabla en la database con sus columnas tipadas y etiquetas semánticas opcionales.
// @Tags         tables
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        databaseID  path  string  true  "ID de la database"
// @Param        body  body  dto.CreateTableRequest  true  "name y columnas"
// @Success      201   {object}  dto.TableResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/databases/{databaseID}/tables [post]
func (h *TableHandler) CreateTable(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	databaseID := c.Params("databaseID")
	if databaseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "databaseID es requerido"})
	}
	var in dto.CreateTableRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.CreateTable(c.Context(), tenantID, databaseID, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return writeValidation(c, err)
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "ya existe una tabla con ese nombre en la database"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "database no encontrada"})
		}
		if errors.Is(err, domain.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado a la database"})
		}
		return writeUnexpected(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListTables godoc
// @Summary      Listar tablas de una database
// @Tags         tables
// @Security     Bearer
// @Produce      json
// @Param        databaseID  path  string  true  "ID de la database"
// @Success      200  {array}   dto.TableResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/databases/{databaseID}/tables [get]
func (h *TableHandler) ListTables(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	databaseID := c.Params("databaseID")
	if databaseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "databaseID es requerido"})
	}
	out, err := h.uc.ListTables(c.Context(), tenantID, databaseID)
	if err != nil {
		return h.mapTableError(c, err)
	}
	return c.JSON(out)
}

// GetTable godoc
// @Summary      Obtener tabla con sus columnas
// @Tags         tables
// @Security     Bearer
// @Produce      json
// @Param        databaseID  path  string  true  "ID de la database"
// @Param        tableID     path  string  true  "ID de la tabla"
// @Success      200  {object}  dto.TableResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/databases/{databaseID}/tables/{tableID} [get]
func (h *TableHandler) GetTable(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	databaseID, tableID := c.Params("databaseID"), c.Params("tableID")
	if databaseID == "" || tableID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "databaseID y tableID son requeridos"})
	}
	out, err := h.uc.GetTable(c.Context(), tenantID, databaseID, tableID)
	if err != nil {
		return h.mapTableError(c, err)
	}
	return c.JSON(out)
}

// AddColumn godoc
// @Summary      Agregar columna a una tabla
// @Description  Idempotente por nombre: si ya existe una columna con ese nombre la devuelve sin crear otra.
// @Tags         tables
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        databaseID  path  string  true  "ID de la database"
// @Param        tableID     path  string  true  "ID de la tabla"
// @Param        body  body  dto.ColumnRequest  true  "name, type, semantic_type"
// @Success      201   {object}  dto.ColumnResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/databases/{databaseID}/tables/{tableID}/columns [post]
func (h *TableHandler) AddColumn(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	databaseID, tableID := c.Params("databaseID"), c.Params("tableID")
	if databaseID == "" || tableID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "databaseID y tableID son requeridos"})
	}
	var in dto.ColumnRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.AddColumn(c.Context(), tenantID, databaseID, tableID, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return writeValidation(c, err)
		}
		return h.mapTableError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// InvoiceCheck godoc
// @Summary      Diagnosticar tabla como referencia de productos
// @Description  Informa si la tabla tiene las columnas semánticas para servir de catálogo al facturar. Solo diagnóstico, nunca bloquea.
// @Tags         tables
// @Security     Bearer
// @Produce      json
// @Param        databaseID  path  string  true  "ID de la database"
// @Param        tableID     path  string  true  "ID de la tabla"
// @Success      200  {object}  dto.TableValidationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/databases/{databaseID}/tables/{tableID}/invoice-check [get]
func (h *TableHandler) InvoiceCheck(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	databaseID, tableID := c.Params("databaseID"), c.Params("tableID")
	if databaseID == "" || tableID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "databaseID y tableID son requeridos"})
	}
	out, err := h.uc.ValidateForInvoices(c.Context(), tenantID, databaseID, tableID)
	if err != nil {
		return h.mapTableError(c, err)
	}
	return c.JSON(out)
}

// CreateRow godoc
// @Summary      Crear fila
// @Description  Las celdas van indexadas por id de columna; valores JSON crudos según el tipo de la columna.
// @Tags         rows
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        databaseID  path  string  true  "ID de la database"
// @Param        tableID     path  string  true  "ID de la tabla"
// @Param        body  body  dto.CreateRowRequest  true  "cells"
// @Success      201   {object}  dto.RowResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/databases/{databaseID}/tables/{tableID}/rows [post]
func (h *TableHandler) CreateRow(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	databaseID, tableID := c.Params("databaseID"), c.Params("tableID")
	if databaseID == "" || tableID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "databaseID y tableID son requeridos"})
	}
	var in dto.CreateRowRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.CreateRow(c.Context(), tenantID, databaseID, tableID, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return writeValidation(c, err)
		}
		return h.mapTableError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListRows godoc
// @Summary      Listar filas (paginado)
// @Tags         rows
// @Security     Bearer
// @Produce      json
// @Param        databaseID  path   string  true   "ID de la database"
// @Param        tableID     path   string  true   "ID de la tabla"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.RowListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/databases/{databaseID}/tables/{tableID}/rows [get]
func (h *TableHandler) ListRows(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	databaseID, tableID := c.Params("databaseID"), c.Params("tableID")
	if databaseID == "" || tableID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "databaseID y tableID son requeridos"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos"})
	}
	out, err := h.uc.ListRows(c.Context(), tenantID, databaseID, tableID, page)
	if err != nil {
		return h.mapTableError(c, err)
	}
	return c.JSON(out)
}

// GetRow godoc
// @Summary      Obtener fila con sus celdas
// @Tags         rows
// @Security     Bearer
// @Produce      json
// @Param        databaseID  path  string  true  "ID de la database"
// @Param        tableID     path  string  true  "ID de la tabla"
// @Param        rowID       path  string  true  "ID de la fila"
// @Success      200  {object}  dto.RowResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/databases/{databaseID}/tables/{tableID}/rows/{rowID} [get]
func (h *TableHandler) GetRow(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	databaseID, tableID, rowID := c.Params("databaseID"), c.Params("tableID"), c.Params("rowID")
	if databaseID == "" || tableID == "" || rowID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "databaseID, tableID y rowID son requeridos"})
	}
	out, err := h.uc.GetRow(c.Context(), tenantID, databaseID, tableID, rowID)
	if err != nil {
		return h.mapTableError(c, err)
	}
	return c.JSON(out)
}

// UpdateCell godoc
// @Summary      Actualizar una celda
// @Description  Escribe el valor JSON de la celda y devuelve la fila actualizada. Un valor null deja la celda vacía.
// @Tags         rows
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        databaseID  path  string  true  "ID de la database"
// @Param        tableID     path  string  true  "ID de la tabla"
// @Param        rowID       path  string  true  "ID de la fila"
// @Param        columnID    path  string  true  "ID de la columna"
// @Param        body  body  dto.UpdateCellRequest  true  "value"
// @Success      200   {object}  dto.RowResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/databases/{databaseID}/tables/{tableID}/rows/{rowID}/cells/{columnID} [put]
func (h *TableHandler) UpdateCell(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	databaseID, tableID := c.Params("databaseID"), c.Params("tableID")
	rowID, columnID := c.Params("rowID"), c.Params("columnID")
	if databaseID == "" || tableID == "" || rowID == "" || columnID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "databaseID, tableID, rowID y columnID son requeridos"})
	}
	var in dto.UpdateCellRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.UpdateCell(c.Context(), tenantID, databaseID, tableID, rowID, columnID, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return writeValidation(c, err)
		}
		return h.mapTableError(c, err)
	}
	return c.JSON(out)
}

// DeleteRows godoc
// @Summary      Eliminar filas por id
// @Tags         rows
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        databaseID  path  string  true  "ID de la database"
// @Param        tableID     path  string  true  "ID de la tabla"
// @Param        body  body  dto.DeleteRowsRequest  true  "ids"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/databases/{databaseID}/tables/{tableID}/rows [delete]
func (h *TableHandler) DeleteRows(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	databaseID, tableID := c.Params("databaseID"), c.Params("tableID")
	if databaseID == "" || tableID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "databaseID y tableID son requeridos"})
	}
	var in dto.DeleteRowsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.DeleteRows(c.Context(), tenantID, databaseID, tableID, in); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return writeValidation(c, err)
		}
		return h.mapTableError(c, err)
	}
	return c.JSON(fiber.Map{"message": "filas eliminadas"})
}

// mapTableError mapea los errores comunes de las operaciones sobre tablas y filas.
func (h *TableHandler) mapTableError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "database, tabla o fila no encontrada"})
	}
	if errors.Is(err, domain.ErrForbidden) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	}
	if errors.Is(err, domain.ErrDuplicate) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el recurso ya existe"})
	}
	return writeUnexpected(c, err)
}

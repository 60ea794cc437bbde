package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Tablero-api/internal/application/billing"
	"github.com/jhoicas/Tablero-api/internal/application/dto"
	"github.com/jhoicas/Tablero-api/internal/domain"
)

// InvoiceHandler maneja las peticiones HTTP de facturación (protegido,
// requiere módulo invoicing).
type InvoiceHandler struct {
	create *billing.CreateInvoiceUseCase
	query  *billing.InvoiceQueryUseCase
	pdf    *billing.InvoicePDFUseCase
	export *billing.InvoiceExportUseCase
	schema *billing.SchemaManager
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(
	create *billing.CreateInvoiceUseCase,
	query *billing.InvoiceQueryUseCase,
	pdf *billing.InvoicePDFUseCase,
	export *billing.InvoiceExportUseCase,
	schema *billing.SchemaManager,
) *InvoiceHandler {
	return &InvoiceHandler{create: create, query: query, pdf: pdf, export: export, schema: schema}
}

// Create crea una factura con numeración consecutiva por serie.
// POST /api/databases/:databaseID/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	databaseID := c.Params("databaseID")
	if databaseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "databaseID es requerido"})
	}
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	invoice, err := h.create.CreateInvoice(c.Context(), tenantID, databaseID, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return writeValidation(c, err)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "database o cliente no encontrado"})
		}
		if errors.Is(err, domain.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
		}
		if errors.Is(err, domain.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NUMBERING_CONFLICT", Message: "no se pudo asignar número de factura, reintente"})
		}
		if errors.Is(err, domain.ErrSchema) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SCHEMA_INCOMPLETE", Message: "esquema de facturación incompleto en la database"})
		}
		return writeUnexpected(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// List lista los encabezados de facturas de la database.
// GET /api/databases/:databaseID/invoices?limit=20&offset=0
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	databaseID := c.Params("databaseID")
	if databaseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "databaseID es requerido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos"})
	}
	list, err := h.query.ListInvoices(c.Context(), tenantID, databaseID, page)
	if err != nil {
		return h.mapQueryError(c, err)
	}
	return c.JSON(list)
}

// GetByID obtiene el detalle completo de una factura.
// GET /api/invoices/:id?database_id=...
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	invoiceID, databaseID := c.Params("id"), c.Query("database_id")
	if invoiceID == "" || databaseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id y database_id son requeridos"})
	}
	invoice, err := h.query.GetInvoice(c.Context(), tenantID, databaseID, invoiceID)
	if err != nil {
		return h.mapQueryError(c, err)
	}
	return c.JSON(invoice)
}

// Delete elimina una factura con sus ítems.
// DELETE /api/invoices/:id?database_id=...
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	invoiceID, databaseID := c.Params("id"), c.Query("database_id")
	if invoiceID == "" || databaseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id y database_id son requeridos"})
	}
	if err := h.query.DeleteInvoice(c.Context(), tenantID, databaseID, invoiceID); err != nil {
		return h.mapQueryError(c, err)
	}
	return c.JSON(fiber.Map{"message": "factura eliminada"})
}

// DownloadPDF descarga la factura renderizada como PDF.
// GET /api/invoices/:id/pdf?database_id=...
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	invoiceID, databaseID := c.Params("id"), c.Query("database_id")
	if invoiceID == "" || databaseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id y database_id son requeridos"})
	}
	data, filename, err := h.pdf.DownloadInvoicePDF(c.Context(), tenantID, databaseID, invoiceID)
	if err != nil {
		return h.mapQueryError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// DownloadXML descarga la factura como documento UBL 2.1 (sin firma).
// GET /api/invoices/:id/xml?database_id=...
func (h *InvoiceHandler) DownloadXML(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	invoiceID, databaseID := c.Params("id"), c.Query("database_id")
	if invoiceID == "" || databaseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id y database_id son requeridos"})
	}
	data, filename, err := h.export.DownloadInvoiceXML(c.Context(), tenantID, databaseID, invoiceID)
	if err != nil {
		return h.mapQueryError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/xml")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// EnsureSchema asegura las tablas y columnas semánticas de facturación.
// POST /api/databases/:databaseID/invoice-schema
//
// Idempotente: con el esquema ya completo responde changed=false y no escribe.
func (h *InvoiceHandler) EnsureSchema(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	databaseID := c.Params("databaseID")
	if databaseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "databaseID es requerido"})
	}
	out, err := h.schema.EnsureSchema(c.Context(), tenantID, databaseID)
	if err != nil {
		if errors.Is(err, domain.ErrSchema) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SCHEMA_CONFLICT", Message: err.Error()})
		}
		return h.mapQueryError(c, err)
	}
	return c.JSON(out)
}

// mapQueryError mapea los errores comunes de lectura/borrado de facturas.
func (h *InvoiceHandler) mapQueryError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "factura no encontrada"})
	}
	if errors.Is(err, domain.ErrForbidden) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	}
	return writeUnexpected(c, err)
}

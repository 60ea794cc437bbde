package dto

import "github.com/shopspring/decimal"

// CreateCustomerRequest body para POST /api/databases/:databaseID/customers.
type CreateCustomerRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=200"`
	TaxID string `json:"tax_id" validate:"omitempty,max=50"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=50"`
}

// CustomerResponse cliente en respuestas. El ID es el id de la fila en la
// tabla customers de la database.
type CustomerResponse struct {
	ID         string `json:"id"`
	DatabaseID string `json:"database_id"`
	Name       string `json:"name"`
	TaxID      string `json:"tax_id,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// InvoiceProductRequest línea solicitada de factura: referencia a un producto
// (tabla por nombre o id + fila) más los campos que el cliente quiera fijar.
// Price en nil delega en el precio resuelto del producto; un 0 explícito es
// un precio de 0.
type InvoiceProductRequest struct {
	ProductRefTable string           `json:"product_ref_table" validate:"required"`
	ProductRefID    string           `json:"product_ref_id" validate:"required"`
	Quantity        decimal.Decimal  `json:"quantity" validate:"required"`
	Currency        string           `json:"currency,omitempty" validate:"omitempty,len=3"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	UnitOfMeasure   string           `json:"unit_of_measure,omitempty" validate:"omitempty,max=50"`
	Description     string           `json:"description,omitempty" validate:"omitempty,max=500"`
}

// CreateInvoiceRequest body para POST /api/databases/:databaseID/invoices.
type CreateInvoiceRequest struct {
	CustomerID    string                  `json:"customer_id" validate:"required"`
	BaseCurrency  string                  `json:"base_currency" validate:"required,len=3"`
	DueDate       string                  `json:"due_date" validate:"required"` // YYYY-MM-DD, futura
	PaymentTerms  string                  `json:"payment_terms,omitempty" validate:"omitempty,max=200"`
	PaymentMethod string                  `json:"payment_method" validate:"required,max=50"`
	Notes         string                  `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Status        string                  `json:"status,omitempty" validate:"omitempty,oneof=draft sent paid cancelled"`
	InvoiceSeries string                  `json:"invoice_series,omitempty" validate:"omitempty,max=20"`
	Products      []InvoiceProductRequest `json:"products" validate:"required,min=1,dive"`
}

// CreateInvoiceResponse salida de la creación: el contrato estable hacia el
// frontend (id + número asignado + totales).
type CreateInvoiceResponse struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceSeries string          `json:"invoice_series"`
	CustomerID    string          `json:"customer_id"`
	Status        string          `json:"status"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ItemsCount    int             `json:"items_count"`
}

// InvoiceItemResponse línea de detalle en la respuesta de lectura.
type InvoiceItemResponse struct {
	ID            string          `json:"id"`
	ProductRefID  string          `json:"product_ref_id,omitempty"`
	Description   string          `json:"description,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Currency      string          `json:"currency"`
	VatRate       decimal.Decimal `json:"vat_rate"`
	UnitOfMeasure string          `json:"unit_of_measure,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"` // cantidad * precio, sin IVA
}

// InvoiceResponse factura completa para GET /api/invoices/:id.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	InvoiceSeries string                `json:"invoice_series"`
	CustomerID    string                `json:"customer_id"`
	CustomerName  string                `json:"customer_name,omitempty"`
	Status        string                `json:"status"`
	InvoiceDate   string                `json:"invoice_date"`
	DueDate       string                `json:"due_date"`
	PaymentTerms  string                `json:"payment_terms,omitempty"`
	PaymentMethod string                `json:"payment_method"`
	Notes         string                `json:"notes,omitempty"`
	BaseCurrency  string                `json:"base_currency"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	TaxTotal      decimal.Decimal       `json:"tax_total"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	Items         []InvoiceItemResponse `json:"items"`
}

// InvoiceListItem encabezado de factura en listados (sin ítems).
type InvoiceListItem struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceSeries string          `json:"invoice_series"`
	CustomerID    string          `json:"customer_id"`
	Status        string          `json:"status"`
	BaseCurrency  string          `json:"base_currency"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	InvoiceDate   string          `json:"invoice_date"`
	DueDate       string          `json:"due_date,omitempty"`
}

// InvoiceListResponse página de facturas.
type InvoiceListResponse struct {
	Invoices []InvoiceListItem `json:"invoices"`
	Page     PageResponse      `json:"page"`
}

// CreateSeriesRequest body para POST /api/databases/:databaseID/series:
// aprovisionar una serie explícitamente con su configuración completa.
type CreateSeriesRequest struct {
	Series       string `json:"series" validate:"required,min=1,max=20"`
	Prefix       string `json:"prefix,omitempty" validate:"omitempty,max=20"`
	Suffix       string `json:"suffix,omitempty" validate:"omitempty,max=20"`
	Separator    string `json:"separator,omitempty" validate:"omitempty,max=5"`
	IncludeYear  bool   `json:"include_year"`
	IncludeMonth bool   `json:"include_month"`
	ResetYearly  bool   `json:"reset_yearly"`
	StartNumber  int64  `json:"start_number,omitempty" validate:"omitempty,min=1"`
	PadWidth     int    `json:"pad_width,omitempty" validate:"omitempty,min=1,max=12"`
}

// SeriesResponse serie de numeración en respuestas. Refleja el registro
// durable: otros sistemas (reportes, admin) leen estos campos tal cual.
type SeriesResponse struct {
	TenantID      string `json:"tenant_id"`
	DatabaseID    string `json:"database_id"`
	Series        string `json:"series"`
	Prefix        string `json:"prefix"`
	Suffix        string `json:"suffix,omitempty"`
	Separator     string `json:"separator"`
	IncludeYear   bool   `json:"include_year"`
	IncludeMonth  bool   `json:"include_month"`
	ResetYearly   bool   `json:"reset_yearly"`
	PadWidth      int    `json:"pad_width"`
	CurrentNumber int64  `json:"current_number"`
	LastYear      int    `json:"last_year,omitempty"`
}

// SchemaTableInfo resultado por tabla del endpoint de esquema de facturación.
type SchemaTableInfo struct {
	Name         string   `json:"name"`
	TableID      string   `json:"table_id"`
	Created      bool     `json:"created"`
	AddedColumns []string `json:"added_columns,omitempty"`
}

// InvoiceSchemaResponse salida de POST /api/databases/:databaseID/invoice-schema.
// Changed en false significa que el esquema ya estaba completo (la operación
// es idempotente y no escribe nada en ese caso).
type InvoiceSchemaResponse struct {
	Changed bool              `json:"changed"`
	Tables  []SchemaTableInfo `json:"tables"`
}

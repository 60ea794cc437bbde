package billing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Tablero-api/internal/domain/repository"
)

// InvoicingTxRunner ejecuta una función dentro de una transacción que incluye
// los repos del motor de tablas y de series. Todo lo que escribe el
// ensamblador de facturas (esquema autocurado, filas, celdas, contador de
// serie) pasa por los repos ligados a esa transacción: un fallo a mitad de
// camino no deja factura parcial visible.
type InvoicingTxRunner interface {
	RunInvoicing(ctx context.Context, fn func(
		tables repository.TableRepository,
		rows repository.RowRepository,
		series repository.SeriesRepository,
	) error) error
}

// InvoiceDocument es la vista de una factura que consumen los generadores de
// documentos (PDF, XML UBL). La arma el caso de uso desde las celdas; los
// generadores no conocen el motor de tablas.
type InvoiceDocument struct {
	ID            string
	InvoiceNumber string
	InvoiceSeries string
	Status        string
	InvoiceDate   string
	DueDate       string
	PaymentTerms  string
	PaymentMethod string
	Notes         string
	BaseCurrency  string
	Subtotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	TotalAmount   decimal.Decimal

	TenantName   string
	DatabaseName string

	CustomerID    string
	CustomerName  string
	CustomerTaxID string
	CustomerEmail string

	Lines []InvoiceDocumentLine
}

// InvoiceDocumentLine línea de factura para documentos.
type InvoiceDocumentLine struct {
	Description   string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	Currency      string
	VatRate       decimal.Decimal
	UnitOfMeasure string
	Subtotal      decimal.Decimal
}

// InvoicePDFGenerator genera el PDF de una factura.
type InvoicePDFGenerator interface {
	Generate(ctx context.Context, doc *InvoiceDocument) ([]byte, error)
}

// InvoiceXMLExporter genera el XML UBL 2.1 de una factura (sin firma).
type InvoiceXMLExporter interface {
	Export(ctx context.Context, doc *InvoiceDocument) ([]byte, error)
}

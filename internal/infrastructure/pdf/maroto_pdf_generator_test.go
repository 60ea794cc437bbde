package pdf_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tablero-api/internal/application/billing"
	"github.com/jhoicas/Tablero-api/internal/infrastructure/pdf"
)

// ── Helpers ───────────────────────────────────────────────────────────────────

func sampleDocument() *billing.InvoiceDocument {
	return &billing.InvoiceDocument{
		ID:            "row-factura",
		InvoiceNumber: "INV-0001",
		Status:        billing.InvoiceStatusDraft,
		InvoiceDate:   "2026-08-25",
		DueDate:       "2026-09-25",
		PaymentMethod: "transferencia",
		BaseCurrency:  "USD",
		Subtotal:      decimal.RequireFromString("25"),
		TaxTotal:      decimal.RequireFromString("4"),
		TotalAmount:   decimal.RequireFromString("29"),
		TenantName:    "Acme SAS",
		DatabaseName:  "ventas",
		CustomerName:  "Comercial Andina",
		CustomerTaxID: "901234567",
		Lines: []billing.InvoiceDocumentLine{
			{
				Description: "Teclado mecánico",
				Quantity:    decimal.RequireFromString("2"),
				UnitPrice:   decimal.RequireFromString("10.00"),
				Currency:    "USD",
				VatRate:     decimal.RequireFromString("19"),
				Subtotal:    decimal.RequireFromString("20"),
			},
		},
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

// Caso 1: la factura de referencia produce un PDF válido (cabecera %PDF).
func TestGenerate_FacturaDeReferencia(t *testing.T) {
	gen := pdf.NewMarotoPDFGenerator()

	data, err := gen.Generate(context.Background(), sampleDocument())
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]), "cabecera de archivo PDF")
}

// Caso 2: los campos opcionales vacíos no rompen la generación.
func TestGenerate_CamposOpcionalesVacios(t *testing.T) {
	gen := pdf.NewMarotoPDFGenerator()
	doc := sampleDocument()
	doc.DueDate = ""
	doc.PaymentMethod = ""
	doc.Notes = ""
	doc.CustomerTaxID = ""
	doc.CustomerEmail = ""

	data, err := gen.Generate(context.Background(), doc)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

// Caso 3: una factura sin líneas genera documento igual (tabla vacía).
func TestGenerate_SinLineas(t *testing.T) {
	gen := pdf.NewMarotoPDFGenerator()
	doc := sampleDocument()
	doc.Lines = nil

	data, err := gen.Generate(context.Background(), doc)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

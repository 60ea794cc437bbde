package export_test

import (
	"context"
	"testing"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tablero-api/internal/application/billing"
	"github.com/jhoicas/Tablero-api/internal/infrastructure/export"
)

// ── Helpers ───────────────────────────────────────────────────────────────────

// sampleDocument factura de referencia: 2 × 10.00 al 19% + 1 × 5.00 al 4%,
// subtotal 25, impuestos 4, total 29, en USD.
func sampleDocument() *billing.InvoiceDocument {
	return &billing.InvoiceDocument{
		ID:            "row-factura",
		InvoiceNumber: "INV-0001",
		InvoiceSeries: "INV",
		Status:        billing.InvoiceStatusDraft,
		InvoiceDate:   "2026-08-25",
		DueDate:       "2026-09-25",
		PaymentMethod: "transferencia",
		PaymentTerms:  "30 días",
		Notes:         "Entrega inmediata",
		BaseCurrency:  "USD",
		Subtotal:      decimal.RequireFromString("25"),
		TaxTotal:      decimal.RequireFromString("4"),
		TotalAmount:   decimal.RequireFromString("29"),
		TenantName:    "Acme SAS",
		DatabaseName:  "ventas",
		CustomerID:    "row-cliente",
		CustomerName:  "Comercial Andina",
		CustomerTaxID: "901234567",
		CustomerEmail: "compras@andina.co",
		Lines: []billing.InvoiceDocumentLine{
			{
				Description: "Teclado mecánico",
				Quantity:    decimal.RequireFromString("2"),
				UnitPrice:   decimal.RequireFromString("10.00"),
				Currency:    "USD",
				VatRate:     decimal.RequireFromString("19"),
				Subtotal:    decimal.RequireFromString("20"),
			},
			{
				Description:   "Mouse inalámbrico",
				Quantity:      decimal.RequireFromString("1"),
				UnitPrice:     decimal.RequireFromString("5.00"),
				Currency:      "USD",
				VatRate:       decimal.RequireFromString("4"),
				UnitOfMeasure: "UND",
				Subtotal:      decimal.RequireFromString("5"),
			},
		},
	}
}

// parseXML parsea los bytes generados y devuelve el elemento raíz.
func parseXML(t *testing.T, data []byte) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(data), "el XML generado debe parsear")
	root := doc.Root()
	require.NotNil(t, root)
	return root
}

// textAt devuelve el texto del elemento en la ruta dada, "" si no existe.
func textAt(root *etree.Element, path string) string {
	el := root.FindElement(path)
	if el == nil {
		return ""
	}
	return el.Text()
}

// ── Tests ─────────────────────────────────────────────────────────────────────

// Caso 1: la factura de referencia produce un UBL 2.1 completo → encabezado,
// partes, totales con moneda y una cac:InvoiceLine por línea.
func TestExport_FacturaCompleta(t *testing.T) {
	exporter := export.NewUBLExporter()

	data, err := exporter.Export(context.Background(), sampleDocument())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	root := parseXML(t, data)
	assert.Equal(t, "Invoice", root.Tag, "raíz UBL")

	assert.Equal(t, "2.1", textAt(root, "cbc:UBLVersionID"))
	assert.Equal(t, "INV-0001", textAt(root, "cbc:ID"))
	assert.Equal(t, "2026-08-25", textAt(root, "cbc:IssueDate"))
	assert.Equal(t, "2026-09-25", textAt(root, "cbc:DueDate"))
	assert.Equal(t, "380", textAt(root, "cbc:InvoiceTypeCode"))
	assert.Equal(t, "USD", textAt(root, "cbc:DocumentCurrencyCode"))
	assert.Equal(t, "2", textAt(root, "cbc:LineCountNumeric"))

	assert.Equal(t, "Acme SAS",
		textAt(root, "cac:AccountingSupplierParty/cac:Party/cac:PartyName/cbc:Name"))
	assert.Equal(t, "Comercial Andina",
		textAt(root, "cac:AccountingCustomerParty/cac:Party/cac:PartyName/cbc:Name"))
	assert.Equal(t, "901234567",
		textAt(root, "cac:AccountingCustomerParty/cac:Party/cac:PartyTaxScheme/cbc:CompanyID"))
	assert.Equal(t, "compras@andina.co",
		textAt(root, "cac:AccountingCustomerParty/cac:Party/cac:Contact/cbc:ElectronicMail"))

	// Totales en la moneda base, siempre con dos decimales.
	assert.Equal(t, "4.00", textAt(root, "cac:TaxTotal/cbc:TaxAmount"))
	assert.Equal(t, "25.00", textAt(root, "cac:LegalMonetaryTotal/cbc:LineExtensionAmount"))
	assert.Equal(t, "29.00", textAt(root, "cac:LegalMonetaryTotal/cbc:PayableAmount"))
	payable := root.FindElement("cac:LegalMonetaryTotal/cbc:PayableAmount")
	require.NotNil(t, payable)
	assert.Equal(t, "USD", payable.SelectAttrValue("currencyID", ""))

	lines := root.SelectElements("cac:InvoiceLine")
	require.Len(t, lines, 2)
	assert.Equal(t, "1", textAt(lines[0], "cbc:ID"))
	assert.Equal(t, "Teclado mecánico", textAt(lines[0], "cac:Item/cbc:Description"))
	assert.Equal(t, "10.00", textAt(lines[0], "cac:Price/cbc:PriceAmount"))
	assert.Equal(t, "19", textAt(lines[0], "cac:Item/cac:ClassifiedTaxCategory/cbc:Percent"))
	assert.Equal(t, "VAT", textAt(lines[0], "cac:Item/cac:ClassifiedTaxCategory/cac:TaxScheme/cbc:ID"))
}

// Caso 2: unidad de medida ausente → unitCode "EA"; con unidad → el código de
// la columna.
func TestExport_UnidadDeMedida(t *testing.T) {
	exporter := export.NewUBLExporter()

	data, err := exporter.Export(context.Background(), sampleDocument())
	require.NoError(t, err)

	root := parseXML(t, data)
	lines := root.SelectElements("cac:InvoiceLine")
	require.Len(t, lines, 2)

	sinUnidad := lines[0].FindElement("cbc:InvoicedQuantity")
	require.NotNil(t, sinUnidad)
	assert.Equal(t, "EA", sinUnidad.SelectAttrValue("unitCode", ""))
	assert.Equal(t, "2", sinUnidad.Text())

	conUnidad := lines[1].FindElement("cbc:InvoicedQuantity")
	require.NotNil(t, conUnidad)
	assert.Equal(t, "UND", conUnidad.SelectAttrValue("unitCode", ""))
}

// Caso 3: campos opcionales vacíos → sus elementos no se emiten.
func TestExport_CamposOpcionalesAusentes(t *testing.T) {
	exporter := export.NewUBLExporter()
	doc := sampleDocument()
	doc.DueDate = ""
	doc.Notes = ""
	doc.PaymentMethod = ""
	doc.PaymentTerms = ""
	doc.CustomerTaxID = ""
	doc.CustomerEmail = ""

	data, err := exporter.Export(context.Background(), doc)
	require.NoError(t, err)

	root := parseXML(t, data)
	assert.Nil(t, root.FindElement("cbc:DueDate"))
	assert.Nil(t, root.FindElement("cbc:Note"))
	assert.Nil(t, root.FindElement("cac:PaymentMeans"))
	assert.Nil(t, root.FindElement("cac:PaymentTerms"))
	assert.Nil(t, root.FindElement("cac:AccountingCustomerParty/cac:Party/cac:PartyTaxScheme"))
	assert.Nil(t, root.FindElement("cac:AccountingCustomerParty/cac:Party/cac:Contact"))
}

// Caso 4: línea en moneda distinta a la base → la línea lleva su currencyID
// y el documento conserva el suyo.
func TestExport_MonedaPorLinea(t *testing.T) {
	exporter := export.NewUBLExporter()
	doc := sampleDocument()
	doc.Lines[1].Currency = "EUR"

	data, err := exporter.Export(context.Background(), doc)
	require.NoError(t, err)

	root := parseXML(t, data)
	assert.Equal(t, "USD", textAt(root, "cbc:DocumentCurrencyCode"))

	lines := root.SelectElements("cac:InvoiceLine")
	require.Len(t, lines, 2)
	linea := lines[1].FindElement("cbc:LineExtensionAmount")
	require.NotNil(t, linea)
	assert.Equal(t, "EUR", linea.SelectAttrValue("currencyID", ""))
	precio := lines[1].FindElement("cac:Price/cbc:PriceAmount")
	require.NotNil(t, precio)
	assert.Equal(t, "EUR", precio.SelectAttrValue("currencyID", ""))
}

// Caso 5: documento nulo → error, sin pánico.
func TestExport_DocumentoNulo(t *testing.T) {
	exporter := export.NewUBLExporter()

	data, err := exporter.Export(context.Background(), nil)
	assert.Error(t, err)
	assert.Nil(t, data)
}

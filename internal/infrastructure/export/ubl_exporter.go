// Package export genera el XML UBL 2.1 de una factura, sin firma digital.
// El documento usa los componentes básicos (cbc) y agregados (cac) estándar;
// quien necesite firmarlo o extenderlo lo hace aguas abajo.
package export

import (
	"context"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Tablero-api/internal/application/billing"
)

// Namespaces oficiales UBL 2.1.
const (
	// Namespace por defecto (UBL Invoice)
	NsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	// Common Aggregate Components
	NsCac = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	// Common Basic Components
	NsCbc = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
	// XML Schema Instance (para schemaLocation)
	nsXsi = "http://www.w3.org/2001/XMLSchema-instance"
	// Schema location UBL Invoice 2.1
	schemaLocationInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2 http://docs.oasis-open.org/ubl/os-UBL-2.1/xsd/maindoc/UBL-Invoice-2.1.xsd"

	// Factura comercial estándar (UN/ECE 1001).
	invoiceTypeCode = "380"
)

var _ billing.InvoiceXMLExporter = (*UBLExporter)(nil)

// UBLExporter implementa billing.InvoiceXMLExporter con UBL 2.1.
type UBLExporter struct{}

// NewUBLExporter construye el exportador.
func NewUBLExporter() *UBLExporter { return &UBLExporter{} }

// Export genera el []byte del documento Invoice según UBL 2.1.
func (e *UBLExporter) Export(_ context.Context, doc *billing.InvoiceDocument) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("export: documento nulo")
	}

	x := etree.NewDocument()
	x.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := x.CreateElement("Invoice")
	root.CreateAttr("xmlns", NsInvoice)
	root.CreateAttr("xmlns:cac", NsCac)
	root.CreateAttr("xmlns:cbc", NsCbc)
	root.CreateAttr("xmlns:xsi", nsXsi)
	root.CreateAttr("xsi:schemaLocation", schemaLocationInvoice)

	// ---- cbc: elementos del encabezado
	cbc(root, "UBLVersionID", "2.1")
	cbc(root, "ID", doc.InvoiceNumber)
	cbc(root, "IssueDate", doc.InvoiceDate)
	if doc.DueDate != "" {
		cbc(root, "DueDate", doc.DueDate)
	}
	cbc(root, "InvoiceTypeCode", invoiceTypeCode)
	if doc.Notes != "" {
		cbc(root, "Note", doc.Notes)
	}
	cbc(root, "DocumentCurrencyCode", doc.BaseCurrency)
	cbc(root, "LineCountNumeric", strconv.Itoa(len(doc.Lines)))

	// ---- cac:AccountingSupplierParty (el tenant emisor)
	supplier := cac(root, "AccountingSupplierParty")
	supplierParty := cac(supplier, "Party")
	cbc(cac(supplierParty, "PartyName"), "Name", doc.TenantName)

	// ---- cac:AccountingCustomerParty (el cliente)
	customer := cac(root, "AccountingCustomerParty")
	customerParty := cac(customer, "Party")
	cbc(cac(customerParty, "PartyName"), "Name", doc.CustomerName)
	if doc.CustomerTaxID != "" {
		cbc(cac(customerParty, "PartyTaxScheme"), "CompanyID", doc.CustomerTaxID)
	}
	if doc.CustomerEmail != "" {
		cbc(cac(customerParty, "Contact"), "ElectronicMail", doc.CustomerEmail)
	}

	// ---- cac:PaymentMeans y cac:PaymentTerms
	if doc.PaymentMethod != "" || doc.DueDate != "" {
		means := cac(root, "PaymentMeans")
		if doc.DueDate != "" {
			cbc(means, "PaymentDueDate", doc.DueDate)
		}
		if doc.PaymentMethod != "" {
			cbc(means, "InstructionNote", doc.PaymentMethod)
		}
	}
	if doc.PaymentTerms != "" {
		cbc(cac(root, "PaymentTerms"), "Note", doc.PaymentTerms)
	}

	// ---- cac:TaxTotal y cac:LegalMonetaryTotal (moneda base)
	taxTotal := cac(root, "TaxTotal")
	cbcAmount(taxTotal, "TaxAmount", doc.TaxTotal, doc.BaseCurrency)

	monetary := cac(root, "LegalMonetaryTotal")
	cbcAmount(monetary, "LineExtensionAmount", doc.Subtotal, doc.BaseCurrency)
	cbcAmount(monetary, "TaxExclusiveAmount", doc.Subtotal, doc.BaseCurrency)
	cbcAmount(monetary, "TaxInclusiveAmount", doc.TotalAmount, doc.BaseCurrency)
	cbcAmount(monetary, "PayableAmount", doc.TotalAmount, doc.BaseCurrency)

	// ---- cac:InvoiceLine: cada línea en su propia moneda
	for i, l := range doc.Lines {
		line := cac(root, "InvoiceLine")
		cbc(line, "ID", strconv.Itoa(i+1))

		qty := cbc(line, "InvoicedQuantity", l.Quantity.String())
		qty.CreateAttr("unitCode", unitCode(l.UnitOfMeasure))

		cbcAmount(line, "LineExtensionAmount", l.Subtotal, l.Currency)

		item := cac(line, "Item")
		cbc(item, "Description", l.Description)
		taxCategory := cac(item, "ClassifiedTaxCategory")
		cbc(taxCategory, "Percent", l.VatRate.String())
		cbc(cac(taxCategory, "TaxScheme"), "ID", "VAT")

		price := cac(line, "Price")
		cbcAmount(price, "PriceAmount", l.UnitPrice, l.Currency)
	}

	x.Indent(2)
	out, err := x.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("export: serializar XML: %w", err)
	}
	return out, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

// cbc crea un elemento básico (cbc:) con texto.
func cbc(parent *etree.Element, local, value string) *etree.Element {
	el := parent.CreateElement("cbc:" + local)
	el.SetText(value)
	return el
}

// cac crea un elemento agregado (cac:) vacío.
func cac(parent *etree.Element, local string) *etree.Element {
	return parent.CreateElement("cac:" + local)
}

// cbcAmount crea un elemento de monto con currencyID y dos decimales.
func cbcAmount(parent *etree.Element, local string, amount decimal.Decimal, currency string) *etree.Element {
	el := cbc(parent, local, amount.StringFixed(2))
	el.CreateAttr("currencyID", currency)
	return el
}

// unitCode devuelve el código de unidad UN/ECE de la línea; "EA" (unidad) si
// la columna de unidad no existe o está vacía.
func unitCode(uom string) string {
	if uom == "" {
		return "EA"
	}
	return uom
}

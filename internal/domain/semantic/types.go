// Package semantic: resolución de campos por tipo semántico sobre tablas
// definidas por el usuario. Una columna lleva una etiqueta (SemanticType) que
// describe su significado de negocio independiente de su nombre literal; el
// módulo de facturación localiza campos por etiqueta, nunca por nombre.
package semantic

import "github.com/jhoicas/Tablero-api/internal/domain/entity"

// SemanticType es la etiqueta de significado de una columna.
type SemanticType string

// Etiquetas de producto.
const (
	TypeName        SemanticType = "name"
	TypeDescription SemanticType = "description"
	TypeUnitPrice   SemanticType = "unit_price"
	TypeCurrency    SemanticType = "currency"
	TypeVatRate     SemanticType = "vat_rate"
	TypeSKU         SemanticType = "sku"
	TypeBrand       SemanticType = "brand"
	TypeCategory    SemanticType = "category"
	TypeWeight      SemanticType = "weight"
	TypeDimensions  SemanticType = "dimensions"
)

// Etiquetas de encabezado de factura.
const (
	TypeInvoiceNumber     SemanticType = "invoice_number"
	TypeInvoiceSeries     SemanticType = "invoice_series"
	TypeInvoiceCustomerID SemanticType = "invoice_customer_id"
	TypeInvoiceDate       SemanticType = "invoice_date"
	TypeDueDate           SemanticType = "due_date"
	TypePaymentTerms      SemanticType = "payment_terms"
	TypePaymentMethod     SemanticType = "payment_method"
	TypeNotes             SemanticType = "notes"
	TypeStatus            SemanticType = "status"
	TypeBaseCurrency      SemanticType = "base_currency"
	TypeSubtotal          SemanticType = "subtotal"
	TypeTaxTotal          SemanticType = "tax_total"
	TypeTotalAmount       SemanticType = "total_amount"
)

// Etiquetas de ítem de factura.
const (
	TypeInvoiceRef    SemanticType = "invoice_ref"
	TypeProductRef    SemanticType = "product_ref"
	TypeQuantity      SemanticType = "quantity"
	TypeUnitOfMeasure SemanticType = "unit_of_measure"
)

// Etiquetas de cliente.
const (
	TypeEmail SemanticType = "email"
	TypePhone SemanticType = "phone"
	TypeTaxID SemanticType = "tax_id"
)

// Index resuelve columnas por etiqueta semántica. Se construye una sola vez
// por lectura de tabla; las consultas posteriores son O(1) en lugar de
// escaneos lineales repetidos.
type Index map[SemanticType]entity.Column

// BuildIndex construye el índice a partir de las columnas de una tabla.
// Si dos columnas llevan la misma etiqueta, gana la primera (orden de
// Position); las columnas sin etiqueta se ignoran.
func BuildIndex(columns []entity.Column) Index {
	idx := make(Index, len(columns))
	for _, col := range columns {
		if col.SemanticType == "" {
			continue
		}
		tag := SemanticType(col.SemanticType)
		if _, ok := idx[tag]; !ok {
			idx[tag] = col
		}
	}
	return idx
}

// Column devuelve la columna etiquetada con t, si existe.
func (i Index) Column(t SemanticType) (entity.Column, bool) {
	col, ok := i[t]
	return col, ok
}

// Has informa si la tabla expone la etiqueta t.
func (i Index) Has(t SemanticType) bool {
	_, ok := i[t]
	return ok
}

package semantic

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Tablero-api/internal/domain/entity"
)

// ProductDetails es el registro normalizado de producto que el resolver
// extrae de una fila arbitraria. Todos los campos son opcionales (nil =
// etiqueta ausente en la tabla o celda vacía); los defaults neutros
// (precio 0, moneda por configuración, IVA 0) los aplica el consumidor.
type ProductDetails struct {
	Name        *string
	Description *string
	Category    *string
	SKU         *string
	Brand       *string
	Weight      *decimal.Decimal
	Dimensions  *string
	Price       *decimal.Decimal
	Currency    *string
	Vat         *decimal.Decimal
}

// ExtractProductDetails extrae los detalles de producto de una fila
// emparejando columnas por etiqueta semántica. Nunca falla: etiquetas o
// celdas ausentes dejan el campo en nil (degradación parcial), y es agnóstico
// al orden y a los nombres literales de las columnas.
func ExtractProductDetails(columns []entity.Column, cells []entity.Cell) ProductDetails {
	idx := BuildIndex(columns)
	byColumn := make(map[string]json.RawMessage, len(cells))
	for _, c := range cells {
		byColumn[c.ColumnID] = c.Value
	}

	lookup := func(t SemanticType) (json.RawMessage, bool) {
		col, ok := idx[t]
		if !ok {
			return nil, false
		}
		raw, ok := byColumn[col.ID]
		if !ok || len(raw) == 0 {
			return nil, false
		}
		return raw, true
	}

	var d ProductDetails
	if raw, ok := lookup(TypeName); ok {
		d.Name = strPtr(DecodeString(raw))
	}
	if raw, ok := lookup(TypeDescription); ok {
		d.Description = strPtr(DecodeString(raw))
	}
	if raw, ok := lookup(TypeCategory); ok {
		d.Category = strPtr(DecodeString(raw))
	}
	if raw, ok := lookup(TypeSKU); ok {
		d.SKU = strPtr(DecodeString(raw))
	}
	if raw, ok := lookup(TypeBrand); ok {
		d.Brand = strPtr(DecodeString(raw))
	}
	if raw, ok := lookup(TypeWeight); ok {
		d.Weight = decPtr(DecodeDecimal(raw))
	}
	if raw, ok := lookup(TypeDimensions); ok {
		d.Dimensions = strPtr(DecodeString(raw))
	}
	if raw, ok := lookup(TypeUnitPrice); ok {
		d.Price = decPtr(DecodeDecimal(raw))
	}
	if raw, ok := lookup(TypeCurrency); ok {
		d.Currency = strPtr(DecodeString(raw))
	}
	if raw, ok := lookup(TypeVatRate); ok {
		d.Vat = decPtr(DecodeDecimal(raw))
	}
	return d
}

// TableValidation es el resultado diagnóstico de ValidateTableForInvoices.
type TableValidation struct {
	IsValid bool
	Reasons []string
}

// ValidateTableForInvoices verifica si una tabla expone el mínimo semántico
// para servir como referencia de productos: al menos una columna unit_price.
// La falta de name, currency o vat_rate genera advertencias pero no invalida.
// Es solo diagnóstico: el flujo de facturación nunca se bloquea por esto.
func ValidateTableForInvoices(columns []entity.Column, tableName string) TableValidation {
	idx := BuildIndex(columns)
	v := TableValidation{IsValid: true}

	if !idx.Has(TypeUnitPrice) {
		v.IsValid = false
		v.Reasons = append(v.Reasons,
			fmt.Sprintf("la tabla %q no tiene columna con etiqueta unit_price", tableName))
	}
	for _, t := range []SemanticType{TypeName, TypeCurrency, TypeVatRate} {
		if !idx.Has(t) {
			v.Reasons = append(v.Reasons,
				fmt.Sprintf("la tabla %q no tiene columna con etiqueta %s (se usará el default)", tableName, t))
		}
	}
	return v
}

func strPtr(s string) *string { return &s }

func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }

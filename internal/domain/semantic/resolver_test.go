package semantic_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tablero-api/internal/domain/entity"
	"github.com/jhoicas/Tablero-api/internal/domain/semantic"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del resolver semántico: extracción de detalles de producto desde una
// tabla arbitraria (columnas etiquetadas, no nombres fijos) y validación
// diagnóstica de tablas de productos.
//
// La garantía central es la degradación parcial: etiquetas ausentes dejan
// campos en nil, nunca producen error, y el orden de las columnas no importa.
// ──────────────────────────────────────────────────────────────────────────────

func TestExtractProductDetails_TablaCompleta(t *testing.T) {
	columns := []entity.Column{
		col("c1", "Nombre del artículo", entity.ColumnTypeText, "name"),
		col("c2", "Precio venta", entity.ColumnTypeNumber, "unit_price"),
		col("c3", "Divisa", entity.ColumnTypeText, "currency"),
		col("c4", "IVA %", entity.ColumnTypeNumber, "vat_rate"),
		col("c5", "Código", entity.ColumnTypeText, "sku"),
	}
	cells := []entity.Cell{
		cell("r1", "c1", `"Teclado mecánico"`),
		cell("r1", "c2", `"125.50"`),
		cell("r1", "c3", `"USD"`),
		cell("r1", "c4", `19`),
		cell("r1", "c5", `"TEC-001"`),
	}

	d := semantic.ExtractProductDetails(columns, cells)

	require.NotNil(t, d.Name, "name debe resolverse")
	assert.Equal(t, "Teclado mecánico", *d.Name)
	require.NotNil(t, d.Price, "unit_price debe resolverse")
	assert.True(t, d.Price.Equal(decimal.RequireFromString("125.50")),
		"el precio debe conservar el valor exacto de la celda")
	require.NotNil(t, d.Currency)
	assert.Equal(t, "USD", *d.Currency)
	require.NotNil(t, d.Vat)
	assert.True(t, d.Vat.Equal(decimal.NewFromInt(19)))
	require.NotNil(t, d.SKU)
	assert.Equal(t, "TEC-001", *d.SKU)
	assert.Nil(t, d.Brand, "brand no está etiquetado y debe quedar nil")
	assert.Nil(t, d.Weight, "weight no está etiquetado y debe quedar nil")
}

// TestExtractProductDetails_SinColumnaPrecio verifica la propiedad de
// degradación: sin columna unit_price el resultado tiene Price nil, no error.
func TestExtractProductDetails_SinColumnaPrecio(t *testing.T) {
	columns := []entity.Column{
		col("c1", "Nombre", entity.ColumnTypeText, "name"),
		col("c2", "Notas internas", entity.ColumnTypeText, ""),
	}
	cells := []entity.Cell{
		cell("r1", "c1", `"Producto sin precio"`),
		cell("r1", "c2", `"no facturable aún"`),
	}

	d := semantic.ExtractProductDetails(columns, cells)

	assert.Nil(t, d.Price, "sin etiqueta unit_price el precio debe quedar nil")
	require.NotNil(t, d.Name)
	assert.Equal(t, "Producto sin precio", *d.Name)
}

// TestExtractProductDetails_AgnosticoAlOrden verifica que reordenar columnas
// y celdas no cambia el resultado (resolución por etiqueta, no por posición).
func TestExtractProductDetails_AgnosticoAlOrden(t *testing.T) {
	columns := []entity.Column{
		col("c1", "A", entity.ColumnTypeText, "name"),
		col("c2", "B", entity.ColumnTypeNumber, "unit_price"),
	}
	cells := []entity.Cell{
		cell("r1", "c1", `"X"`),
		cell("r1", "c2", `"10"`),
	}
	reversedCols := []entity.Column{columns[1], columns[0]}
	reversedCells := []entity.Cell{cells[1], cells[0]}

	d1 := semantic.ExtractProductDetails(columns, cells)
	d2 := semantic.ExtractProductDetails(reversedCols, reversedCells)

	assert.Equal(t, *d1.Name, *d2.Name, "el orden de columnas no debe afectar el nombre")
	assert.True(t, d1.Price.Equal(*d2.Price), "el orden de columnas no debe afectar el precio")
}

// TestExtractProductDetails_CeldaAusente: columna etiquetada pero fila sin
// celda para esa columna → campo nil.
func TestExtractProductDetails_CeldaAusente(t *testing.T) {
	columns := []entity.Column{
		col("c1", "Nombre", entity.ColumnTypeText, "name"),
		col("c2", "Precio", entity.ColumnTypeNumber, "unit_price"),
	}
	cells := []entity.Cell{
		cell("r1", "c1", `"Solo nombre"`),
	}

	d := semantic.ExtractProductDetails(columns, cells)

	assert.Nil(t, d.Price, "sin celda de precio el campo debe quedar nil")
	require.NotNil(t, d.Name)
}

func TestExtractProductDetails_SinColumnasNiCeldas(t *testing.T) {
	d := semantic.ExtractProductDetails(nil, nil)

	assert.Nil(t, d.Name)
	assert.Nil(t, d.Price)
	assert.Nil(t, d.Currency)
	assert.Nil(t, d.Vat)
}

// TestExtractProductDetails_EtiquetaDuplicada: dos columnas con la misma
// etiqueta → gana la primera.
func TestExtractProductDetails_EtiquetaDuplicada(t *testing.T) {
	columns := []entity.Column{
		col("c1", "Precio viejo", entity.ColumnTypeNumber, "unit_price"),
		col("c2", "Precio nuevo", entity.ColumnTypeNumber, "unit_price"),
	}
	cells := []entity.Cell{
		cell("r1", "c1", `"100"`),
		cell("r1", "c2", `"999"`),
	}

	d := semantic.ExtractProductDetails(columns, cells)

	require.NotNil(t, d.Price)
	assert.True(t, d.Price.Equal(decimal.NewFromInt(100)),
		"con etiquetas duplicadas debe ganar la primera columna")
}

// ── ValidateTableForInvoices ──────────────────────────────────────────────────

func TestValidateTableForInvoices_TablaValida(t *testing.T) {
	columns := []entity.Column{
		col("c1", "Nombre", entity.ColumnTypeText, "name"),
		col("c2", "Precio", entity.ColumnTypeNumber, "unit_price"),
		col("c3", "Moneda", entity.ColumnTypeText, "currency"),
		col("c4", "IVA", entity.ColumnTypeNumber, "vat_rate"),
	}

	v := semantic.ValidateTableForInvoices(columns, "productos")

	assert.True(t, v.IsValid, "una tabla con unit_price es válida")
	assert.Empty(t, v.Reasons, "tabla completa no debe generar advertencias")
}

func TestValidateTableForInvoices_SinPrecio(t *testing.T) {
	columns := []entity.Column{
		col("c1", "Nombre", entity.ColumnTypeText, "name"),
	}

	v := semantic.ValidateTableForInvoices(columns, "servicios")

	assert.False(t, v.IsValid, "sin columna unit_price la tabla no es válida")
	require.NotEmpty(t, v.Reasons)
	assert.Contains(t, v.Reasons[0], "unit_price")
	assert.Contains(t, v.Reasons[0], "servicios", "la razón debe nombrar la tabla")
}

func TestValidateTableForInvoices_AdvertenciasNoInvalidan(t *testing.T) {
	columns := []entity.Column{
		col("c1", "Precio", entity.ColumnTypeNumber, "unit_price"),
	}

	v := semantic.ValidateTableForInvoices(columns, "productos")

	assert.True(t, v.IsValid, "la falta de name/currency/vat_rate solo advierte")
	assert.Len(t, v.Reasons, 3, "debe advertir por name, currency y vat_rate")
}

// ── helpers ───────────────────────────────────────────────────────────────────

func col(id, name, colType, semanticType string) entity.Column {
	return entity.Column{ID: id, TableID: "t1", Name: name, Type: colType, SemanticType: semanticType}
}

func cell(rowID, columnID, rawJSON string) entity.Cell {
	return entity.Cell{RowID: rowID, ColumnID: columnID, Value: json.RawMessage(rawJSON)}
}

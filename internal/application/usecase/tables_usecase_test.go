package usecase_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tablero-api/internal/application/dto"
	"github.com/jhoicas/Tablero-api/internal/application/usecase"
	"github.com/jhoicas/Tablero-api/internal/domain"
)

const testDatabaseID = "db-1"

func newTablesUC(s *store) *usecase.TablesUseCase {
	return usecase.NewTablesUseCase(s.databaseRepo(), s.tableRepo(), s.rowRepo())
}

func productosRequest() dto.CreateTableRequest {
	return dto.CreateTableRequest{
		Name: "productos",
		Columns: []dto.ColumnRequest{
			{Name: "nombre", Type: "text", SemanticType: "name"},
			{Name: "precio", Type: "number", SemanticType: "unit_price"},
			{Name: "moneda", Type: "text", SemanticType: "currency"},
		},
	}
}

func TestCreateTable_ConColumnasEtiquetadas(t *testing.T) {
	s := newStore()
	s.seedDatabase(tenantA, testDatabaseID, "ventas")
	uc := newTablesUC(s)

	table, err := uc.CreateTable(context.Background(), tenantA, testDatabaseID, productosRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, table.ID)
	assert.Equal(t, "productos", table.Name)
	require.Len(t, table.Columns, 3)
	for i, col := range table.Columns {
		assert.Equal(t, i, col.Position, "las columnas conservan el orden del request")
	}
	assert.Equal(t, "unit_price", table.Columns[1].SemanticType)
}

func TestCreateTable_NombreDuplicado(t *testing.T) {
	s := newStore()
	s.seedDatabase(tenantA, testDatabaseID, "ventas")
	uc := newTablesUC(s)

	_, err := uc.CreateTable(context.Background(), tenantA, testDatabaseID, productosRequest())
	require.NoError(t, err)
	_, err = uc.CreateTable(context.Background(), tenantA, testDatabaseID, productosRequest())
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateTable_ValidaColumnas(t *testing.T) {
	s := newStore()
	s.seedDatabase(tenantA, testDatabaseID, "ventas")
	uc := newTablesUC(s)

	_, err := uc.CreateTable(context.Background(), tenantA, testDatabaseID, dto.CreateTableRequest{
		Name: "rota",
		Columns: []dto.ColumnRequest{
			{Name: "", Type: "text"},
			{Name: "x", Type: "jsonb"},
		},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	var v *domain.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.Fields, "columns[0].name")
	assert.Contains(t, v.Fields, "columns[1].type")
}

func TestCreateTable_DatabaseDeOtroTenant(t *testing.T) {
	s := newStore()
	s.seedDatabase(tenantB, testDatabaseID, "ajena")
	uc := newTablesUC(s)

	_, err := uc.CreateTable(context.Background(), tenantA, testDatabaseID, productosRequest())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAddColumn_IdempotentePorNombre(t *testing.T) {
	s := newStore()
	s.seedDatabase(tenantA, testDatabaseID, "ventas")
	uc := newTablesUC(s)

	table, err := uc.CreateTable(context.Background(), tenantA, testDatabaseID, productosRequest())
	require.NoError(t, err)

	first, err := uc.AddColumn(context.Background(), tenantA, testDatabaseID, table.ID,
		dto.ColumnRequest{Name: "iva", Type: "number", SemanticType: "vat_rate"})
	require.NoError(t, err)
	assert.Equal(t, 3, first.Position)

	// Repetir con otro casing y otro tipo devuelve la columna original intacta.
	again, err := uc.AddColumn(context.Background(), tenantA, testDatabaseID, table.ID,
		dto.ColumnRequest{Name: "IVA", Type: "text"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "number", again.Type)
	assert.Len(t, s.columns[table.ID], 4, "la repetición no crea columnas nuevas")
}

func TestCreateRow_RechazaColumnaDesconocida(t *testing.T) {
	s := newStore()
	s.seedDatabase(tenantA, testDatabaseID, "ventas")
	uc := newTablesUC(s)

	table, err := uc.CreateTable(context.Background(), tenantA, testDatabaseID, productosRequest())
	require.NoError(t, err)

	_, err = uc.CreateRow(context.Background(), tenantA, testDatabaseID, table.ID, dto.CreateRowRequest{
		Cells: map[string]json.RawMessage{"col-fantasma": json.RawMessage(`"x"`)},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	var v *domain.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.Fields, "cells")
}

func TestListRows_Paginado(t *testing.T) {
	s := newStore()
	s.seedDatabase(tenantA, testDatabaseID, "ventas")
	uc := newTablesUC(s)

	table, err := uc.CreateTable(context.Background(), tenantA, testDatabaseID, productosRequest())
	require.NoError(t, err)
	nameCol := table.Columns[0].ID

	for _, name := range []string{"martillo", "tornillo", "taladro"} {
		_, err := uc.CreateRow(context.Background(), tenantA, testDatabaseID, table.ID, dto.CreateRowRequest{
			Cells: map[string]json.RawMessage{nameCol: json.RawMessage(`"` + name + `"`)},
		})
		require.NoError(t, err)
	}

	page, err := uc.ListRows(context.Background(), tenantA, testDatabaseID, table.ID, dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Rows, 2)
	assert.Equal(t, 3, page.Page.Total)
	assert.Equal(t, json.RawMessage(`"martillo"`), page.Rows[0].Cells[nameCol])

	rest, err := uc.ListRows(context.Background(), tenantA, testDatabaseID, table.ID, dto.PageRequest{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest.Rows, 1)

	// Sin limit explícito aplica el default.
	defaulted, err := uc.ListRows(context.Background(), tenantA, testDatabaseID, table.ID, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 20, defaulted.Page.Limit)
	assert.Len(t, defaulted.Rows, 3)
}

func TestGetRow_DeOtraTabla_NotFound(t *testing.T) {
	s := newStore()
	s.seedDatabase(tenantA, testDatabaseID, "ventas")
	uc := newTablesUC(s)

	productos, err := uc.CreateTable(context.Background(), tenantA, testDatabaseID, productosRequest())
	require.NoError(t, err)
	otra, err := uc.CreateTable(context.Background(), tenantA, testDatabaseID, dto.CreateTableRequest{Name: "otra"})
	require.NoError(t, err)

	row, err := uc.CreateRow(context.Background(), tenantA, testDatabaseID, productos.ID, dto.CreateRowRequest{
		Cells: map[string]json.RawMessage{},
	})
	require.NoError(t, err)

	_, err = uc.GetRow(context.Background(), tenantA, testDatabaseID, otra.ID, row.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "una fila no es visible a través de otra tabla")
}

func TestUpdateCell_EscribeYDevuelveLaFila(t *testing.T) {
	s := newStore()
	s.seedDatabase(tenantA, testDatabaseID, "ventas")
	uc := newTablesUC(s)

	table, err := uc.CreateTable(context.Background(), tenantA, testDatabaseID, productosRequest())
	require.NoError(t, err)
	nameCol, priceCol := table.Columns[0].ID, table.Columns[1].ID

	row, err := uc.CreateRow(context.Background(), tenantA, testDatabaseID, table.ID, dto.CreateRowRequest{
		Cells: map[string]json.RawMessage{nameCol: json.RawMessage(`"martillo"`)},
	})
	require.NoError(t, err)

	out, err := uc.UpdateCell(context.Background(), tenantA, testDatabaseID, table.ID, row.ID, priceCol,
		dto.UpdateCellRequest{Value: json.RawMessage(`"12.50"`)})
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`"12.50"`), out.Cells[priceCol])
	assert.Equal(t, json.RawMessage(`"martillo"`), out.Cells[nameCol], "las demás celdas quedan intactas")

	// Repetir sobre la misma celda sobrescribe el valor.
	again, err := uc.UpdateCell(context.Background(), tenantA, testDatabaseID, table.ID, row.ID, priceCol,
		dto.UpdateCellRequest{Value: json.RawMessage(`"9.99"`)})
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`"9.99"`), again.Cells[priceCol])
}

func TestUpdateCell_ColumnaDesconocida(t *testing.T) {
	s := newStore()
	s.seedDatabase(tenantA, testDatabaseID, "ventas")
	uc := newTablesUC(s)

	table, err := uc.CreateTable(context.Background(), tenantA, testDatabaseID, productosRequest())
	require.NoError(t, err)
	row, err := uc.CreateRow(context.Background(), tenantA, testDatabaseID, table.ID, dto.CreateRowRequest{
		Cells: map[string]json.RawMessage{},
	})
	require.NoError(t, err)

	_, err = uc.UpdateCell(context.Background(), tenantA, testDatabaseID, table.ID, row.ID, "col-fantasma",
		dto.UpdateCellRequest{Value: json.RawMessage(`true`)})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	var v *domain.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.Fields, "column_id")
}

func TestDeleteRows_SinIDs(t *testing.T) {
	s := newStore()
	s.seedDatabase(tenantA, testDatabaseID, "ventas")
	uc := newTablesUC(s)

	table, err := uc.CreateTable(context.Background(), tenantA, testDatabaseID, productosRequest())
	require.NoError(t, err)

	err = uc.DeleteRows(context.Background(), tenantA, testDatabaseID, table.ID, dto.DeleteRowsRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeleteRows_EliminaFilasYCeldas(t *testing.T) {
	s := newStore()
	s.seedDatabase(tenantA, testDatabaseID, "ventas")
	uc := newTablesUC(s)

	table, err := uc.CreateTable(context.Background(), tenantA, testDatabaseID, productosRequest())
	require.NoError(t, err)
	nameCol := table.Columns[0].ID

	row, err := uc.CreateRow(context.Background(), tenantA, testDatabaseID, table.ID, dto.CreateRowRequest{
		Cells: map[string]json.RawMessage{nameCol: json.RawMessage(`"martillo"`)},
	})
	require.NoError(t, err)

	err = uc.DeleteRows(context.Background(), tenantA, testDatabaseID, table.ID, dto.DeleteRowsRequest{IDs: []string{row.ID}})
	require.NoError(t, err)
	assert.Empty(t, s.rows)
	assert.Empty(t, s.cells)
}

func TestValidateForInvoices_SinUnitPrice(t *testing.T) {
	s := newStore()
	s.seedDatabase(tenantA, testDatabaseID, "ventas")
	uc := newTablesUC(s)

	table, err := uc.CreateTable(context.Background(), tenantA, testDatabaseID, dto.CreateTableRequest{
		Name:    "notas",
		Columns: []dto.ColumnRequest{{Name: "texto", Type: "text"}},
	})
	require.NoError(t, err)

	v, err := uc.ValidateForInvoices(context.Background(), tenantA, testDatabaseID, table.ID)
	require.NoError(t, err)
	assert.False(t, v.IsValid, "sin columna unit_price la tabla no sirve de catálogo")
	assert.NotEmpty(t, v.Reasons)

	catalogo, err := uc.CreateTable(context.Background(), tenantA, testDatabaseID, productosRequest())
	require.NoError(t, err)
	v2, err := uc.ValidateForInvoices(context.Background(), tenantA, testDatabaseID, catalogo.ID)
	require.NoError(t, err)
	assert.True(t, v2.IsValid)
}

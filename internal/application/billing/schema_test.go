package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/jhoicas/Tablero-api/internal/application/billing"
	"github.com/jhoicas/Tablero-api/internal/application/dto"
	"github.com/jhoicas/Tablero-api/internal/domain"
	"github.com/jhoicas/Tablero-api/internal/domain/entity"
)

func newSchemaManager(s *memStore) *appbilling.SchemaManager {
	return appbilling.NewSchemaManager(s.databaseRepo(), s, quietLogger())
}

func tableInfo(t *testing.T, resp *dto.InvoiceSchemaResponse, name string) dto.SchemaTableInfo {
	t.Helper()
	for _, info := range resp.Tables {
		if info.Name == name {
			return info
		}
	}
	t.Fatalf("no hay info de la tabla %q en la respuesta", name)
	return dto.SchemaTableInfo{}
}

// Caso 1: Database vacía → se crean las tres tablas del sistema con todas sus
// columnas etiquetadas.
func TestSchemaManager_CreaLasTresTablas(t *testing.T) {
	s := newMemStore()
	seedTenantAndDatabase(s, testTenantID, testDatabaseID)
	mgr := newSchemaManager(s)

	resp, err := mgr.EnsureSchema(context.Background(), testTenantID, testDatabaseID)
	require.NoError(t, err)

	assert.True(t, resp.Changed)
	require.Len(t, resp.Tables, 3)
	for _, name := range []string{appbilling.SystemTableInvoices, appbilling.SystemTableInvoiceItems, appbilling.SystemTableCustomers} {
		info := tableInfo(t, resp, name)
		assert.True(t, info.Created, "la tabla %s debió crearse", name)
		assert.NotEmpty(t, info.TableID)

		table, err := s.tableRepo().GetByName(context.Background(), testDatabaseID, name)
		require.NoError(t, err)
		assert.Equal(t, entity.TableKindSystem, table.Kind)
	}

	invoices, err := s.tableRepo().GetByName(context.Background(), testDatabaseID, appbilling.SystemTableInvoices)
	require.NoError(t, err)
	cols, err := s.tableRepo().GetColumns(context.Background(), invoices.ID)
	require.NoError(t, err)
	assert.Len(t, cols, 13, "la tabla invoices lleva el esquema completo")
}

// Caso 2: Segunda llamada con el esquema completo → idempotente, sin cambios.
func TestSchemaManager_SegundaLlamadaSinCambios(t *testing.T) {
	s := newMemStore()
	seedTenantAndDatabase(s, testTenantID, testDatabaseID)
	mgr := newSchemaManager(s)

	_, err := mgr.EnsureSchema(context.Background(), testTenantID, testDatabaseID)
	require.NoError(t, err)

	resp, err := mgr.EnsureSchema(context.Background(), testTenantID, testDatabaseID)
	require.NoError(t, err)

	assert.False(t, resp.Changed)
	for _, info := range resp.Tables {
		assert.False(t, info.Created)
		assert.Empty(t, info.AddedColumns)
	}

	tables, err := s.tableRepo().ListByDatabase(context.Background(), testDatabaseID)
	require.NoError(t, err)
	assert.Len(t, tables, 3, "repetir el aseguramiento no duplica tablas")
}

// Caso 3: Tabla customers parcial creada por el usuario → solo se agregan las
// columnas que faltan, las existentes no se tocan.
func TestSchemaManager_CompletaColumnasFaltantes(t *testing.T) {
	s := newMemStore()
	seedTenantAndDatabase(s, testTenantID, testDatabaseID)

	now := time.Now()
	s.tables["tbl-cust"] = &entity.Table{ID: "tbl-cust", DatabaseID: testDatabaseID, Name: "customers", Kind: entity.TableKindUser, CreatedAt: now, UpdatedAt: now}
	s.tableOrder = append(s.tableOrder, "tbl-cust")
	// El usuario ya tiene su columna de nombre, renombrada pero etiquetada.
	s.columns["tbl-cust"] = []entity.Column{
		{ID: "c-razon", TableID: "tbl-cust", Name: "razon_social", Type: entity.ColumnTypeText, SemanticType: "name", Position: 0},
	}

	mgr := newSchemaManager(s)
	resp, err := mgr.EnsureSchema(context.Background(), testTenantID, testDatabaseID)
	require.NoError(t, err)

	assert.True(t, resp.Changed)
	info := tableInfo(t, resp, appbilling.SystemTableCustomers)
	assert.False(t, info.Created)
	assert.Equal(t, []string{"tax_id", "email", "phone"}, info.AddedColumns,
		"la etiqueta name ya estaba cubierta por razon_social")

	cols, err := s.tableRepo().GetColumns(context.Background(), "tbl-cust")
	require.NoError(t, err)
	require.Len(t, cols, 4)
	assert.Equal(t, "razon_social", cols[0].Name, "la columna del usuario queda intacta y primera")
}

// Caso 4: El usuario ocupó el nombre de una columna del sistema sin su
// etiqueta → no se duplica la columna (el ensamblado fallará después con
// ErrSchema, pero el aseguramiento jamás pisa datos del usuario).
func TestSchemaManager_NombreOcupadoNoSeDuplica(t *testing.T) {
	s := newMemStore()
	seedTenantAndDatabase(s, testTenantID, testDatabaseID)

	now := time.Now()
	s.tables["tbl-inv"] = &entity.Table{ID: "tbl-inv", DatabaseID: testDatabaseID, Name: "invoices", Kind: entity.TableKindUser, CreatedAt: now, UpdatedAt: now}
	s.tableOrder = append(s.tableOrder, "tbl-inv")
	s.columns["tbl-inv"] = []entity.Column{
		{ID: "c-status", TableID: "tbl-inv", Name: "status", Type: entity.ColumnTypeText, Position: 0},
	}

	mgr := newSchemaManager(s)
	resp, err := mgr.EnsureSchema(context.Background(), testTenantID, testDatabaseID)
	require.NoError(t, err)

	info := tableInfo(t, resp, appbilling.SystemTableInvoices)
	assert.NotContains(t, info.AddedColumns, "status")

	cols, err := s.tableRepo().GetColumns(context.Background(), "tbl-inv")
	require.NoError(t, err)
	statusCount := 0
	for _, c := range cols {
		if c.Name == "status" {
			statusCount++
		}
	}
	assert.Equal(t, 1, statusCount, "una sola columna status: la del usuario")
}

// Caso 5: Database de otro tenant → ErrForbidden sin tocar nada.
func TestSchemaManager_DatabaseAjenaProhibida(t *testing.T) {
	s := newMemStore()
	seedTenantAndDatabase(s, testTenantID, testDatabaseID)
	mgr := newSchemaManager(s)

	_, err := mgr.EnsureSchema(context.Background(), otherTenantID, testDatabaseID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	tables, err := s.tableRepo().ListByDatabase(context.Background(), testDatabaseID)
	require.NoError(t, err)
	assert.Empty(t, tables)
}

package billing_test

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Tablero-api/internal/domain"
	domainbilling "github.com/jhoicas/Tablero-api/internal/domain/billing"
	"github.com/jhoicas/Tablero-api/internal/domain/entity"
	"github.com/jhoicas/Tablero-api/internal/domain/repository"
	"github.com/jhoicas/Tablero-api/internal/domain/semantic"
	"github.com/jhoicas/Tablero-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// memStore: motor de tablas en memoria para los tests del paquete. Un estado
// compartido con un adaptador por puerto, incluida la semántica de Allocate
// (incremento atómico + reinicio anual) que en producción vive en SQL.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	tenants    map[string]*entity.Tenant
	databases  map[string]*entity.Database
	tables     map[string]*entity.Table
	tableOrder []string
	columns    map[string][]entity.Column
	rows       map[string]*entity.Row
	rowOrder   []string
	cells      map[string]map[string]json.RawMessage // rowID -> columnID -> valor
	series     map[string]*entity.InvoiceSeries      // tenant|database|serie
	mu         sync.Mutex                            // protege series y allocErrs

	// Errores a inyectar en las próximas llamadas a Allocate (para simular
	// conflictos de concurrencia). Se consumen en orden; nil significa éxito.
	allocErrs []error
}

func newMemStore() *memStore {
	return &memStore{
		tenants:   map[string]*entity.Tenant{},
		databases: map[string]*entity.Database{},
		tables:    map[string]*entity.Table{},
		columns:   map[string][]entity.Column{},
		rows:      map[string]*entity.Row{},
		cells:     map[string]map[string]json.RawMessage{},
		series:    map[string]*entity.InvoiceSeries{},
	}
}

func (s *memStore) tenantRepo() repository.TenantRepository     { return fakeTenantRepo{s} }
func (s *memStore) databaseRepo() repository.DatabaseRepository { return fakeDatabaseRepo{s} }
func (s *memStore) tableRepo() repository.TableRepository       { return fakeTableRepo{s} }
func (s *memStore) rowRepo() repository.RowRepository           { return fakeRowRepo{s} }
func (s *memStore) seriesRepo() repository.SeriesRepository     { return fakeSeriesRepo{s} }

// RunInvoicing entrega los adaptadores del propio store como repos
// "transaccionales". Los tests verifican efectos observables, no el rollback
// (eso es asunto del runner real sobre pgx).
func (s *memStore) RunInvoicing(ctx context.Context, fn func(repository.TableRepository, repository.RowRepository, repository.SeriesRepository) error) error {
	return fn(s.tableRepo(), s.rowRepo(), s.seriesRepo())
}

func seriesKey(tenantID, databaseID, series string) string {
	return tenantID + "|" + databaseID + "|" + series
}

// ── TenantRepository ─────────────────────────────────────────────────────────

type fakeTenantRepo struct{ s *memStore }

func (r fakeTenantRepo) Create(ctx context.Context, tenant *entity.Tenant) error {
	cp := *tenant
	r.s.tenants[tenant.ID] = &cp
	return nil
}

func (r fakeTenantRepo) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	t, ok := r.s.tenants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r fakeTenantRepo) HasActiveModule(ctx context.Context, tenantID, moduleName string) (bool, error) {
	return true, nil
}

func (r fakeTenantRepo) ActivateModule(ctx context.Context, module *entity.TenantModule) error {
	return nil
}

func (r fakeTenantRepo) ListModules(ctx context.Context, tenantID string) ([]*entity.TenantModule, error) {
	return nil, nil
}

// ── DatabaseRepository ───────────────────────────────────────────────────────

type fakeDatabaseRepo struct{ s *memStore }

func (r fakeDatabaseRepo) Create(ctx context.Context, db *entity.Database) error {
	cp := *db
	r.s.databases[db.ID] = &cp
	return nil
}

func (r fakeDatabaseRepo) GetByID(ctx context.Context, id string) (*entity.Database, error) {
	db, ok := r.s.databases[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *db
	return &cp, nil
}

func (r fakeDatabaseRepo) ListByTenant(ctx context.Context, tenantID string) ([]*entity.Database, error) {
	var out []*entity.Database
	for _, db := range r.s.databases {
		if db.TenantID == tenantID {
			cp := *db
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r fakeDatabaseRepo) Update(ctx context.Context, db *entity.Database) error {
	cp := *db
	r.s.databases[db.ID] = &cp
	return nil
}

// ── TableRepository ──────────────────────────────────────────────────────────

type fakeTableRepo struct{ s *memStore }

func (r fakeTableRepo) Create(ctx context.Context, table *entity.Table) error {
	for _, id := range r.s.tableOrder {
		t := r.s.tables[id]
		if t.DatabaseID == table.DatabaseID && t.Name == table.Name {
			return domain.ErrDuplicate
		}
	}
	cp := *table
	r.s.tables[table.ID] = &cp
	r.s.tableOrder = append(r.s.tableOrder, table.ID)
	return nil
}

func (r fakeTableRepo) GetByID(ctx context.Context, id string) (*entity.Table, error) {
	t, ok := r.s.tables[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r fakeTableRepo) GetByName(ctx context.Context, databaseID, name string) (*entity.Table, error) {
	for _, id := range r.s.tableOrder {
		t := r.s.tables[id]
		if t.DatabaseID == databaseID && t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r fakeTableRepo) ListByDatabase(ctx context.Context, databaseID string) ([]*entity.Table, error) {
	var out []*entity.Table
	for _, id := range r.s.tableOrder {
		if t := r.s.tables[id]; t.DatabaseID == databaseID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r fakeTableRepo) CreateColumn(ctx context.Context, column *entity.Column) error {
	r.s.columns[column.TableID] = append(r.s.columns[column.TableID], *column)
	return nil
}

func (r fakeTableRepo) GetColumns(ctx context.Context, tableID string) ([]entity.Column, error) {
	cols := append([]entity.Column(nil), r.s.columns[tableID]...)
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].Position < cols[j].Position })
	return cols, nil
}

// ── RowRepository ────────────────────────────────────────────────────────────

type fakeRowRepo struct{ s *memStore }

func (r fakeRowRepo) CreateRow(ctx context.Context, row *entity.Row) error {
	cp := *row
	r.s.rows[row.ID] = &cp
	r.s.rowOrder = append(r.s.rowOrder, row.ID)
	return nil
}

func (r fakeRowRepo) GetRow(ctx context.Context, id string) (*entity.Row, error) {
	row, ok := r.s.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (r fakeRowRepo) ListRows(ctx context.Context, tableID string, limit, offset int) ([]*entity.Row, error) {
	var all []*entity.Row
	for _, id := range r.s.rowOrder {
		if row, ok := r.s.rows[id]; ok && row.TableID == tableID {
			cp := *row
			all = append(all, &cp)
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r fakeRowRepo) CountRows(ctx context.Context, tableID string) (int, error) {
	n := 0
	for _, row := range r.s.rows {
		if row.TableID == tableID {
			n++
		}
	}
	return n, nil
}

func (r fakeRowRepo) DeleteRows(ctx context.Context, tableID string, ids []string) error {
	for _, id := range ids {
		row, ok := r.s.rows[id]
		if !ok || row.TableID != tableID {
			continue
		}
		delete(r.s.rows, id)
		delete(r.s.cells, id)
	}
	return nil
}

func (r fakeRowRepo) CreateCells(ctx context.Context, cells []entity.Cell) error {
	for _, c := range cells {
		if r.s.cells[c.RowID] == nil {
			r.s.cells[c.RowID] = map[string]json.RawMessage{}
		}
		r.s.cells[c.RowID][c.ColumnID] = append(json.RawMessage(nil), c.Value...)
	}
	return nil
}

func (r fakeRowRepo) UpdateCell(ctx context.Context, cell entity.Cell) error {
	return r.CreateCells(ctx, []entity.Cell{cell})
}

func (r fakeRowRepo) GetCells(ctx context.Context, rowID string) ([]entity.Cell, error) {
	byCol := r.s.cells[rowID]
	out := make([]entity.Cell, 0, len(byCol))
	for colID, v := range byCol {
		out = append(out, entity.Cell{RowID: rowID, ColumnID: colID, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ColumnID < out[j].ColumnID })
	return out, nil
}

func (r fakeRowRepo) GetCellsForRows(ctx context.Context, rowIDs []string) (map[string][]entity.Cell, error) {
	out := map[string][]entity.Cell{}
	for _, id := range rowIDs {
		cells, _ := r.GetCells(ctx, id)
		if len(cells) > 0 {
			out[id] = cells
		}
	}
	return out, nil
}

func (r fakeRowRepo) FindRowsByCellRef(ctx context.Context, tableID, columnID, refRowID string) ([]*entity.Row, error) {
	var out []*entity.Row
	for _, id := range r.s.rowOrder {
		row, ok := r.s.rows[id]
		if !ok || row.TableID != tableID {
			continue
		}
		if semantic.DecodeReference(r.s.cells[id][columnID]) == refRowID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r fakeRowRepo) FindRowByCellValue(ctx context.Context, tableID, columnID string, value json.RawMessage) (*entity.Row, error) {
	for _, id := range r.s.rowOrder {
		row, ok := r.s.rows[id]
		if !ok || row.TableID != tableID {
			continue
		}
		if bytes.Equal(r.s.cells[id][columnID], value) {
			cp := *row
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ── SeriesRepository ─────────────────────────────────────────────────────────

type fakeSeriesRepo struct{ s *memStore }

func (r fakeSeriesRepo) Allocate(ctx context.Context, tenantID, databaseID string, cfg domainbilling.NumberingConfig, year int) (*entity.InvoiceSeries, error) {
	// El upsert real serializa por el lock de fila del ON CONFLICT; el fake
	// serializa con el mutex del store.
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if len(r.s.allocErrs) > 0 {
		err := r.s.allocErrs[0]
		r.s.allocErrs = r.s.allocErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	key := seriesKey(tenantID, databaseID, cfg.Series)
	row, ok := r.s.series[key]
	if !ok {
		now := time.Now()
		row = &entity.InvoiceSeries{
			TenantID:      tenantID,
			DatabaseID:    databaseID,
			Series:        cfg.Series,
			Prefix:        cfg.Prefix,
			Suffix:        cfg.Suffix,
			Separator:     cfg.Separator,
			IncludeYear:   cfg.IncludeYear,
			IncludeMonth:  cfg.IncludeMonth,
			ResetYearly:   cfg.ResetYearly,
			PadWidth:      cfg.PadWidth,
			CurrentNumber: cfg.StartNumber,
			LastYear:      year,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		r.s.series[key] = row
	} else {
		// last_year = 0 significa "nunca asignó": no cuenta como cambio de año.
		if row.ResetYearly && row.LastYear != 0 && row.LastYear != year {
			row.CurrentNumber = 1
		} else {
			row.CurrentNumber++
		}
		row.LastYear = year
		row.UpdatedAt = time.Now()
	}
	cp := *row
	return &cp, nil
}

func (r fakeSeriesRepo) Create(ctx context.Context, series *entity.InvoiceSeries) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := seriesKey(series.TenantID, series.DatabaseID, series.Series)
	if _, ok := r.s.series[key]; ok {
		return domain.ErrDuplicate
	}
	cp := *series
	r.s.series[key] = &cp
	return nil
}

func (r fakeSeriesRepo) GetBySeries(ctx context.Context, tenantID, databaseID, series string) (*entity.InvoiceSeries, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.series[seriesKey(tenantID, databaseID, series)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (r fakeSeriesRepo) ListByDatabase(ctx context.Context, tenantID, databaseID string) ([]*entity.InvoiceSeries, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InvoiceSeries
	for _, row := range r.s.series {
		if row.TenantID == tenantID && row.DatabaseID == databaseID {
			cp := *row
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Series < out[j].Series })
	return out, nil
}

// ── helpers de seed ──────────────────────────────────────────────────────────

func quietLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

// seedSeries inserta una serie con su estado de contador ya avanzado.
func seedSeries(s *memStore, row *entity.InvoiceSeries) {
	now := time.Now()
	cp := *row
	cp.CreatedAt, cp.UpdatedAt = now, now
	s.series[seriesKey(row.TenantID, row.DatabaseID, row.Series)] = &cp
}

func seedTenantAndDatabase(s *memStore, tenantID, databaseID string) {
	now := time.Now()
	s.tenants[tenantID] = &entity.Tenant{ID: tenantID, Name: "Acme SAS", Status: "active", CreatedAt: now, UpdatedAt: now}
	s.databases[databaseID] = &entity.Database{ID: databaseID, TenantID: tenantID, Name: "ventas", CreatedAt: now, UpdatedAt: now}
}

// seedProductsTable crea una tabla de productos con etiquetas semánticas.
func seedProductsTable(s *memStore, databaseID, tableID string) {
	now := time.Now()
	s.tables[tableID] = &entity.Table{ID: tableID, DatabaseID: databaseID, Name: "productos", Kind: entity.TableKindUser, CreatedAt: now, UpdatedAt: now}
	s.tableOrder = append(s.tableOrder, tableID)
	s.columns[tableID] = []entity.Column{
		{ID: tableID + "-c1", TableID: tableID, Name: "nombre", Type: entity.ColumnTypeText, SemanticType: "name", Position: 0},
		{ID: tableID + "-c2", TableID: tableID, Name: "precio", Type: entity.ColumnTypeNumber, SemanticType: "unit_price", Position: 1},
		{ID: tableID + "-c3", TableID: tableID, Name: "moneda", Type: entity.ColumnTypeText, SemanticType: "currency", Position: 2},
		{ID: tableID + "-c4", TableID: tableID, Name: "iva", Type: entity.ColumnTypeNumber, SemanticType: "vat_rate", Position: 3},
	}
}

// seedProductRow inserta un producto en la tabla creada por seedProductsTable.
func seedProductRow(s *memStore, tableID, rowID, name, price, currency, vat string) {
	now := time.Now()
	s.rows[rowID] = &entity.Row{ID: rowID, TableID: tableID, CreatedAt: now, UpdatedAt: now}
	s.rowOrder = append(s.rowOrder, rowID)
	s.cells[rowID] = map[string]json.RawMessage{
		tableID + "-c1": json.RawMessage(`"` + name + `"`),
		tableID + "-c2": json.RawMessage(`"` + price + `"`),
		tableID + "-c3": json.RawMessage(`"` + currency + `"`),
		tableID + "-c4": json.RawMessage(`"` + vat + `"`),
	}
}

package usecase_test

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/jhoicas/Tablero-api/internal/domain"
	"github.com/jhoicas/Tablero-api/internal/domain/entity"
	"github.com/jhoicas/Tablero-api/internal/domain/repository"
	"github.com/jhoicas/Tablero-api/internal/domain/semantic"
)

// ──────────────────────────────────────────────────────────────────────────────
// store: persistencia en memoria para los tests del paquete. Un estado
// compartido con un adaptador liviano por puerto.
// ──────────────────────────────────────────────────────────────────────────────

type store struct {
	users      map[string]*entity.User
	userOrder  []string
	databases  map[string]*entity.Database
	tables     map[string]*entity.Table
	tableOrder []string
	columns    map[string][]entity.Column
	rows       map[string]*entity.Row
	rowOrder   []string
	cells      map[string]map[string]json.RawMessage // rowID -> columnID -> valor
}

func newStore() *store {
	return &store{
		users:     map[string]*entity.User{},
		databases: map[string]*entity.Database{},
		tables:    map[string]*entity.Table{},
		columns:   map[string][]entity.Column{},
		rows:      map[string]*entity.Row{},
		cells:     map[string]map[string]json.RawMessage{},
	}
}

func (s *store) userRepo() repository.UserRepository         { return fakeUserRepo{s} }
func (s *store) databaseRepo() repository.DatabaseRepository { return fakeDatabaseRepo{s} }
func (s *store) tableRepo() repository.TableRepository       { return fakeTableRepo{s} }
func (s *store) rowRepo() repository.RowRepository           { return fakeRowRepo{s} }

func (s *store) seedDatabase(tenantID, databaseID, name string) {
	now := time.Now()
	s.databases[databaseID] = &entity.Database{ID: databaseID, TenantID: tenantID, Name: name, CreatedAt: now, UpdatedAt: now}
}

func (s *store) seedUser(id, tenantID, email, role, status string) {
	now := time.Now()
	s.users[id] = &entity.User{
		ID:           id,
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: "$2a$10$hash-irrelevante-en-tests",
		Name:         email,
		Role:         role,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.userOrder = append(s.userOrder, id)
}

// ── UserRepository ───────────────────────────────────────────────────────────

type fakeUserRepo struct{ s *store }

func (r fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	cp := *user
	r.s.users[user.ID] = &cp
	r.s.userOrder = append(r.s.userOrder, user.ID)
	return nil
}

func (r fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, id := range r.s.userOrder {
		if u := r.s.users[id]; u != nil && u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	if _, ok := r.s.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r fakeUserRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.User, error) {
	var all []*entity.User
	for _, id := range r.s.userOrder {
		if u := r.s.users[id]; u != nil && u.TenantID == tenantID {
			cp := *u
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

func (r fakeUserRepo) Delete(ctx context.Context, id string) error {
	delete(r.s.users, id)
	return nil
}

// ── DatabaseRepository ───────────────────────────────────────────────────────

type fakeDatabaseRepo struct{ s *store }

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

type fakeTableRepo struct{ s *store }

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

type fakeRowRepo struct{ s *store }

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

package usecase

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Tablero-api/internal/application/dto"
	"github.com/jhoicas/Tablero-api/internal/domain"
	"github.com/jhoicas/Tablero-api/internal/domain/entity"
	"github.com/jhoicas/Tablero-api/internal/domain/repository"
	"github.com/jhoicas/Tablero-api/internal/domain/semantic"
)

var validColumnTypes = map[string]bool{
	entity.ColumnTypeText:      true,
	entity.ColumnTypeNumber:    true,
	entity.ColumnTypeBoolean:   true,
	entity.ColumnTypeDate:      true,
	entity.ColumnTypeReference: true,
}

// TablesUseCase aplica reglas de negocio para el motor de tablas: tablas,
// columnas, filas y celdas definidas por el usuario dentro de una database.
type TablesUseCase struct {
	dbRepo    repository.DatabaseRepository
	tableRepo repository.TableRepository
	rowRepo   repository.RowRepository
}

// NewTablesUseCase construye el caso de uso del motor de tablas.
func NewTablesUseCase(dbRepo repository.DatabaseRepository, tableRepo repository.TableRepository, rowRepo repository.RowRepository) *TablesUseCase {
	return &TablesUseCase{dbRepo: dbRepo, tableRepo: tableRepo, rowRepo: rowRepo}
}

// CreateTable crea una tabla de usuario con sus columnas tipadas y
// opcionalmente etiquetadas. Devuelve domain.ErrDuplicate si el nombre ya
// existe en la database.
func (uc *TablesUseCase) CreateTable(ctx context.Context, tenantID, databaseID string, in dto.CreateTableRequest) (*dto.TableResponse, error) {
	if _, err := uc.authorizeDatabase(ctx, tenantID, databaseID); err != nil {
		return nil, err
	}

	v := &domain.ValidationError{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		v.Add("name", "es obligatorio")
	}
	for i, c := range in.Columns {
		if strings.TrimSpace(c.Name) == "" {
			v.Add("columns["+strconv.Itoa(i)+"].name", "es obligatorio")
		}
		if !validColumnTypes[c.Type] {
			v.Add("columns["+strconv.Itoa(i)+"].type", "tipo de columna inválido: "+c.Type)
		}
	}
	if !v.Empty() {
		return nil, v
	}

	now := time.Now()
	table := &entity.Table{
		ID:         uuid.New().String(),
		DatabaseID: databaseID,
		Name:       name,
		Kind:       entity.TableKindUser,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.tableRepo.Create(ctx, table); err != nil {
		return nil, err
	}

	columns := make([]entity.Column, 0, len(in.Columns))
	for i, c := range in.Columns {
		col := entity.Column{
			ID:           uuid.New().String(),
			TableID:      table.ID,
			Name:         strings.TrimSpace(c.Name),
			Type:         c.Type,
			SemanticType: strings.TrimSpace(c.SemanticType),
			Position:     i,
		}
		if err := uc.tableRepo.CreateColumn(ctx, &col); err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}

	return tableToResponse(table, columns), nil
}

// GetTable devuelve una tabla con sus columnas.
func (uc *TablesUseCase) GetTable(ctx context.Context, tenantID, databaseID, tableID string) (*dto.TableResponse, error) {
	table, err := uc.authorizeTable(ctx, tenantID, databaseID, tableID)
	if err != nil {
		return nil, err
	}
	columns, err := uc.tableRepo.GetColumns(ctx, table.ID)
	if err != nil {
		return nil, err
	}
	return tableToResponse(table, columns), nil
}

// ListTables lista las tablas de la database (sin columnas).
func (uc *TablesUseCase) ListTables(ctx context.Context, tenantID, databaseID string) ([]dto.TableResponse, error) {
	if _, err := uc.authorizeDatabase(ctx, tenantID, databaseID); err != nil {
		return nil, err
	}
	tables, err := uc.tableRepo.ListByDatabase(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TableResponse, 0, len(tables))
	for _, t := range tables {
		out = append(out, *tableToResponse(t, nil))
	}
	return out, nil
}

// AddColumn agrega una columna a la tabla. Idempotente por nombre: si ya
// existe una columna con ese nombre devuelve la existente sin modificarla.
func (uc *TablesUseCase) AddColumn(ctx context.Context, tenantID, databaseID, tableID string, in dto.ColumnRequest) (*dto.ColumnResponse, error) {
	table, err := uc.authorizeTable(ctx, tenantID, databaseID, tableID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "es obligatorio")
	}
	if !validColumnTypes[in.Type] {
		return nil, domain.NewValidationError("type", "tipo de columna inválido: "+in.Type)
	}

	columns, err := uc.tableRepo.GetColumns(ctx, table.ID)
	if err != nil {
		return nil, err
	}
	for _, c := range columns {
		if strings.EqualFold(c.Name, name) {
			resp := columnToResponse(c)
			return &resp, nil
		}
	}

	col := entity.Column{
		ID:           uuid.New().String(),
		TableID:      table.ID,
		Name:         name,
		Type:         in.Type,
		SemanticType: strings.TrimSpace(in.SemanticType),
		Position:     len(columns),
	}
	if err := uc.tableRepo.CreateColumn(ctx, &col); err != nil {
		return nil, err
	}
	resp := columnToResponse(col)
	return &resp, nil
}

// ValidateForInvoices diagnostica si la tabla sirve como referencia de
// productos (al menos una columna unit_price). Nunca bloquea nada.
func (uc *TablesUseCase) ValidateForInvoices(ctx context.Context, tenantID, databaseID, tableID string) (*dto.TableValidationResponse, error) {
	table, err := uc.authorizeTable(ctx, tenantID, databaseID, tableID)
	if err != nil {
		return nil, err
	}
	columns, err := uc.tableRepo.GetColumns(ctx, table.ID)
	if err != nil {
		return nil, err
	}
	v := semantic.ValidateTableForInvoices(columns, table.Name)
	return &dto.TableValidationResponse{IsValid: v.IsValid, Reasons: v.Reasons}, nil
}

// CreateRow crea una fila con sus celdas. Las celdas con id de columna que no
// pertenece a la tabla se rechazan.
func (uc *TablesUseCase) CreateRow(ctx context.Context, tenantID, databaseID, tableID string, in dto.CreateRowRequest) (*dto.RowResponse, error) {
	table, err := uc.authorizeTable(ctx, tenantID, databaseID, tableID)
	if err != nil {
		return nil, err
	}
	columns, err := uc.tableRepo.GetColumns(ctx, table.ID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c.ID] = true
	}
	for columnID := range in.Cells {
		if !known[columnID] {
			return nil, domain.NewValidationError("cells", "columna desconocida: "+columnID)
		}
	}

	now := time.Now()
	row := &entity.Row{
		ID:        uuid.New().String(),
		TableID:   table.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.rowRepo.CreateRow(ctx, row); err != nil {
		return nil, err
	}
	cells := make([]entity.Cell, 0, len(in.Cells))
	for columnID, value := range in.Cells {
		cells = append(cells, entity.Cell{RowID: row.ID, ColumnID: columnID, Value: value})
	}
	if len(cells) > 0 {
		if err := uc.rowRepo.CreateCells(ctx, cells); err != nil {
			return nil, err
		}
	}
	return rowToResponse(row, cells), nil
}

// GetRow devuelve una fila con sus celdas.
func (uc *TablesUseCase) GetRow(ctx context.Context, tenantID, databaseID, tableID, rowID string) (*dto.RowResponse, error) {
	table, err := uc.authorizeTable(ctx, tenantID, databaseID, tableID)
	if err != nil {
		return nil, err
	}
	row, err := uc.rowRepo.GetRow(ctx, rowID)
	if err != nil {
		return nil, err
	}
	if row.TableID != table.ID {
		return nil, domain.ErrNotFound
	}
	cells, err := uc.rowRepo.GetCells(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	return rowToResponse(row, cells), nil
}

// ListRows lista filas de la tabla con paginación, celdas incluidas.
func (uc *TablesUseCase) ListRows(ctx context.Context, tenantID, databaseID, tableID string, page dto.PageRequest) (*dto.RowListResponse, error) {
	table, err := uc.authorizeTable(ctx, tenantID, databaseID, tableID)
	if err != nil {
		return nil, err
	}
	page.DefaultPage()

	rows, err := uc.rowRepo.ListRows(ctx, table.ID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.rowRepo.CountRows(ctx, table.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	cellsByRow := map[string][]entity.Cell{}
	if len(ids) > 0 {
		cellsByRow, err = uc.rowRepo.GetCellsForRows(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	out := make([]dto.RowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToResponse(r, cellsByRow[r.ID]))
	}
	return &dto.RowListResponse{
		Rows: out,
		Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// UpdateCell escribe el valor de una celda de la fila y devuelve la fila
// actualizada. Un valor JSON null deja la celda vacía.
func (uc *TablesUseCase) UpdateCell(ctx context.Context, tenantID, databaseID, tableID, rowID, columnID string, in dto.UpdateCellRequest) (*dto.RowResponse, error) {
	table, err := uc.authorizeTable(ctx, tenantID, databaseID, tableID)
	if err != nil {
		return nil, err
	}
	row, err := uc.rowRepo.GetRow(ctx, rowID)
	if err != nil {
		return nil, err
	}
	if row.TableID != table.ID {
		return nil, domain.ErrNotFound
	}
	columns, err := uc.tableRepo.GetColumns(ctx, table.ID)
	if err != nil {
		return nil, err
	}
	known := false
	for _, c := range columns {
		if c.ID == columnID {
			known = true
			break
		}
	}
	if !known {
		return nil, domain.NewValidationError("column_id", "columna desconocida: "+columnID)
	}
	if len(in.Value) == 0 {
		return nil, domain.NewValidationError("value", "es obligatorio")
	}

	if err := uc.rowRepo.UpdateCell(ctx, entity.Cell{RowID: row.ID, ColumnID: columnID, Value: in.Value}); err != nil {
		return nil, err
	}
	cells, err := uc.rowRepo.GetCells(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	return rowToResponse(row, cells), nil
}

// DeleteRows elimina filas de la tabla por id.
func (uc *TablesUseCase) DeleteRows(ctx context.Context, tenantID, databaseID, tableID string, in dto.DeleteRowsRequest) error {
	table, err := uc.authorizeTable(ctx, tenantID, databaseID, tableID)
	if err != nil {
		return err
	}
	if len(in.IDs) == 0 {
		return domain.NewValidationError("ids", "debe traer al menos un id")
	}
	return uc.rowRepo.DeleteRows(ctx, table.ID, in.IDs)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (uc *TablesUseCase) authorizeDatabase(ctx context.Context, tenantID, databaseID string) (*entity.Database, error) {
	db, err := uc.dbRepo.GetByID(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	if db.TenantID != tenantID {
		return nil, domain.ErrForbidden
	}
	return db, nil
}

func (uc *TablesUseCase) authorizeTable(ctx context.Context, tenantID, databaseID, tableID string) (*entity.Table, error) {
	if _, err := uc.authorizeDatabase(ctx, tenantID, databaseID); err != nil {
		return nil, err
	}
	table, err := uc.tableRepo.GetByID(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if table.DatabaseID != databaseID {
		return nil, domain.ErrNotFound
	}
	return table, nil
}

func tableToResponse(t *entity.Table, columns []entity.Column) *dto.TableResponse {
	resp := &dto.TableResponse{
		ID:         t.ID,
		DatabaseID: t.DatabaseID,
		Name:       t.Name,
		Kind:       t.Kind,
		CreatedAt:  t.CreatedAt,
	}
	for _, c := range columns {
		resp.Columns = append(resp.Columns, columnToResponse(c))
	}
	return resp
}

func columnToResponse(c entity.Column) dto.ColumnResponse {
	return dto.ColumnResponse{
		ID:           c.ID,
		Name:         c.Name,
		Type:         c.Type,
		SemanticType: c.SemanticType,
		Position:     c.Position,
	}
}

func rowToResponse(r *entity.Row, cells []entity.Cell) *dto.RowResponse {
	resp := &dto.RowResponse{
		ID:        r.ID,
		TableID:   r.TableID,
		Cells:     make(map[string]json.RawMessage, len(cells)),
		CreatedAt: r.CreatedAt,
	}
	for _, c := range cells {
		resp.Cells[c.ColumnID] = c.Value
	}
	return resp
}

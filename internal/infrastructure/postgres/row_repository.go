package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Tablero-api/internal/domain"
	"github.com/jhoicas/Tablero-api/internal/domain/entity"
	"github.com/jhoicas/Tablero-api/internal/domain/repository"
)

var _ repository.RowRepository = (*RowRepo)(nil)

// RowRepo implementación de RowRepository (usable con pool o tx).
// Filas en data_rows; valores en data_cells como JSONB, una celda por
// (fila, columna).
type RowRepo struct {
	q Querier
}

// NewRowRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRowRepository(q Querier) *RowRepo {
	return &RowRepo{q: q}
}

// CreateRow persiste una fila vacía; las celdas se escriben aparte.
func (r *RowRepo) CreateRow(ctx context.Context, row *entity.Row) error {
	query := `
		INSERT INTO data_rows (id, table_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(ctx, query, row.ID, row.TableID, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return storageErr("insert row", err)
	}
	return nil
}

// GetRow obtiene una fila por ID. domain.ErrNotFound si no existe.
func (r *RowRepo) GetRow(ctx context.Context, id string) (*entity.Row, error) {
	query := `
		SELECT id, table_id, created_at, updated_at
		FROM data_rows WHERE id = $1`
	var row entity.Row
	err := r.q.QueryRow(ctx, query, id).Scan(&row.ID, &row.TableID, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("get row", err)
	}
	return &row, nil
}

// ListRows lista filas de una tabla en orden de creación, con paginación.
func (r *RowRepo) ListRows(ctx context.Context, tableID string, limit, offset int) ([]*entity.Row, error) {
	query := `
		SELECT id, table_id, created_at, updated_at
		FROM data_rows WHERE table_id = $1
		ORDER BY created_at, id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tableID, limit, offset)
	if err != nil {
		return nil, storageErr("list rows", err)
	}
	defer rows.Close()
	return collectRows(rows)
}

// CountRows cuenta las filas de una tabla.
func (r *RowRepo) CountRows(ctx context.Context, tableID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM data_rows WHERE table_id = $1`, tableID).Scan(&n)
	if err != nil {
		return 0, storageErr("count rows", err)
	}
	return n, nil
}

// DeleteRows elimina filas de la tabla por id; las celdas caen en cascada.
// Ids de otras tablas se ignoran por el guard de table_id.
func (r *RowRepo) DeleteRows(ctx context.Context, tableID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM data_rows WHERE table_id = $1 AND id = ANY($2)`
	_, err := r.q.Exec(ctx, query, tableID, ids)
	if err != nil {
		return storageErr("delete rows", err)
	}
	return nil
}

// CreateCells inserta celdas con upsert por (row_id, column_id): la última
// escritura para la misma celda gana.
func (r *RowRepo) CreateCells(ctx context.Context, cells []entity.Cell) error {
	query := `
		INSERT INTO data_cells (row_id, column_id, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (row_id, column_id) DO UPDATE SET value = EXCLUDED.value`
	for _, cell := range cells {
		if _, err := r.q.Exec(ctx, query, cell.RowID, cell.ColumnID, cell.Value); err != nil {
			return storageErr("insert cell", err)
		}
	}
	return nil
}

// UpdateCell escribe el valor de una celda existente (o la crea).
func (r *RowRepo) UpdateCell(ctx context.Context, cell entity.Cell) error {
	query := `
		INSERT INTO data_cells (row_id, column_id, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (row_id, column_id) DO UPDATE SET value = EXCLUDED.value`
	if _, err := r.q.Exec(ctx, query, cell.RowID, cell.ColumnID, cell.Value); err != nil {
		return storageErr("update cell", err)
	}
	return nil
}

// GetCells devuelve las celdas de una fila.
func (r *RowRepo) GetCells(ctx context.Context, rowID string) ([]entity.Cell, error) {
	query := `
		SELECT row_id, column_id, value
		FROM data_cells WHERE row_id = $1 ORDER BY column_id`
	rows, err := r.q.Query(ctx, query, rowID)
	if err != nil {
		return nil, storageErr("get cells", err)
	}
	defer rows.Close()
	var list []entity.Cell
	for rows.Next() {
		var c entity.Cell
		if err := rows.Scan(&c.RowID, &c.ColumnID, &c.Value); err != nil {
			return nil, storageErr("scan cell", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// GetCellsForRows devuelve las celdas de varias filas, agrupadas por fila.
// Una sola consulta para evitar N+1 al leer facturas con sus ítems.
func (r *RowRepo) GetCellsForRows(ctx context.Context, rowIDs []string) (map[string][]entity.Cell, error) {
	result := make(map[string][]entity.Cell, len(rowIDs))
	if len(rowIDs) == 0 {
		return result, nil
	}
	query := `
		SELECT row_id, column_id, value
		FROM data_cells WHERE row_id = ANY($1) ORDER BY row_id, column_id`
	rows, err := r.q.Query(ctx, query, rowIDs)
	if err != nil {
		return nil, storageErr("get cells for rows", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c entity.Cell
		if err := rows.Scan(&c.RowID, &c.ColumnID, &c.Value); err != nil {
			return nil, storageErr("scan cell", err)
		}
		result[c.RowID] = append(result[c.RowID], c)
	}
	return result, rows.Err()
}

// FindRowsByCellRef busca las filas de una tabla cuya celda reference en
// columnID contiene refRowID. Las celdas reference guardan un arreglo JSON de
// ids; el operador @> resuelve la pertenencia con el índice GIN.
func (r *RowRepo) FindRowsByCellRef(ctx context.Context, tableID, columnID, refRowID string) ([]*entity.Row, error) {
	query := `
		SELECT r.id, r.table_id, r.created_at, r.updated_at
		FROM data_rows r
		JOIN data_cells c ON c.row_id = r.id
		WHERE r.table_id = $1 AND c.column_id = $2
		  AND c.value @> jsonb_build_array($3::text)
		ORDER BY r.created_at, r.id`
	rows, err := r.q.Query(ctx, query, tableID, columnID, refRowID)
	if err != nil {
		return nil, storageErr("find rows by ref", err)
	}
	defer rows.Close()
	return collectRows(rows)
}

// FindRowByCellValue busca la primera fila de una tabla cuya celda en
// columnID vale exactamente value (igualdad JSONB, normalizada).
// domain.ErrNotFound si ninguna.
func (r *RowRepo) FindRowByCellValue(ctx context.Context, tableID, columnID string, value json.RawMessage) (*entity.Row, error) {
	query := `
		SELECT r.id, r.table_id, r.created_at, r.updated_at
		FROM data_rows r
		JOIN data_cells c ON c.row_id = r.id
		WHERE r.table_id = $1 AND c.column_id = $2 AND c.value = $3
		ORDER BY r.created_at, r.id
		LIMIT 1`
	var row entity.Row
	err := r.q.QueryRow(ctx, query, tableID, columnID, value).Scan(
		&row.ID, &row.TableID, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("find row by value", err)
	}
	return &row, nil
}

// collectRows escanea un resultado de filas de data_rows.
func collectRows(rows pgx.Rows) ([]*entity.Row, error) {
	var list []*entity.Row
	for rows.Next() {
		var r entity.Row
		if err := rows.Scan(&r.ID, &r.TableID, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, storageErr("scan row", err)
		}
		list = append(list, &r)
	}
	return list, rows.Err()
}

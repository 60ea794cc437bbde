package postgres

import (
	"context"

	"github.com/jhoicas/Tablero-api/internal/domain"
	"github.com/jhoicas/Tablero-api/internal/domain/entity"
	"github.com/jhoicas/Tablero-api/internal/domain/repository"
)

var _ repository.TableRepository = (*TableRepo)(nil)

// TableRepo implementación de TableRepository (usable con pool o tx).
// Persiste la definición de tablas y columnas del motor de datos.
type TableRepo struct {
	q Querier
}

// NewTableRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTableRepository(q Querier) *TableRepo {
	return &TableRepo{q: q}
}

// Create persiste una tabla. domain.ErrDuplicate si el nombre ya existe en la database.
func (r *TableRepo) Create(ctx context.Context, table *entity.Table) error {
	query := `
		INSERT INTO data_tables (id, database_id, name, kind, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		table.ID, table.DatabaseID, table.Name, table.Kind, table.CreatedAt, table.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return storageErr("insert table", err)
	}
	return nil
}

// GetByID obtiene una tabla por ID. domain.ErrNotFound si no existe.
func (r *TableRepo) GetByID(ctx context.Context, id string) (*entity.Table, error) {
	query := `
		SELECT id, database_id, name, kind, created_at, updated_at
		FROM data_tables WHERE id = $1`
	var t entity.Table
	err := r.q.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.DatabaseID, &t.Name, &t.Kind, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("get table", err)
	}
	return &t, nil
}

// GetByName busca una tabla por nombre dentro de una database.
// domain.ErrNotFound si no existe.
func (r *TableRepo) GetByName(ctx context.Context, databaseID, name string) (*entity.Table, error) {
	query := `
		SELECT id, database_id, name, kind, created_at, updated_at
		FROM data_tables WHERE database_id = $1 AND name = $2`
	var t entity.Table
	err := r.q.QueryRow(ctx, query, databaseID, name).Scan(
		&t.ID, &t.DatabaseID, &t.Name, &t.Kind, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("get table by name", err)
	}
	return &t, nil
}

// ListByDatabase lista las tablas de la database en orden de creación.
func (r *TableRepo) ListByDatabase(ctx context.Context, databaseID string) ([]*entity.Table, error) {
	query := `
		SELECT id, database_id, name, kind, created_at, updated_at
		FROM data_tables WHERE database_id = $1 ORDER BY created_at, name`
	rows, err := r.q.Query(ctx, query, databaseID)
	if err != nil {
		return nil, storageErr("list tables", err)
	}
	defer rows.Close()
	var list []*entity.Table
	for rows.Next() {
		var t entity.Table
		if err := rows.Scan(&t.ID, &t.DatabaseID, &t.Name, &t.Kind, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, storageErr("scan table", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// CreateColumn agrega una columna a la tabla. domain.ErrDuplicate si el
// nombre ya existe en la tabla.
func (r *TableRepo) CreateColumn(ctx context.Context, column *entity.Column) error {
	query := `
		INSERT INTO data_columns (id, table_id, name, type, semantic_type, position)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		column.ID, column.TableID, column.Name, column.Type, column.SemanticType, column.Position,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return storageErr("insert column", err)
	}
	return nil
}

// GetColumns devuelve las columnas de la tabla ordenadas por Position.
func (r *TableRepo) GetColumns(ctx context.Context, tableID string) ([]entity.Column, error) {
	query := `
		SELECT id, table_id, name, type, semantic_type, position
		FROM data_columns WHERE table_id = $1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, tableID)
	if err != nil {
		return nil, storageErr("list columns", err)
	}
	defer rows.Close()
	var list []entity.Column
	for rows.Next() {
		var c entity.Column
		if err := rows.Scan(&c.ID, &c.TableID, &c.Name, &c.Type, &c.SemanticType, &c.Position); err != nil {
			return nil, storageErr("scan column", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

package repository

import (
	"context"

	"github.com/jhoicas/Tablero-api/internal/domain/entity"
)

// TableRepository define el puerto de persistencia para tablas y columnas
// del motor de datos. El nombre de tabla es único por database.
type TableRepository interface {
	Create(ctx context.Context, table *entity.Table) error
	GetByID(ctx context.Context, id string) (*entity.Table, error)

	// GetByName busca una tabla por nombre dentro de una database.
	// Devuelve domain.ErrNotFound si no existe.
	GetByName(ctx context.Context, databaseID, name string) (*entity.Table, error)

	ListByDatabase(ctx context.Context, databaseID string) ([]*entity.Table, error)

	// CreateColumn agrega una columna a la tabla.
	CreateColumn(ctx context.Context, column *entity.Column) error

	// GetColumns devuelve las columnas de la tabla ordenadas por Position.
	// El índice semántico se construye una sola vez sobre este resultado.
	GetColumns(ctx context.Context, tableID string) ([]entity.Column, error)
}

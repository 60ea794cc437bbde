package repository

import (
	"context"
	"encoding/json"

	"github.com/jhoicas/Tablero-api/internal/domain/entity"
)

// RowRepository define el puerto de persistencia para filas y celdas del
// motor de datos (la superficie RowStore que consume facturación).
type RowRepository interface {
	CreateRow(ctx context.Context, row *entity.Row) error
	GetRow(ctx context.Context, id string) (*entity.Row, error)
	ListRows(ctx context.Context, tableID string, limit, offset int) ([]*entity.Row, error)
	CountRows(ctx context.Context, tableID string) (int, error)

	// DeleteRows elimina filas de una tabla por id; sus celdas caen en
	// cascada. Ids de otras tablas se ignoran. El borrado de filas
	// relacionadas (ítems de una factura) es explícito: el store no conoce
	// relaciones entre filas.
	DeleteRows(ctx context.Context, tableID string, ids []string) error

	// CreateCells inserta celdas en lote con upsert por (row_id, column_id):
	// la última escritura para la misma celda gana.
	CreateCells(ctx context.Context, cells []entity.Cell) error

	// UpdateCell escribe el valor de una celda existente (o la crea).
	UpdateCell(ctx context.Context, cell entity.Cell) error

	// GetCells devuelve las celdas de una fila.
	GetCells(ctx context.Context, rowID string) ([]entity.Cell, error)

	// GetCellsForRows devuelve las celdas de varias filas, agrupadas por fila.
	GetCellsForRows(ctx context.Context, rowIDs []string) (map[string][]entity.Cell, error)

	// FindRowsByCellRef busca las filas de una tabla cuya celda reference en
	// columnID contiene refRowID (ej: los ítems de una factura).
	FindRowsByCellRef(ctx context.Context, tableID, columnID, refRowID string) ([]*entity.Row, error)

	// FindRowByCellValue busca la primera fila de una tabla cuya celda en
	// columnID vale exactamente value. Devuelve domain.ErrNotFound si ninguna.
	FindRowByCellValue(ctx context.Context, tableID, columnID string, value json.RawMessage) (*entity.Row, error)
}

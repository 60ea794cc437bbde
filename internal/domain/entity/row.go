package entity

import (
	"encoding/json"
	"time"
)

// Row representa una fila de una Table. Los valores viven en Cells.
type Row struct {
	ID        string
	TableID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Cell representa el valor de una celda (fila × columna) como JSON crudo:
// escalar JSON para columnas text/number/boolean/date, o un arreglo JSON de
// ids de fila (un elemento) para columnas reference.
type Cell struct {
	RowID    string
	ColumnID string
	Value    json.RawMessage
}

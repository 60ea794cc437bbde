package dto

import (
	"encoding/json"
	"time"
)

// ColumnRequest definición de una columna al crear tabla o agregar columna.
type ColumnRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=200"`
	Type         string `json:"type" validate:"required,oneof=text number boolean date reference"`
	SemanticType string `json:"semantic_type" validate:"omitempty,max=100"`
}

// CreateTableRequest body para POST /api/databases/:databaseID/tables.
type CreateTableRequest struct {
	Name    string          `json:"name" validate:"required,min=1,max=200"`
	Columns []ColumnRequest `json:"columns" validate:"omitempty,dive"`
}

// ColumnResponse columna en respuestas.
type ColumnResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	SemanticType string `json:"semantic_type,omitempty"`
	Position     int    `json:"position"`
}

// TableResponse tabla con sus columnas.
type TableResponse struct {
	ID         string           `json:"id"`
	DatabaseID string           `json:"database_id"`
	Name       string           `json:"name"`
	Kind       string           `json:"kind"`
	Columns    []ColumnResponse `json:"columns,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// TableValidationResponse diagnóstico de GET .../tables/:tableID/invoice-check:
// si la tabla sirve como referencia de productos para facturar.
type TableValidationResponse struct {
	IsValid bool     `json:"is_valid"`
	Reasons []string `json:"reasons,omitempty"`
}

// CreateRowRequest body para POST .../tables/:tableID/rows. Las celdas van
// indexadas por id de columna; el valor es JSON crudo (escalar, o arreglo de
// un id de fila para columnas reference).
type CreateRowRequest struct {
	Cells map[string]json.RawMessage `json:"cells" validate:"required"`
}

// RowResponse fila con sus celdas (id de columna → valor JSON).
type RowResponse struct {
	ID        string                     `json:"id"`
	TableID   string                     `json:"table_id"`
	Cells     map[string]json.RawMessage `json:"cells"`
	CreatedAt time.Time                  `json:"created_at"`
}

// RowListResponse página de filas.
type RowListResponse struct {
	Rows []RowResponse `json:"rows"`
	Page PageResponse  `json:"page"`
}

// UpdateCellRequest body para PUT .../rows/:rowID/cells/:columnID. El valor es
// JSON crudo según el tipo de la columna; null deja la celda vacía.
type UpdateCellRequest struct {
	Value json.RawMessage `json:"value" validate:"required"`
}

// DeleteRowsRequest body para DELETE .../tables/:tableID/rows.
type DeleteRowsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

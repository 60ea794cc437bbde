package entity

import "time"

// Tipos de columna soportados por el motor de tablas.
const (
	ColumnTypeText      = "text"
	ColumnTypeNumber    = "number"
	ColumnTypeBoolean   = "boolean"
	ColumnTypeDate      = "date"
	ColumnTypeReference = "reference"
)

// Kinds de tabla. Las tablas "system" las crea el módulo de facturación
// (invoices, invoice_items, customers); las "user" las define el usuario.
const (
	TableKindUser   = "user"
	TableKindSystem = "system"
)

// Table representa una tabla definida dentro de una Database.
// El nombre es único por database.
type Table struct {
	ID         string
	DatabaseID string
	Name       string
	Kind       string    // user, system
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Column representa una columna de una Table. SemanticType es una etiqueta
// libre ('' cuando no está etiquetada); el paquete domain/semantic define las
// etiquetas que el módulo de facturación reconoce.
type Column struct {
	ID           string
	TableID      string
	Name         string
	Type         string // ver constantes ColumnType*
	SemanticType string
	Position     int
}

package entity

import "time"

// InvoiceSeries representa el contrato durable de numeración de una serie de
// facturas dentro de una database. La clave natural es (TenantID, DatabaseID,
// Series); la configuración de formato almacenada es autoritativa: una vez
// creada la serie, la configuración por request no la modifica.
type InvoiceSeries struct {
	TenantID      string
	DatabaseID    string
	Series        string // nombre de la serie (ej: "INV", "FACT")
	Prefix        string
	Suffix        string
	Separator     string // separador entre segmentos (ej: "-")
	IncludeYear   bool
	IncludeMonth  bool
	ResetYearly   bool
	PadWidth      int   // ancho del contador con ceros a la izquierda
	CurrentNumber int64 // último número asignado (0 = nunca usada)
	LastYear      int   // año de la última asignación o del aprovisionamiento (0 = nunca)
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

package entity

import "time"

// Database agrupa tablas de un tenant (un "espacio de trabajo" de datos).
type Database struct {
	ID        string
	TenantID  string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

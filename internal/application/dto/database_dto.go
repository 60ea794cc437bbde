package dto

import "time"

// CreateDatabaseRequest body para POST /api/databases.
type CreateDatabaseRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// DatabaseResponse database en respuestas.
type DatabaseResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

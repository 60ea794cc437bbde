package dto

import "time"

// RegisterRequest entrada para registro: crea el tenant y su primer usuario
// (admin). El password viaja en texto y se hashea en el use case.
type RegisterRequest struct {
	TenantName string `json:"tenant_name" validate:"required,min=1,max=200"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Name       string `json:"name" validate:"omitempty,max=200"`
}

// CreateUserRequest entrada para crear un usuario adicional en el tenant.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Role     string `json:"role" validate:"required,oneof=admin editor viewer"`
}

// UpdateUserStatusRequest entrada para cambiar el estado de un usuario.
type UpdateUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive suspended"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ModuleResponse estado de un módulo SaaS del tenant.
type ModuleResponse struct {
	Name        string     `json:"name"`
	Active      bool       `json:"active"`
	ActivatedAt time.Time  `json:"activated_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

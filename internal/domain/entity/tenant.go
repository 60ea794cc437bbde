package entity

import "time"

// Tenant representa una organización del sistema (multi-tenant).
type Tenant struct {
	ID        string
	Name      string
	Status    string    // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Módulos SaaS disponibles (deben coincidir con el CHECK de la tabla tenant_modules).
const (
	ModuleInvoicing  = "invoicing"
	ModuleDashboard  = "dashboard"
	ModuleExports    = "exports"
	ModuleAutomation = "automation"
)

// TenantModule representa la activación de un módulo SaaS en un tenant.
type TenantModule struct {
	ID          string
	TenantID    string
	ModuleName  string    // ver constantes Module*
	IsActive    bool
	ActivatedAt time.Time
	ExpiresAt   *time.Time // nil = sin vencimiento
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

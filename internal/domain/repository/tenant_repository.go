package repository

import (
	"context"

	"github.com/jhoicas/Tablero-api/internal/domain/entity"
)

// TenantRepository define el puerto de persistencia para Tenant (DIP).
// La implementación vive en infrastructure.
type TenantRepository interface {
	Create(ctx context.Context, tenant *entity.Tenant) error
	GetByID(ctx context.Context, id string) (*entity.Tenant, error)

	// HasActiveModule informa si el tenant tiene el módulo activo y sin vencer.
	HasActiveModule(ctx context.Context, tenantID, moduleName string) (bool, error)

	// ActivateModule activa (o reactiva) un módulo SaaS para el tenant.
	ActivateModule(ctx context.Context, module *entity.TenantModule) error

	// ListModules lista los módulos del tenant (activos e inactivos).
	ListModules(ctx context.Context, tenantID string) ([]*entity.TenantModule, error)
}

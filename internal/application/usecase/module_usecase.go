package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/Tablero-api/internal/application/dto"
	"github.com/jhoicas/Tablero-api/internal/domain/repository"
)

// ModuleService verifica qué módulos SaaS tiene activos un tenant.
// Es el único punto de la aplicación que conoce la lógica de activación de módulos.
type ModuleService struct {
	tenantRepo repository.TenantRepository
}

// NewModuleService construye el servicio de módulos.
func NewModuleService(tenantRepo repository.TenantRepository) *ModuleService {
	return &ModuleService{tenantRepo: tenantRepo}
}

// HasActiveModule informa si el tenant tiene el módulo activo y sin vencer.
// Devuelve false (sin error) si el tenant no tiene el módulo contratado.
// Devuelve error solo ante fallos de infraestructura (DB caída, timeout, etc.).
func (s *ModuleService) HasActiveModule(ctx context.Context, tenantID, moduleName string) (bool, error) {
	if tenantID == "" || moduleName == "" {
		return false, fmt.Errorf("module: tenantID y moduleName son obligatorios")
	}
	return s.tenantRepo.HasActiveModule(ctx, tenantID, moduleName)
}

// ListModules lista los módulos del tenant, activos e inactivos, para que el
// frontend sepa qué superficies mostrar.
func (s *ModuleService) ListModules(ctx context.Context, tenantID string) ([]dto.ModuleResponse, error) {
	modules, err := s.tenantRepo.ListModules(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ModuleResponse, 0, len(modules))
	for _, m := range modules {
		out = append(out, dto.ModuleResponse{
			Name:        m.ModuleName,
			Active:      m.IsActive,
			ActivatedAt: m.ActivatedAt,
			ExpiresAt:   m.ExpiresAt,
		})
	}
	return out, nil
}

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Tablero-api/internal/domain"
	"github.com/jhoicas/Tablero-api/internal/domain/entity"
	"github.com/jhoicas/Tablero-api/internal/domain/repository"
)

var _ repository.TenantRepository = (*TenantRepo)(nil)

// TenantRepo implementación PostgreSQL de TenantRepository.
type TenantRepo struct {
	pool *pgxpool.Pool
}

// NewTenantRepository construye el adaptador con el pool.
func NewTenantRepository(pool *pgxpool.Pool) *TenantRepo {
	return &TenantRepo{pool: pool}
}

// Create persiste un nuevo tenant.
func (r *TenantRepo) Create(ctx context.Context, tenant *entity.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query,
		tenant.ID, tenant.Name, tenant.Status, tenant.CreatedAt, tenant.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return storageErr("insert tenant", err)
	}
	return nil
}

// GetByID obtiene un tenant por ID. domain.ErrNotFound si no existe.
func (r *TenantRepo) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	query := `
		SELECT id, name, status, created_at, updated_at
		FROM tenants WHERE id = $1`
	var t entity.Tenant
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("get tenant", err)
	}
	return &t, nil
}

// HasActiveModule informa si el tenant tiene el módulo activo y sin vencer.
func (r *TenantRepo) HasActiveModule(ctx context.Context, tenantID, moduleName string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM tenant_modules
			WHERE tenant_id = $1 AND module_name = $2
			  AND is_active = true
			  AND (expires_at IS NULL OR expires_at > now())
		)`
	var active bool
	if err := r.pool.QueryRow(ctx, query, tenantID, moduleName).Scan(&active); err != nil {
		return false, storageErr("check module", err)
	}
	return active, nil
}

// ActivateModule activa (o reactiva) un módulo para el tenant. Si ya existe
// la fila, la reactiva conservando su id original.
func (r *TenantRepo) ActivateModule(ctx context.Context, module *entity.TenantModule) error {
	query := `
		INSERT INTO tenant_modules
			(id, tenant_id, module_name, is_active, activated_at, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id, module_name) DO UPDATE SET
			is_active    = EXCLUDED.is_active,
			activated_at = EXCLUDED.activated_at,
			expires_at   = EXCLUDED.expires_at,
			updated_at   = EXCLUDED.updated_at`
	_, err := r.pool.Exec(ctx, query,
		module.ID, module.TenantID, module.ModuleName, module.IsActive,
		module.ActivatedAt, module.ExpiresAt, module.CreatedAt, module.UpdatedAt,
	)
	if err != nil {
		return storageErr("activate module", err)
	}
	return nil
}

// ListModules lista los módulos del tenant (activos e inactivos).
func (r *TenantRepo) ListModules(ctx context.Context, tenantID string) ([]*entity.TenantModule, error) {
	query := `
		SELECT id, tenant_id, module_name, is_active, activated_at, expires_at, created_at, updated_at
		FROM tenant_modules WHERE tenant_id = $1 ORDER BY module_name`
	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, storageErr("list modules", err)
	}
	defer rows.Close()
	var list []*entity.TenantModule
	for rows.Next() {
		var m entity.TenantModule
		if err := rows.Scan(&m.ID, &m.TenantID, &m.ModuleName, &m.IsActive,
			&m.ActivatedAt, &m.ExpiresAt, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, storageErr("scan module", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

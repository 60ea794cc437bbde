package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Tablero-api/internal/domain"
	"github.com/jhoicas/Tablero-api/internal/domain/entity"
	"github.com/jhoicas/Tablero-api/internal/domain/repository"
)

var _ repository.DatabaseRepository = (*DatabaseRepo)(nil)

// DatabaseRepo implementación PostgreSQL de DatabaseRepository.
type DatabaseRepo struct {
	pool *pgxpool.Pool
}

// NewDatabaseRepository construye el adaptador con el pool.
func NewDatabaseRepository(pool *pgxpool.Pool) *DatabaseRepo {
	return &DatabaseRepo{pool: pool}
}

// Create persiste una nueva database.
func (r *DatabaseRepo) Create(ctx context.Context, db *entity.Database) error {
	query := `
		INSERT INTO databases (id, tenant_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, db.ID, db.TenantID, db.Name, db.CreatedAt, db.UpdatedAt)
	if err != nil {
		return storageErr("insert database", err)
	}
	return nil
}

// GetByID obtiene una database por ID. domain.ErrNotFound si no existe.
func (r *DatabaseRepo) GetByID(ctx context.Context, id string) (*entity.Database, error) {
	query := `
		SELECT id, tenant_id, name, created_at, updated_at
		FROM databases WHERE id = $1`
	var db entity.Database
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&db.ID, &db.TenantID, &db.Name, &db.CreatedAt, &db.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("get database", err)
	}
	return &db, nil
}

// ListByTenant lista las databases del tenant en orden de creación.
func (r *DatabaseRepo) ListByTenant(ctx context.Context, tenantID string) ([]*entity.Database, error) {
	query := `
		SELECT id, tenant_id, name, created_at, updated_at
		FROM databases WHERE tenant_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, storageErr("list databases", err)
	}
	defer rows.Close()
	var list []*entity.Database
	for rows.Next() {
		var db entity.Database
		if err := rows.Scan(&db.ID, &db.TenantID, &db.Name, &db.CreatedAt, &db.UpdatedAt); err != nil {
			return nil, storageErr("scan database", err)
		}
		list = append(list, &db)
	}
	return list, rows.Err()
}

// Update actualiza el nombre de la database.
func (r *DatabaseRepo) Update(ctx context.Context, db *entity.Database) error {
	query := `
		UPDATE databases SET name = $2, updated_at = $3
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, db.ID, db.Name, db.UpdatedAt)
	if err != nil {
		return storageErr("update database", err)
	}
	return nil
}

package repository

import (
	"context"

	"github.com/jhoicas/Tablero-api/internal/domain/entity"
)

// DatabaseRepository define el puerto de persistencia para Database (DIP).
type DatabaseRepository interface {
	Create(ctx context.Context, db *entity.Database) error
	GetByID(ctx context.Context, id string) (*entity.Database, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*entity.Database, error)
	Update(ctx context.Context, db *entity.Database) error
}

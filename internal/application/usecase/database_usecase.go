package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Tablero-api/internal/application/dto"
	"github.com/jhoicas/Tablero-api/internal/domain"
	"github.com/jhoicas/Tablero-api/internal/domain/entity"
	"github.com/jhoicas/Tablero-api/internal/domain/repository"
)

// DatabaseUseCase aplica reglas de negocio para databases (espacios de
// trabajo de tablas de un tenant).
type DatabaseUseCase struct {
	repo repository.DatabaseRepository
}

// NewDatabaseUseCase construye el caso de uso con el puerto de persistencia.
func NewDatabaseUseCase(repo repository.DatabaseRepository) *DatabaseUseCase {
	return &DatabaseUseCase{repo: repo}
}

// Create crea una database para el tenant del caller.
func (uc *DatabaseUseCase) Create(ctx context.Context, tenantID string, in dto.CreateDatabaseRequest) (*dto.DatabaseResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "es obligatorio")
	}
	now := time.Now()
	db := &entity.Database{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, db); err != nil {
		return nil, err
	}
	return entityToDatabaseResponse(db), nil
}

// GetByID obtiene una database verificando que pertenece al tenant del caller.
func (uc *DatabaseUseCase) GetByID(ctx context.Context, tenantID, id string) (*dto.DatabaseResponse, error) {
	db, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if db.TenantID != tenantID {
		return nil, domain.ErrForbidden
	}
	return entityToDatabaseResponse(db), nil
}

// List lista las databases del tenant.
func (uc *DatabaseUseCase) List(ctx context.Context, tenantID string) ([]dto.DatabaseResponse, error) {
	list, err := uc.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DatabaseResponse, 0, len(list))
	for _, db := range list {
		items = append(items, *entityToDatabaseResponse(db))
	}
	return items, nil
}

// Authorize verifica que la database existe y pertenece al tenant; la
// devuelve para uso posterior. Es el check de ownership compartido por los
// módulos de tablas y facturación.
func (uc *DatabaseUseCase) Authorize(ctx context.Context, tenantID, databaseID string) (*entity.Database, error) {
	db, err := uc.repo.GetByID(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	if db.TenantID != tenantID {
		return nil, domain.ErrForbidden
	}
	return db, nil
}

func entityToDatabaseResponse(db *entity.Database) *dto.DatabaseResponse {
	if db == nil {
		return nil
	}
	return &dto.DatabaseResponse{
		ID:        db.ID,
		TenantID:  db.TenantID,
		Name:      db.Name,
		CreatedAt: db.CreatedAt,
		UpdatedAt: db.UpdatedAt,
	}
}

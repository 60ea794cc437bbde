package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Tablero-api/internal/application/dto"
	"github.com/jhoicas/Tablero-api/internal/domain"
	"github.com/jhoicas/Tablero-api/internal/domain/entity"
	"github.com/jhoicas/Tablero-api/internal/domain/repository"
)

// Estados válidos para User.
var validUserStatuses = map[string]bool{
	"active":    true,
	"inactive":  true,
	"suspended": true,
}

// UserUseCase administración de usuarios del tenant. El registro del primer
// usuario (admin) vive en application/auth; aquí el admin crea usuarios
// adicionales con rol editor o viewer y gestiona su estado.
type UserUseCase struct {
	repo repository.UserRepository
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// Create crea un usuario adicional en el tenant. Devuelve
// ErrEmailAlreadyExists si el email ya está registrado; el password se
// hashea con bcrypt antes de persistir.
func (uc *UserUseCase) Create(ctx context.Context, tenantID string, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	v := &domain.ValidationError{}
	if strings.TrimSpace(in.Email) == "" {
		v.Add("email", "es obligatorio")
	}
	if len(in.Password) < 8 {
		v.Add("password", "mínimo 8 caracteres")
	}
	if strings.TrimSpace(in.Name) == "" {
		v.Add("name", "es obligatorio")
	}
	switch in.Role {
	case entity.RoleAdmin, entity.RoleEditor, entity.RoleViewer:
	default:
		v.Add("role", "debe ser admin, editor o viewer")
	}
	if !v.Empty() {
		return nil, v
	}

	existing, err := uc.repo.GetByEmail(ctx, in.Email)
	if err != nil && err != domain.ErrNotFound {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(in.Name),
		Role:         in.Role,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// List lista los usuarios del tenant, paginado.
func (uc *UserUseCase) List(ctx context.Context, tenantID string, page dto.PageRequest) ([]dto.UserResponse, error) {
	page.DefaultPage()
	users, err := uc.repo.ListByTenant(ctx, tenantID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, *entityToUserResponse(u))
	}
	return out, nil
}

// GetByID obtiene un usuario del tenant. Usuarios de otros tenants se
// reportan como no encontrados.
func (uc *UserUseCase) GetByID(ctx context.Context, tenantID, userID string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	return entityToUserResponse(user), nil
}

// UpdateStatus cambia el estado de un usuario del tenant (active, inactive,
// suspended). Un usuario no puede cambiar su propio estado; con estado
// distinto de active el login queda bloqueado.
func (uc *UserUseCase) UpdateStatus(ctx context.Context, tenantID, callerID, userID string, in dto.UpdateUserStatusRequest) (*dto.UserResponse, error) {
	if !validUserStatuses[in.Status] {
		v := &domain.ValidationError{}
		v.Add("status", "debe ser active, inactive o suspended")
		return nil, v
	}
	if callerID == userID {
		v := &domain.ValidationError{}
		v.Add("status", "no puede cambiar su propio estado")
		return nil, v
	}

	user, err := uc.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}

	user.Status = in.Status
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// Delete elimina un usuario del tenant. Un usuario no puede eliminarse a sí
// mismo; usuarios de otros tenants se reportan como no encontrados.
func (uc *UserUseCase) Delete(ctx context.Context, tenantID, callerID, userID string) error {
	if callerID == userID {
		v := &domain.ValidationError{}
		v.Add("user_id", "no puede eliminarse a sí mismo")
		return v
	}

	user, err := uc.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || user.TenantID != tenantID {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, user.ID)
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		TenantID:  u.TenantID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

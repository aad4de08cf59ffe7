package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/aw-admin-api/internal/dto"
	"github.com/noah-isme/aw-admin-api/internal/models"
	"github.com/noah-isme/aw-admin-api/pkg/database"
	appErrors "github.com/noah-isme/aw-admin-api/pkg/errors"
)

type roleRepository interface {
	List(ctx context.Context, filter models.RoleFilter) ([]models.Role, int, error)
	FindByID(ctx context.Context, id int64) (*models.Role, error)
	Create(ctx context.Context, role *models.Role) error
	Update(ctx context.Context, role *models.Role) error
	Delete(ctx context.Context, id int64) error
}

type roleUsage interface {
	CountByRole(ctx context.Context, roleID int64) (int, error)
}

// RoleService manages roles.
type RoleService struct {
	repo      roleRepository
	users     roleUsage
	refs      *ReferenceValidator
	tx        txManager
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoleService constructs a RoleService.
func NewRoleService(repo roleRepository, users roleUsage, refs *ReferenceValidator, tx txManager, validate *validator.Validate, logger *zap.Logger) *RoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RoleService{repo: repo, users: users, refs: refs, tx: tx, validator: validate, logger: logger}
}

// List returns roles.
func (s *RoleService) List(ctx context.Context, filter models.RoleFilter) ([]models.Role, *models.Pagination, error) {
	roles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list roles")
	}
	return roles, models.NewPagination(filter.Page, filter.PageSize, models.DefaultPageSize, total), nil
}

// Get returns a role by ID.
func (s *RoleService) Get(ctx context.Context, id int64) (*models.Role, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "role")
	}
	return role, nil
}

// Create adds a role with a unique name.
func (s *RoleService) Create(ctx context.Context, req dto.CreateRoleRequest) (*models.Role, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid role payload")
	}
	role := &models.Role{Name: req.Name, Description: trimPtr(req.Description)}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.refs.Unique(ctx, "roles", "name", "name", role.Name, 0, "Role already exists"); err != nil {
			return err
		}
		return s.repo.Create(ctx, role)
	})
	if err != nil {
		return nil, FromStoreError(err, "failed to create role")
	}
	return role, nil
}

// Update applies the fields present in req.
func (s *RoleService) Update(ctx context.Context, id int64, req dto.UpdateRoleRequest) (*models.Role, error) {
	var role *models.Role
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if role, err = s.repo.FindByID(ctx, id); err != nil {
			return loadError(err, "role")
		}
		if v, ok := req.Name.Get(); ok {
			v = strings.TrimSpace(v)
			if err := s.validator.Var(v, "required,max=50"); err != nil {
				return invalidField("name", "name is required")
			}
			if err := s.refs.Unique(ctx, "roles", "name", "name", v, id, "Role already exists"); err != nil {
				return err
			}
			role.Name = v
		}
		if v, ok := req.Description.Get(); ok {
			role.Description = trimPtr(v)
		}
		return s.repo.Update(ctx, role)
	})
	if err != nil {
		return nil, FromStoreError(err, "failed to update role")
	}
	return role, nil
}

// Delete removes a role nobody holds.
func (s *RoleService) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.FindByID(ctx, id); err != nil {
			return loadError(err, "role")
		}
		count, err := s.users.CountByRole(ctx, id)
		if err != nil {
			return appErrors.Internal(err, "failed to count role users")
		}
		if count > 0 {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "role is assigned to users")
		}
		return s.repo.Delete(ctx, id)
	})
	if _, ok := database.ForeignKeyViolation(err); ok {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "role is assigned to users")
	}
	if err != nil {
		return FromStoreError(err, "failed to delete role")
	}
	return nil
}

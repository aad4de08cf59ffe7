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
	"github.com/noah-isme/aw-admin-api/pkg/events"
)

const empIDConstraint = "users_emp_id_key"

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	MaxID(ctx context.Context) (int64, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// UserService handles staff account management.
type UserService struct {
	repo      userRepository
	refs      *ReferenceValidator
	tx        txManager
	hasher    *PasswordHasher
	notifier  *Notifier
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	retries   int
}

// NewUserService creates an instance of UserService. retries bounds how often
// a create is repeated after an employee code collision.
func NewUserService(repo userRepository, refs *ReferenceValidator, tx txManager, hasher *PasswordHasher, notifier *Notifier, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, retries int) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if retries < 0 {
		retries = 0
	}
	return &UserService{
		repo:      repo,
		refs:      refs,
		tx:        tx,
		hasher:    hasher,
		notifier:  notifier,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		retries:   retries,
	}
}

// List returns paginated users and pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list users")
	}
	return users, models.NewPagination(filter.Page, filter.PageSize, models.DefaultPageSize, total), nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "user")
	}
	return user, nil
}

// Create adds a user with the next free employee code.
func (s *UserService) Create(ctx context.Context, req dto.CreateUserRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid create user payload")
	}
	if err := checkPasswordLength("password", req.Password); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	var created *models.User
	for attempt := 0; ; attempt++ {
		err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := s.refs.Unique(ctx, "users", "username", "username", req.Username, 0, "Username already in use"); err != nil {
				return err
			}
			if err := s.refs.Unique(ctx, "users", "email", "email", req.Email, 0, "Email already in use"); err != nil {
				return err
			}
			if err := s.refs.Exists(ctx, "roles", req.RoleID, "role_id"); err != nil {
				return err
			}
			if err := s.refs.ExistsOptional(ctx, "departments", req.DepartmentID, "department_id"); err != nil {
				return err
			}

			maxID, err := s.repo.MaxID(ctx)
			if err != nil {
				return err
			}
			user := &models.User{
				EmpID:        NextEmployeeCode(maxID),
				Username:     req.Username,
				FullName:     req.FullName,
				Email:        req.Email,
				PasswordHash: passwordHash,
				IsActive:     isActive,
				RoleID:       req.RoleID,
				DepartmentID: req.DepartmentID,
			}
			if err := s.repo.Create(ctx, user); err != nil {
				return err
			}
			created, err = s.repo.FindByID(ctx, user.ID)
			return err
		})
		if err == nil {
			break
		}
		if name, ok := database.UniqueViolation(err); ok && name == empIDConstraint && attempt < s.retries {
			s.metrics.RecordEmployeeCodeRetry()
			s.logger.Warn("employee code collision, retrying", zap.Int("attempt", attempt+1))
			continue
		}
		return nil, FromStoreError(err, "failed to create user")
	}

	s.notifier.Emit(ctx, events.UserCreated, userEvent(created))
	return created, nil
}

// Update applies the fields present in req.
func (s *UserService) Update(ctx context.Context, id int64, req dto.UpdateUserRequest) (*models.User, error) {
	var updated *models.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return loadError(err, "user")
		}

		if v, ok := req.Username.Get(); ok {
			v = strings.TrimSpace(v)
			if err := s.validator.Var(v, "required,min=3,max=50"); err != nil {
				return invalidField("username", "username must be 3 to 50 characters")
			}
			if err := s.refs.Unique(ctx, "users", "username", "username", v, id, "Username already in use"); err != nil {
				return err
			}
			user.Username = v
		}
		if v, ok := req.FullName.Get(); ok {
			v = strings.TrimSpace(v)
			if err := s.validator.Var(v, "required,max=100"); err != nil {
				return invalidField("full_name", "full_name is required")
			}
			user.FullName = v
		}
		if v, ok := req.Email.Get(); ok {
			v = strings.TrimSpace(v)
			if err := s.validator.Var(v, "required,email,max=100"); err != nil {
				return invalidField("email", "email must be a valid address")
			}
			if err := s.refs.Unique(ctx, "users", "email", "email", v, id, "Email already in use"); err != nil {
				return err
			}
			user.Email = v
		}
		if v, ok := req.Password.Get(); ok {
			if err := s.validator.Var(v, "required,min=6,max=72"); err != nil {
				return invalidField("password", "password must be 6 to 72 characters")
			}
			if err := checkPasswordLength("password", v); err != nil {
				return err
			}
			hash, err := s.hasher.Hash(v)
			if err != nil {
				return appErrors.Internal(err, "failed to hash password")
			}
			user.PasswordHash = hash
		}
		if v, ok := req.IsActive.Get(); ok {
			if req.IsActive.Null {
				return invalidField("is_active", "is_active must be true or false")
			}
			user.IsActive = v
		}
		if v, ok := req.RoleID.Get(); ok {
			if v <= 0 {
				return appErrors.BadReference("role_id", "Invalid role_id")
			}
			if err := s.refs.Exists(ctx, "roles", v, "role_id"); err != nil {
				return err
			}
			user.RoleID = v
		}
		if v, ok := req.DepartmentID.Get(); ok {
			if err := s.refs.ExistsOptional(ctx, "departments", v, "department_id"); err != nil {
				return err
			}
			user.DepartmentID = v
		}

		if err := s.repo.Update(ctx, user); err != nil {
			return err
		}
		updated, err = s.repo.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, FromStoreError(err, "failed to update user")
	}

	s.notifier.Emit(ctx, events.UserUpdated, userEvent(updated))
	return updated, nil
}

func userEvent(user *models.User) map[string]interface{} {
	payload := map[string]interface{}{
		"id":        user.ID,
		"emp_id":    user.EmpID,
		"username":  user.Username,
		"email":     user.Email,
		"is_active": user.IsActive,
		"role_id":   user.RoleID,
	}
	if user.DepartmentID != nil {
		payload["department_id"] = *user.DepartmentID
	}
	return payload
}

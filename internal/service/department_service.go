package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/aw-admin-api/internal/dto"
	"github.com/noah-isme/aw-admin-api/internal/models"
	appErrors "github.com/noah-isme/aw-admin-api/pkg/errors"
)

type departmentRepository interface {
	List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, int, error)
	FindByID(ctx context.Context, id int64) (*models.Department, error)
	Create(ctx context.Context, dept *models.Department) error
	Update(ctx context.Context, dept *models.Department) error
	Delete(ctx context.Context, id int64) error
}

type departmentMembers interface {
	ClearDepartment(ctx context.Context, departmentID int64) (int64, error)
}

// DepartmentService manages departments.
type DepartmentService struct {
	repo      departmentRepository
	members   departmentMembers
	refs      *ReferenceValidator
	tx        txManager
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDepartmentService constructs a DepartmentService.
func NewDepartmentService(repo departmentRepository, members departmentMembers, refs *ReferenceValidator, tx txManager, validate *validator.Validate, logger *zap.Logger) *DepartmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DepartmentService{repo: repo, members: members, refs: refs, tx: tx, validator: validate, logger: logger}
}

// List returns departments.
func (s *DepartmentService) List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, *models.Pagination, error) {
	departments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list departments")
	}
	return departments, models.NewPagination(filter.Page, filter.PageSize, models.DefaultPageSize, total), nil
}

// Get returns a department by ID.
func (s *DepartmentService) Get(ctx context.Context, id int64) (*models.Department, error) {
	dept, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "department")
	}
	return dept, nil
}

// Create adds a department with a unique name.
func (s *DepartmentService) Create(ctx context.Context, req dto.CreateDepartmentRequest) (*models.Department, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid department payload")
	}
	dept := &models.Department{Name: req.Name, Description: trimPtr(req.Description), IsActive: true}
	if req.IsActive != nil {
		dept.IsActive = *req.IsActive
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.refs.Unique(ctx, "departments", "name", "name", dept.Name, 0, "Department already exists"); err != nil {
			return err
		}
		return s.repo.Create(ctx, dept)
	})
	if err != nil {
		return nil, FromStoreError(err, "failed to create department")
	}
	return dept, nil
}

// Update applies the fields present in req.
func (s *DepartmentService) Update(ctx context.Context, id int64, req dto.UpdateDepartmentRequest) (*models.Department, error) {
	var dept *models.Department
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if dept, err = s.repo.FindByID(ctx, id); err != nil {
			return loadError(err, "department")
		}
		if v, ok := req.Name.Get(); ok {
			v = strings.TrimSpace(v)
			if err := s.validator.Var(v, "required,max=100"); err != nil {
				return invalidField("name", "name is required")
			}
			if err := s.refs.Unique(ctx, "departments", "name", "name", v, id, "Department already exists"); err != nil {
				return err
			}
			dept.Name = v
		}
		if v, ok := req.Description.Get(); ok {
			dept.Description = trimPtr(v)
		}
		if v, ok := req.IsActive.Get(); ok {
			if req.IsActive.Null {
				return invalidField("is_active", "is_active must be true or false")
			}
			dept.IsActive = v
		}
		return s.repo.Update(ctx, dept)
	})
	if err != nil {
		return nil, FromStoreError(err, "failed to update department")
	}
	return dept, nil
}

// Delete detaches the department's users and removes it.
func (s *DepartmentService) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.FindByID(ctx, id); err != nil {
			return loadError(err, "department")
		}
		detached, err := s.members.ClearDepartment(ctx, id)
		if err != nil {
			return err
		}
		if detached > 0 {
			s.logger.Info("users detached from deleted department", zap.Int64("department_id", id), zap.Int64("users", detached))
		}
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return FromStoreError(err, "failed to delete department")
	}
	return nil
}

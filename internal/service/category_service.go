package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/aw-admin-api/internal/dto"
	"github.com/noah-isme/aw-admin-api/internal/models"
	appErrors "github.com/noah-isme/aw-admin-api/pkg/errors"
	"github.com/noah-isme/aw-admin-api/pkg/slug"
)

type categoryRepository interface {
	List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, int, error)
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int64) error
}

type categoryPosts interface {
	ClearCategory(ctx context.Context, categoryID int64) (int64, error)
}

// CategoryService manages blog categories.
type CategoryService struct {
	repo      categoryRepository
	posts     categoryPosts
	refs      *ReferenceValidator
	tx        txManager
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(repo categoryRepository, posts categoryPosts, refs *ReferenceValidator, tx txManager, validate *validator.Validate, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CategoryService{repo: repo, posts: posts, refs: refs, tx: tx, validator: validate, logger: logger}
}

// List returns categories.
func (s *CategoryService) List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, *models.Pagination, error) {
	categories, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list categories")
	}
	return categories, models.NewPagination(filter.Page, filter.PageSize, models.DefaultPageSize, total), nil
}

// Get returns a category by ID.
func (s *CategoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "category")
	}
	return category, nil
}

// Create adds a category with unique name and slug.
func (s *CategoryService) Create(ctx context.Context, req dto.CreateCategoryRequest) (*models.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid category payload")
	}
	category := &models.Category{Name: req.Name, Slug: slug.Make(req.Name), Description: req.Description}
	if explicit := trimPtr(req.Slug); explicit != nil {
		category.Slug = *explicit
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.refs.Unique(ctx, "categories", "slug", "slug", category.Slug, 0, "Category slug already exists"); err != nil {
			return err
		}
		if err := s.refs.Unique(ctx, "categories", "name", "name", category.Name, 0, "Category name already exists"); err != nil {
			return err
		}
		return s.repo.Create(ctx, category)
	})
	if err != nil {
		return nil, FromStoreError(err, "failed to create category")
	}
	return category, nil
}

// Update applies the fields present in req.
func (s *CategoryService) Update(ctx context.Context, id int64, req dto.UpdateCategoryRequest) (*models.Category, error) {
	var category *models.Category
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if category, err = s.repo.FindByID(ctx, id); err != nil {
			return loadError(err, "category")
		}
		if v, ok := req.Name.Get(); ok {
			v = strings.TrimSpace(v)
			if err := s.validator.Var(v, "required,max=150"); err != nil {
				return invalidField("name", "name is required")
			}
			if err := s.refs.Unique(ctx, "categories", "name", "name", v, id, "Category name already exists"); err != nil {
				return err
			}
			category.Name = v
		}
		if v, ok := req.Slug.Get(); ok {
			v = strings.TrimSpace(v)
			if err := s.validator.Var(v, "required,max=180"); err != nil {
				return invalidField("slug", "slug is required")
			}
			if err := s.refs.Unique(ctx, "categories", "slug", "slug", v, id, "Category slug already exists"); err != nil {
				return err
			}
			category.Slug = v
		}
		if v, ok := req.Description.Get(); ok {
			category.Description = v
		}
		return s.repo.Update(ctx, category)
	})
	if err != nil {
		return nil, FromStoreError(err, "failed to update category")
	}
	return category, nil
}

// Delete detaches the category's posts and removes the category.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.FindByID(ctx, id); err != nil {
			return loadError(err, "category")
		}
		if _, err := s.posts.ClearCategory(ctx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return FromStoreError(err, "failed to delete category")
	}
	return nil
}

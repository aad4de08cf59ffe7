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

type authorRepository interface {
	List(ctx context.Context, filter models.AuthorFilter) ([]models.Author, int, error)
	FindByID(ctx context.Context, id int64) (*models.Author, error)
	Create(ctx context.Context, author *models.Author) error
	Update(ctx context.Context, author *models.Author) error
	Delete(ctx context.Context, id int64) error
}

type authorPosts interface {
	ClearAuthor(ctx context.Context, authorID int64) (int64, error)
}

// AuthorService manages blog authors.
type AuthorService struct {
	repo      authorRepository
	posts     authorPosts
	refs      *ReferenceValidator
	tx        txManager
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthorService constructs an AuthorService.
func NewAuthorService(repo authorRepository, posts authorPosts, refs *ReferenceValidator, tx txManager, validate *validator.Validate, logger *zap.Logger) *AuthorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthorService{repo: repo, posts: posts, refs: refs, tx: tx, validator: validate, logger: logger}
}

// List returns authors.
func (s *AuthorService) List(ctx context.Context, filter models.AuthorFilter) ([]models.Author, *models.Pagination, error) {
	authors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list authors")
	}
	return authors, models.NewPagination(filter.Page, filter.PageSize, models.DefaultPageSize, total), nil
}

// Get returns an author by ID.
func (s *AuthorService) Get(ctx context.Context, id int64) (*models.Author, error) {
	author, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "author")
	}
	return author, nil
}

// Create adds an author. The slug defaults to the slugified name.
func (s *AuthorService) Create(ctx context.Context, req dto.CreateAuthorRequest) (*models.Author, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid author payload")
	}
	author := &models.Author{
		Name:   req.Name,
		Slug:   slug.Make(req.Name),
		Role:   trimPtr(req.Role),
		Bio:    req.Bio,
		Avatar: trimPtr(req.Avatar),
	}
	if explicit := trimPtr(req.Slug); explicit != nil {
		author.Slug = *explicit
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.refs.Unique(ctx, "authors", "slug", "slug", author.Slug, 0, "Author slug already exists"); err != nil {
			return err
		}
		return s.repo.Create(ctx, author)
	})
	if err != nil {
		return nil, FromStoreError(err, "failed to create author")
	}
	return author, nil
}

// Update applies the fields present in req.
func (s *AuthorService) Update(ctx context.Context, id int64, req dto.UpdateAuthorRequest) (*models.Author, error) {
	var author *models.Author
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if author, err = s.repo.FindByID(ctx, id); err != nil {
			return loadError(err, "author")
		}
		if v, ok := req.Name.Get(); ok {
			v = strings.TrimSpace(v)
			if err := s.validator.Var(v, "required,max=150"); err != nil {
				return invalidField("name", "name is required")
			}
			author.Name = v
		}
		if v, ok := req.Slug.Get(); ok {
			v = strings.TrimSpace(v)
			if err := s.validator.Var(v, "required,max=180"); err != nil {
				return invalidField("slug", "slug is required")
			}
			if err := s.refs.Unique(ctx, "authors", "slug", "slug", v, id, "Author slug already exists"); err != nil {
				return err
			}
			author.Slug = v
		}
		if v, ok := req.Role.Get(); ok {
			author.Role = trimPtr(v)
		}
		if v, ok := req.Bio.Get(); ok {
			author.Bio = v
		}
		if v, ok := req.Avatar.Get(); ok {
			author.Avatar = trimPtr(v)
		}
		return s.repo.Update(ctx, author)
	})
	if err != nil {
		return nil, FromStoreError(err, "failed to update author")
	}
	return author, nil
}

// Delete detaches the author's posts and removes the author.
func (s *AuthorService) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.FindByID(ctx, id); err != nil {
			return loadError(err, "author")
		}
		if _, err := s.posts.ClearAuthor(ctx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return FromStoreError(err, "failed to delete author")
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/aw-admin-api/internal/dto"
	"github.com/noah-isme/aw-admin-api/internal/models"
	"github.com/noah-isme/aw-admin-api/internal/repository"
	appErrors "github.com/noah-isme/aw-admin-api/pkg/errors"
	"github.com/noah-isme/aw-admin-api/pkg/events"
	"github.com/noah-isme/aw-admin-api/pkg/slug"
)

// maxSlugSuffix bounds the search for a free generated slug.
const maxSlugSuffix = 1000

type blogRepository interface {
	List(ctx context.Context, filter models.BlogFilter) ([]models.Blog, int, error)
	FindBySlug(ctx context.Context, slug string) (*models.Blog, error)
	Create(ctx context.Context, blog *models.Blog) error
	Update(ctx context.Context, blog *models.Blog) error
	Delete(ctx context.Context, id int64) error
}

// BlogService manages blog posts addressed by slug.
type BlogService struct {
	repo      blogRepository
	refs      *ReferenceValidator
	tx        txManager
	notifier  *Notifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBlogService constructs a BlogService.
func NewBlogService(repo blogRepository, refs *ReferenceValidator, tx txManager, notifier *Notifier, validate *validator.Validate, logger *zap.Logger) *BlogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BlogService{repo: repo, refs: refs, tx: tx, notifier: notifier, validator: validate, logger: logger}
}

// List returns posts newest first. Only published posts are listed unless
// the filter says otherwise.
func (s *BlogService) List(ctx context.Context, filter models.BlogFilter) ([]models.Blog, *models.Pagination, error) {
	if filter.Published == nil {
		published := true
		filter.Published = &published
	}
	blogs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list blogs")
	}
	return blogs, models.NewPagination(filter.Page, filter.PageSize, repository.BlogPageSize, total), nil
}

// Get returns a post by slug.
func (s *BlogService) Get(ctx context.Context, blogSlug string) (*models.Blog, error) {
	blog, err := s.repo.FindBySlug(ctx, blogSlug)
	if err != nil {
		return nil, loadError(err, "blog")
	}
	return blog, nil
}

// Create adds a post. Without an explicit slug one is derived from the title
// and suffixed with -2, -3 and so on until free.
func (s *BlogService) Create(ctx context.Context, req dto.CreateBlogRequest) (*models.Blog, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid blog payload")
	}

	blog := &models.Blog{
		Title:       req.Title,
		Deck:        req.Deck,
		BannerImg:   trimPtr(req.BannerImg),
		BannerTitle: req.BannerTitle,
		Content:     req.Content,
		ContentHTML: req.ContentHTML,
		Sections:    req.Sections.Normalize(),
		AuthorID:    req.AuthorID,
		CategoryID:  req.CategoryID,
		ReadMins:    req.ReadMins,
		IsPublished: true,
	}
	if req.IsPublished != nil {
		blog.IsPublished = *req.IsPublished
	}

	var created *models.Blog
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if explicit := trimPtr(req.Slug); explicit != nil {
			if err := s.refs.Unique(ctx, "blogs", "slug", "slug", *explicit, 0, "Slug already in use"); err != nil {
				return err
			}
			blog.Slug = *explicit
		} else {
			generated, err := s.freeSlug(ctx, slug.Make(req.Title))
			if err != nil {
				return err
			}
			blog.Slug = generated
		}
		if err := s.checkReferences(ctx, blog.AuthorID, blog.CategoryID); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, blog); err != nil {
			return err
		}
		var err error
		created, err = s.repo.FindBySlug(ctx, blog.Slug)
		return err
	})
	if err != nil {
		return nil, FromStoreError(err, "failed to create blog")
	}

	if created.IsPublished {
		s.notifier.Emit(ctx, events.BlogPublished, blogEvent(created))
	}
	return created, nil
}

// Update applies the fields present in req to the post at slug.
func (s *BlogService) Update(ctx context.Context, currentSlug string, req dto.UpdateBlogRequest) (*models.Blog, error) {
	var (
		updated      *models.Blog
		wasPublished bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		blog, err := s.repo.FindBySlug(ctx, currentSlug)
		if err != nil {
			return loadError(err, "blog")
		}
		wasPublished = blog.IsPublished

		if v, ok := req.Title.Get(); ok {
			v = strings.TrimSpace(v)
			if err := s.validator.Var(v, "required,max=255"); err != nil {
				return invalidField("title", "title is required")
			}
			blog.Title = v
		}
		if v, ok := req.Slug.Get(); ok {
			v = strings.TrimSpace(v)
			if err := s.validator.Var(v, "required,max=255"); err != nil {
				return invalidField("slug", "slug is required")
			}
			if err := s.refs.Unique(ctx, "blogs", "slug", "slug", v, blog.ID, "Slug already in use"); err != nil {
				return err
			}
			blog.Slug = v
		}
		if v, ok := req.Deck.Get(); ok {
			blog.Deck = v
		}
		if v, ok := req.BannerImg.Get(); ok {
			blog.BannerImg = trimPtr(v)
		}
		if v, ok := req.BannerTitle.Get(); ok {
			blog.BannerTitle = v
		}
		if v, ok := req.Content.Get(); ok {
			blog.Content = v
		}
		if v, ok := req.ContentHTML.Get(); ok {
			blog.ContentHTML = v
		}
		if v, ok := req.ReadMins.Get(); ok {
			if v != nil && *v < 0 {
				return invalidField("read_mins", "read_mins must not be negative")
			}
			blog.ReadMins = v
		}
		if v, ok := req.IsPublished.Get(); ok {
			if req.IsPublished.Null {
				return invalidField("is_published", "is_published must be true or false")
			}
			blog.IsPublished = v
		}
		if v, ok := req.Sections.Get(); ok {
			blog.Sections = v.Normalize()
		}
		if v, ok := req.AuthorID.Get(); ok {
			if err := s.refs.ExistsOptional(ctx, "authors", v, "author_id"); err != nil {
				return err
			}
			blog.AuthorID = v
		}
		if v, ok := req.CategoryID.Get(); ok {
			if err := s.refs.ExistsOptional(ctx, "categories", v, "category_id"); err != nil {
				return err
			}
			blog.CategoryID = v
		}

		if err := s.repo.Update(ctx, blog); err != nil {
			return err
		}
		updated, err = s.repo.FindBySlug(ctx, blog.Slug)
		return err
	})
	if err != nil {
		return nil, FromStoreError(err, "failed to update blog")
	}

	name := events.BlogUpdated
	if updated.IsPublished && !wasPublished {
		name = events.BlogPublished
	}
	s.notifier.Emit(ctx, name, blogEvent(updated))
	return updated, nil
}

// Delete removes the post at slug.
func (s *BlogService) Delete(ctx context.Context, blogSlug string) error {
	var deleted *models.Blog
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		blog, err := s.repo.FindBySlug(ctx, blogSlug)
		if err != nil {
			return loadError(err, "blog")
		}
		deleted = blog
		return s.repo.Delete(ctx, blog.ID)
	})
	if err != nil {
		return FromStoreError(err, "failed to delete blog")
	}
	s.notifier.Emit(ctx, events.BlogDeleted, map[string]interface{}{"id": deleted.ID, "slug": deleted.Slug})
	return nil
}

func (s *BlogService) freeSlug(ctx context.Context, base string) (string, error) {
	for n := 1; n <= maxSlugSuffix; n++ {
		candidate := slug.WithSuffix(base, n)
		free, err := s.refs.Available(ctx, "blogs", "slug", candidate, 0)
		if err != nil {
			return "", err
		}
		if free {
			return candidate, nil
		}
	}
	return "", appErrors.Conflict("slug", fmt.Sprintf("no free slug for %q", base))
}

func (s *BlogService) checkReferences(ctx context.Context, authorID, categoryID *int64) error {
	if err := s.refs.ExistsOptional(ctx, "authors", authorID, "author_id"); err != nil {
		return err
	}
	return s.refs.ExistsOptional(ctx, "categories", categoryID, "category_id")
}

func blogEvent(blog *models.Blog) map[string]interface{} {
	return map[string]interface{}{
		"id":           blog.ID,
		"slug":         blog.Slug,
		"title":        blog.Title,
		"is_published": blog.IsPublished,
		"author_id":    blog.AuthorID,
		"category_id":  blog.CategoryID,
	}
}

package dto

import "github.com/noah-isme/aw-admin-api/internal/models"

// CreateBlogRequest defines payload for creating a post. Without a slug one is
// generated from the title and suffixed until unique.
type CreateBlogRequest struct {
	Title       string          `json:"title" validate:"required,max=255"`
	Slug        *string         `json:"slug" validate:"omitempty,max=255"`
	Deck        *string         `json:"deck"`
	BannerImg   *string         `json:"banner_img" validate:"omitempty,max=500"`
	BannerTitle *string         `json:"banner_title" validate:"omitempty,max=255"`
	Content     *string         `json:"content"`
	ContentHTML *string         `json:"content_html"`
	ReadMins    *int            `json:"read_mins" validate:"omitempty,gte=0"`
	IsPublished *bool           `json:"is_published"`
	AuthorID    *int64          `json:"author_id" validate:"omitempty,gt=0"`
	CategoryID  *int64          `json:"category_id" validate:"omitempty,gt=0"`
	Sections    models.Sections `json:"sections"`
}

// UpdateBlogRequest is a partial post update. Sections, when present, replace
// the stored list.
type UpdateBlogRequest struct {
	Title       models.Optional[string]          `json:"title"`
	Slug        models.Optional[string]          `json:"slug"`
	Deck        models.Optional[*string]         `json:"deck"`
	BannerImg   models.Optional[*string]         `json:"banner_img"`
	BannerTitle models.Optional[*string]         `json:"banner_title"`
	Content     models.Optional[*string]         `json:"content"`
	ContentHTML models.Optional[*string]         `json:"content_html"`
	ReadMins    models.Optional[*int]            `json:"read_mins"`
	IsPublished models.Optional[bool]            `json:"is_published"`
	AuthorID    models.Optional[*int64]          `json:"author_id"`
	CategoryID  models.Optional[*int64]          `json:"category_id"`
	Sections    models.Optional[models.Sections] `json:"sections"`
}

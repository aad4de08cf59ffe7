package dto

import "github.com/noah-isme/aw-admin-api/internal/models"

// CreateCategoryRequest defines payload for creating a category. The slug is
// derived from the name when omitted.
type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=150"`
	Slug        *string `json:"slug" validate:"omitempty,max=180"`
	Description *string `json:"description"`
}

// UpdateCategoryRequest is a partial category update.
type UpdateCategoryRequest struct {
	Name        models.Optional[string]  `json:"name"`
	Slug        models.Optional[string]  `json:"slug"`
	Description models.Optional[*string] `json:"description"`
}

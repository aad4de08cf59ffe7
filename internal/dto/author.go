package dto

import "github.com/noah-isme/aw-admin-api/internal/models"

// CreateAuthorRequest defines payload for creating an author. The slug is
// derived from the name when omitted.
type CreateAuthorRequest struct {
	Name   string  `json:"name" validate:"required,max=150"`
	Slug   *string `json:"slug" validate:"omitempty,max=180"`
	Role   *string `json:"role" validate:"omitempty,max=150"`
	Bio    *string `json:"bio"`
	Avatar *string `json:"avatar" validate:"omitempty,max=500"`
}

// UpdateAuthorRequest is a partial author update.
type UpdateAuthorRequest struct {
	Name   models.Optional[string]  `json:"name"`
	Slug   models.Optional[string]  `json:"slug"`
	Role   models.Optional[*string] `json:"role"`
	Bio    models.Optional[*string] `json:"bio"`
	Avatar models.Optional[*string] `json:"avatar"`
}

package dto

import "github.com/noah-isme/aw-admin-api/internal/models"

// CreateRoleRequest defines payload for creating a role.
type CreateRoleRequest struct {
	Name        string  `json:"name" validate:"required,max=50"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

// UpdateRoleRequest is a partial role update.
type UpdateRoleRequest struct {
	Name        models.Optional[string]  `json:"name"`
	Description models.Optional[*string] `json:"description"`
}

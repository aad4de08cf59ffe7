package dto

import "github.com/noah-isme/aw-admin-api/internal/models"

// CreateDepartmentRequest defines payload for creating a department.
type CreateDepartmentRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=255"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateDepartmentRequest is a partial department update.
type UpdateDepartmentRequest struct {
	Name        models.Optional[string]  `json:"name"`
	Description models.Optional[*string] `json:"description"`
	IsActive    models.Optional[bool]    `json:"is_active"`
}

package dto

import "github.com/noah-isme/aw-admin-api/internal/models"

// CreateUserRequest represents payload for creating users. The employee code
// is allocated by the server.
type CreateUserRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=50"`
	FullName     string `json:"full_name" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email,max=100"`
	Password     string `json:"password" validate:"required,min=6,max=72"`
	RoleID       int64  `json:"role_id" validate:"required,gt=0"`
	DepartmentID *int64 `json:"department_id" validate:"omitempty,gt=0"`
	IsActive     *bool  `json:"is_active"`
}

// UpdateUserRequest is a partial update; only fields present in the body are applied.
type UpdateUserRequest struct {
	Username     models.Optional[string] `json:"username"`
	FullName     models.Optional[string] `json:"full_name"`
	Email        models.Optional[string] `json:"email"`
	Password     models.Optional[string] `json:"password"`
	IsActive     models.Optional[bool]   `json:"is_active"`
	RoleID       models.Optional[int64]  `json:"role_id"`
	DepartmentID models.Optional[*int64] `json:"department_id"`
}

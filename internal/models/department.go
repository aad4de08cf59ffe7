package models

import "time"

// Department is an organisational unit optionally referenced by users.
type Department struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// DepartmentFilter filters department listings.
type DepartmentFilter struct {
	Search   string
	IsActive *bool
	Page     int
	PageSize int
}

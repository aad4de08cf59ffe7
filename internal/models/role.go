package models

import "time"

// Role is a named permission class referenced by every user.
type Role struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// RoleFilter filters role listings.
type RoleFilter struct {
	Search   string
	Page     int
	PageSize int
}

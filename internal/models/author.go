package models

import "time"

// Author is a byline referenced by blog posts.
type Author struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	Role      *string   `db:"role" json:"role"`
	Bio       *string   `db:"bio" json:"bio"`
	Avatar    *string   `db:"avatar" json:"avatar"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AuthorFilter filters author listings.
type AuthorFilter struct {
	Search   string
	Page     int
	PageSize int
}

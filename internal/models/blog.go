package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Blog is a published or draft post. Author and category summaries are joined
// in by the repository.
type Blog struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Slug        string    `db:"slug" json:"slug"`
	Deck        *string   `db:"deck" json:"deck"`
	BannerImg   *string   `db:"banner_img" json:"banner_img"`
	BannerTitle *string   `db:"banner_title" json:"banner_title"`
	Content     *string   `db:"content" json:"content"`
	ContentHTML *string   `db:"content_html" json:"content_html"`
	Sections    Sections  `db:"sections" json:"sections"`
	AuthorID    *int64    `db:"author_id" json:"author_id"`
	CategoryID  *int64    `db:"category_id" json:"category_id"`
	ReadMins    *int      `db:"read_mins" json:"read_mins"`
	IsPublished bool      `db:"is_published" json:"is_published"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	AuthorName   *string `db:"author_name" json:"-"`
	AuthorSlug   *string `db:"author_slug" json:"-"`
	CategoryName *string `db:"category_name" json:"-"`
	CategorySlug *string `db:"category_slug" json:"-"`

	Author   *SlugRef `db:"-" json:"author"`
	Category *SlugRef `db:"-" json:"category"`
}

// SlugRef is the compact author/category embedded in blog payloads.
type SlugRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Hydrate fills the nested references from the joined columns.
func (b *Blog) Hydrate() {
	if b == nil {
		return
	}
	b.Author = slugRef(b.AuthorID, b.AuthorName, b.AuthorSlug)
	b.Category = slugRef(b.CategoryID, b.CategoryName, b.CategorySlug)
}

func slugRef(id *int64, name, slug *string) *SlugRef {
	if id == nil || name == nil || slug == nil {
		return nil
	}
	return &SlugRef{ID: *id, Name: *name, Slug: *slug}
}

// Section is one block of a multi-section post body.
type Section struct {
	Title *string `json:"title"`
	Text  *string `json:"text"`
	Img   *string `json:"img"`
	Order *int    `json:"order"`
}

// Sections is stored as a JSON column.
type Sections []Section

// Normalize assigns a 1-based order to sections sent without one. An empty
// list normalises to nil so the column is stored as NULL.
func (s Sections) Normalize() Sections {
	if len(s) == 0 {
		return nil
	}
	out := make(Sections, len(s))
	for i, section := range s {
		if section.Order == nil {
			order := i + 1
			section.Order = &order
		}
		out[i] = section
	}
	return out
}

// Value implements driver.Valuer.
func (s Sections) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *Sections) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return s.decode(v)
	case string:
		return s.decode([]byte(v))
	default:
		return fmt.Errorf("unsupported sections type %T", src)
	}
}

func (s *Sections) decode(raw []byte) error {
	if len(raw) == 0 || string(raw) == "null" {
		*s = nil
		return nil
	}
	var out Sections
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("decode sections: %w", err)
	}
	*s = out
	return nil
}

// BlogFilter filters blog listings. Category and author match slugs case-insensitively.
type BlogFilter struct {
	Query        string
	CategorySlug string
	AuthorSlug   string
	Published    *bool
	Page         int
	PageSize     int
}

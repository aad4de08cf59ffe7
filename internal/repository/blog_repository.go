package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/aw-admin-api/internal/models"
	"github.com/noah-isme/aw-admin-api/pkg/database"
)

// BlogPageSize is the default blog listing size.
const BlogPageSize = 10

const blogSelect = `SELECT b.id, b.title, b.slug, b.deck, b.banner_img, b.banner_title, b.content, b.content_html, b.sections,
        b.author_id, b.category_id, b.read_mins, b.is_published, b.created_at, b.updated_at,
        a.name AS author_name, a.slug AS author_slug, c.name AS category_name, c.slug AS category_slug
        FROM blogs b LEFT JOIN authors a ON a.id = b.author_id LEFT JOIN categories c ON c.id = b.category_id`

const blogFrom = ` FROM blogs b LEFT JOIN authors a ON a.id = b.author_id LEFT JOIN categories c ON c.id = b.category_id`

// BlogRepository provides database access for blog posts.
type BlogRepository struct {
	db *sqlx.DB
}

// NewBlogRepository constructs a BlogRepository.
func NewBlogRepository(db *sqlx.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

// FindBySlug returns a post with author and category joined in.
func (r *BlogRepository) FindBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	conn := database.Conn(ctx, r.db)
	var blog models.Blog
	if err := sqlx.GetContext(ctx, conn, &blog, conn.Rebind(blogSelect+" WHERE b.slug = ? LIMIT 1"), slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find blog: %w", err)
	}
	blog.Hydrate()
	return &blog, nil
}

// List returns posts newest first.
func (r *BlogRepository) List(ctx context.Context, filter models.BlogFilter) ([]models.Blog, int, error) {
	conn := database.Conn(ctx, r.db)
	cond := &conditions{}
	if filter.Query != "" {
		pattern := likePattern(filter.Query)
		cond.add("(LOWER(b.title) LIKE ? OR LOWER(b.deck) LIKE ?)", pattern, pattern)
	}
	if filter.CategorySlug != "" {
		cond.add("LOWER(c.slug) = LOWER(?)", filter.CategorySlug)
	}
	if filter.AuthorSlug != "" {
		cond.add("LOWER(a.slug) = LOWER(?)", filter.AuthorSlug)
	}
	if filter.Published != nil {
		cond.add("b.is_published = ?", *filter.Published)
	}
	page, size := models.NormalizePage(filter.Page, filter.PageSize, BlogPageSize)

	blogs := []models.Blog{}
	query := blogSelect + cond.where() + " ORDER BY b.created_at DESC, b.id DESC" + pageClause(page, size)
	if err := sqlx.SelectContext(ctx, conn, &blogs, conn.Rebind(query), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("list blogs: %w", err)
	}
	for i := range blogs {
		blogs[i].Hydrate()
	}

	var total int
	if err := sqlx.GetContext(ctx, conn, &total, conn.Rebind("SELECT COUNT(*)"+blogFrom+cond.where()), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("count blogs: %w", err)
	}
	return blogs, total, nil
}

// Create inserts a post.
func (r *BlogRepository) Create(ctx context.Context, blog *models.Blog) error {
	now := time.Now().UTC()
	blog.CreatedAt, blog.UpdatedAt = now, now
	const query = `INSERT INTO blogs (title, slug, deck, banner_img, banner_title, content, content_html, sections, author_id, category_id, read_mins, is_published, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := database.InsertReturningID(ctx, database.Conn(ctx, r.db), query,
		blog.Title, blog.Slug, blog.Deck, blog.BannerImg, blog.BannerTitle, blog.Content, blog.ContentHTML, blog.Sections,
		blog.AuthorID, blog.CategoryID, blog.ReadMins, blog.IsPublished, blog.CreatedAt, blog.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create blog: %w", err)
	}
	blog.ID = id
	return nil
}

// Update persists every mutable post column.
func (r *BlogRepository) Update(ctx context.Context, blog *models.Blog) error {
	blog.UpdatedAt = time.Now().UTC()
	conn := database.Conn(ctx, r.db)
	const query = `UPDATE blogs SET title = ?, slug = ?, deck = ?, banner_img = ?, banner_title = ?, content = ?, content_html = ?, sections = ?, author_id = ?, category_id = ?, read_mins = ?, is_published = ?, updated_at = ? WHERE id = ?`
	if _, err := conn.ExecContext(ctx, conn.Rebind(query),
		blog.Title, blog.Slug, blog.Deck, blog.BannerImg, blog.BannerTitle, blog.Content, blog.ContentHTML, blog.Sections,
		blog.AuthorID, blog.CategoryID, blog.ReadMins, blog.IsPublished, blog.UpdatedAt, blog.ID); err != nil {
		return fmt.Errorf("update blog: %w", err)
	}
	return nil
}

// Delete removes a post. A missing row yields sql.ErrNoRows.
func (r *BlogRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, database.Conn(ctx, r.db), "blogs", id)
}

// ClearAuthor detaches every post from authorID.
func (r *BlogRepository) ClearAuthor(ctx context.Context, authorID int64) (int64, error) {
	return r.clear(ctx, "author_id", authorID)
}

// ClearCategory detaches every post from categoryID.
func (r *BlogRepository) ClearCategory(ctx context.Context, categoryID int64) (int64, error) {
	return r.clear(ctx, "category_id", categoryID)
}

func (r *BlogRepository) clear(ctx context.Context, column string, id int64) (int64, error) {
	conn := database.Conn(ctx, r.db)
	query := fmt.Sprintf("UPDATE blogs SET %s = NULL, updated_at = ? WHERE %s = ?", column, column)
	res, err := conn.ExecContext(ctx, conn.Rebind(query), time.Now().UTC(), id)
	if err != nil {
		return 0, fmt.Errorf("clear blog %s: %w", column, err)
	}
	return res.RowsAffected()
}

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

const categorySelect = `SELECT id, name, slug, description, created_at, updated_at FROM categories`

// CategoryRepository provides database access for blog categories.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository constructs a CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// FindByID returns a category by identifier.
func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	conn := database.Conn(ctx, r.db)
	var category models.Category
	if err := sqlx.GetContext(ctx, conn, &category, conn.Rebind(categorySelect+" WHERE id = ? LIMIT 1"), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &category, nil
}

// List returns categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, int, error) {
	conn := database.Conn(ctx, r.db)
	cond := &conditions{}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		cond.add("(LOWER(name) LIKE ? OR LOWER(slug) LIKE ?)", pattern, pattern)
	}
	page, size := models.NormalizePage(filter.Page, filter.PageSize, models.DefaultPageSize)

	categories := []models.Category{}
	if err := sqlx.SelectContext(ctx, conn, &categories, conn.Rebind(categorySelect+cond.where()+" ORDER BY name ASC"+pageClause(page, size)), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	var total int
	if err := sqlx.GetContext(ctx, conn, &total, conn.Rebind("SELECT COUNT(*) FROM categories"+cond.where()), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}
	return categories, total, nil
}

// Create inserts a category.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	now := time.Now().UTC()
	category.CreatedAt, category.UpdatedAt = now, now
	id, err := database.InsertReturningID(ctx, database.Conn(ctx, r.db),
		`INSERT INTO categories (name, slug, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		category.Name, category.Slug, category.Description, category.CreatedAt, category.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	category.ID = id
	return nil
}

// Update persists the mutable category columns.
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	category.UpdatedAt = time.Now().UTC()
	conn := database.Conn(ctx, r.db)
	if _, err := conn.ExecContext(ctx, conn.Rebind(`UPDATE categories SET name = ?, slug = ?, description = ?, updated_at = ? WHERE id = ?`),
		category.Name, category.Slug, category.Description, category.UpdatedAt, category.ID); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a category. A missing row yields sql.ErrNoRows.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, database.Conn(ctx, r.db), "categories", id)
}

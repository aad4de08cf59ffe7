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

const authorSelect = `SELECT id, name, slug, role, bio, avatar, created_at, updated_at FROM authors`

// AuthorRepository provides database access for blog authors.
type AuthorRepository struct {
	db *sqlx.DB
}

// NewAuthorRepository constructs an AuthorRepository.
func NewAuthorRepository(db *sqlx.DB) *AuthorRepository {
	return &AuthorRepository{db: db}
}

// FindByID returns an author by identifier.
func (r *AuthorRepository) FindByID(ctx context.Context, id int64) (*models.Author, error) {
	conn := database.Conn(ctx, r.db)
	var author models.Author
	if err := sqlx.GetContext(ctx, conn, &author, conn.Rebind(authorSelect+" WHERE id = ? LIMIT 1"), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find author: %w", err)
	}
	return &author, nil
}

// List returns authors ordered by name.
func (r *AuthorRepository) List(ctx context.Context, filter models.AuthorFilter) ([]models.Author, int, error) {
	conn := database.Conn(ctx, r.db)
	cond := &conditions{}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		cond.add("(LOWER(name) LIKE ? OR LOWER(slug) LIKE ?)", pattern, pattern)
	}
	page, size := models.NormalizePage(filter.Page, filter.PageSize, models.DefaultPageSize)

	authors := []models.Author{}
	if err := sqlx.SelectContext(ctx, conn, &authors, conn.Rebind(authorSelect+cond.where()+" ORDER BY name ASC"+pageClause(page, size)), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("list authors: %w", err)
	}
	var total int
	if err := sqlx.GetContext(ctx, conn, &total, conn.Rebind("SELECT COUNT(*) FROM authors"+cond.where()), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("count authors: %w", err)
	}
	return authors, total, nil
}

// Create inserts an author.
func (r *AuthorRepository) Create(ctx context.Context, author *models.Author) error {
	now := time.Now().UTC()
	author.CreatedAt, author.UpdatedAt = now, now
	id, err := database.InsertReturningID(ctx, database.Conn(ctx, r.db),
		`INSERT INTO authors (name, slug, role, bio, avatar, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		author.Name, author.Slug, author.Role, author.Bio, author.Avatar, author.CreatedAt, author.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create author: %w", err)
	}
	author.ID = id
	return nil
}

// Update persists the mutable author columns.
func (r *AuthorRepository) Update(ctx context.Context, author *models.Author) error {
	author.UpdatedAt = time.Now().UTC()
	conn := database.Conn(ctx, r.db)
	if _, err := conn.ExecContext(ctx, conn.Rebind(`UPDATE authors SET name = ?, slug = ?, role = ?, bio = ?, avatar = ?, updated_at = ? WHERE id = ?`),
		author.Name, author.Slug, author.Role, author.Bio, author.Avatar, author.UpdatedAt, author.ID); err != nil {
		return fmt.Errorf("update author: %w", err)
	}
	return nil
}

// Delete removes an author. A missing row yields sql.ErrNoRows.
func (r *AuthorRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, database.Conn(ctx, r.db), "authors", id)
}

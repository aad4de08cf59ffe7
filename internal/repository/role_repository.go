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

const roleSelect = `SELECT id, name, description, created_at, updated_at FROM roles`

// RoleRepository provides database access for roles.
type RoleRepository struct {
	db *sqlx.DB
}

// NewRoleRepository constructs a RoleRepository.
func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// FindByID returns a role by identifier.
func (r *RoleRepository) FindByID(ctx context.Context, id int64) (*models.Role, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByName returns a role by its unique name.
func (r *RoleRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	return r.findOne(ctx, "name = ?", name)
}

func (r *RoleRepository) findOne(ctx context.Context, clause string, arg interface{}) (*models.Role, error) {
	conn := database.Conn(ctx, r.db)
	var role models.Role
	if err := sqlx.GetContext(ctx, conn, &role, conn.Rebind(roleSelect+" WHERE "+clause+" LIMIT 1"), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &role, nil
}

// List returns roles ordered by name.
func (r *RoleRepository) List(ctx context.Context, filter models.RoleFilter) ([]models.Role, int, error) {
	conn := database.Conn(ctx, r.db)
	cond := &conditions{}
	if filter.Search != "" {
		cond.add("LOWER(name) LIKE ?", likePattern(filter.Search))
	}
	page, size := models.NormalizePage(filter.Page, filter.PageSize, models.DefaultPageSize)

	roles := []models.Role{}
	if err := sqlx.SelectContext(ctx, conn, &roles, conn.Rebind(roleSelect+cond.where()+" ORDER BY name ASC"+pageClause(page, size)), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("list roles: %w", err)
	}
	var total int
	if err := sqlx.GetContext(ctx, conn, &total, conn.Rebind("SELECT COUNT(*) FROM roles"+cond.where()), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("count roles: %w", err)
	}
	return roles, total, nil
}

// Create inserts a role.
func (r *RoleRepository) Create(ctx context.Context, role *models.Role) error {
	now := time.Now().UTC()
	role.CreatedAt, role.UpdatedAt = now, now
	id, err := database.InsertReturningID(ctx, database.Conn(ctx, r.db),
		`INSERT INTO roles (name, description, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		role.Name, role.Description, role.CreatedAt, role.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	role.ID = id
	return nil
}

// Update persists name and description.
func (r *RoleRepository) Update(ctx context.Context, role *models.Role) error {
	role.UpdatedAt = time.Now().UTC()
	conn := database.Conn(ctx, r.db)
	if _, err := conn.ExecContext(ctx, conn.Rebind(`UPDATE roles SET name = ?, description = ?, updated_at = ? WHERE id = ?`),
		role.Name, role.Description, role.UpdatedAt, role.ID); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}

// Delete removes a role. A missing row yields sql.ErrNoRows.
func (r *RoleRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, database.Conn(ctx, r.db), "roles", id)
}

// deleteByID removes one row from a fixed table name.
func deleteByID(ctx context.Context, conn sqlx.ExtContext, table string, id int64) error {
	res, err := conn.ExecContext(ctx, conn.Rebind("DELETE FROM "+table+" WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

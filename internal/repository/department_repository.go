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

const departmentSelect = `SELECT id, name, description, is_active, created_at, updated_at FROM departments`

// DepartmentRepository provides database access for departments.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository constructs a DepartmentRepository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// FindByID returns a department by identifier.
func (r *DepartmentRepository) FindByID(ctx context.Context, id int64) (*models.Department, error) {
	conn := database.Conn(ctx, r.db)
	var dept models.Department
	if err := sqlx.GetContext(ctx, conn, &dept, conn.Rebind(departmentSelect+" WHERE id = ? LIMIT 1"), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find department: %w", err)
	}
	return &dept, nil
}

// List returns departments ordered by name.
func (r *DepartmentRepository) List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, int, error) {
	conn := database.Conn(ctx, r.db)
	cond := &conditions{}
	if filter.Search != "" {
		cond.add("LOWER(name) LIKE ?", likePattern(filter.Search))
	}
	if filter.IsActive != nil {
		cond.add("is_active = ?", *filter.IsActive)
	}
	page, size := models.NormalizePage(filter.Page, filter.PageSize, models.DefaultPageSize)

	departments := []models.Department{}
	if err := sqlx.SelectContext(ctx, conn, &departments, conn.Rebind(departmentSelect+cond.where()+" ORDER BY name ASC"+pageClause(page, size)), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("list departments: %w", err)
	}
	var total int
	if err := sqlx.GetContext(ctx, conn, &total, conn.Rebind("SELECT COUNT(*) FROM departments"+cond.where()), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("count departments: %w", err)
	}
	return departments, total, nil
}

// Create inserts a department.
func (r *DepartmentRepository) Create(ctx context.Context, dept *models.Department) error {
	now := time.Now().UTC()
	dept.CreatedAt, dept.UpdatedAt = now, now
	id, err := database.InsertReturningID(ctx, database.Conn(ctx, r.db),
		`INSERT INTO departments (name, description, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		dept.Name, dept.Description, dept.IsActive, dept.CreatedAt, dept.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create department: %w", err)
	}
	dept.ID = id
	return nil
}

// Update persists the mutable department columns.
func (r *DepartmentRepository) Update(ctx context.Context, dept *models.Department) error {
	dept.UpdatedAt = time.Now().UTC()
	conn := database.Conn(ctx, r.db)
	if _, err := conn.ExecContext(ctx, conn.Rebind(`UPDATE departments SET name = ?, description = ?, is_active = ?, updated_at = ? WHERE id = ?`),
		dept.Name, dept.Description, dept.IsActive, dept.UpdatedAt, dept.ID); err != nil {
		return fmt.Errorf("update department: %w", err)
	}
	return nil
}

// Delete removes a department. A missing row yields sql.ErrNoRows.
func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, database.Conn(ctx, r.db), "departments", id)
}

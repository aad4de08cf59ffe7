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

const userSelect = `SELECT u.id, u.emp_id, u.username, u.full_name, u.email, u.password_hash, u.is_active, u.role_id, u.department_id, u.created_at, u.updated_at,
        r.name AS role_name, r.description AS role_description, d.name AS department_name
        FROM users u JOIN roles r ON r.id = u.role_id LEFT JOIN departments d ON d.id = u.department_id`

var userSorts = map[string]string{
	"id":         "u.id",
	"emp_id":     "u.emp_id",
	"username":   "u.username",
	"full_name":  "u.full_name",
	"email":      "u.email",
	"created_at": "u.created_at",
	"updated_at": "u.updated_at",
}

// UserRepository provides database access for staff accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a user with role and department joined in.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.findOne(ctx, "u.id = ?", id)
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "u.email = ?", email)
}

// FindByUsername returns a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "u.username = ?", username)
}

func (r *UserRepository) findOne(ctx context.Context, clause string, arg interface{}) (*models.User, error) {
	conn := database.Conn(ctx, r.db)
	var user models.User
	if err := sqlx.GetContext(ctx, conn, &user, conn.Rebind(userSelect+" WHERE "+clause+" LIMIT 1"), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	user.Hydrate()
	return &user, nil
}

func userConditions(filter models.UserFilter) *conditions {
	cond := &conditions{}
	if filter.RoleID != nil {
		cond.add("u.role_id = ?", *filter.RoleID)
	}
	if filter.DepartmentID != nil {
		cond.add("u.department_id = ?", *filter.DepartmentID)
	}
	if filter.IsActive != nil {
		cond.add("u.is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		cond.add("(LOWER(u.username) LIKE ? OR LOWER(u.full_name) LIKE ? OR LOWER(u.email) LIKE ? OR LOWER(u.emp_id) LIKE ?)", pattern, pattern, pattern, pattern)
	}
	return cond
}

func userOrder(filter models.UserFilter) string {
	column, ok := userSorts[filter.SortBy]
	if !ok {
		column = "u.created_at"
	}
	return fmt.Sprintf(" ORDER BY %s %s", column, orderDirection(filter.SortOrder))
}

// List returns users based on filters with total count.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	conn := database.Conn(ctx, r.db)
	cond := userConditions(filter)
	page, size := models.NormalizePage(filter.Page, filter.PageSize, models.DefaultPageSize)

	query := userSelect + cond.where() + userOrder(filter) + pageClause(page, size)
	users := []models.User{}
	if err := sqlx.SelectContext(ctx, conn, &users, conn.Rebind(query), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		users[i].Hydrate()
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM users u" + cond.where()
	if err := sqlx.GetContext(ctx, conn, &total, conn.Rebind(countQuery), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	return users, total, nil
}

// ListAll returns every user matching filter without pagination.
func (r *UserRepository) ListAll(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	conn := database.Conn(ctx, r.db)
	cond := userConditions(filter)
	users := []models.User{}
	if err := sqlx.SelectContext(ctx, conn, &users, conn.Rebind(userSelect+cond.where()+userOrder(filter)), cond.args...); err != nil {
		return nil, fmt.Errorf("list all users: %w", err)
	}
	for i := range users {
		users[i].Hydrate()
	}
	return users, nil
}

// MaxID returns the highest user id, or zero for an empty table.
func (r *UserRepository) MaxID(ctx context.Context) (int64, error) {
	conn := database.Conn(ctx, r.db)
	var id int64
	if err := sqlx.GetContext(ctx, conn, &id, "SELECT COALESCE(MAX(id), 0) FROM users"); err != nil {
		return 0, fmt.Errorf("max user id: %w", err)
	}
	return id, nil
}

// Create inserts a user and sets its generated id.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `INSERT INTO users (emp_id, username, full_name, email, password_hash, is_active, role_id, department_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := database.InsertReturningID(ctx, database.Conn(ctx, r.db), query,
		user.EmpID, user.Username, user.FullName, user.Email, user.PasswordHash, user.IsActive, user.RoleID, user.DepartmentID, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	user.ID = id
	return nil
}

// Update writes every mutable column of user.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	conn := database.Conn(ctx, r.db)
	const query = `UPDATE users SET username = ?, full_name = ?, email = ?, password_hash = ?, is_active = ?, role_id = ?, department_id = ?, updated_at = ? WHERE id = ?`
	if _, err := conn.ExecContext(ctx, conn.Rebind(query),
		user.Username, user.FullName, user.Email, user.PasswordHash, user.IsActive, user.RoleID, user.DepartmentID, user.UpdatedAt, user.ID); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// UpdatePassword updates the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	conn := database.Conn(ctx, r.db)
	const query = `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`
	if _, err := conn.ExecContext(ctx, conn.Rebind(query), passwordHash, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// CountByRole returns how many users hold roleID.
func (r *UserRepository) CountByRole(ctx context.Context, roleID int64) (int, error) {
	conn := database.Conn(ctx, r.db)
	var total int
	if err := sqlx.GetContext(ctx, conn, &total, conn.Rebind("SELECT COUNT(*) FROM users WHERE role_id = ?"), roleID); err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return total, nil
}

// ClearDepartment detaches every user from departmentID.
func (r *UserRepository) ClearDepartment(ctx context.Context, departmentID int64) (int64, error) {
	conn := database.Conn(ctx, r.db)
	res, err := conn.ExecContext(ctx, conn.Rebind("UPDATE users SET department_id = NULL, updated_at = ? WHERE department_id = ?"), time.Now().UTC(), departmentID)
	if err != nil {
		return 0, fmt.Errorf("clear user department: %w", err)
	}
	return res.RowsAffected()
}

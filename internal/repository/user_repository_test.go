package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aw-admin-api/internal/models"
	"github.com/noah-isme/aw-admin-api/pkg/database"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	return newDriverMock(t, "postgres")
}

func newDriverMock(t *testing.T, driver string) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, driver), mock, func() { db.Close() }
}

var userColumns = []string{"id", "emp_id", "username", "full_name", "email", "password_hash", "is_active", "role_id", "department_id", "created_at", "updated_at", "role_name", "role_description", "department_name"}

func TestUserRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userColumns).
		AddRow(1, "AW001", "admin", "Super Admin", "admin@example.com", "hash", true, 1, 2, now, now, "admin", "Full access", "Engineering")
	mock.ExpectQuery(regexp.QuoteMeta(userSelect + " WHERE u.id = $1 LIMIT 1")).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	user, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "AW001", user.EmpID)
	require.NotNil(t, user.Role)
	assert.Equal(t, "admin", user.Role.Name)
	require.NotNil(t, user.Department)
	assert.Equal(t, "Engineering", user.Department.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByEmailNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(userSelect + " WHERE u.email = $1 LIMIT 1")).
		WithArgs("missing@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByUsername(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(userSelect + " WHERE u.username = $1 LIMIT 1")).
		WithArgs("admin").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUsername(context.Background(), "admin")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	roleID := int64(3)
	now := time.Now()
	listRows := sqlmock.NewRows(userColumns).
		AddRow(4, "AW004", "jane", "Jane Doe", "jane@example.com", "hash", true, 3, nil, now, now, "hr", nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta(userSelect+" WHERE 1=1 AND u.role_id = $1 AND (LOWER(u.username) LIKE $2 OR LOWER(u.full_name) LIKE $3 OR LOWER(u.email) LIKE $4 OR LOWER(u.emp_id) LIKE $5) ORDER BY u.username ASC LIMIT 20 OFFSET 0")).
		WithArgs(roleID, "%jane%", "%jane%", "%jane%", "%jane%").
		WillReturnRows(listRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users u WHERE 1=1 AND u.role_id = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	users, total, err := repo.List(context.Background(), models.UserFilter{RoleID: &roleID, Search: " Jane ", SortBy: "username", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, 1, total)
	assert.Nil(t, users[0].Department)
	assert.Equal(t, "hr", users[0].Role.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListRejectsUnknownSort(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(userSelect + " WHERE 1=1 ORDER BY u.created_at DESC LIMIT 100 OFFSET 100")).
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users u WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.UserFilter{SortBy: "password_hash; DROP TABLE users", Page: 2, PageSize: 500})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryMaxID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(id), 0) FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(41))

	id, err := repo.MaxID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(41), id)
}

func TestUserRepositoryCreatePostgres(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (emp_id, username, full_name, email, password_hash, is_active, role_id, department_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id")).
		WithArgs("AW002", "jane", "Jane Doe", "jane@example.com", "hash", true, int64(2), nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))

	user := &models.User{EmpID: "AW002", Username: "jane", FullName: "Jane Doe", Email: "jane@example.com", PasswordHash: "hash", IsActive: true, RoleID: 2}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, int64(2), user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateMySQL(t *testing.T) {
	db, mock, cleanup := newDriverMock(t, "mysql")
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (emp_id, username, full_name, email, password_hash, is_active, role_id, department_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")).
		WillReturnResult(sqlmock.NewResult(9, 1))

	user := &models.User{EmpID: "AW009", Username: "sam", RoleID: 1}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, int64(9), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryUsesContextTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)
	tx := database.NewTxManager(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(id), 0) FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET department_id = NULL, updated_at = $1 WHERE department_id = $2")).
		WithArgs(sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
		if _, err := repo.MaxID(ctx); err != nil {
			return err
		}
		affected, err := repo.ClearDepartment(ctx, 5)
		assert.Equal(t, int64(3), affected)
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCountByRole(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE role_id = $1")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountByRole(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestUserRepositoryUpdatePassword(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3")).
		WithArgs("new-hash", sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdatePassword(context.Background(), 7, "new-hash"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aw-admin-api/internal/models"
	"github.com/noah-isme/aw-admin-api/pkg/config"
)

type seedRoles struct {
	byName map[string]*models.Role
}

func (r *seedRoles) FindByName(ctx context.Context, name string) (*models.Role, error) {
	if role, ok := r.byName[name]; ok {
		return role, nil
	}
	return nil, sql.ErrNoRows
}

func (r *seedRoles) Create(ctx context.Context, role *models.Role) error {
	role.ID = int64(len(r.byName) + 1)
	r.byName[role.Name] = role
	return nil
}

func TestSeederIsIdempotent(t *testing.T) {
	roles := &seedRoles{byName: map[string]*models.Role{"employee": {ID: 7, Name: "employee"}}}
	users := newMockUserRepo()
	seeder := NewSeeder(roles, users, &fakeTx{}, testHasher(), nil)
	admin := config.BootstrapConfig{Email: "root@example.com", Password: "change-me-now"}

	report, err := seeder.Run(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "hr", "manager"}, report.RolesCreated)
	assert.True(t, report.AdminCreated)
	assert.Equal(t, "AW001", report.AdminEmpID)

	created := users.users[1]
	require.NotNil(t, created)
	assert.Equal(t, "admin", created.Username)
	assert.Equal(t, roles.byName["admin"].ID, created.RoleID)
	assert.True(t, testHasher().Verify("change-me-now", created.PasswordHash))

	report, err = seeder.Run(context.Background(), admin)
	require.NoError(t, err)
	assert.Empty(t, report.RolesCreated)
	assert.False(t, report.AdminCreated)
	assert.Len(t, users.users, 1)
}

func TestSeederSkipsAdminWithoutCredentials(t *testing.T) {
	roles := &seedRoles{byName: map[string]*models.Role{}}
	users := newMockUserRepo()
	seeder := NewSeeder(roles, users, &fakeTx{}, testHasher(), nil)

	report, err := seeder.Run(context.Background(), config.BootstrapConfig{Email: "root@example.com"})
	require.NoError(t, err)
	assert.Len(t, report.RolesCreated, 4)
	assert.False(t, report.AdminCreated)
	assert.Empty(t, users.users)
}

func TestSeederSkipsAdminWhenUsernameTaken(t *testing.T) {
	roles := &seedRoles{byName: map[string]*models.Role{}}
	users := newMockUserRepo()
	users.users[3] = &models.User{ID: 3, EmpID: "AW003", Username: "root", Email: "someone@example.com", RoleID: 1}
	seeder := NewSeeder(roles, users, &fakeTx{}, testHasher(), nil)

	report, err := seeder.Run(context.Background(), config.BootstrapConfig{Username: "root", Email: "root@example.com", Password: "change-me-now"})
	require.NoError(t, err)
	assert.False(t, report.AdminCreated)
	assert.Len(t, users.users, 1)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aw-admin-api/internal/dto"
	"github.com/noah-isme/aw-admin-api/internal/models"
	appErrors "github.com/noah-isme/aw-admin-api/pkg/errors"
	"github.com/noah-isme/aw-admin-api/pkg/events"
)

type userFixture struct {
	svc       *UserService
	repo      *mockUserRepo
	refs      *fakeRefs
	publisher *recordingPublisher
	metrics   *MetricsService
}

func newUserFixture(t *testing.T, retries int) *userFixture {
	t.Helper()
	repo := newMockUserRepo()
	refs := newFakeRefs().addRow("roles", 1).addRow("roles", 2).addRow("departments", 10)
	publisher := &recordingPublisher{}
	metrics := NewMetricsService()
	validate, logger := testDeps()
	svc := NewUserService(repo, NewReferenceValidator(refs), &fakeTx{}, testHasher(), NewNotifier(publisher, metrics, logger), metrics, validate, logger, retries)
	return &userFixture{svc: svc, repo: repo, refs: refs, publisher: publisher, metrics: metrics}
}

func validCreateUser() dto.CreateUserRequest {
	return dto.CreateUserRequest{
		Username: "jdoe",
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Password: "secret123",
		RoleID:   2,
	}
}

func TestUserServiceCreateAllocatesEmployeeCode(t *testing.T) {
	f := newUserFixture(t, 3)
	f.repo.users[41] = &models.User{ID: 41, EmpID: "AW041", Username: "old", Email: "old@example.com", RoleID: 1}

	req := validCreateUser()
	req.DepartmentID = int64Ptr(10)
	user, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "AW042", user.EmpID)
	assert.True(t, user.IsActive)
	assert.Equal(t, "employee", user.Role.Name)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.True(t, testHasher().Verify("secret123", user.PasswordHash))
	assert.Equal(t, []string{events.UserCreated}, f.publisher.names())
}

func TestUserServiceCreateFirstUser(t *testing.T) {
	f := newUserFixture(t, 3)
	inactive := false
	req := validCreateUser()
	req.IsActive = &inactive

	user, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "AW001", user.EmpID)
	assert.False(t, user.IsActive)
}

func TestUserServiceCreateConflicts(t *testing.T) {
	f := newUserFixture(t, 3)
	f.refs.addValue("users", "username", "jdoe", 5).addValue("users", "email", "taken@example.com", 6)

	_, err := f.svc.Create(context.Background(), validCreateUser())
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "username", appErr.Field)
	assert.Equal(t, "Username already in use", appErr.Message)

	req := validCreateUser()
	req.Username = "fresh"
	req.Email = "taken@example.com"
	_, err = f.svc.Create(context.Background(), req)
	appErr = appErrors.FromError(err)
	assert.Equal(t, "email", appErr.Field)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Empty(t, f.publisher.events)
}

func TestUserServiceCreateBadReferences(t *testing.T) {
	f := newUserFixture(t, 3)

	req := validCreateUser()
	req.RoleID = 9
	_, err := f.svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrBadReference)
	assert.Equal(t, "role_id", appErrors.FromError(err).Field)

	req = validCreateUser()
	req.DepartmentID = int64Ptr(77)
	_, err = f.svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrBadReference)
	assert.Equal(t, "Invalid department_id", appErrors.FromError(err).Message)
}

func TestUserServiceCreateValidation(t *testing.T) {
	f := newUserFixture(t, 3)
	req := validCreateUser()
	req.Email = "not-an-email"
	_, err := f.svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	req = validCreateUser()
	req.Password = "123"
	_, err = f.svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestUserServiceCreateRetriesEmployeeCodeCollision(t *testing.T) {
	f := newUserFixture(t, 2)
	collision := &pq.Error{Code: "23505", Constraint: "users_emp_id_key"}
	f.repo.createErrs = []error{collision, nil}

	user, err := f.svc.Create(context.Background(), validCreateUser())
	require.NoError(t, err)
	assert.Equal(t, "AW001", user.EmpID)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.empCodeRetries))
}

func TestUserServiceCreateRetryExhausted(t *testing.T) {
	f := newUserFixture(t, 1)
	collision := &pq.Error{Code: "23505", Constraint: "users_emp_id_key"}
	f.repo.createErrs = []error{collision, collision}

	_, err := f.svc.Create(context.Background(), validCreateUser())
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "emp_id", appErr.Field)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.empCodeRetries))
}

func TestUserServiceCreateOtherUniqueViolationNotRetried(t *testing.T) {
	f := newUserFixture(t, 3)
	f.repo.createErrs = []error{&pq.Error{Code: "23505", Constraint: "users_email_key"}}

	_, err := f.svc.Create(context.Background(), validCreateUser())
	assert.Equal(t, "email", appErrors.FromError(err).Field)
	assert.Equal(t, float64(0), testutil.ToFloat64(f.metrics.empCodeRetries))
}

func TestUserServiceUpdatePartial(t *testing.T) {
	f := newUserFixture(t, 3)
	f.repo.users[1] = &models.User{ID: 1, EmpID: "AW001", Username: "jdoe", FullName: "Jane", Email: "jane@example.com", IsActive: true, RoleID: 2, DepartmentID: int64Ptr(10)}

	user, err := f.svc.Update(context.Background(), 1, dto.UpdateUserRequest{
		FullName: models.Some("Jane Q. Doe"),
		RoleID:   models.Some(int64(1)),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Q. Doe", user.FullName)
	assert.Equal(t, "admin", user.RoleName)
	assert.Equal(t, "jdoe", user.Username)
	assert.Equal(t, "AW001", user.EmpID)
	require.NotNil(t, user.DepartmentID)
	assert.Equal(t, int64(10), *user.DepartmentID)
	assert.Equal(t, []string{events.UserUpdated}, f.publisher.names())
}

func TestUserServiceUpdateClearsDepartment(t *testing.T) {
	f := newUserFixture(t, 3)
	f.repo.users[1] = &models.User{ID: 1, EmpID: "AW001", Username: "jdoe", Email: "jane@example.com", RoleID: 2, DepartmentID: int64Ptr(10)}

	user, err := f.svc.Update(context.Background(), 1, dto.UpdateUserRequest{DepartmentID: models.Some[*int64](nil)})
	require.NoError(t, err)
	assert.Nil(t, user.DepartmentID)
	assert.Nil(t, user.Department)
}

func TestUserServiceUpdatePassword(t *testing.T) {
	f := newUserFixture(t, 3)
	f.repo.users[1] = &models.User{ID: 1, Username: "jdoe", Email: "jane@example.com", RoleID: 2, PasswordHash: "old"}

	_, err := f.svc.Update(context.Background(), 1, dto.UpdateUserRequest{Password: models.Some("brand-new")})
	require.NoError(t, err)
	assert.True(t, testHasher().Verify("brand-new", f.repo.users[1].PasswordHash))
}

func TestUserServiceUpdateErrors(t *testing.T) {
	f := newUserFixture(t, 3)
	f.repo.users[1] = &models.User{ID: 1, Username: "jdoe", Email: "jane@example.com", RoleID: 2}
	f.refs.addValue("users", "email", "jane@example.com", 1).addValue("users", "email", "other@example.com", 2)

	_, err := f.svc.Update(context.Background(), 404, dto.UpdateUserRequest{})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = f.svc.Update(context.Background(), 1, dto.UpdateUserRequest{Email: models.Some("other@example.com")})
	assert.Equal(t, "email", appErrors.FromError(err).Field)

	// keeping one's own email is not a conflict
	_, err = f.svc.Update(context.Background(), 1, dto.UpdateUserRequest{Email: models.Some("jane@example.com")})
	assert.NoError(t, err)

	_, err = f.svc.Update(context.Background(), 1, dto.UpdateUserRequest{RoleID: models.Some(int64(0))})
	assert.ErrorIs(t, err, appErrors.ErrBadReference)

	_, err = f.svc.Update(context.Background(), 1, dto.UpdateUserRequest{DepartmentID: models.Some(int64Ptr(99))})
	assert.ErrorIs(t, err, appErrors.ErrBadReference)

	_, err = f.svc.Update(context.Background(), 1, dto.UpdateUserRequest{Username: models.Some("ab")})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestUserServicePublishFailureDoesNotFailWrite(t *testing.T) {
	f := newUserFixture(t, 3)
	f.publisher.err = errors.New("broker down")

	user, err := f.svc.Create(context.Background(), validCreateUser())
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.eventsPublished.WithLabelValues(events.UserCreated, "error")))
}

func TestUserServiceListAndGet(t *testing.T) {
	f := newUserFixture(t, 3)
	f.repo.users[1] = &models.User{ID: 1, Username: "a", RoleID: 1}
	f.repo.users[2] = &models.User{ID: 2, Username: "b", RoleID: 2}

	users, pagination, err := f.svc.List(context.Background(), models.UserFilter{Page: 1, PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, models.MaxPageSize, pagination.PageSize)
	assert.Equal(t, 2, pagination.TotalCount)

	_, err = f.svc.Get(context.Background(), 3)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestUserServiceUpdateRejectsNullActiveFlag(t *testing.T) {
	f := newUserFixture(t, 3)
	f.repo.users[1] = &models.User{ID: 1, EmpID: "AW001", Username: "bob", FullName: "Robert", Email: "bob@example.com", IsActive: true, RoleID: 2}

	var req dto.UpdateUserRequest
	require.NoError(t, json.Unmarshal([]byte(`{"full_name":"Bob","is_active":null}`), &req))

	_, err := f.svc.Update(context.Background(), 1, req)
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "is_active", appErrors.FromError(err).Field)
	assert.True(t, f.repo.users[1].IsActive)
	assert.Equal(t, "Robert", f.repo.users[1].FullName)
	assert.Empty(t, f.publisher.events)
}

func TestUserServiceRejectsPasswordOverBcryptLimit(t *testing.T) {
	f := newUserFixture(t, 3)
	long := strings.Repeat("é", 72)

	req := validCreateUser()
	req.Password = long
	_, err := f.svc.Create(context.Background(), req)
	require.ErrorIs(t, err, appErrors.ErrValidation)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "password", appErr.Field)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Empty(t, f.repo.users)

	f.repo.users[1] = &models.User{ID: 1, Username: "jdoe", Email: "jane@example.com", RoleID: 2, PasswordHash: "old"}
	_, err = f.svc.Update(context.Background(), 1, dto.UpdateUserRequest{Password: models.Some(long)})
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "password", appErrors.FromError(err).Field)
	assert.Equal(t, "old", f.repo.users[1].PasswordHash)

	req = validCreateUser()
	req.Password = strings.Repeat("é", 36)
	_, err = f.svc.Create(context.Background(), req)
	assert.NoError(t, err)
}

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aw-admin-api/internal/dto"
	"github.com/noah-isme/aw-admin-api/internal/models"
	appErrors "github.com/noah-isme/aw-admin-api/pkg/errors"
)

type memRoleRepo struct {
	rows      map[int64]*models.Role
	deleteErr error
	deleted   []int64
}

func (m *memRoleRepo) List(ctx context.Context, filter models.RoleFilter) ([]models.Role, int, error) {
	out := make([]models.Role, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (m *memRoleRepo) FindByID(ctx context.Context, id int64) (*models.Role, error) {
	if r, ok := m.rows[id]; ok {
		copy := *r
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memRoleRepo) Create(ctx context.Context, role *models.Role) error {
	role.ID = int64(len(m.rows) + 1)
	m.rows[role.ID] = role
	return nil
}

func (m *memRoleRepo) Update(ctx context.Context, role *models.Role) error {
	m.rows[role.ID] = role
	return nil
}

func (m *memRoleRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	delete(m.rows, id)
	return nil
}

func TestRoleServiceCreateAndUpdate(t *testing.T) {
	repo := &memRoleRepo{rows: map[int64]*models.Role{}}
	repo.rows[99] = &models.Role{ID: 99, Name: "admin"}
	refs := newFakeRefs().addValue("roles", "name", "admin", 99)
	validate, logger := testDeps()
	svc := NewRoleService(repo, newMockUserRepo(), NewReferenceValidator(refs), &fakeTx{}, validate, logger)

	_, err := svc.Create(context.Background(), dto.CreateRoleRequest{Name: " admin "})
	assert.Equal(t, "Role already exists", appErrors.FromError(err).Message)

	desc := "  writes posts  "
	role, err := svc.Create(context.Background(), dto.CreateRoleRequest{Name: "editor", Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "writes posts", *role.Description)

	updated, err := svc.Update(context.Background(), role.ID, dto.UpdateRoleRequest{Description: models.Some[*string](nil)})
	require.NoError(t, err)
	assert.Equal(t, "editor", updated.Name)
	assert.Nil(t, updated.Description)

	_, err = svc.Update(context.Background(), role.ID, dto.UpdateRoleRequest{Name: models.Some("admin")})
	require.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Equal(t, "name", appErrors.FromError(err).Field)
	assert.Equal(t, "editor", repo.rows[role.ID].Name)

	renamed, err := svc.Update(context.Background(), role.ID, dto.UpdateRoleRequest{Name: models.Some("editor")})
	require.NoError(t, err)
	assert.Equal(t, "editor", renamed.Name)
}

func TestRoleServiceDeleteInUse(t *testing.T) {
	repo := &memRoleRepo{rows: map[int64]*models.Role{1: {ID: 1, Name: "admin"}, 3: {ID: 3, Name: "unused"}}}
	users := newMockUserRepo()
	users.users[1] = &models.User{ID: 1, RoleID: 1}
	validate, logger := testDeps()
	svc := NewRoleService(repo, users, NewReferenceValidator(newFakeRefs()), &fakeTx{}, validate, logger)

	err := svc.Delete(context.Background(), 1)
	assert.ErrorIs(t, err, appErrors.ErrPreconditionFailed)
	assert.Empty(t, repo.deleted)

	assert.ErrorIs(t, svc.Delete(context.Background(), 42), appErrors.ErrNotFound)

	require.NoError(t, svc.Delete(context.Background(), 3))
	assert.Equal(t, []int64{3}, repo.deleted)
}

func TestRoleServiceDeleteForeignKeyRace(t *testing.T) {
	repo := &memRoleRepo{
		rows:      map[int64]*models.Role{3: {ID: 3, Name: "unused"}},
		deleteErr: &pq.Error{Code: "23503", Constraint: "users_role_id_fkey"},
	}
	validate, logger := testDeps()
	svc := NewRoleService(repo, newMockUserRepo(), NewReferenceValidator(newFakeRefs()), &fakeTx{}, validate, logger)

	assert.ErrorIs(t, svc.Delete(context.Background(), 3), appErrors.ErrPreconditionFailed)
}

type memDepartmentRepo struct {
	rows    map[int64]*models.Department
	deleted []int64
}

func (m *memDepartmentRepo) List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, int, error) {
	return nil, 0, nil
}

func (m *memDepartmentRepo) FindByID(ctx context.Context, id int64) (*models.Department, error) {
	if d, ok := m.rows[id]; ok {
		copy := *d
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memDepartmentRepo) Create(ctx context.Context, dept *models.Department) error {
	dept.ID = int64(len(m.rows) + 1)
	m.rows[dept.ID] = dept
	return nil
}

func (m *memDepartmentRepo) Update(ctx context.Context, dept *models.Department) error {
	m.rows[dept.ID] = dept
	return nil
}

func (m *memDepartmentRepo) Delete(ctx context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	delete(m.rows, id)
	return nil
}

func TestDepartmentServiceLifecycle(t *testing.T) {
	repo := &memDepartmentRepo{rows: map[int64]*models.Department{}}
	users := newMockUserRepo()
	refs := newFakeRefs().addValue("departments", "name", "Finance", 9)
	validate, logger := testDeps()
	svc := NewDepartmentService(repo, users, NewReferenceValidator(refs), &fakeTx{}, validate, logger)

	_, err := svc.Create(context.Background(), dto.CreateDepartmentRequest{Name: "Finance"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	_, err = svc.Create(context.Background(), dto.CreateDepartmentRequest{Name: "   "})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	dept, err := svc.Create(context.Background(), dto.CreateDepartmentRequest{Name: "Engineering"})
	require.NoError(t, err)
	assert.True(t, dept.IsActive)

	dept, err = svc.Update(context.Background(), dept.ID, dto.UpdateDepartmentRequest{IsActive: models.Some(false)})
	require.NoError(t, err)
	assert.False(t, dept.IsActive)
	assert.Equal(t, "Engineering", dept.Name)

	users.users[5] = &models.User{ID: 5, RoleID: 2, DepartmentID: int64Ptr(dept.ID)}
	users.users[6] = &models.User{ID: 6, RoleID: 2}
	require.NoError(t, svc.Delete(context.Background(), dept.ID))
	assert.Nil(t, users.users[5].DepartmentID)
	assert.Equal(t, []int64{dept.ID}, repo.deleted)

	assert.ErrorIs(t, svc.Delete(context.Background(), dept.ID), appErrors.ErrNotFound)
}

type memAuthorRepo struct {
	rows map[int64]*models.Author
}

func (m *memAuthorRepo) List(ctx context.Context, filter models.AuthorFilter) ([]models.Author, int, error) {
	return nil, 0, nil
}

func (m *memAuthorRepo) FindByID(ctx context.Context, id int64) (*models.Author, error) {
	if a, ok := m.rows[id]; ok {
		copy := *a
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memAuthorRepo) Create(ctx context.Context, author *models.Author) error {
	author.ID = int64(len(m.rows) + 1)
	m.rows[author.ID] = author
	return nil
}

func (m *memAuthorRepo) Update(ctx context.Context, author *models.Author) error {
	m.rows[author.ID] = author
	return nil
}

func (m *memAuthorRepo) Delete(ctx context.Context, id int64) error {
	delete(m.rows, id)
	return nil
}

type memCategoryRepo struct {
	rows map[int64]*models.Category
}

func (m *memCategoryRepo) List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, int, error) {
	return nil, 0, nil
}

func (m *memCategoryRepo) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	if c, ok := m.rows[id]; ok {
		copy := *c
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	category.ID = int64(len(m.rows) + 1)
	m.rows[category.ID] = category
	return nil
}

func (m *memCategoryRepo) Update(ctx context.Context, category *models.Category) error {
	m.rows[category.ID] = category
	return nil
}

func (m *memCategoryRepo) Delete(ctx context.Context, id int64) error {
	delete(m.rows, id)
	return nil
}

// postLinks records which authors and categories had their posts detached.
type postLinks struct {
	clearedAuthors    []int64
	clearedCategories []int64
}

func (p *postLinks) ClearAuthor(ctx context.Context, authorID int64) (int64, error) {
	p.clearedAuthors = append(p.clearedAuthors, authorID)
	return 1, nil
}

func (p *postLinks) ClearCategory(ctx context.Context, categoryID int64) (int64, error) {
	p.clearedCategories = append(p.clearedCategories, categoryID)
	return 1, nil
}

func TestAuthorServiceSlugDefaultsToName(t *testing.T) {
	repo := &memAuthorRepo{rows: map[int64]*models.Author{}}
	refs := newFakeRefs().addValue("authors", "slug", "jane-doe", 7)
	validate, logger := testDeps()
	svc := NewAuthorService(repo, &postLinks{}, NewReferenceValidator(refs), &fakeTx{}, validate, logger)

	author, err := svc.Create(context.Background(), dto.CreateAuthorRequest{Name: "Ada Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, "ada-lovelace", author.Slug)

	_, err = svc.Create(context.Background(), dto.CreateAuthorRequest{Name: "Jane Doe"})
	assert.Equal(t, "slug", appErrors.FromError(err).Field)

	author, err = svc.Create(context.Background(), dto.CreateAuthorRequest{Name: "Jane Doe", Slug: strPtr("jane-d")})
	require.NoError(t, err)
	assert.Equal(t, "jane-d", author.Slug)
}

func TestAuthorServiceUpdateAndDelete(t *testing.T) {
	repo := &memAuthorRepo{rows: map[int64]*models.Author{1: {ID: 1, Name: "Ada", Slug: "ada", Role: strPtr("Editor")}}}
	posts := &postLinks{}
	validate, logger := testDeps()
	svc := NewAuthorService(repo, posts, NewReferenceValidator(newFakeRefs()), &fakeTx{}, validate, logger)

	author, err := svc.Update(context.Background(), 1, dto.UpdateAuthorRequest{Role: models.Some[*string](nil), Bio: models.Some(strPtr("Mathematician"))})
	require.NoError(t, err)
	assert.Nil(t, author.Role)
	assert.Equal(t, "Mathematician", *author.Bio)
	assert.Equal(t, "ada", author.Slug)

	_, err = svc.Update(context.Background(), 1, dto.UpdateAuthorRequest{Slug: models.Some("")})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.Equal(t, []int64{1}, posts.clearedAuthors)
	assert.ErrorIs(t, svc.Delete(context.Background(), 1), appErrors.ErrNotFound)
}

func TestCategoryServiceUniqueness(t *testing.T) {
	repo := &memCategoryRepo{rows: map[int64]*models.Category{}}
	refs := newFakeRefs().
		addValue("categories", "slug", "news", 1).
		addValue("categories", "name", "Guides", 2)
	validate, logger := testDeps()
	svc := NewCategoryService(repo, &postLinks{}, NewReferenceValidator(refs), &fakeTx{}, validate, logger)

	_, err := svc.Create(context.Background(), dto.CreateCategoryRequest{Name: "News"})
	assert.Equal(t, "Category slug already exists", appErrors.FromError(err).Message)

	_, err = svc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Guides", Slug: strPtr("how-to")})
	assert.Equal(t, "Category name already exists", appErrors.FromError(err).Message)

	category, err := svc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Release Notes"})
	require.NoError(t, err)
	assert.Equal(t, "release-notes", category.Slug)
}

func TestCategoryServiceDeleteDetachesPosts(t *testing.T) {
	repo := &memCategoryRepo{rows: map[int64]*models.Category{4: {ID: 4, Name: "Old", Slug: "old"}}}
	posts := &postLinks{}
	validate, logger := testDeps()
	svc := NewCategoryService(repo, posts, NewReferenceValidator(newFakeRefs()), &fakeTx{}, validate, logger)

	category, err := svc.Update(context.Background(), 4, dto.UpdateCategoryRequest{Name: models.Some("Archive")})
	require.NoError(t, err)
	assert.Equal(t, "old", category.Slug)

	require.NoError(t, svc.Delete(context.Background(), 4))
	assert.Equal(t, []int64{4}, posts.clearedCategories)
	assert.Empty(t, repo.rows)
}

func TestDepartmentServiceUpdateRejectsNullActiveFlag(t *testing.T) {
	repo := &memDepartmentRepo{rows: map[int64]*models.Department{4: {ID: 4, Name: "Sales", IsActive: true}}}
	validate, logger := testDeps()
	svc := NewDepartmentService(repo, newMockUserRepo(), NewReferenceValidator(newFakeRefs()), &fakeTx{}, validate, logger)

	var req dto.UpdateDepartmentRequest
	require.NoError(t, json.Unmarshal([]byte(`{"is_active":null}`), &req))

	_, err := svc.Update(context.Background(), 4, req)
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "is_active", appErrors.FromError(err).Field)
	assert.True(t, repo.rows[4].IsActive)
}

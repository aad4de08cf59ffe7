package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aw-admin-api/internal/dto"
	"github.com/noah-isme/aw-admin-api/internal/models"
	appErrors "github.com/noah-isme/aw-admin-api/pkg/errors"
)

type roleServiceMock struct {
	deleteErr error
}

func (m *roleServiceMock) List(ctx context.Context, filter models.RoleFilter) ([]models.Role, *models.Pagination, error) {
	return []models.Role{{ID: 1, Name: "admin"}}, models.NewPagination(filter.Page, filter.PageSize, models.DefaultPageSize, 1), nil
}

func (m *roleServiceMock) Get(ctx context.Context, id int64) (*models.Role, error) {
	return &models.Role{ID: id, Name: "admin"}, nil
}

func (m *roleServiceMock) Create(ctx context.Context, req dto.CreateRoleRequest) (*models.Role, error) {
	return &models.Role{ID: 5, Name: req.Name}, nil
}

func (m *roleServiceMock) Update(ctx context.Context, id int64, req dto.UpdateRoleRequest) (*models.Role, error) {
	return &models.Role{ID: id}, nil
}

func (m *roleServiceMock) Delete(ctx context.Context, id int64) error {
	return m.deleteErr
}

func TestRoleHandlerDeleteStatuses(t *testing.T) {
	svc := &roleServiceMock{}
	h := NewRoleHandler(svc)

	c, w := newTestContext(http.MethodDelete, "/roles/3", "")
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	h.Delete(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)

	svc.deleteErr = appErrors.Clone(appErrors.ErrPreconditionFailed, "role is assigned to users")
	c, w = newTestContext(http.MethodDelete, "/roles/1", "")
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	h.Delete(c)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)

	svc.deleteErr = errors.New("driver: bad connection")
	c, w = newTestContext(http.MethodDelete, "/roles/1", "")
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	h.Delete(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "bad connection")
}

func TestRoleHandlerCreate(t *testing.T) {
	h := NewRoleHandler(&roleServiceMock{})
	c, w := newTestContext(http.MethodPost, "/roles", `{"name":"editor"}`)
	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"name":"editor"`)
}

type departmentServiceMock struct {
	lastFilter models.DepartmentFilter
}

func (m *departmentServiceMock) List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, *models.Pagination, error) {
	m.lastFilter = filter
	return nil, models.NewPagination(filter.Page, filter.PageSize, models.DefaultPageSize, 0), nil
}

func (m *departmentServiceMock) Get(ctx context.Context, id int64) (*models.Department, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
}

func (m *departmentServiceMock) Create(ctx context.Context, req dto.CreateDepartmentRequest) (*models.Department, error) {
	return &models.Department{ID: 1, Name: req.Name}, nil
}

func (m *departmentServiceMock) Update(ctx context.Context, id int64, req dto.UpdateDepartmentRequest) (*models.Department, error) {
	return &models.Department{ID: id}, nil
}

func (m *departmentServiceMock) Delete(ctx context.Context, id int64) error { return nil }

func TestDepartmentHandlerList(t *testing.T) {
	svc := &departmentServiceMock{}
	h := NewDepartmentHandler(svc)

	c, w := newTestContext(http.MethodGet, "/departments?is_active=true&search=fin", "")
	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastFilter.IsActive)
	assert.True(t, *svc.lastFilter.IsActive)
	assert.Equal(t, "fin", svc.lastFilter.Search)

	c, w = newTestContext(http.MethodGet, "/departments/9", "")
	c.Params = gin.Params{{Key: "id", Value: "9"}}
	h.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type authorServiceMock struct{}

func (authorServiceMock) List(ctx context.Context, filter models.AuthorFilter) ([]models.Author, *models.Pagination, error) {
	return nil, nil, nil
}

func (authorServiceMock) Get(ctx context.Context, id int64) (*models.Author, error) {
	return &models.Author{ID: id, Slug: "ada"}, nil
}

func (authorServiceMock) Create(ctx context.Context, req dto.CreateAuthorRequest) (*models.Author, error) {
	return nil, appErrors.Conflict("slug", "Author slug already exists")
}

func (authorServiceMock) Update(ctx context.Context, id int64, req dto.UpdateAuthorRequest) (*models.Author, error) {
	return &models.Author{ID: id}, nil
}

func (authorServiceMock) Delete(ctx context.Context, id int64) error { return nil }

func TestAuthorHandler(t *testing.T) {
	h := NewAuthorHandler(authorServiceMock{})

	c, w := newTestContext(http.MethodPost, "/authors", `{"name":"Ada"}`)
	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "slug", decode(t, w).Error.Field)

	c, w = newTestContext(http.MethodGet, "/authors/0", "")
	c.Params = gin.Params{{Key: "id", Value: "0"}}
	h.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type categoryServiceMock struct {
	deleted int64
}

func (m *categoryServiceMock) List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, *models.Pagination, error) {
	return []models.Category{{ID: 1, Slug: "news"}}, models.NewPagination(1, 0, models.DefaultPageSize, 1), nil
}

func (m *categoryServiceMock) Get(ctx context.Context, id int64) (*models.Category, error) {
	return &models.Category{ID: id}, nil
}

func (m *categoryServiceMock) Create(ctx context.Context, req dto.CreateCategoryRequest) (*models.Category, error) {
	return &models.Category{ID: 1, Name: req.Name}, nil
}

func (m *categoryServiceMock) Update(ctx context.Context, id int64, req dto.UpdateCategoryRequest) (*models.Category, error) {
	return &models.Category{ID: id}, nil
}

func (m *categoryServiceMock) Delete(ctx context.Context, id int64) error {
	m.deleted = id
	return nil
}

func TestCategoryHandler(t *testing.T) {
	svc := &categoryServiceMock{}
	h := NewCategoryHandler(svc)

	c, w := newTestContext(http.MethodGet, "/categories", "")
	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode(t, w).Pagination.TotalCount)

	c, w = newTestContext(http.MethodDelete, "/categories/4", "")
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	h.Delete(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(4), svc.deleted)
}

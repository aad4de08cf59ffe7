package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aw-admin-api/internal/dto"
	"github.com/noah-isme/aw-admin-api/internal/models"
	"github.com/noah-isme/aw-admin-api/pkg/response"
)

type blogService interface {
	List(ctx context.Context, filter models.BlogFilter) ([]models.Blog, *models.Pagination, error)
	Get(ctx context.Context, slug string) (*models.Blog, error)
	Create(ctx context.Context, req dto.CreateBlogRequest) (*models.Blog, error)
	Update(ctx context.Context, slug string, req dto.UpdateBlogRequest) (*models.Blog, error)
	Delete(ctx context.Context, slug string) error
}

// BlogHandler exposes blog posts addressed by slug.
type BlogHandler struct {
	service blogService
}

// NewBlogHandler constructs a BlogHandler.
func NewBlogHandler(svc blogService) *BlogHandler {
	return &BlogHandler{service: svc}
}

// List godoc
// @Summary List blog posts
// @Description Newest first. Only published posts unless published=false
// @Tags Blogs
// @Produce json
// @Param q query string false "Title or deck contains"
// @Param category query string false "Category slug"
// @Param author query string false "Author slug"
// @Param published query bool false "Published filter (default true)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} response.Envelope
// @Router /blogs [get]
func (h *BlogHandler) List(c *gin.Context) {
	filter := models.BlogFilter{
		Query:        strings.TrimSpace(c.Query("q")),
		CategorySlug: strings.TrimSpace(c.Query("category")),
		AuthorSlug:   strings.TrimSpace(c.Query("author")),
	}
	filter.Page, filter.PageSize = pageParams(c)
	published, err := queryBool(c, "published")
	if err != nil {
		response.Error(c, err)
		return
	}
	filter.Published = published

	blogs, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blogs, pagination)
}

// Get godoc
// @Summary Get blog post
// @Tags Blogs
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /blogs/{slug} [get]
func (h *BlogHandler) Get(c *gin.Context) {
	blog, err := h.service.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blog, nil)
}

// Create godoc
// @Summary Create blog post
// @Description Without a slug one is generated from the title
// @Tags Blogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateBlogRequest true "Post payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /blogs [post]
func (h *BlogHandler) Create(c *gin.Context) {
	var req dto.CreateBlogRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	blog, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, blog)
}

// Update godoc
// @Summary Update blog post
// @Tags Blogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Post slug"
// @Param payload body dto.UpdateBlogRequest true "Post payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /blogs/{slug} [put]
func (h *BlogHandler) Update(c *gin.Context) {
	var req dto.UpdateBlogRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	blog, err := h.service.Update(c.Request.Context(), c.Param("slug"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blog, nil)
}

// Delete godoc
// @Summary Delete blog post
// @Tags Blogs
// @Security BearerAuth
// @Param slug path string true "Post slug"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /blogs/{slug} [delete]
func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

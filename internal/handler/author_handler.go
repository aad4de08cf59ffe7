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

type authorService interface {
	List(ctx context.Context, filter models.AuthorFilter) ([]models.Author, *models.Pagination, error)
	Get(ctx context.Context, id int64) (*models.Author, error)
	Create(ctx context.Context, req dto.CreateAuthorRequest) (*models.Author, error)
	Update(ctx context.Context, id int64, req dto.UpdateAuthorRequest) (*models.Author, error)
	Delete(ctx context.Context, id int64) error
}

// AuthorHandler exposes author endpoints.
type AuthorHandler struct {
	service authorService
}

// NewAuthorHandler constructs a AuthorHandler.
func NewAuthorHandler(svc authorService) *AuthorHandler {
	return &AuthorHandler{service: svc}
}

// List godoc
// @Summary List authors
// @Tags Authors
// @Produce json
// @Param search query string false "Name or slug contains"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /authors [get]
func (h *AuthorHandler) List(c *gin.Context) {
	filter := models.AuthorFilter{Search: strings.TrimSpace(c.Query("search"))}
	filter.Page, filter.PageSize = pageParams(c)

	authors, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, authors, pagination)
}

// Get godoc
// @Summary Get author
// @Tags Authors
// @Produce json
// @Param id path int true "Author ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /authors/{id} [get]
func (h *AuthorHandler) Get(c *gin.Context) {
	id, err := pathID(c, "author")
	if err != nil {
		response.Error(c, err)
		return
	}
	author, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, author, nil)
}

// Create godoc
// @Summary Create author
// @Tags Authors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateAuthorRequest true "Author payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /authors [post]
func (h *AuthorHandler) Create(c *gin.Context) {
	var req dto.CreateAuthorRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	author, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, author)
}

// Update godoc
// @Summary Update author
// @Tags Authors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Author ID"
// @Param payload body dto.UpdateAuthorRequest true "Author payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /authors/{id} [put]
func (h *AuthorHandler) Update(c *gin.Context) {
	id, err := pathID(c, "author")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateAuthorRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	author, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, author, nil)
}

// Delete godoc
// @Summary Delete author
// @Description Posts are kept with author_id cleared
// @Tags Authors
// @Security BearerAuth
// @Param id path int true "Author ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /authors/{id} [delete]
func (h *AuthorHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "author")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

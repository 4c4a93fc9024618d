package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vwmedia/siteutil/internal/models"
	"github.com/vwmedia/siteutil/internal/services"
	apperrors "github.com/vwmedia/siteutil/pkg/errors"
	"github.com/vwmedia/siteutil/pkg/response"
)

// PostHandler exposes content management endpoints.
type PostHandler struct {
	svc       *services.PostService
	permalink func(slug string) string
}

// NewPostHandler constructs the handler. permalink renders the public URL of
// each post and may be nil.
func NewPostHandler(svc *services.PostService, permalink func(string) string) (*PostHandler, error) {
	if svc == nil {
		return nil, errors.New("post handler: service is required")
	}
	return &PostHandler{svc: svc, permalink: permalink}, nil
}

type postDTO struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Status     string `json:"status"`
	Permalink  string `json:"permalink,omitempty"`
	ModifiedAt string `json:"modified_at"`
}

func (h *PostHandler) mapPost(post *models.Post) postDTO {
	dto := postDTO{
		ID:     post.ID,
		Type:   post.Type,
		Title:  post.Title,
		Slug:   post.Slug,
		Status: post.Status,
	}
	if !post.ModifiedAt.IsZero() {
		dto.ModifiedAt = post.ModifiedAt.UTC().Format(time.RFC3339)
	}
	if h.permalink != nil {
		dto.Permalink = h.permalink(post.Slug)
	}
	return dto
}

// GET /api/posts?status=publish
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.svc.List(c.Request.Context(), strings.TrimSpace(c.Query("status")))
	if err != nil {
		response.Error(c, apperrors.Wrap(err, "list posts"))
		return
	}

	out := make([]postDTO, 0, len(posts))
	for i := range posts {
		out = append(out, h.mapPost(&posts[i]))
	}
	response.SuccessWithMeta(c, http.StatusOK, out, &response.Meta{Total: len(out)})
}

// GET /api/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, postError(err, "load post"))
		return
	}
	response.Success(c, http.StatusOK, h.mapPost(post))
}

// POST /api/posts
func (h *PostHandler) Create(c *gin.Context) {
	var payload services.PostInput
	if !bindAndValidate(c, &payload) {
		return
	}

	post, err := h.svc.Create(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, postError(err, "create post"))
		return
	}
	response.Success(c, http.StatusCreated, h.mapPost(post))
}

// PUT /api/posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	var payload services.PostInput
	if !bindAndValidate(c, &payload) {
		return
	}

	post, err := h.svc.Update(c.Request.Context(), c.Param("id"), payload)
	if err != nil {
		response.Error(c, postError(err, "update post"))
		return
	}
	response.Success(c, http.StatusOK, h.mapPost(post))
}

// DELETE /api/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, postError(err, "delete post"))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func postError(err error, op string) error {
	switch {
	case errors.Is(err, services.ErrPostNotFound):
		return apperrors.ErrNotFound
	case errors.Is(err, services.ErrPostSlugTaken):
		return apperrors.ErrConflict
	case errors.Is(err, services.ErrPostInvalid):
		return apperrors.NewBadRequest(err.Error())
	default:
		return apperrors.Wrap(err, op)
	}
}

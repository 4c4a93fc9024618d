package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/vwmedia/siteutil/internal/services"
	apperrors "github.com/vwmedia/siteutil/pkg/errors"
	"github.com/vwmedia/siteutil/pkg/response"
)

// SitemapHandler serves the generated sitemap and lets admins rebuild it.
type SitemapHandler struct {
	svc *services.SitemapService
}

// NewSitemapHandler constructs the handler once the service is supplied.
func NewSitemapHandler(svc *services.SitemapService) (*SitemapHandler, error) {
	if svc == nil {
		return nil, errors.New("sitemap handler: service is required")
	}
	return &SitemapHandler{svc: svc}, nil
}

// GET /sitemap.xml
func (h *SitemapHandler) Serve(c *gin.Context) {
	if _, err := os.Stat(h.svc.Path()); errors.Is(err, fs.ErrNotExist) {
		response.Error(c, apperrors.ErrNotFound)
		return
	}
	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.File(h.svc.Path())
}

// POST /api/sitemap/rebuild
func (h *SitemapHandler) Rebuild(c *gin.Context) {
	count, err := h.svc.Build(c.Request.Context())
	if err != nil {
		response.Error(c, apperrors.Wrap(err, "rebuild sitemap"))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"urls": count, "path": h.svc.Path()})
}

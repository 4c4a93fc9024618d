package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vwmedia/siteutil/internal/app"
	"github.com/vwmedia/siteutil/internal/handlers"
)

func registerHealthRoutes(r *gin.Engine, cfg *app.Config, handler *handlers.HealthHandler) {
	if !cfg.Monitoring.Health.Enabled {
		r.GET("/health", disabledHealthHandler)
		r.GET("/health/live", disabledHealthHandler)
		r.GET("/health/ready", disabledHealthHandler)
		return
	}

	r.GET("/health", handler.Health)
	r.GET("/health/live", handler.Live)
	r.GET("/health/ready", handler.Ready)
}

func disabledHealthHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"status":  "disabled",
	})
}

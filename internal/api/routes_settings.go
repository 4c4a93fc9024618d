package api

import (
	"github.com/gin-gonic/gin"

	"github.com/vwmedia/siteutil/internal/handlers"
)

func registerSettingsRoutes(api *gin.RouterGroup, handler *handlers.SettingsHandler) {
	settings := api.Group("/settings")
	{
		settings.GET("", handler.Get)
		settings.POST("", handler.Update)
		settings.POST("/smtp/test", handler.SendTestEmail)
	}
}

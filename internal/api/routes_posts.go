package api

import (
	"github.com/gin-gonic/gin"

	"github.com/vwmedia/siteutil/internal/handlers"
)

func registerPostRoutes(api *gin.RouterGroup, handler *handlers.PostHandler) {
	posts := api.Group("/posts")
	{
		posts.GET("", handler.List)
		posts.POST("", handler.Create)
		posts.GET("/:id", handler.Get)
		posts.PUT("/:id", handler.Update)
		posts.DELETE("/:id", handler.Delete)
	}
}

package routes

import (
	"github.com/gin-gonic/gin"

	"launchpad/internal/handlers"
)

// SetupImageRoutes sets up the image upload and retrieval routes
func SetupImageRoutes(api *gin.RouterGroup, h *handlers.ImageHandler) {
	if h == nil {
		return
	}
	images := api.Group("/images")
	{
		images.POST("/upload", h.Upload)
		images.GET("/:uri", h.Get)
	}
}

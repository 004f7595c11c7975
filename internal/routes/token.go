package routes

import (
	"github.com/gin-gonic/gin"

	"launchpad/internal/handlers"
)

// SetupTokenRoutes sets up all routes related to token lifecycle management
func SetupTokenRoutes(api *gin.RouterGroup, h *handlers.TokenHandler) {
	if h == nil {
		return
	}
	tokens := api.Group("/tokens")
	{
		tokens.POST("/create", h.CreateToken)
		tokens.GET("", h.ListTokens)
		tokens.GET("/search/:query", h.SearchTokens)
		tokens.GET("/:mint", h.GetToken)
		tokens.PUT("/:mint", h.UpdateToken)
		tokens.GET("/:mint/transactions", h.ListTransactions)
		tokens.POST("/:mint/transactions", h.RecordTransaction)
		tokens.GET("/:mint/pairs", h.ListPairs)
		tokens.GET("/:mint/graduations", h.ListGraduations)
		tokens.POST("/:mint/graduate", h.Graduate)
		tokens.GET("/:mint/verify", h.VerifyContract)
	}
}

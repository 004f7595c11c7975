package routes

import (
	"github.com/gin-gonic/gin"

	"launchpad/internal/handlers"
)

// SetupBlockchainRoutes sets up the chain verification, analytics and sync routes
func SetupBlockchainRoutes(api *gin.RouterGroup, h *handlers.BlockchainHandler) {
	if h == nil {
		return
	}
	chain := api.Group("/blockchain")
	{
		chain.GET("/verify/token/:mint", h.VerifyToken)
		chain.GET("/verify/transaction/:signature", h.VerifyTransaction)
		chain.GET("/network/info", h.NetworkInfo)
		chain.GET("/analytics/platform", h.PlatformAnalytics)
		chain.POST("/sync/token/:mint", h.SyncToken)
		chain.GET("/explorer/:address", h.ExplorerLinks)
	}
}

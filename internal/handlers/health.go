package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"launchpad/pkg/solana"
)

// HealthChecker is implemented by solana.Client.
type HealthChecker interface {
	Health(ctx context.Context) solana.EndpointHealth
}

// HealthHandler reports store and chain reachability.
type HealthHandler struct {
	pingDB func(ctx context.Context) error
	chain  HealthChecker
}

func NewHealthHandler(pingDB func(ctx context.Context) error, chain HealthChecker) *HealthHandler {
	return &HealthHandler{pingDB: pingDB, chain: chain}
}

// Live always answers ok once the process serves requests.
func (h *HealthHandler) Live(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Ready reports 503 when the database is unreachable. An unhealthy RPC
// endpoint only degrades the status.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, code := "healthy", http.StatusOK
	database := "ok"
	if h.pingDB != nil {
		if err := h.pingDB(ctx); err != nil {
			database = err.Error()
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
	}

	body := gin.H{"status": status, "database": database, "timestamp": time.Now().UTC()}
	if h.chain != nil {
		rpc := h.chain.Health(ctx)
		body["solana_rpc"] = rpc
		if !rpc.OK && code == http.StatusOK {
			body["status"] = "degraded"
		}
	}
	c.JSON(code, body)
}

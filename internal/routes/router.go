package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"launchpad/internal/events"
	"launchpad/internal/handlers"
	"launchpad/internal/metrics"
	"launchpad/internal/middleware"
)

// Options wires the router to its handlers.
type Options struct {
	AllowedOrigins []string
	RateLimit      middleware.RateLimiterConfig
	StaticDir      string

	Tokens     *handlers.TokenHandler
	Images     *handlers.ImageHandler
	Blockchain *handlers.BlockchainHandler
	Health     *handlers.HealthHandler
	Hub        *events.Hub
}

// SetupRouter builds the engine with every route group under /api/v1.
// ctx bounds the background work of the middleware.
func SetupRouter(ctx context.Context, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog())
	r.Use(middleware.CORS(opts.AllowedOrigins))

	if opts.Health != nil {
		r.GET("/health", opts.Health.Live)
	}
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	if opts.StaticDir != "" {
		r.StaticFS("/static/images", http.Dir(opts.StaticDir))
	}

	api := r.Group("/api/v1")
	if opts.RateLimit.RequestsPerSecond > 0 {
		api.Use(middleware.RateLimiterMiddleware(ctx, opts.RateLimit))
	}
	if opts.Health != nil {
		api.GET("/health", opts.Health.Ready)
	}
	if opts.Hub != nil {
		api.GET("/ws/events", gin.WrapF(opts.Hub.ServeWS))
	}

	SetupTokenRoutes(api, opts.Tokens)
	SetupImageRoutes(api, opts.Images)
	SetupBlockchainRoutes(api, opts.Blockchain)

	return r
}

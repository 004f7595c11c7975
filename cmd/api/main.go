package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"launchpad/internal/app"
	"launchpad/internal/handlers"
	"launchpad/internal/middleware"
	"launchpad/internal/routes"
	"launchpad/pkg/config"
)

func main() {
	migrateUp := flag.Bool("migrate", false, "apply SQL migrations before serving (postgres only)")
	rollback := flag.Bool("rollback", false, "roll back the last SQL migration and exit (postgres only)")
	flag.Parse()

	settings := config.Load()
	config.SetupLogger(settings)
	if settings.GinMode != "" {
		gin.SetMode(settings.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, settings)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	defer a.Close()

	if *rollback {
		if err := config.RollbackMigration(a.DB, settings.MigrationsDir); err != nil {
			log.Fatalf("rollback failed: %v", err)
		}
		return
	}
	if *migrateUp {
		if err := config.ExecuteMigrations(a.DB, settings.MigrationsDir); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}

	staticDir := ""
	if settings.IPFSAPI == "" {
		staticDir = settings.UploadDir
	}
	router := routes.SetupRouter(ctx, routes.Options{
		AllowedOrigins: settings.AllowedOrigins,
		RateLimit: middleware.RateLimiterConfig{
			RequestsPerSecond: settings.RateLimitRPS,
			Burst:             settings.RateLimitBurst,
		},
		StaticDir:  staticDir,
		Tokens:     handlers.NewTokenHandler(a.Tokens),
		Images:     handlers.NewImageHandler(a.Images),
		Blockchain: handlers.NewBlockchainHandler(a.Chain, a.Tokens),
		Health:     handlers.NewHealthHandler(a.PingDB, a.Chain),
		Hub:        a.Hub,
	})

	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("%s API listening on :%s (network %s)", settings.PlatformName, settings.Port, a.Chain.Network())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
	}
}

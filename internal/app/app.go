package app

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"launchpad/internal/cache"
	"launchpad/internal/events"
	"launchpad/internal/images"
	"launchpad/internal/services"
	"launchpad/internal/storage/gormstore"
	"launchpad/pkg/config"
	"launchpad/pkg/solana"
)

// App holds the long-lived dependencies shared by the binaries.
type App struct {
	Settings config.Settings
	DB       *gorm.DB
	Chain    *solana.Client
	Tokens   *services.TokenService
	Images   *images.Service
	Hub      *events.Hub
	AMQP     *amqp.Connection

	closers []func()
}

// New connects the store, the broker and the cache and wires the services.
// The broker and the cache are optional and skipped when not configured.
func New(ctx context.Context, s config.Settings) (*App, error) {
	a := &App{Settings: s}

	db, err := config.OpenDB(s)
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	store := gormstore.New(db)

	a.Chain = solana.NewClient(s.SolanaRPCURL, solana.WithTimeout(s.SolanaRPCTimeout))
	a.Hub = events.NewHub(s.AllowedOrigins)
	a.closers = append(a.closers, a.Hub.Close)
	publishers := events.Fanout{a.Hub}

	if s.RabbitMQEnabled() {
		conn, err := config.DialRabbitMQ(ctx, s)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.AMQP = conn
		a.closers = append(a.closers, func() { conn.Close() })

		pub, err := config.NewPublisher(conn, s.EventsQueue)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { pub.Close() })
		publishers = append(publishers, events.NewQueuePublisher(pub))
	} else {
		log.Info("RabbitMQ not configured, lifecycle events stay in process")
	}

	var analytics services.AnalyticsCache
	if s.RedisURL != "" {
		rdb, err := config.OpenRedis(ctx, s)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { rdb.Close() })
		analytics = cache.NewAnalyticsCache(rdb, s.AnalyticsCacheTTL)
	}

	a.Tokens = services.NewTokenService(store, a.Chain, services.Config{
		GraduationThreshold: s.GraduationThreshold,
	}, publishers, analytics)

	var blobs images.BlobStore
	if s.IPFSAPI != "" {
		blobs = images.NewIPFSStore(s.IPFSAPI)
		log.Infof("storing images on IPFS node %s", s.IPFSAPI)
	} else {
		disk, err := images.NewDiskStore(s.UploadDir)
		if err != nil {
			a.Close()
			return nil, err
		}
		blobs = disk
	}
	a.Images = images.NewService(store, blobs, s.APIBaseURL, s.MaxFileSize)

	return a, nil
}

// PingDB checks the database connection.
func (a *App) PingDB(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

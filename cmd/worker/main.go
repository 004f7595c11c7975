package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"launchpad/internal/app"
	"launchpad/internal/events"
	"launchpad/internal/services"
	"launchpad/pkg/config"
)

type syncer interface {
	SyncFromChain(ctx context.Context, mint string) (*services.SyncResult, error)
}

// handleEvent syncs newly created tokens from chain. A mint the chain does not
// know yet, or a token already gone from the store, is acknowledged; only
// upstream failures are handed back for a retry.
func handleEvent(svc syncer) func(context.Context, []byte) error {
	return func(ctx context.Context, body []byte) error {
		e, err := events.Decode(body)
		if err != nil {
			log.Warnf("> dropping malformed message: %v", err)
			return nil
		}
		if e.Type != events.TokenCreated {
			return nil
		}

		res, err := svc.SyncFromChain(ctx, e.MintAddress)
		var notFound *services.NotFoundError
		var invalid *services.ValidationError
		switch {
		case errors.As(err, &notFound), errors.As(err, &invalid):
			log.WithField("mint", e.MintAddress).Infof("skipping sync: %v", err)
			return nil
		case err != nil:
			return err
		}
		log.WithFields(log.Fields{"mint": e.MintAddress, "fields": res.UpdatedFields}).Info("token verified after creation")
		return nil
	}
}

func main() {
	purge := flag.Bool("purge", false, "drop pending lifecycle messages before consuming")
	flag.Parse()

	settings := config.Load()
	config.SetupLogger(settings)
	if !settings.RabbitMQEnabled() {
		log.Fatal("RABBITMQ_HOST is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, settings)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	defer a.Close()

	if *purge {
		if err := config.PurgeQueue(a.AMQP, settings.EventsQueue); err != nil {
			log.Fatalf("failed to purge queue: %v", err)
		}
	}

	consumer, err := config.NewConsumer(a.AMQP, settings.EventsQueue)
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}
	defer consumer.Close()

	log.Infof("token lifecycle worker started on queue %s", settings.EventsQueue)
	if err := consumer.Consume(ctx, handleEvent(a.Tokens)); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("consumer stopped: %v", err)
	}
}

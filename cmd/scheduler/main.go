package main

import (
	"context"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"launchpad/internal/app"
	"launchpad/pkg/config"
	"launchpad/schedule"
)

func main() {
	settings := config.Load()
	config.SetupLogger(settings)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, settings)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	defer a.Close()

	job := schedule.NewVerifyJob(a.Tokens, settings.VerifyStaleAfter, settings.VerifyBatch)
	c, err := schedule.Start(ctx, settings.VerifySchedule, job)
	if err != nil {
		log.Fatalf("failed to schedule verification sweep: %v", err)
	}

	<-ctx.Done()
	log.Info("stopping scheduler")
	<-c.Stop().Done()
}

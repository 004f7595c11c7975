package schedule

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"launchpad/internal/services"
)

// Resyncer re-verifies tokens whose chain data went stale.
type Resyncer interface {
	ResyncStale(ctx context.Context, olderThan time.Duration, limit int) (*services.ResyncReport, error)
}

// VerifyJob re-verifies a batch of stale tokens per run. Runs never overlap;
// a tick that fires while the previous run is still going is skipped.
type VerifyJob struct {
	svc        Resyncer
	staleAfter time.Duration
	batch      int
	running    atomic.Bool
}

func NewVerifyJob(svc Resyncer, staleAfter time.Duration, batch int) *VerifyJob {
	return &VerifyJob{svc: svc, staleAfter: staleAfter, batch: batch}
}

// Run performs one sweep. It reports false when skipped.
func (j *VerifyJob) Run(ctx context.Context) bool {
	if !j.running.CompareAndSwap(false, true) {
		log.Warn("> previous verification sweep still running, skipping")
		return false
	}
	defer j.running.Store(false)

	start := time.Now()
	report, err := j.svc.ResyncStale(ctx, j.staleAfter, j.batch)
	if err != nil {
		log.Errorf("> verification sweep failed: %v", err)
		return true
	}
	log.WithFields(log.Fields{
		"checked":  report.Checked,
		"synced":   report.Synced,
		"failed":   len(report.Failed),
		"duration": time.Since(start).String(),
	}).Info("verification sweep finished")
	return true
}

// Start schedules job on spec (six fields, seconds first) and starts the cron.
func Start(ctx context.Context, spec string, job *VerifyJob) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(spec, func() { job.Run(ctx) }); err != nil {
		return nil, err
	}
	c.Start()
	log.Infof("verification sweep scheduled: %s", spec)
	return c, nil
}

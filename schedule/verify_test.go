package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpad/internal/services"
)

type fakeResyncer struct {
	mu      sync.Mutex
	calls   int
	limit   int
	older   time.Duration
	release chan struct{}
	err     error
}

func (f *fakeResyncer) ResyncStale(_ context.Context, olderThan time.Duration, limit int) (*services.ResyncReport, error) {
	f.mu.Lock()
	f.calls++
	f.limit, f.older = limit, olderThan
	release := f.release
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &services.ResyncReport{Checked: 2, Synced: 1, Failed: []string{"X"}}, nil
}

func TestVerifyJobRun(t *testing.T) {
	f := &fakeResyncer{}
	job := NewVerifyJob(f, time.Hour, 25)

	assert.True(t, job.Run(context.Background()))
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, 25, f.limit)
	assert.Equal(t, time.Hour, f.older)

	f.err = errors.New("store down")
	assert.True(t, job.Run(context.Background()))
}

func TestVerifyJobSkipsOverlap(t *testing.T) {
	f := &fakeResyncer{release: make(chan struct{})}
	job := NewVerifyJob(f, time.Hour, 10)

	done := make(chan bool)
	go func() { done <- job.Run(context.Background()) }()
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.calls == 1
	}, time.Second, 5*time.Millisecond)

	assert.False(t, job.Run(context.Background()))
	close(f.release)
	assert.True(t, <-done)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	_, err := Start(context.Background(), "every now and then", NewVerifyJob(&fakeResyncer{}, time.Hour, 1))
	assert.Error(t, err)
}

func TestStartRunsJob(t *testing.T) {
	f := &fakeResyncer{}
	c, err := Start(context.Background(), "* * * * * *", NewVerifyJob(f, time.Minute, 5))
	require.NoError(t, err)
	defer c.Stop()

	assert.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.calls > 0
	}, 3*time.Second, 50*time.Millisecond)
}

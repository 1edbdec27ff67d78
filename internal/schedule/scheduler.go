package schedule

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a named unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// CronScheduler runs jobs on cron expressions. A job instance never
// overlaps itself: a tick fired while the previous run is still going is
// skipped.
type CronScheduler struct {
	cron    *cron.Cron
	entries map[string]cron.EntryID
	ctx     context.Context
}

func NewCronScheduler() *CronScheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &CronScheduler{
		cron:    cron.New(cron.WithParser(parser)),
		entries: make(map[string]cron.EntryID),
	}
}

func (c *CronScheduler) AddJob(job Job, spec string) error {
	entryID, err := c.cron.AddFunc(spec, c.wrap(job, spec))
	if err != nil {
		slog.Error("schedule job failed", "job", job.Name(), "spec", spec, "err", err)
		return err
	}
	c.entries[job.Name()] = entryID
	slog.Info("job scheduled", "job", job.Name(), "spec", spec)
	return nil
}

func (c *CronScheduler) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.ctx = ctx
	c.cron.Start()
}

func (c *CronScheduler) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}

func (c *CronScheduler) wrap(job Job, spec string) func() {
	var running atomic.Bool
	return func() {
		if !running.CompareAndSwap(false, true) {
			slog.Info("job skipped: still running", "job", job.Name(), "spec", spec)
			return
		}
		defer running.Store(false)

		ctx := c.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		start := time.Now()
		err := job.Run(ctx)
		elapsed := time.Since(start)
		if err != nil {
			slog.Error("job finished", "job", job.Name(), "err", err, "duration", elapsed)
			return
		}
		slog.Info("job finished", "job", job.Name(), "duration", elapsed)
	}
}

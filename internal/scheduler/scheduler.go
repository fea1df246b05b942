package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/jellywatch/internal/controllers"
)

// Syncer runs one full reconciliation pass
type Syncer interface {
	SyncAll(ctx context.Context) (controllers.Result, error)
}

// Scheduler runs the reconciliation on a fixed cadence. One pass runs
// immediately on Start for startup freshness, then every interval. A
// failed pass is logged and the next tick still fires; ticks that land
// while a pass is still running are skipped (single logical worker).
type Scheduler struct {
	cron     *cron.Cron
	syncer   Syncer
	interval time.Duration
	logger   *logrus.Logger

	running sync.Mutex // held while a pass is in flight
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewScheduler creates a new scheduler
func NewScheduler(syncer Syncer, interval time.Duration, logger *logrus.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:     cron.New(),
		syncer:   syncer,
		interval: interval,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.WithField("interval", s.interval).Info("Starting scheduler")

	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.runSync); err != nil {
		return fmt.Errorf("failed to add sync job: %w", err)
	}
	s.cron.Start()

	// Run initial sync immediately
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runSync()
	}()

	return nil
}

// Stop prevents any new pass from beginning and waits for an in-flight
// pass to finish before returning
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cancel()
	stopCtx := s.cron.Stop()
	s.wg.Wait()
	<-stopCtx.Done()
	s.logger.Info("Scheduler stopped")
}

// runSync executes one pass. Cancellation is checked at the tick
// boundary only; a pass that already started runs to completion.
func (s *Scheduler) runSync() {
	select {
	case <-s.ctx.Done():
		return
	default:
	}

	if !s.running.TryLock() {
		s.logger.Debug("Previous sync still running, skipping tick")
		return
	}
	defer s.running.Unlock()

	if _, err := s.syncer.SyncAll(context.Background()); err != nil {
		s.logger.WithError(err).Error("Sync job failed")
	}
}

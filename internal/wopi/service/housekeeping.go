package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/immor75/MeetingsDecisions/internal/wopi/store"
)

// DefaultSessionIdleTTL is how long an unlocked session may go untouched
// before it is evicted.
const DefaultSessionIdleTTL = 2 * time.Hour

// HousekeepingService periodically sweeps expired locks and evicts idle
// sessions so that abandoned working copies do not accumulate in memory.
type HousekeepingService struct {
	Sessions store.Sessions
	Locks    *LockManager
	Logger   *slog.Logger
	Interval time.Duration
	IdleTTL  time.Duration
	Now      func() time.Time

	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewHousekeepingService creates a new housekeeping service. Non-positive
// interval and idleTTL fall back to one minute and DefaultSessionIdleTTL.
func NewHousekeepingService(
	sessions store.Sessions,
	locks *LockManager,
	logger *slog.Logger,
	interval, idleTTL time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = time.Minute
	}
	if idleTTL <= 0 {
		idleTTL = DefaultSessionIdleTTL
	}

	return &HousekeepingService{
		Sessions: sessions,
		Locks:    locks,
		Logger:   logger,
		Interval: interval,
		IdleTTL:  idleTTL,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "idle_ttl", s.IdleTTL)
}

// Stop shuts down the worker and waits for an in-progress pass to finish.
// It is a no-op when the worker was never started.
func (s *HousekeepingService) Stop() {
	if !s.started.Load() {
		return
	}
	s.stopOnce.Do(func() {
		close(s.stopCh)
		<-s.doneCh
		s.Logger.Info("housekeeping service stopped")
	})
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// HousekeepingReport is the outcome of one pass.
type HousekeepingReport struct {
	LocksSwept      int
	SessionsEvicted []string
}

// RunOnce performs a single sweep. Sessions that still hold an active lock
// are never evicted, however long they have been idle.
func (s *HousekeepingService) RunOnce(ctx context.Context) HousekeepingReport {
	var report HousekeepingReport

	report.LocksSwept = s.Locks.Sweep()

	cutoff := s.Now().Add(-s.IdleTTL)
	evicted, err := s.Sessions.EvictIdle(ctx, cutoff, s.Locks.Held)
	if err != nil {
		s.Logger.Error("failed to evict idle sessions", "error", err)
	}
	report.SessionsEvicted = evicted

	for _, id := range evicted {
		s.Locks.Release(id)
	}

	if report.LocksSwept > 0 || len(evicted) > 0 {
		s.Logger.Info("housekeeping pass completed",
			"locks_swept", report.LocksSwept,
			"sessions_evicted", len(evicted),
			"sessions_live", s.Sessions.Len(),
		)
	} else {
		s.Logger.Debug("housekeeping pass completed")
	}
	return report
}

// Package scheduler refreshes the catalog on a fixed interval and warns when
// the drugs collection has not loaded for too long.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/giygas/drugstore/interfaces"
	"github.com/giygas/drugstore/logging"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Refresher re-issues the catalog fetches.
type Refresher interface {
	interfaces.StatusSource
	Refresh()
}

// Scheduler runs periodic refreshes and the staleness monitor.
type Scheduler struct {
	target    Refresher
	interval  time.Duration
	staleness time.Duration
	monitor   time.Duration
	scheduler *gocron.Scheduler

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithStaleness sets how old the last successful load may get before a
// warning, and how often that is checked.
func WithStaleness(maxAge, every time.Duration) Option {
	return func(s *Scheduler) {
		if maxAge > 0 {
			s.staleness = maxAge
		}
		if every > 0 {
			s.monitor = every
		}
	}
}

// NewScheduler refreshes target every interval. A zero interval only runs the
// staleness monitor.
func NewScheduler(target Refresher, interval time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{
		target:    target,
		interval:  interval,
		staleness: 2 * time.Hour,
		monitor:   time.Hour,
		scheduler: gocron.NewScheduler(time.Local),
		stop:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start schedules the refresh job and the staleness monitor. The initial load
// is the controller's, so the first refresh waits one interval.
func (s *Scheduler) Start() error {
	if s.interval > 0 {
		_, err := s.scheduler.Every(s.interval).WaitForSchedule().SingletonMode().Do(s.refresh)
		if err != nil {
			logging.Error("Failed to schedule refresh", "error", err)
			return fmt.Errorf("failed to schedule refresh: %w", err)
		}
		s.scheduler.StartAsync()
		logging.Info("Catalog refresh scheduled", "interval", s.interval.String())
	}

	s.wg.Add(1)
	go s.startHealthMonitoring()
	return nil
}

// Stop stops the scheduler and the monitor. It is safe to call twice.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.scheduler.Stop()
		close(s.stop)
		s.wg.Wait()
	})
}

func (s *Scheduler) refresh() {
	logging.Debug("Scheduled catalog refresh")
	s.target.Refresh()
}

// startHealthMonitoring warns while the drugs collection is stale.
func (s *Scheduler) startHealthMonitoring() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.monitor)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.checkStaleness(time.Now())
		}
	}
}

// checkStaleness reports whether the last successful load is too old.
func (s *Scheduler) checkStaleness(now time.Time) bool {
	st := s.target.CollectionStatus()
	since := st.LastSuccess
	if since.IsZero() {
		since = st.StartedAt
	}
	if now.Sub(since) <= s.staleness {
		return false
	}
	logging.Warn("Drugs have not loaded recently",
		"last_success", st.LastSuccess,
		"status", st.Drugs,
		"threshold", s.staleness.String())
	return true
}

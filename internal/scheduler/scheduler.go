// Package scheduler holds the process-wide set of pending lifecycle
// timers. Every booking registers its deadline jobs here under stable
// keys, so re-registering a key replaces the previous timer instead of
// duplicating it.
package scheduler

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
	log    *zap.Logger
	now    func() time.Time
}

func New(log *zap.Logger) *Scheduler {
	return NewWithClock(log, time.Now)
}

// NewWithClock pins the scheduler to a custom clock. Deadlines are
// measured against it, so tests can hold timers pending indefinitely.
func NewWithClock(log *zap.Logger, now func() time.Time) *Scheduler {
	return &Scheduler{
		timers: make(map[string]*time.Timer),
		log:    log.With(zap.String("service", "scheduler")),
		now:    now,
	}
}

// Schedule registers job to run at the given instant. A timer already
// pending under the same key is stopped and replaced. Instants in the
// past fire immediately.
func (s *Scheduler) Schedule(key string, at time.Time, job func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.log.Warn("Schedule on stopped scheduler ignored", zap.String("key", key))
		return
	}

	if old, ok := s.timers[key]; ok {
		old.Stop()
	}

	delay := at.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		s.mu.Lock()
		// Only clear the registration if it still points at this timer;
		// the key may have been replaced while we were waiting to fire.
		if s.timers[key] == t {
			delete(s.timers, key)
		}
		closed := s.closed
		s.mu.Unlock()

		if closed {
			return
		}
		job()
	})
	s.timers[key] = t

	s.log.Debug("Timer scheduled",
		zap.String("key", key),
		zap.Time("at", at),
	)
}

// Cancel stops the pending timer for key. Cancelling a timer that does
// not exist, or that has already fired, is not an error: the return
// value only reports whether a pending firing was actually prevented.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[key]
	if !ok {
		return false
	}
	delete(s.timers, key)
	return t.Stop()
}

// Pending returns the keys of all timers that have not fired yet, sorted.
func (s *Scheduler) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.timers))
	for key := range s.timers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Shutdown stops every pending timer. Jobs already past their deadline
// may still run; jobs observing the closed flag become no-ops.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}

	s.log.Info("Scheduler stopped")
}

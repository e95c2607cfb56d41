package engine

import (
	"sort"
	"sync"
	"time"
)

// CancelFunc stops a pending or recurring timer. Safe to call repeatedly
// and after the timer has fired.
type CancelFunc func()

// Scheduler is the engines' only source of deferred execution. Every timer
// an engine acquires is released through its CancelFunc on session
// completion, reset and teardown, so no callback can fire against a
// discarded session.
type Scheduler interface {
	// After runs fn once after d.
	After(d time.Duration, fn func()) CancelFunc
	// Every runs fn repeatedly at interval d until cancelled.
	Every(d time.Duration, fn func()) CancelFunc
}

// NewScheduler returns the wall-clock Scheduler used in production.
func NewScheduler() Scheduler {
	return realScheduler{}
}

type realScheduler struct{}

func (realScheduler) After(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

func (realScheduler) Every(d time.Duration, fn func()) CancelFunc {
	ticker := time.NewTicker(d)
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-stop:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(stop)
		})
	}
}

// ManualScheduler is test-only: timers fire synchronously when Advance is
// called, giving deterministic elapsed time and spawn schedules.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	nextID int
	timers []*manualTimer
}

type manualTimer struct {
	id       int
	deadline time.Duration
	interval time.Duration // zero for one-shot
	fn       func()
	stopped  bool
}

// NewManualScheduler returns a Scheduler driven entirely by Advance.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) After(d time.Duration, fn func()) CancelFunc {
	return s.add(d, 0, fn)
}

func (s *ManualScheduler) Every(d time.Duration, fn func()) CancelFunc {
	return s.add(d, d, fn)
}

func (s *ManualScheduler) add(d, interval time.Duration, fn func()) CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t := &manualTimer{id: s.nextID, deadline: s.now + d, interval: interval, fn: fn}
	s.timers = append(s.timers, t)
	return func() {
		s.mu.Lock()
		t.stopped = true
		s.mu.Unlock()
	}
}

// Advance moves the fake clock forward by d, firing every due timer in
// deadline order. Timers scheduled by fired callbacks are honored within
// the same advance when they fall inside the window.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	for {
		t := s.nextDueLocked(target)
		if t == nil {
			break
		}
		s.now = t.deadline
		if t.interval > 0 {
			t.deadline += t.interval
		} else {
			t.stopped = true
		}
		fn := t.fn
		s.mu.Unlock()
		fn()
		s.mu.Lock()
	}
	s.now = target
	s.compactLocked()
	s.mu.Unlock()
}

func (s *ManualScheduler) nextDueLocked(target time.Duration) *manualTimer {
	sort.SliceStable(s.timers, func(i, j int) bool {
		return s.timers[i].deadline < s.timers[j].deadline ||
			(s.timers[i].deadline == s.timers[j].deadline && s.timers[i].id < s.timers[j].id)
	})
	for _, t := range s.timers {
		if t.stopped {
			continue
		}
		if t.deadline <= target {
			return t
		}
	}
	return nil
}

func (s *ManualScheduler) compactLocked() {
	kept := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped {
			kept = append(kept, t)
		}
	}
	s.timers = kept
}

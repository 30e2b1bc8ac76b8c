package board

import (
	"sync"
	"time"
)

// FlushFunc receives the coalesced batch of pending position updates when
// the debounce window elapses.
type FlushFunc func(updates map[string]Position)

// Scheduler debounces position writes: updates buffer for a quiet period,
// successive updates for the same card coalesce last-write-wins, and one
// batch flush fires per window. Scheduling a new update while a flush is
// pending cancels and reschedules the timer; a flush that has started runs
// to completion and later updates queue into the next cycle.
type Scheduler struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending map[string]Position
	flush   FlushFunc
}

// NewScheduler returns a scheduler that calls flush after delay of
// inactivity.
func NewScheduler(delay time.Duration, flush FlushFunc) *Scheduler {
	return &Scheduler{
		delay:   delay,
		pending: make(map[string]Position),
		flush:   flush,
	}
}

// Schedule buffers an update for id and restarts the debounce window.
func (s *Scheduler) Schedule(id string, pos Position) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[id] = pos
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

// Flush cancels any pending timer and flushes the buffer immediately.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.fire()
}

// Stop cancels the pending timer and discards buffered updates.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = make(map[string]Position)
}

// Pending returns the number of buffered updates.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.timer = nil
		s.mu.Unlock()
		return
	}
	batch := s.pending
	s.pending = make(map[string]Position)
	s.timer = nil
	s.mu.Unlock()

	s.flush(batch)
}

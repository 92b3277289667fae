package manager

import (
	"context"
	"sync"
)

// loadSlots is a resizable counting semaphore. Waiters block on a channel
// that is closed and replaced every time a slot frees or the limit changes.
type loadSlots struct {
	mu      sync.Mutex
	limit   uint32
	active  int
	changed chan struct{}
}

func newLoadSlots(limit uint32) *loadSlots {
	return &loadSlots{limit: limit, changed: make(chan struct{})}
}

// capacity is the effective number of slots; a zero limit still admits one.
func (s *loadSlots) capacity() int {
	if s.limit == 0 {
		return 1
	}
	return int(s.limit)
}

func (s *loadSlots) acquire(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.active < s.capacity() {
			s.active++
			s.mu.Unlock()
			return nil
		}
		ch := s.changed
		s.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *loadSlots) release() {
	s.mu.Lock()
	s.active--
	s.broadcastLocked()
	s.mu.Unlock()
}

func (s *loadSlots) setLimit(n uint32) {
	s.mu.Lock()
	s.limit = n
	s.broadcastLocked()
	s.mu.Unlock()
}

func (s *loadSlots) getLimit() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limit
}

func (s *loadSlots) inFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *loadSlots) broadcastLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

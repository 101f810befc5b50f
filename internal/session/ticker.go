package session

import (
	"time"

	"github.com/clausops/escaperoom/internal/models"
)

// syncTickerLocked starts or stops the one-second countdown so that it
// runs exactly while a puzzle room is active. Teardown is symmetric
// with setup: leaving rooms 1..5 (completion, reset, or a dev jump)
// always stops the tick goroutine.
func (s *Session) syncTickerLocked() {
	active := s.currentRoom >= models.RoomFirst && s.currentRoom <= models.RoomLast
	switch {
	case active && s.tickStop == nil:
		stop := make(chan struct{})
		s.tickStop = stop
		go s.runTicker(stop)
	case !active && s.tickStop != nil:
		close(s.tickStop)
		s.tickStop = nil
	}
}

// StopTicker halts the countdown goroutine. Used on server shutdown;
// normal play stops it through state transitions.
func (s *Session) StopTicker() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tickStop != nil {
		close(s.tickStop)
		s.tickStop = nil
	}
}

func (s *Session) runTicker(stop chan struct{}) {
	ticker := s.clock.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			s.tick(stop)
		}
	}
}

// tick decrements unless the ticker was stopped while this tick was
// waiting on the mutex, so a reset never loses a fresh budget to a
// stale tick.
func (s *Session) tick(stop chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-stop:
		return
	default:
	}
	s.decrementTimeLocked()
}

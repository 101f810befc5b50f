package session

import (
	"testing"
	"time"
)

func waitForTime(t *testing.T, s *Session, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.TimeRemaining() != want {
		if time.Now().After(deadline) {
			t.Fatalf("TimeRemaining = %d, want %d", s.TimeRemaining(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTickerDecrementsWhileRoomActive(t *testing.T) {
	fc := newFakeClock()
	s := New(Config{Clock: fc})
	defer s.StopTicker()

	s.StartGame()
	fc.BlockUntil(1) // countdown ticker registered

	fc.Advance(time.Second)
	waitForTime(t, s, DefaultTimeBudget-1)

	fc.Advance(time.Second)
	waitForTime(t, s, DefaultTimeBudget-2)
}

func TestTickerStopsOnCompletion(t *testing.T) {
	fc := newFakeClock()
	s := New(Config{Clock: fc})

	s.StartGame()
	fc.BlockUntil(1)
	fc.Advance(time.Second)
	waitForTime(t, s, DefaultTimeBudget-1)

	s.CompleteGame()
	remaining := s.TimeRemaining()

	fc.Advance(5 * time.Second)
	time.Sleep(50 * time.Millisecond)
	if got := s.TimeRemaining(); got != remaining {
		t.Errorf("TimeRemaining = %d after completion, want %d (ticker should be stopped)", got, remaining)
	}
}

func TestTickerStopsOnReset(t *testing.T) {
	fc := newFakeClock()
	s := New(Config{Clock: fc})

	s.StartGame()
	fc.BlockUntil(1)
	fc.Advance(time.Second)
	waitForTime(t, s, DefaultTimeBudget-1)

	s.ResetGame()
	fc.Advance(5 * time.Second)
	time.Sleep(50 * time.Millisecond)
	if got := s.TimeRemaining(); got != DefaultTimeBudget {
		t.Errorf("TimeRemaining = %d after reset, want full budget %d", got, DefaultTimeBudget)
	}
}

package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/clausops/escaperoom/internal/catalog"
	"github.com/clausops/escaperoom/internal/models"
)

func newFakeClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(time.Date(2026, 12, 12, 18, 0, 0, 0, time.UTC))
}

func TestInitialState(t *testing.T) {
	s := New(Config{Clock: newFakeClock()})

	if got := s.CurrentRoom(); got != models.RoomIntro {
		t.Errorf("CurrentRoom = %d, want %d", got, models.RoomIntro)
	}
	if got := s.TimeRemaining(); got != DefaultTimeBudget {
		t.Errorf("TimeRemaining = %d, want %d", got, DefaultTimeBudget)
	}
	if got := s.TeamName(); got != "" {
		t.Errorf("TeamName = %q, want empty", got)
	}
	if s.StartTime() != nil {
		t.Error("StartTime set on fresh session")
	}
	if _, ok := s.CompletionSeconds(); ok {
		t.Error("CompletionSeconds set on fresh session")
	}
	if _, ok := s.LiveTeamID(); ok {
		t.Error("LiveTeamID set on fresh session")
	}
	for _, key := range catalog.Rooms() {
		if got := s.HintsUsed()[key]; got != 0 {
			t.Errorf("HintsUsed[%s] = %d, want 0", key, got)
		}
		if got := s.Answers()[key]; got != "" {
			t.Errorf("Answers[%s] = %q, want empty", key, got)
		}
	}
}

func TestSetTeamName(t *testing.T) {
	s := New(Config{Clock: newFakeClock()})

	if err := s.SetTeamName("  Holly Jolly  "); err != nil {
		t.Fatalf("SetTeamName: %v", err)
	}
	if got := s.TeamName(); got != "Holly Jolly" {
		t.Errorf("TeamName = %q, want %q", got, "Holly Jolly")
	}
	if err := s.SetTeamName("   "); !errors.Is(err, ErrEmptyTeamName) {
		t.Errorf("SetTeamName(blank) = %v, want ErrEmptyTeamName", err)
	}
}

func TestProceedToTeamEntryIsIdempotent(t *testing.T) {
	s := New(Config{Clock: newFakeClock()})
	s.ProceedToTeamEntry()
	s.ProceedToTeamEntry()
	if got := s.CurrentRoom(); got != models.RoomTeamEntry {
		t.Errorf("CurrentRoom = %d, want %d", got, models.RoomTeamEntry)
	}
}

func TestStartGameLeavesStartTimeUnset(t *testing.T) {
	s := New(Config{Clock: newFakeClock()})
	s.ProceedToTeamEntry()
	if err := s.SetTeamName("Holly Jolly"); err != nil {
		t.Fatalf("SetTeamName: %v", err)
	}
	s.StartGame()
	defer s.StopTicker()

	if got := s.CurrentRoom(); got != models.RoomFirst {
		t.Errorf("CurrentRoom = %d, want %d", got, models.RoomFirst)
	}
	if s.StartTime() != nil {
		t.Error("StartTime set by StartGame, want nil until first NextRoom")
	}
}

func TestNextRoomCapturesStartTimeExactlyOnce(t *testing.T) {
	fc := newFakeClock()
	s := New(Config{Clock: fc})
	s.StartGame()
	defer s.StopTicker()

	began := fc.Now()
	s.NextRoom()
	st := s.StartTime()
	if st == nil {
		t.Fatal("StartTime = nil after leaving room 1")
	}
	if !st.Equal(began) {
		t.Errorf("StartTime = %v, want %v", st, began)
	}

	fc.Advance(7 * time.Second)
	s.NextRoom()
	if got := s.StartTime(); !got.Equal(began) {
		t.Errorf("StartTime moved on second NextRoom: %v, want %v", got, began)
	}
}

func TestSubmitAnswerFullWalkthrough(t *testing.T) {
	fc := newFakeClock()
	s := New(Config{Clock: fc})
	s.ProceedToTeamEntry()
	if err := s.SetTeamName("Holly Jolly"); err != nil {
		t.Fatalf("SetTeamName: %v", err)
	}
	s.StartGame()
	defer s.StopTicker()

	answers := []struct {
		room int
		raw  string
	}{
		{1, "candy"},
		{2, " BELLS "},
		{3, "Rudolph"},
		{4, "treats"},
	}
	for _, a := range answers {
		correct, err := s.SubmitAnswer(a.room, a.raw)
		if err != nil {
			t.Fatalf("SubmitAnswer(%d, %q): %v", a.room, a.raw, err)
		}
		if !correct {
			t.Fatalf("SubmitAnswer(%d, %q) = false, want true", a.room, a.raw)
		}
		if got := s.CurrentRoom(); got != a.room+1 {
			t.Fatalf("CurrentRoom = %d after room %d, want %d", got, a.room, a.room+1)
		}
	}

	fc.Advance(90 * time.Second)

	correct, err := s.SubmitAnswer(5, "magic")
	if err != nil || !correct {
		t.Fatalf("SubmitAnswer(5, magic) = (%v, %v), want (true, nil)", correct, err)
	}
	if got := s.CurrentRoom(); got != models.RoomCompletion {
		t.Errorf("CurrentRoom = %d, want %d", got, models.RoomCompletion)
	}
	secs, ok := s.CompletionSeconds()
	if !ok {
		t.Fatal("CompletionSeconds not set after final answer")
	}
	if secs != 90 {
		t.Errorf("CompletionSeconds = %d, want 90", secs)
	}
	// Accepted answers are stored exactly as submitted.
	if got := s.Answers()["room2"]; got != " BELLS " {
		t.Errorf("Answers[room2] = %q, want %q", got, " BELLS ")
	}
}

func TestSubmitAnswerIncorrectLeavesStateUnchanged(t *testing.T) {
	s := New(Config{Clock: newFakeClock()})
	s.StartGame()
	defer s.StopTicker()

	before := s.State()
	correct, err := s.SubmitAnswer(1, "coal")
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if correct {
		t.Fatal("SubmitAnswer(1, coal) = true, want false")
	}
	if diff := cmp.Diff(before, s.State()); diff != "" {
		t.Errorf("state changed on incorrect answer (-before +after):\n%s", diff)
	}
}

func TestSubmitAnswerGuards(t *testing.T) {
	s := New(Config{Clock: newFakeClock()})
	s.StartGame()
	defer s.StopTicker()

	if _, err := s.SubmitAnswer(0, "candy"); !errors.Is(err, ErrNotPuzzleRoom) {
		t.Errorf("SubmitAnswer(0) = %v, want ErrNotPuzzleRoom", err)
	}
	if _, err := s.SubmitAnswer(3, "rudolph"); !errors.Is(err, ErrRoomMismatch) {
		t.Errorf("SubmitAnswer(3) from room 1 = %v, want ErrRoomMismatch", err)
	}
	if got := s.CurrentRoom(); got != models.RoomFirst {
		t.Errorf("CurrentRoom = %d, want %d", got, models.RoomFirst)
	}
}

func TestCompleteGameSetsCompletionTimeOnce(t *testing.T) {
	fc := newFakeClock()
	s := New(Config{Clock: fc})
	s.StartGame()
	s.NextRoom() // captures start time
	defer s.StopTicker()

	fc.Advance(125 * time.Second)
	s.CompleteGame()
	secs, ok := s.CompletionSeconds()
	if !ok || secs != 125 {
		t.Fatalf("CompletionSeconds = (%d, %v), want (125, true)", secs, ok)
	}

	fc.Advance(time.Hour)
	s.CompleteGame()
	if secs, _ = s.CompletionSeconds(); secs != 125 {
		t.Errorf("CompletionSeconds changed on second CompleteGame: %d, want 125", secs)
	}
}

func TestCompleteGameWithNoStartTimeFailsClosed(t *testing.T) {
	s := New(Config{Clock: newFakeClock()})
	s.CompleteGame()
	secs, ok := s.CompletionSeconds()
	if !ok {
		t.Fatal("CompletionSeconds not set")
	}
	if secs != 0 {
		t.Errorf("CompletionSeconds = %d, want 0 with no start time", secs)
	}
}

func TestDecrementTimeFloorsAtZero(t *testing.T) {
	s := New(Config{Clock: newFakeClock()})

	for i := 0; i < DefaultTimeBudget; i++ {
		s.DecrementTime()
	}
	if got := s.TimeRemaining(); got != 0 {
		t.Fatalf("TimeRemaining after %d decrements = %d, want 0", DefaultTimeBudget, got)
	}
	if !s.Expired() {
		t.Error("Expired = false at zero")
	}
	for i := 0; i < 10; i++ {
		s.DecrementTime()
	}
	if got := s.TimeRemaining(); got != 0 {
		t.Errorf("TimeRemaining went negative: %d", got)
	}
}

func TestUseHintEnforcesCeilingInMutator(t *testing.T) {
	s := New(Config{Clock: newFakeClock()})

	for want := 1; want <= catalog.MaxHints; want++ {
		got, err := s.UseHint("room2")
		if err != nil {
			t.Fatalf("UseHint #%d: %v", want, err)
		}
		if got != want {
			t.Fatalf("UseHint #%d = %d, want %d", want, got, want)
		}
	}

	got, err := s.UseHint("room2")
	if !errors.Is(err, ErrHintLimit) {
		t.Fatalf("UseHint past ceiling = %v, want ErrHintLimit", err)
	}
	if got != catalog.MaxHints {
		t.Errorf("count after refused hint = %d, want %d", got, catalog.MaxHints)
	}

	if _, err := s.UseHint("room9"); !errors.Is(err, ErrNotPuzzleRoom) {
		t.Errorf("UseHint(room9) = %v, want ErrNotPuzzleRoom", err)
	}
}

func TestRaiseHintsToNeverLowers(t *testing.T) {
	s := New(Config{Clock: newFakeClock()})

	if got := s.RaiseHintsTo("room3", 2); got != 2 {
		t.Fatalf("RaiseHintsTo(2) = %d, want 2", got)
	}
	if got := s.RaiseHintsTo("room3", 1); got != 2 {
		t.Errorf("RaiseHintsTo(1) lowered count to %d, want 2", got)
	}
	if got := s.RaiseHintsTo("room3", 7); got != catalog.MaxHints {
		t.Errorf("RaiseHintsTo(7) = %d, want ceiling %d", got, catalog.MaxHints)
	}
}

func TestGoToRoomRequiresDevMode(t *testing.T) {
	s := New(Config{Clock: newFakeClock()})
	if err := s.GoToRoom(4); !errors.Is(err, ErrDevModeDisabled) {
		t.Fatalf("GoToRoom without dev mode = %v, want ErrDevModeDisabled", err)
	}
	if got := s.CurrentRoom(); got != models.RoomIntro {
		t.Errorf("CurrentRoom = %d after refused jump, want %d", got, models.RoomIntro)
	}
}

func TestGoToRoomDevModeBackfillsStartTime(t *testing.T) {
	fc := newFakeClock()
	s := New(Config{Clock: fc, DevMode: true})
	defer s.StopTicker()

	if err := s.GoToRoom(4); err != nil {
		t.Fatalf("GoToRoom(4): %v", err)
	}
	if got := s.CurrentRoom(); got != 4 {
		t.Errorf("CurrentRoom = %d, want 4", got)
	}
	st := s.StartTime()
	if st == nil || !st.Equal(fc.Now()) {
		t.Errorf("StartTime = %v, want %v", st, fc.Now())
	}

	// Jumping outside the room domain must be tolerated, not crash.
	if err := s.GoToRoom(42); err != nil {
		t.Fatalf("GoToRoom(42): %v", err)
	}
	if got := s.CurrentRoom(); got != 42 {
		t.Errorf("CurrentRoom = %d, want 42", got)
	}
}

func TestResetGameRestoresInitialValues(t *testing.T) {
	fc := newFakeClock()
	s := New(Config{Clock: fc, DevMode: true})
	s.ProceedToTeamEntry()
	if err := s.SetTeamName("Tinsel Titans"); err != nil {
		t.Fatalf("SetTeamName: %v", err)
	}
	s.SetLiveTeamID(uuid.New())
	s.StartGame()
	if _, err := s.SubmitAnswer(1, "candy"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if _, err := s.UseHint("room1"); err != nil {
		t.Fatalf("UseHint: %v", err)
	}
	s.DecrementTime()
	s.CompleteGame()

	s.ResetGame()

	fresh := New(Config{Clock: fc, DevMode: true})
	want, got := fresh.State(), s.State()
	want.ID, got.ID = "", ""
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("state after ResetGame differs from fresh session (-fresh +reset):\n%s", diff)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	a := New(Config{Clock: newFakeClock()})
	b := New(Config{Clock: newFakeClock()})
	defer a.StopTicker()

	a.StartGame()
	if _, err := a.SubmitAnswer(1, "candy"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if _, err := a.UseHint("room1"); err != nil {
		t.Fatalf("UseHint: %v", err)
	}

	if got := b.CurrentRoom(); got != models.RoomIntro {
		t.Errorf("session b CurrentRoom = %d, want %d", got, models.RoomIntro)
	}
	if got := b.HintsUsed()["room1"]; got != 0 {
		t.Errorf("session b HintsUsed[room1] = %d, want 0", got)
	}
	if got := b.Answers()["room1"]; got != "" {
		t.Errorf("session b Answers[room1] = %q, want empty", got)
	}
}

type recordingMirror struct {
	mu          sync.Mutex
	rooms       []int
	completions []int
	err         error
	notify      chan struct{}
}

func newRecordingMirror(err error) *recordingMirror {
	return &recordingMirror{err: err, notify: make(chan struct{}, 16)}
}

func (m *recordingMirror) UpdateTeamRoom(_ context.Context, _ uuid.UUID, room int) error {
	m.mu.Lock()
	m.rooms = append(m.rooms, room)
	m.mu.Unlock()
	m.notify <- struct{}{}
	return m.err
}

func (m *recordingMirror) CompleteTeamGame(_ context.Context, _ uuid.UUID, seconds int, _ map[string]int) error {
	m.mu.Lock()
	m.completions = append(m.completions, seconds)
	m.mu.Unlock()
	m.notify <- struct{}{}
	return m.err
}

func (m *recordingMirror) wait(t *testing.T) {
	t.Helper()
	select {
	case <-m.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mirror call")
	}
}

func TestMirroringIsFireAndForget(t *testing.T) {
	mirror := newRecordingMirror(nil)
	s := New(Config{Clock: newFakeClock(), Mirror: mirror})
	defer s.StopTicker()

	s.SetLiveTeamID(uuid.New())
	s.StartGame()
	mirror.wait(t)

	s.NextRoom()
	mirror.wait(t)

	mirror.mu.Lock()
	rooms := append([]int(nil), mirror.rooms...)
	mirror.mu.Unlock()
	if diff := cmp.Diff([]int{1, 2}, rooms); diff != "" {
		t.Errorf("mirrored rooms mismatch (-want +got):\n%s", diff)
	}
}

func TestMirrorFailureNeverBlocksProgression(t *testing.T) {
	mirror := newRecordingMirror(errors.New("store unreachable"))
	s := New(Config{Clock: newFakeClock(), Mirror: mirror})
	defer s.StopTicker()

	s.SetLiveTeamID(uuid.New())
	s.StartGame()
	if got := s.CurrentRoom(); got != models.RoomFirst {
		t.Errorf("CurrentRoom = %d, want %d", got, models.RoomFirst)
	}
	s.CompleteGame()
	if got := s.CurrentRoom(); got != models.RoomCompletion {
		t.Errorf("CurrentRoom = %d, want %d", got, models.RoomCompletion)
	}
	mirror.wait(t)
	mirror.wait(t)
}

func TestUnboundSessionNeverMirrors(t *testing.T) {
	mirror := newRecordingMirror(nil)
	s := New(Config{Clock: newFakeClock(), Mirror: mirror})
	defer s.StopTicker()

	s.StartGame()
	s.NextRoom()
	s.CompleteGame()

	select {
	case <-mirror.notify:
		t.Fatal("mirror called with no live team id bound")
	case <-time.After(50 * time.Millisecond):
	}
}

type memorySnapshots struct {
	mu    sync.Mutex
	snaps map[string]Snapshot
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{snaps: make(map[string]Snapshot)}
}

func (m *memorySnapshots) Save(id string, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[id] = snap
	return nil
}

func (m *memorySnapshots) Load(id string) (Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[id]
	return snap, ok, nil
}

func (m *memorySnapshots) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, id)
	return nil
}

func TestSnapshotRestoreResumesMidGame(t *testing.T) {
	fc := newFakeClock()
	store := newMemorySnapshots()

	s := New(Config{ID: "team-a", Clock: fc, Snapshots: store})
	s.ProceedToTeamEntry()
	if err := s.SetTeamName("Holly Jolly"); err != nil {
		t.Fatalf("SetTeamName: %v", err)
	}
	teamID := uuid.New()
	s.SetLiveTeamID(teamID)
	s.StartGame()
	if _, err := s.SubmitAnswer(1, "candy"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if _, err := s.UseHint("room2"); err != nil {
		t.Fatalf("UseHint: %v", err)
	}
	s.StopTicker()

	resumed := New(Config{ID: "team-a", Clock: fc, Snapshots: store})
	defer resumed.StopTicker()

	if diff := cmp.Diff(s.Snapshot(), resumed.Snapshot()); diff != "" {
		t.Errorf("resumed snapshot mismatch (-orig +resumed):\n%s", diff)
	}
	if got := resumed.CurrentRoom(); got != 2 {
		t.Errorf("resumed CurrentRoom = %d, want 2", got)
	}
	if id, ok := resumed.LiveTeamID(); !ok || id != teamID {
		t.Errorf("resumed LiveTeamID = (%v, %v), want (%v, true)", id, ok, teamID)
	}
	// Completion time is transient and must not survive a restart.
	if _, ok := resumed.CompletionSeconds(); ok {
		t.Error("CompletionSeconds survived restart")
	}
}

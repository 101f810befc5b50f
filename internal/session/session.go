package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/clausops/escaperoom/internal/catalog"
	"github.com/clausops/escaperoom/internal/models"
)

// DefaultTimeBudget is the countdown budget in seconds (30 minutes).
const DefaultTimeBudget = 1800

// MaxTeamNameLen bounds team names at the API boundary.
const MaxTeamNameLen = 50

// Mirror receives best-effort copies of local state changes. Every call
// is fired from a goroutine and its error is logged and swallowed; the
// local transition never waits on it.
type Mirror interface {
	UpdateTeamRoom(ctx context.Context, teamID uuid.UUID, room int) error
	CompleteTeamGame(ctx context.Context, teamID uuid.UUID, seconds int, hints map[string]int) error
}

// SnapshotStore persists the session's restart-surviving subset.
type SnapshotStore interface {
	Save(id string, snap Snapshot) error
	Load(id string) (Snapshot, bool, error)
	Delete(id string) error
}

// Config holds the collaborators for a Session. Zero values select a
// real clock, the default budget, and no mirroring or persistence.
type Config struct {
	ID         string
	TimeBudget int
	DevMode    bool
	Clock      clockwork.Clock
	Mirror     Mirror
	Snapshots  SnapshotStore
}

// Session owns all mutable game state for one team. It is the source of
// truth for progression; the remote store is only a projection. All
// operations are atomic under the session mutex, since HTTP handlers
// and the countdown ticker interleave.
type Session struct {
	id        string
	devMode   bool
	clock     clockwork.Clock
	mirror    Mirror
	snapshots SnapshotStore

	mu             sync.Mutex
	teamName       string
	currentRoom    int
	timeRemaining  int
	timeBudget     int
	startTime      *time.Time
	completionSecs *int
	liveTeamID     *uuid.UUID
	hintsUsed      map[string]int
	answers        map[string]string
	expiredLogged  bool
	tickStop       chan struct{}
}

// New creates a session in the intro state, resuming from a persisted
// snapshot when one exists for the configured ID.
func New(cfg Config) *Session {
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	if cfg.TimeBudget <= 0 {
		cfg.TimeBudget = DefaultTimeBudget
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	s := &Session{
		id:        cfg.ID,
		devMode:   cfg.DevMode,
		clock:     cfg.Clock,
		mirror:    cfg.Mirror,
		snapshots: cfg.Snapshots,
	}
	s.mu.Lock()
	s.timeBudget = cfg.TimeBudget
	s.resetLocked()

	if s.snapshots != nil {
		snap, ok, err := s.snapshots.Load(s.id)
		if err != nil {
			log.Warn().Err(err).Str("session_id", s.id).Msg("failed to load session snapshot")
		} else if ok {
			s.restoreLocked(snap)
			log.Info().Str("session_id", s.id).Int("room", s.currentRoom).Msg("resumed session from snapshot")
		}
	}
	s.syncTickerLocked()
	s.mu.Unlock()

	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// SetTeamName stores the trimmed team name. Length is capped at the API
// boundary; the mutator only rejects blank names.
func (s *Session) SetTeamName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyTeamName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teamName = name
	s.persistLocked()
	return nil
}

// ProceedToTeamEntry moves intro -> team entry. Idempotent.
func (s *Session) ProceedToTeamEntry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentRoom = models.RoomTeamEntry
	s.persistLocked()
}

// StartGame moves team entry -> room 1. The start time stays unset; the
// elapsed clock begins on the first NextRoom out of room 1.
func (s *Session) StartGame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentRoom = models.RoomFirst
	s.startTime = nil
	s.syncTickerLocked()
	s.mirrorRoomLocked(s.currentRoom)
	s.persistLocked()
}

// NextRoom advances the room index by one. Leaving room 1 with no start
// time recorded captures it; the guard means it fires exactly once.
func (s *Session) NextRoom() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRoomLocked()
}

func (s *Session) nextRoomLocked() int {
	if s.currentRoom == models.RoomFirst && s.startTime == nil {
		now := s.clock.Now()
		s.startTime = &now
	}
	s.currentRoom++
	s.syncTickerLocked()
	s.mirrorRoomLocked(s.currentRoom)
	s.persistLocked()
	return s.currentRoom
}

// GoToRoom jumps directly to a room, bypassing normal sequencing. It is
// gated behind dev mode and never reachable by a player.
func (s *Session) GoToRoom(room int) error {
	if !s.devMode {
		return ErrDevModeDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentRoom = room
	if room >= models.RoomFirst && room <= models.RoomLast && s.startTime == nil {
		now := s.clock.Now()
		s.startTime = &now
	}
	s.syncTickerLocked()
	s.persistLocked()
	return nil
}

// SubmitAnswer validates an answer for the active room. A correct
// answer is saved and advances the game (to completion from the final
// room); an incorrect one leaves all state unchanged.
func (s *Session) SubmitAnswer(room int, raw string) (bool, error) {
	key := catalog.RoomKey(room)
	if key == "" {
		return false, ErrNotPuzzleRoom
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if room != s.currentRoom {
		return false, ErrRoomMismatch
	}
	if !catalog.Validate(key, raw) {
		return false, nil
	}

	s.answers[key] = raw
	if room == models.RoomLast {
		s.completeGameLocked()
	} else {
		s.nextRoomLocked()
	}
	return true, nil
}

// CompleteGame moves to the completion screen and records the elapsed
// time once. A missing start time fails closed to zero elapsed.
func (s *Session) CompleteGame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completeGameLocked()
}

func (s *Session) completeGameLocked() {
	s.currentRoom = models.RoomCompletion
	if s.completionSecs == nil {
		secs := 0
		if s.startTime != nil {
			secs = int(s.clock.Now().Sub(*s.startTime) / time.Second)
			if secs < 0 {
				secs = 0
			}
		} else {
			log.Warn().Str("session_id", s.id).Msg("game completed with no recorded start time; treating elapsed as zero")
		}
		s.completionSecs = &secs
		s.mirrorCompletionLocked(secs)
	}
	s.syncTickerLocked()
	s.persistLocked()
}

// DecrementTime decreases the countdown by one second, floored at zero.
// Reaching zero triggers no transition; the condition is only surfaced
// through Expired. (The countdown deliberately has no game-over
// consequence; see DESIGN.md.)
func (s *Session) DecrementTime() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decrementTimeLocked()
}

func (s *Session) decrementTimeLocked() {
	if s.timeRemaining <= 0 {
		s.timeRemaining = 0
		return
	}
	s.timeRemaining--
	if s.timeRemaining == 0 && !s.expiredLogged {
		s.expiredLogged = true
		log.Warn().Str("session_id", s.id).Str("team", s.teamName).Msg("countdown reached zero")
	}
	s.persistLocked()
}

// UseHint unlocks the next hint for a room. The three-hint ceiling is
// enforced here, not in callers. Returns the new count.
func (s *Session) UseHint(roomKey string) (int, error) {
	if _, ok := catalog.Hints[roomKey]; !ok {
		return 0, ErrNotPuzzleRoom
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	used := s.hintsUsed[roomKey]
	if used >= catalog.MaxHints {
		return used, ErrHintLimit
	}
	s.hintsUsed[roomKey] = used + 1
	s.persistLocked()
	return used + 1, nil
}

// RaiseHintsTo reconciles the local hint count with facilitator
// approvals. It only ever raises the count, never lowers it, and still
// honors the ceiling.
func (s *Session) RaiseHintsTo(roomKey string, n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > catalog.MaxHints {
		n = catalog.MaxHints
	}
	if n > s.hintsUsed[roomKey] {
		s.hintsUsed[roomKey] = n
		s.persistLocked()
	}
	return s.hintsUsed[roomKey]
}

// SaveAnswer stores the exact string submitted for a room. No
// normalization; that is the validator's job.
func (s *Session) SaveAnswer(roomKey, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[roomKey] = answer
	s.persistLocked()
}

// SetLiveTeamID binds this session to a remote team row for mirroring.
func (s *Session) SetLiveTeamID(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveTeamID = &id
	s.persistLocked()
}

// ResetGame restores every field to its initial value and returns to
// the intro screen.
func (s *Session) ResetGame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.syncTickerLocked()
	s.persistLocked()
}

func (s *Session) resetLocked() {
	s.teamName = ""
	s.currentRoom = models.RoomIntro
	s.timeRemaining = s.timeBudget
	s.startTime = nil
	s.completionSecs = nil
	s.liveTeamID = nil
	s.expiredLogged = false
	s.hintsUsed = make(map[string]int, models.RoomLast)
	s.answers = make(map[string]string, models.RoomLast)
	for _, key := range catalog.Rooms() {
		s.hintsUsed[key] = 0
		s.answers[key] = ""
	}
}

func (s *Session) mirrorRoomLocked(room int) {
	if s.mirror == nil || s.liveTeamID == nil {
		return
	}
	teamID := *s.liveTeamID
	go func() {
		if err := s.mirror.UpdateTeamRoom(context.Background(), teamID, room); err != nil {
			log.Warn().Err(err).
				Str("session_id", s.id).
				Str("team_id", teamID.String()).
				Int("room", room).
				Msg("room mirror failed")
		}
	}()
}

func (s *Session) mirrorCompletionLocked(secs int) {
	if s.mirror == nil || s.liveTeamID == nil {
		return
	}
	teamID := *s.liveTeamID
	hints := make(map[string]int, len(s.hintsUsed))
	for k, v := range s.hintsUsed {
		hints[k] = v
	}
	go func() {
		if err := s.mirror.CompleteTeamGame(context.Background(), teamID, secs, hints); err != nil {
			log.Warn().Err(err).
				Str("session_id", s.id).
				Str("team_id", teamID.String()).
				Msg("completion mirror failed")
		}
	}()
}

// Accessors. Each takes the mutex so readers never observe a torn
// update from the ticker goroutine.

func (s *Session) TeamName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teamName
}

func (s *Session) CurrentRoom() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentRoom
}

func (s *Session) TimeRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeRemaining
}

// Expired reports whether the countdown has reached zero.
func (s *Session) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeRemaining == 0
}

func (s *Session) StartTime() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startTime == nil {
		return nil
	}
	t := *s.startTime
	return &t
}

// CompletionSeconds returns the recorded completion time, if set.
func (s *Session) CompletionSeconds() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completionSecs == nil {
		return 0, false
	}
	return *s.completionSecs, true
}

// LiveTeamID returns the bound remote team id, if any.
func (s *Session) LiveTeamID() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.liveTeamID == nil {
		return uuid.Nil, false
	}
	return *s.liveTeamID, true
}

func (s *Session) HintsUsed() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.hintsUsed))
	for k, v := range s.hintsUsed {
		out[k] = v
	}
	return out
}

func (s *Session) Answers() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// State is a consistent point-in-time view of the whole session.
type State struct {
	ID             string            `json:"id"`
	TeamName       string            `json:"team_name"`
	CurrentRoom    int               `json:"current_room"`
	TimeRemaining  int               `json:"time_remaining"`
	StartTime      *time.Time        `json:"start_time,omitempty"`
	CompletionSecs *int              `json:"completion_secs,omitempty"`
	LiveTeamID     *uuid.UUID        `json:"live_team_id,omitempty"`
	HintsUsed      map[string]int    `json:"hints_used"`
	Answers        map[string]string `json:"answers"`
}

// State returns a copy of the full session state under one lock.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		ID:            s.id,
		TeamName:      s.teamName,
		CurrentRoom:   s.currentRoom,
		TimeRemaining: s.timeRemaining,
		HintsUsed:     make(map[string]int, len(s.hintsUsed)),
		Answers:       make(map[string]string, len(s.answers)),
	}
	if s.startTime != nil {
		t := *s.startTime
		st.StartTime = &t
	}
	if s.completionSecs != nil {
		c := *s.completionSecs
		st.CompletionSecs = &c
	}
	if s.liveTeamID != nil {
		id := *s.liveTeamID
		st.LiveTeamID = &id
	}
	for k, v := range s.hintsUsed {
		st.HintsUsed[k] = v
	}
	for k, v := range s.answers {
		st.Answers[k] = v
	}
	return st
}

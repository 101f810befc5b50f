package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Snapshot is the subset of session state that survives a restart.
// Completion time is recomputed and deliberately not part of it.
type Snapshot struct {
	TeamName      string            `json:"team_name"`
	CurrentRoom   int               `json:"current_room"`
	TimeRemaining int               `json:"time_remaining"`
	StartTime     *time.Time        `json:"start_time,omitempty"`
	LiveTeamID    *uuid.UUID        `json:"live_team_id,omitempty"`
	HintsUsed     map[string]int    `json:"hints_used"`
	Answers       map[string]string `json:"answers"`
}

// Snapshot returns the persistable subset of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		TeamName:      s.teamName,
		CurrentRoom:   s.currentRoom,
		TimeRemaining: s.timeRemaining,
		HintsUsed:     make(map[string]int, len(s.hintsUsed)),
		Answers:       make(map[string]string, len(s.answers)),
	}
	if s.startTime != nil {
		t := *s.startTime
		snap.StartTime = &t
	}
	if s.liveTeamID != nil {
		id := *s.liveTeamID
		snap.LiveTeamID = &id
	}
	for k, v := range s.hintsUsed {
		snap.HintsUsed[k] = v
	}
	for k, v := range s.answers {
		snap.Answers[k] = v
	}
	return snap
}

func (s *Session) restoreLocked(snap Snapshot) {
	s.teamName = snap.TeamName
	s.currentRoom = snap.CurrentRoom
	s.timeRemaining = snap.TimeRemaining
	s.startTime = nil
	if snap.StartTime != nil {
		t := *snap.StartTime
		s.startTime = &t
	}
	s.liveTeamID = nil
	if snap.LiveTeamID != nil {
		id := *snap.LiveTeamID
		s.liveTeamID = &id
	}
	for k, v := range snap.HintsUsed {
		s.hintsUsed[k] = v
	}
	for k, v := range snap.Answers {
		s.answers[k] = v
	}
}

// persistLocked saves the snapshot best-effort. A failed save never
// blocks or reverts a transition.
func (s *Session) persistLocked() {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Save(s.id, s.snapshotLocked()); err != nil {
		log.Warn().Err(err).Str("session_id", s.id).Msg("failed to persist session snapshot")
	}
}

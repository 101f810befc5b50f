package models

import (
	"time"

	"github.com/google/uuid"
)

// Room index domain. -1 and 0 are the pre-game screens, 1..5 are the
// puzzle rooms, 6 is the completion screen.
const (
	RoomIntro      = -1
	RoomTeamEntry  = 0
	RoomFirst      = 1
	RoomLast       = 5
	RoomCompletion = 6
)

// Team represents a remote team row mirrored from a player session.
// The remote row is a projection for the facilitator dashboard; it is
// never authoritative for gameplay.
type Team struct {
	ID             uuid.UUID      `json:"id"`
	TeamName       string         `json:"team_name"`
	CurrentRoom    int            `json:"current_room"`
	StartedAt      *time.Time     `json:"started_at,omitempty"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	CompletionSecs *int           `json:"completion_secs,omitempty"`
	HintsUsed      map[string]int `json:"hints_used,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

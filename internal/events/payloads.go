package events

import (
	"time"
)

// Event types published through the outbox and consumed by the realtime
// fan-out. The facilitator dashboard subscribes to all of them.
const (
	TypeTeamRegistered   = "TeamRegistered"
	TypeTeamRoomChanged  = "TeamRoomChanged"
	TypeTeamCompleted    = "TeamCompleted"
	TypeHintRequested    = "HintRequested"
	TypeHintResolved     = "HintResolved"
	TypeGameStateChanged = "GameStateChanged"
)

// TeamRegisteredPayload is the payload for a TeamRegistered event
type TeamRegisteredPayload struct {
	TeamID       string    `json:"team_id"`
	TeamName     string    `json:"team_name"`
	RegisteredAt time.Time `json:"registered_at"`
}

// TeamRoomChangedPayload is the payload for a TeamRoomChanged event
type TeamRoomChangedPayload struct {
	TeamID    string    `json:"team_id"`
	Room      int       `json:"room"`
	ChangedAt time.Time `json:"changed_at"`
}

// TeamCompletedPayload is the payload for a TeamCompleted event
type TeamCompletedPayload struct {
	TeamID         string         `json:"team_id"`
	CompletionSecs int            `json:"completion_secs"`
	HintsUsed      map[string]int `json:"hints_used"`
	CompletedAt    time.Time      `json:"completed_at"`
}

// HintRequestedPayload is the payload for a HintRequested event
type HintRequestedPayload struct {
	RequestID   string    `json:"request_id"`
	TeamID      string    `json:"team_id"`
	RoomKey     string    `json:"room_key"`
	HintNumber  int       `json:"hint_number"`
	RequestedAt time.Time `json:"requested_at"`
}

// HintResolvedPayload is the payload for a HintResolved event
type HintResolvedPayload struct {
	RequestID  string    `json:"request_id"`
	TeamID     string    `json:"team_id"`
	RoomKey    string    `json:"room_key"`
	HintNumber int       `json:"hint_number"`
	Status     string    `json:"status"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// GameStateChangedPayload is the payload for a GameStateChanged event
type GameStateChangedPayload struct {
	IsActive  bool      `json:"is_active"`
	ChangedAt time.Time `json:"changed_at"`
}

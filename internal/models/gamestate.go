package models

import "time"

// GameState is the singleton global game-active flag toggled by the
// facilitator.
type GameState struct {
	IsActive  bool       `json:"is_active"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

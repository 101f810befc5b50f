package models

import (
	"time"

	"github.com/google/uuid"
)

// HintStatus defines the lifecycle state of a hint request.
type HintStatus string

const (
	HintStatusPending  HintStatus = "PENDING"
	HintStatusApproved HintStatus = "APPROVED"
	HintStatusDenied   HintStatus = "DENIED"
)

// HintRequest represents a facilitated-mode hint request. It is created
// pending and resolved exactly once to approved or denied.
type HintRequest struct {
	ID          uuid.UUID  `json:"id"`
	TeamID      uuid.UUID  `json:"team_id"`
	RoomKey     string     `json:"room_key"`
	HintNumber  int        `json:"hint_number"` // 1-based
	Status      HintStatus `json:"status"`
	RequestedAt time.Time  `json:"requested_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

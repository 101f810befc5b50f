package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is one outbox row: a committed state change waiting to be
// published to the message bus.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	TeamID    uuid.NullUUID   `json:"team_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at,omitempty"`
}

package realtime

import (
	"encoding/json"
	"time"

	"github.com/clausops/escaperoom/internal/events"
)

// GameEvent is the wire format pushed to WebSocket clients.
type GameEvent struct {
	ID        string          `json:"id"`        // Event UUID
	TeamID    string          `json:"team_id"`   // Team UUID, empty for game-wide events
	Type      string          `json:"type"`      // Event type
	Timestamp time.Time       `json:"timestamp"` // Event creation time
	Data      json.RawMessage `json:"data"`      // Event-specific payload
}

// ParseEventPayload parses event data into the appropriate payload struct
func ParseEventPayload(event *GameEvent) (interface{}, error) {
	switch event.Type {
	case events.TypeTeamRegistered:
		var payload events.TeamRegisteredPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case events.TypeTeamRoomChanged:
		var payload events.TeamRoomChangedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case events.TypeTeamCompleted:
		var payload events.TeamCompletedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case events.TypeHintRequested:
		var payload events.HintRequestedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case events.TypeHintResolved:
		var payload events.HintResolvedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case events.TypeGameStateChanged:
		var payload events.GameStateChangedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, nil // Unknown event type
	}
}

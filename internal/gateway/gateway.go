package gateway

import (
	"context"

	"github.com/google/uuid"

	"github.com/clausops/escaperoom/internal/models"
)

// Gateway is the persistence boundary between the game and the remote
// store. The remote side is a best-effort, eventually consistent
// projection: gameplay always proceeds locally even when every call
// here fails, and the core never depends on read-after-write
// consistency from it.
type Gateway interface {
	// RegisterTeam creates a remote team row at room 0.
	RegisterTeam(ctx context.Context, name string) (*models.Team, error)

	// UpdateTeamRoom mirrors a room change. Entering room 1 records the
	// server-side start timestamp.
	UpdateTeamRoom(ctx context.Context, teamID uuid.UUID, room int) error

	// CompleteTeamGame mirrors game completion.
	CompleteTeamGame(ctx context.Context, teamID uuid.UUID, seconds int, hints map[string]int) error

	// RequestHint creates a pending hint request (facilitated mode).
	RequestHint(ctx context.Context, teamID uuid.UUID, roomKey string, hintNumber int) (*models.HintRequest, error)

	// GetApprovedHints returns a team's approved hint requests, used to
	// reconcile the local hint count upward.
	GetApprovedHints(ctx context.Context, teamID uuid.UUID) ([]models.HintRequest, error)

	// Facilitator console surface.
	GetAllTeams(ctx context.Context) ([]models.Team, error)
	GetPendingHintRequests(ctx context.Context) ([]models.HintRequest, error)
	ResolveHintRequest(ctx context.Context, id uuid.UUID, approve bool) (*models.HintRequest, error)
	GetGameState(ctx context.Context) (*models.GameState, error)
	SetGameActive(ctx context.Context, active bool) error
	Leaderboard(ctx context.Context, limit int) ([]models.Team, error)
	ClearAllTeams(ctx context.Context) error
}

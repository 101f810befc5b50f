package gateway

import (
	"context"

	"github.com/google/uuid"

	"github.com/clausops/escaperoom/internal/models"
)

// Disabled is the standalone-mode gateway. Every operation no-ops with
// an empty result and never returns an error, so the game is fully
// playable with no store configured.
type Disabled struct{}

var _ Gateway = Disabled{}

func (Disabled) RegisterTeam(context.Context, string) (*models.Team, error) {
	return nil, nil
}

func (Disabled) UpdateTeamRoom(context.Context, uuid.UUID, int) error {
	return nil
}

func (Disabled) CompleteTeamGame(context.Context, uuid.UUID, int, map[string]int) error {
	return nil
}

func (Disabled) RequestHint(context.Context, uuid.UUID, string, int) (*models.HintRequest, error) {
	return nil, nil
}

func (Disabled) GetApprovedHints(context.Context, uuid.UUID) ([]models.HintRequest, error) {
	return nil, nil
}

func (Disabled) GetAllTeams(context.Context) ([]models.Team, error) {
	return nil, nil
}

func (Disabled) GetPendingHintRequests(context.Context) ([]models.HintRequest, error) {
	return nil, nil
}

func (Disabled) ResolveHintRequest(context.Context, uuid.UUID, bool) (*models.HintRequest, error) {
	return nil, nil
}

func (Disabled) GetGameState(context.Context) (*models.GameState, error) {
	return nil, nil
}

func (Disabled) SetGameActive(context.Context, bool) error {
	return nil
}

func (Disabled) Leaderboard(context.Context, int) ([]models.Team, error) {
	return nil, nil
}

func (Disabled) ClearAllTeams(context.Context) error {
	return nil
}

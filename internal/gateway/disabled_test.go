package gateway

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

// Standalone mode: every gateway call must no-op with an empty result
// and never error, so gameplay is unaffected by a missing store.
func TestDisabledGatewayNeverErrors(t *testing.T) {
	ctx := context.Background()
	var g Gateway = Disabled{}
	id := uuid.New()

	team, err := g.RegisterTeam(ctx, "Holly Jolly")
	if err != nil || team != nil {
		t.Errorf("RegisterTeam = (%v, %v), want (nil, nil)", team, err)
	}
	if err := g.UpdateTeamRoom(ctx, id, 3); err != nil {
		t.Errorf("UpdateTeamRoom: %v", err)
	}
	if err := g.CompleteTeamGame(ctx, id, 120, map[string]int{"room1": 1}); err != nil {
		t.Errorf("CompleteTeamGame: %v", err)
	}
	req, err := g.RequestHint(ctx, id, "room1", 1)
	if err != nil || req != nil {
		t.Errorf("RequestHint = (%v, %v), want (nil, nil)", req, err)
	}
	hints, err := g.GetApprovedHints(ctx, id)
	if err != nil || len(hints) != 0 {
		t.Errorf("GetApprovedHints = (%v, %v), want (empty, nil)", hints, err)
	}
	teams, err := g.GetAllTeams(ctx)
	if err != nil || len(teams) != 0 {
		t.Errorf("GetAllTeams = (%v, %v), want (empty, nil)", teams, err)
	}
	pending, err := g.GetPendingHintRequests(ctx)
	if err != nil || len(pending) != 0 {
		t.Errorf("GetPendingHintRequests = (%v, %v), want (empty, nil)", pending, err)
	}
	resolved, err := g.ResolveHintRequest(ctx, id, true)
	if err != nil || resolved != nil {
		t.Errorf("ResolveHintRequest = (%v, %v), want (nil, nil)", resolved, err)
	}
	state, err := g.GetGameState(ctx)
	if err != nil || state != nil {
		t.Errorf("GetGameState = (%v, %v), want (nil, nil)", state, err)
	}
	if err := g.SetGameActive(ctx, true); err != nil {
		t.Errorf("SetGameActive: %v", err)
	}
	board, err := g.Leaderboard(ctx, 10)
	if err != nil || len(board) != 0 {
		t.Errorf("Leaderboard = (%v, %v), want (empty, nil)", board, err)
	}
	if err := g.ClearAllTeams(ctx); err != nil {
		t.Errorf("ClearAllTeams: %v", err)
	}
}

package realtime

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Handler handles WebSocket upgrade requests.
type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// HandleTeamConnection subscribes a client to one team's events.
func (h *Handler) HandleTeamConnection(w http.ResponseWriter, r *http.Request) {
	teamIDStr := r.URL.Query().Get("team_id")
	if teamIDStr == "" {
		http.Error(w, "team_id is required", http.StatusBadRequest)
		return
	}

	teamID, err := uuid.Parse(teamIDStr)
	if err != nil {
		http.Error(w, "invalid team_id format", http.StatusBadRequest)
		return
	}

	if err := h.hub.UpgradeTeamConnection(w, r, teamID); err != nil {
		log.Error().
			Err(err).
			Str("team_id", teamID.String()).
			Msg("failed to upgrade WebSocket connection")
		http.Error(w, "failed to upgrade connection", http.StatusInternalServerError)
	}
}

// HandleFacilitatorConnection subscribes a dashboard client to all events.
func (h *Handler) HandleFacilitatorConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.hub.UpgradeFacilitatorConnection(w, r); err != nil {
		log.Error().Err(err).Msg("failed to upgrade facilitator WebSocket connection")
		http.Error(w, "failed to upgrade connection", http.StatusInternalServerError)
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *Handler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	teamConns, facilitatorConns, activeTeams := h.hub.Stats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"team_connections":%d,"facilitator_connections":%d,"active_teams":%d}`,
		teamConns, facilitatorConns, activeTeams)
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/team", h.HandleTeamConnection)
	mux.HandleFunc("/ws/facilitator", h.HandleFacilitatorConnection)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
}

package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// facilitatorTokenTTL bounds how long a dashboard login stays valid.
const facilitatorTokenTTL = 12 * time.Hour

// handleLogin exchanges the facilitator password for a bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Password != s.config.FacilitatorPassword {
		log.Warn().Str("remote", r.RemoteAddr).Msg("facilitator login rejected")
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}

	token := uuid.New().String()
	s.mu.Lock()
	s.tokens[token] = time.Now().Add(facilitatorTokenTTL)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, struct {
		Token string `json:"token"`
	}{Token: token})
}

// facilitator wraps a handler with bearer-token auth.
func (s *Server) facilitator(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		expiry, ok := s.tokens[token]
		if ok && time.Now().After(expiry) {
			delete(s.tokens, token)
			ok = false
		}
		s.mu.Unlock()

		if token == "" || !ok {
			writeError(w, http.StatusUnauthorized, "facilitator login required")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.gw.GetAllTeams(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list teams")
		writeError(w, http.StatusBadGateway, "teams could not be listed")
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

func (s *Server) handlePendingHints(w http.ResponseWriter, r *http.Request) {
	hints, err := s.gw.GetPendingHintRequests(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list pending hint requests")
		writeError(w, http.StatusBadGateway, "hint requests could not be listed")
		return
	}
	writeJSON(w, http.StatusOK, hints)
}

func (s *Server) handleApproveHint(w http.ResponseWriter, r *http.Request) {
	s.resolveHint(w, r, true)
}

func (s *Server) handleDenyHint(w http.ResponseWriter, r *http.Request) {
	s.resolveHint(w, r, false)
}

func (s *Server) resolveHint(w http.ResponseWriter, r *http.Request, approve bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hint request id")
		return
	}

	hr, err := s.gw.ResolveHintRequest(r.Context(), id, approve)
	if err != nil {
		// Resolution is terminal; a second attempt reads as not found.
		writeError(w, http.StatusNotFound, "hint request not found or already resolved")
		return
	}
	writeJSON(w, http.StatusOK, hr)
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	state, err := s.gw.GetGameState(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to read game state")
		writeError(w, http.StatusBadGateway, "game state could not be read")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleGameStart(w http.ResponseWriter, r *http.Request) {
	s.setGameActive(w, r, true)
}

func (s *Server) handleGameEnd(w http.ResponseWriter, r *http.Request) {
	s.setGameActive(w, r, false)
}

func (s *Server) setGameActive(w http.ResponseWriter, r *http.Request, active bool) {
	if err := s.gw.SetGameActive(r.Context(), active); err != nil {
		log.Error().Err(err).Bool("active", active).Msg("failed to set game state")
		writeError(w, http.StatusBadGateway, "game state could not be updated")
		return
	}
	log.Info().Bool("active", active).Msg("game state changed")
	writeJSON(w, http.StatusOK, struct {
		IsActive bool `json:"is_active"`
	}{IsActive: active})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	teams, err := s.gw.Leaderboard(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to read leaderboard")
		writeError(w, http.StatusBadGateway, "leaderboard could not be read")
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// handleClearTeams wipes every team and hint request between game
// nights.
func (s *Server) handleClearTeams(w http.ResponseWriter, r *http.Request) {
	if err := s.gw.ClearAllTeams(r.Context()); err != nil {
		log.Error().Err(err).Msg("failed to clear teams")
		writeError(w, http.StatusBadGateway, "teams could not be cleared")
		return
	}
	log.Info().Msg("all teams cleared")
	w.WriteHeader(http.StatusNoContent)
}

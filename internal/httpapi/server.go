package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/clausops/escaperoom/internal/gateway"
	"github.com/clausops/escaperoom/internal/session"
	"github.com/clausops/escaperoom/internal/session/sessionstore"
)

// DefaultFacilitatorPassword gates the facilitator console when no
// password is configured.
const DefaultFacilitatorPassword = "Rudolph"

// Config holds the API server's tunables.
type Config struct {
	DevMode             bool
	TimeBudget          int
	FacilitatorPassword string
}

// Server exposes the player and facilitator REST surfaces. WebSocket
// routes are registered separately by the realtime handler.
type Server struct {
	registry  *sessionstore.Registry
	snapshots session.SnapshotStore
	gw        gateway.Gateway
	config    Config

	mu     sync.Mutex
	tokens map[string]time.Time
}

func NewServer(registry *sessionstore.Registry, snapshots session.SnapshotStore, gw gateway.Gateway, cfg Config) *Server {
	if cfg.FacilitatorPassword == "" {
		cfg.FacilitatorPassword = DefaultFacilitatorPassword
	}
	if cfg.TimeBudget <= 0 {
		cfg.TimeBudget = session.DefaultTimeBudget
	}
	return &Server{
		registry:  registry,
		snapshots: snapshots,
		gw:        gw,
		config:    cfg,
		tokens:    make(map[string]time.Time),
	}
}

// RegisterRoutes attaches every REST route to the mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Player surface
	mux.HandleFunc("POST /api/session", s.handleOpenSession)
	mux.HandleFunc("GET /api/session/{id}", s.handleSessionState)
	mux.HandleFunc("POST /api/session/{id}/team-name", s.handleTeamName)
	mux.HandleFunc("POST /api/session/{id}/proceed", s.handleProceed)
	mux.HandleFunc("POST /api/session/{id}/start", s.handleStart)
	mux.HandleFunc("POST /api/session/{id}/answer", s.handleAnswer)
	mux.HandleFunc("POST /api/session/{id}/hint", s.handleHint)
	mux.HandleFunc("POST /api/session/{id}/hint-request", s.handleHintRequest)
	mux.HandleFunc("POST /api/session/{id}/reconcile-hints", s.handleReconcileHints)
	mux.HandleFunc("POST /api/session/{id}/reset", s.handleReset)
	mux.HandleFunc("POST /api/session/{id}/goto", s.handleGoToRoom)

	// Facilitator surface
	mux.HandleFunc("POST /api/facilitator/login", s.handleLogin)
	mux.HandleFunc("GET /api/facilitator/teams", s.facilitator(s.handleTeams))
	mux.HandleFunc("GET /api/facilitator/hints", s.facilitator(s.handlePendingHints))
	mux.HandleFunc("POST /api/facilitator/hints/{id}/approve", s.facilitator(s.handleApproveHint))
	mux.HandleFunc("POST /api/facilitator/hints/{id}/deny", s.facilitator(s.handleDenyHint))
	mux.HandleFunc("GET /api/facilitator/game-state", s.facilitator(s.handleGameState))
	mux.HandleFunc("POST /api/facilitator/game/start", s.facilitator(s.handleGameStart))
	mux.HandleFunc("POST /api/facilitator/game/end", s.facilitator(s.handleGameEnd))
	mux.HandleFunc("GET /api/facilitator/leaderboard", s.facilitator(s.handleLeaderboard))
	mux.HandleFunc("POST /api/facilitator/teams/clear", s.facilitator(s.handleClearTeams))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}

// Handler wraps the routed mux with CORS and h2c.
func (s *Server) Handler(mux *http.ServeMux) http.Handler {
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})
	return h2c.NewHandler(c.Handler(mux), &http2.Server{})
}

// sessionFor resolves a session by ID, creating it (and resuming any
// persisted snapshot) on first sight.
func (s *Server) sessionFor(id string) *session.Session {
	if sess, ok := s.registry.Get(id); ok {
		return sess
	}

	sess := session.New(session.Config{
		ID:         id,
		TimeBudget: s.config.TimeBudget,
		DevMode:    s.config.DevMode,
		Mirror:     s.gw,
		Snapshots:  s.snapshots,
	})
	s.registry.Set(id, sess)
	return sess
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

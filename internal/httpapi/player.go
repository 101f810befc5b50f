package httpapi

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clausops/escaperoom/internal/catalog"
	"github.com/clausops/escaperoom/internal/flow"
	"github.com/clausops/escaperoom/internal/session"
)

// wrongAnswerMessage is shown in-fiction; a wrong answer is a normal
// game beat, not an API error.
const wrongAnswerMessage = "The workshop door stays shut. Check the clues once more and try again."

// stateResponse is the full client-facing view of one session.
type stateResponse struct {
	State    session.State `json:"state"`
	View     flow.View     `json:"view"`
	Progress progressInfo  `json:"progress"`
	MaxHints int           `json:"max_hints"`
}

type progressInfo struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

func stateOf(sess *session.Session) stateResponse {
	st := sess.State()
	completed, total := flow.Progress(st.CurrentRoom)
	return stateResponse{
		State:    st,
		View:     flow.Route(st.CurrentRoom),
		Progress: progressInfo{Completed: completed, Total: total},
		MaxHints: catalog.MaxHints,
	}
}

// handleOpenSession creates a session, or resumes one when the client
// supplies an ID it held before a reload.
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	sess := s.sessionFor(req.SessionID)
	writeJSON(w, http.StatusOK, stateOf(sess))
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r.PathValue("id"))
	writeJSON(w, http.StatusOK, stateOf(sess))
}

func (s *Server) handleTeamName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if utf8.RuneCountInString(req.Name) > session.MaxTeamNameLen {
		writeError(w, http.StatusBadRequest, "team name too long")
		return
	}

	sess := s.sessionFor(r.PathValue("id"))
	if err := sess.SetTeamName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, "team name is required")
		return
	}

	// Register the team remotely so the facilitator dashboard sees it.
	// Registration failure never blocks play.
	team, err := s.gw.RegisterTeam(r.Context(), sess.TeamName())
	if err != nil {
		log.Warn().Err(err).Str("session_id", sess.ID()).Msg("remote team registration failed")
	} else if team != nil {
		sess.SetLiveTeamID(team.ID)
	}

	writeJSON(w, http.StatusOK, stateOf(sess))
}

func (s *Server) handleProceed(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r.PathValue("id"))
	sess.ProceedToTeamEntry()
	writeJSON(w, http.StatusOK, stateOf(sess))
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r.PathValue("id"))
	sess.StartGame()
	writeJSON(w, http.StatusOK, stateOf(sess))
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Room   int    `json:"room"`
		Answer string `json:"answer"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	sess := s.sessionFor(r.PathValue("id"))
	correct, err := sess.SubmitAnswer(req.Room, req.Answer)
	switch {
	case errors.Is(err, session.ErrNotPuzzleRoom):
		writeError(w, http.StatusBadRequest, "not a puzzle room")
		return
	case errors.Is(err, session.ErrRoomMismatch):
		writeError(w, http.StatusConflict, "answer does not match the current room")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "answer could not be processed")
		return
	}

	resp := struct {
		Correct bool          `json:"correct"`
		Message string        `json:"message,omitempty"`
		State   stateResponse `json:"state"`
	}{
		Correct: correct,
		State:   stateOf(sess),
	}
	if !correct {
		resp.Message = wrongAnswerMessage
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHint unlocks the next hint directly (self-serve mode).
func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Room int `json:"room"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	key := catalog.RoomKey(req.Room)
	sess := s.sessionFor(r.PathValue("id"))
	n, err := sess.UseHint(key)
	switch {
	case errors.Is(err, session.ErrNotPuzzleRoom):
		writeError(w, http.StatusBadRequest, "not a puzzle room")
		return
	case errors.Is(err, session.ErrHintLimit):
		writeError(w, http.StatusConflict, "all hints for this room are already unlocked")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "hint could not be unlocked")
		return
	}

	text, _ := catalog.HintText(key, n)
	writeJSON(w, http.StatusOK, struct {
		Room      int    `json:"room"`
		HintsUsed int    `json:"hints_used"`
		Hint      string `json:"hint"`
	}{Room: req.Room, HintsUsed: n, Hint: text})
}

// handleHintRequest files a pending hint request for facilitator
// approval (facilitated mode).
func (s *Server) handleHintRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Room int `json:"room"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	key := catalog.RoomKey(req.Room)
	if key == "" {
		writeError(w, http.StatusBadRequest, "not a puzzle room")
		return
	}

	sess := s.sessionFor(r.PathValue("id"))
	teamID, ok := sess.LiveTeamID()
	if !ok {
		writeError(w, http.StatusConflict, "session has no registered team")
		return
	}

	next := sess.HintsUsed()[key] + 1
	if next > catalog.MaxHints {
		writeError(w, http.StatusConflict, "all hints for this room are already unlocked")
		return
	}

	hr, err := s.gw.RequestHint(r.Context(), teamID, key, next)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sess.ID()).Msg("hint request failed")
		writeError(w, http.StatusBadGateway, "hint request could not be filed")
		return
	}
	writeJSON(w, http.StatusOK, hr)
}

// handleReconcileHints raises local hint counts to match facilitator
// approvals. Counts only ever go up.
func (s *Server) handleReconcileHints(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r.PathValue("id"))
	teamID, ok := sess.LiveTeamID()
	if !ok {
		writeError(w, http.StatusConflict, "session has no registered team")
		return
	}

	approved, err := s.gw.GetApprovedHints(r.Context(), teamID)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sess.ID()).Msg("approved hint fetch failed")
		writeError(w, http.StatusBadGateway, "approved hints could not be fetched")
		return
	}

	counts := make(map[string]int)
	for _, hr := range approved {
		if hr.HintNumber > counts[hr.RoomKey] {
			counts[hr.RoomKey] = hr.HintNumber
		}
	}
	for key, n := range counts {
		sess.RaiseHintsTo(key, n)
	}

	writeJSON(w, http.StatusOK, struct {
		HintsUsed map[string]int `json:"hints_used"`
	}{HintsUsed: sess.HintsUsed()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r.PathValue("id"))
	sess.ResetGame()
	writeJSON(w, http.StatusOK, stateOf(sess))
}

// handleGoToRoom is the dev-mode room jump. It is rejected outright
// unless the server runs with dev mode on.
func (s *Server) handleGoToRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Room int `json:"room"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	sess := s.sessionFor(r.PathValue("id"))
	if err := sess.GoToRoom(req.Room); err != nil {
		if errors.Is(err, session.ErrDevModeDisabled) {
			writeError(w, http.StatusForbidden, "dev mode is disabled")
			return
		}
		writeError(w, http.StatusInternalServerError, "room jump failed")
		return
	}
	writeJSON(w, http.StatusOK, stateOf(sess))
}

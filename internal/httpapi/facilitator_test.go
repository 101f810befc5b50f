package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func login(t *testing.T, mux *http.ServeMux, password string) (string, int) {
	t.Helper()
	rec := doJSON(t, mux, http.MethodPost, "/api/facilitator/login", `{"password":"`+password+`"}`, nil)
	if rec.Code != http.StatusOK {
		return "", rec.Code
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token, rec.Code
}

func TestLoginDefaultPassword(t *testing.T) {
	_, mux := newTestServer(false)

	if _, code := login(t, mux, "Grinch"); code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d, want %d", code, http.StatusUnauthorized)
	}

	token, code := login(t, mux, "Rudolph")
	if code != http.StatusOK {
		t.Fatalf("login status = %d, want %d", code, http.StatusOK)
	}
	if token == "" {
		t.Fatal("login returned empty token")
	}
}

func TestFacilitatorRoutesRequireToken(t *testing.T) {
	_, mux := newTestServer(false)

	rec := doJSON(t, mux, http.MethodGet, "/api/facilitator/teams", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/facilitator/teams", "", map[string]string{
		"Authorization": "Bearer not-a-real-token",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestFacilitatorSurfaceWithDisabledGateway(t *testing.T) {
	_, mux := newTestServer(false)
	token, _ := login(t, mux, "Rudolph")
	auth := map[string]string{"Authorization": "Bearer " + token}

	for _, path := range []string{
		"/api/facilitator/teams",
		"/api/facilitator/hints",
		"/api/facilitator/game-state",
		"/api/facilitator/leaderboard",
	} {
		rec := doJSON(t, mux, http.MethodGet, path, "", auth)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}

	for _, path := range []string{
		"/api/facilitator/game/start",
		"/api/facilitator/game/end",
	} {
		rec := doJSON(t, mux, http.MethodPost, path, "", auth)
		if rec.Code != http.StatusOK {
			t.Fatalf("POST %s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}

	rec := doJSON(t, mux, http.MethodPost, "/api/facilitator/teams/clear", "", auth)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("clear teams status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestResolveHintValidation(t *testing.T) {
	_, mux := newTestServer(false)
	token, _ := login(t, mux, "Rudolph")
	auth := map[string]string{"Authorization": "Bearer " + token}

	rec := doJSON(t, mux, http.MethodPost, "/api/facilitator/hints/not-a-uuid/approve", "", auth)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	// Disabled gateway resolves without error, so a well-formed id
	// succeeds even though nothing exists remotely.
	rec = doJSON(t, mux, http.MethodPost, "/api/facilitator/hints/"+uuid.New().String()+"/deny", "", auth)
	if rec.Code != http.StatusOK {
		t.Fatalf("deny status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestLeaderboardLimitValidation(t *testing.T) {
	_, mux := newTestServer(false)
	token, _ := login(t, mux, "Rudolph")
	auth := map[string]string{"Authorization": "Bearer " + token}

	rec := doJSON(t, mux, http.MethodGet, "/api/facilitator/leaderboard?limit=0", "", auth)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("limit=0 status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/facilitator/leaderboard?limit=5", "", auth)
	if rec.Code != http.StatusOK {
		t.Fatalf("limit=5 status = %d, want %d", rec.Code, http.StatusOK)
	}
}

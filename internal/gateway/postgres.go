package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/clausops/escaperoom/internal/events"
	"github.com/clausops/escaperoom/internal/models"
)

// Postgres implements Gateway against the relational store. Every
// mutation writes its outbox event in the same transaction as the data
// change, so the realtime fan-out never observes a change that did not
// commit.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a Postgres gateway.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

var _ Gateway = (*Postgres)(nil)

func (p *Postgres) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertOutbox(ctx context.Context, tx *sql.Tx, teamID uuid.NullUUID, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO outbox (id, team_id, event_type, payload)
        VALUES ($1, $2, $3, $4)
    `, uuid.New(), teamID, eventType, data); err != nil {
		return fmt.Errorf("failed to insert %s outbox event: %w", eventType, err)
	}
	return nil
}

// RegisterTeam creates a team row at the team-entry room.
func (p *Postgres) RegisterTeam(ctx context.Context, name string) (*models.Team, error) {
	team := &models.Team{
		ID:          uuid.New(),
		TeamName:    name,
		CurrentRoom: models.RoomTeamEntry,
	}

	err := p.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
            INSERT INTO teams (id, team_name, current_room)
            VALUES ($1, $2, $3)
            RETURNING created_at
        `, team.ID, team.TeamName, team.CurrentRoom)
		if err := row.Scan(&team.CreatedAt); err != nil {
			return fmt.Errorf("failed to create team: %w", err)
		}

		return insertOutbox(ctx, tx, uuid.NullUUID{UUID: team.ID, Valid: true},
			events.TypeTeamRegistered, events.TeamRegisteredPayload{
				TeamID:       team.ID.String(),
				TeamName:     team.TeamName,
				RegisteredAt: team.CreatedAt,
			})
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// UpdateTeamRoom mirrors a room change. The server-side start timestamp
// is captured on the first move into room 1.
func (p *Postgres) UpdateTeamRoom(ctx context.Context, teamID uuid.UUID, room int) error {
	return p.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
            UPDATE teams
            SET current_room = $2,
                started_at = CASE WHEN $2 = 1 AND started_at IS NULL THEN now() ELSE started_at END
            WHERE id = $1
        `, teamID, room)
		if err != nil {
			return fmt.Errorf("failed to update team room: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("team %s not found", teamID)
		}

		return insertOutbox(ctx, tx, uuid.NullUUID{UUID: teamID, Valid: true},
			events.TypeTeamRoomChanged, events.TeamRoomChangedPayload{
				TeamID:    teamID.String(),
				Room:      room,
				ChangedAt: time.Now().UTC(),
			})
	})
}

// CompleteTeamGame mirrors game completion with the hints snapshot.
func (p *Postgres) CompleteTeamGame(ctx context.Context, teamID uuid.UUID, seconds int, hints map[string]int) error {
	hintsJSON, err := marshalHints(hints)
	if err != nil {
		return err
	}

	return p.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
            UPDATE teams
            SET current_room = $4,
                completion_secs = $2,
                hints_used = $3,
                completed_at = now()
            WHERE id = $1
        `, teamID, seconds, hintsJSON, models.RoomCompletion)
		if err != nil {
			return fmt.Errorf("failed to complete team game: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("team %s not found", teamID)
		}

		return insertOutbox(ctx, tx, uuid.NullUUID{UUID: teamID, Valid: true},
			events.TypeTeamCompleted, events.TeamCompletedPayload{
				TeamID:         teamID.String(),
				CompletionSecs: seconds,
				HintsUsed:      hints,
				CompletedAt:    time.Now().UTC(),
			})
	})
}

// RequestHint creates a pending hint-request row.
func (p *Postgres) RequestHint(ctx context.Context, teamID uuid.UUID, roomKey string, hintNumber int) (*models.HintRequest, error) {
	req := &models.HintRequest{
		ID:         uuid.New(),
		TeamID:     teamID,
		RoomKey:    roomKey,
		HintNumber: hintNumber,
		Status:     models.HintStatusPending,
	}

	err := p.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
            INSERT INTO hint_requests (id, team_id, room_key, hint_number, status)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING requested_at
        `, req.ID, req.TeamID, req.RoomKey, req.HintNumber, req.Status)
		if err := row.Scan(&req.RequestedAt); err != nil {
			return fmt.Errorf("failed to create hint request: %w", err)
		}

		return insertOutbox(ctx, tx, uuid.NullUUID{UUID: teamID, Valid: true},
			events.TypeHintRequested, events.HintRequestedPayload{
				RequestID:   req.ID.String(),
				TeamID:      teamID.String(),
				RoomKey:     roomKey,
				HintNumber:  hintNumber,
				RequestedAt: req.RequestedAt,
			})
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// GetApprovedHints returns a team's approved requests ordered by room
// and hint number.
func (p *Postgres) GetApprovedHints(ctx context.Context, teamID uuid.UUID) ([]models.HintRequest, error) {
	rows, err := p.db.QueryContext(ctx, `
        SELECT id, team_id, room_key, hint_number, status, requested_at, resolved_at
        FROM hint_requests
        WHERE team_id = $1 AND status = $2
        ORDER BY room_key, hint_number
    `, teamID, models.HintStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to get approved hints: %w", err)
	}
	defer rows.Close()
	return scanHintRequests(rows)
}

// GetAllTeams returns every team row, oldest first.
func (p *Postgres) GetAllTeams(ctx context.Context) ([]models.Team, error) {
	rows, err := p.db.QueryContext(ctx, `
        SELECT id, team_name, current_room, started_at, completed_at, completion_secs, hints_used, created_at
        FROM teams
        ORDER BY created_at
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}
	defer rows.Close()
	return scanTeams(rows)
}

// GetPendingHintRequests returns unresolved requests, oldest first.
func (p *Postgres) GetPendingHintRequests(ctx context.Context) ([]models.HintRequest, error) {
	rows, err := p.db.QueryContext(ctx, `
        SELECT id, team_id, room_key, hint_number, status, requested_at, resolved_at
        FROM hint_requests
        WHERE status = $1
        ORDER BY requested_at
    `, models.HintStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending hint requests: %w", err)
	}
	defer rows.Close()
	return scanHintRequests(rows)
}

// ResolveHintRequest transitions a pending request to approved or
// denied. Requests are terminal once resolved; resolving twice fails.
func (p *Postgres) ResolveHintRequest(ctx context.Context, id uuid.UUID, approve bool) (*models.HintRequest, error) {
	status := models.HintStatusDenied
	if approve {
		status = models.HintStatusApproved
	}

	req := &models.HintRequest{ID: id, Status: status}
	err := p.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
            UPDATE hint_requests
            SET status = $2, resolved_at = now()
            WHERE id = $1 AND status = $3
            RETURNING team_id, room_key, hint_number, requested_at, resolved_at
        `, id, status, models.HintStatusPending)

		var resolvedAt sql.NullTime
		if err := row.Scan(&req.TeamID, &req.RoomKey, &req.HintNumber, &req.RequestedAt, &resolvedAt); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("hint request %s not found or already resolved", id)
			}
			return fmt.Errorf("failed to resolve hint request: %w", err)
		}
		if resolvedAt.Valid {
			req.ResolvedAt = &resolvedAt.Time
		}

		return insertOutbox(ctx, tx, uuid.NullUUID{UUID: req.TeamID, Valid: true},
			events.TypeHintResolved, events.HintResolvedPayload{
				RequestID:  id.String(),
				TeamID:     req.TeamID.String(),
				RoomKey:    req.RoomKey,
				HintNumber: req.HintNumber,
				Status:     string(status),
				ResolvedAt: resolvedTime(req.ResolvedAt),
			})
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// GetGameState returns the singleton game-active row. A missing row
// reads as inactive rather than an error.
func (p *Postgres) GetGameState(ctx context.Context) (*models.GameState, error) {
	row := p.db.QueryRowContext(ctx, `
        SELECT is_active, started_at, ended_at, updated_at
        FROM game_state
        WHERE id = 1
    `)

	var state models.GameState
	var startedAt, endedAt sql.NullTime
	if err := row.Scan(&state.IsActive, &startedAt, &endedAt, &state.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.GameState{}, nil
		}
		return nil, fmt.Errorf("failed to get game state: %w", err)
	}
	if startedAt.Valid {
		state.StartedAt = &startedAt.Time
	}
	if endedAt.Valid {
		state.EndedAt = &endedAt.Time
	}
	return &state, nil
}

// SetGameActive toggles the global game flag.
func (p *Postgres) SetGameActive(ctx context.Context, active bool) error {
	return p.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
            UPDATE game_state
            SET is_active = $1,
                started_at = CASE WHEN $1 THEN now() ELSE started_at END,
                ended_at = CASE WHEN $1 THEN NULL ELSE now() END,
                updated_at = now()
            WHERE id = 1
        `, active); err != nil {
			return fmt.Errorf("failed to set game active: %w", err)
		}

		return insertOutbox(ctx, tx, uuid.NullUUID{},
			events.TypeGameStateChanged, events.GameStateChangedPayload{
				IsActive:  active,
				ChangedAt: time.Now().UTC(),
			})
	})
}

// Leaderboard returns completed teams, fastest first.
func (p *Postgres) Leaderboard(ctx context.Context, limit int) ([]models.Team, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := p.db.QueryContext(ctx, `
        SELECT id, team_name, current_room, started_at, completed_at, completion_secs, hints_used, created_at
        FROM teams
        WHERE completion_secs IS NOT NULL
        ORDER BY completion_secs
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()
	return scanTeams(rows)
}

// ClearAllTeams removes every team and hint request. Facilitator reset
// between events.
func (p *Postgres) ClearAllTeams(ctx context.Context) error {
	return p.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM hint_requests`); err != nil {
			return fmt.Errorf("failed to clear hint requests: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM teams`); err != nil {
			return fmt.Errorf("failed to clear teams: %w", err)
		}
		return nil
	})
}

func resolvedTime(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Now().UTC()
}

func marshalHints(hints map[string]int) (pqtype.NullRawMessage, error) {
	if hints == nil {
		return pqtype.NullRawMessage{}, nil
	}
	data, err := json.Marshal(hints)
	if err != nil {
		return pqtype.NullRawMessage{}, fmt.Errorf("failed to marshal hints snapshot: %w", err)
	}
	return pqtype.NullRawMessage{RawMessage: data, Valid: true}, nil
}

func scanTeams(rows *sql.Rows) ([]models.Team, error) {
	var teams []models.Team
	for rows.Next() {
		var (
			team           models.Team
			startedAt      sql.NullTime
			completedAt    sql.NullTime
			completionSecs sql.NullInt64
			hintsUsed      pqtype.NullRawMessage
		)
		if err := rows.Scan(&team.ID, &team.TeamName, &team.CurrentRoom,
			&startedAt, &completedAt, &completionSecs, &hintsUsed, &team.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		if startedAt.Valid {
			team.StartedAt = &startedAt.Time
		}
		if completedAt.Valid {
			team.CompletedAt = &completedAt.Time
		}
		if completionSecs.Valid {
			secs := int(completionSecs.Int64)
			team.CompletionSecs = &secs
		}
		if hintsUsed.Valid {
			if err := json.Unmarshal(hintsUsed.RawMessage, &team.HintsUsed); err != nil {
				team.HintsUsed = nil
			}
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func scanHintRequests(rows *sql.Rows) ([]models.HintRequest, error) {
	var reqs []models.HintRequest
	for rows.Next() {
		var (
			req        models.HintRequest
			resolvedAt sql.NullTime
		)
		if err := rows.Scan(&req.ID, &req.TeamID, &req.RoomKey, &req.HintNumber,
			&req.Status, &req.RequestedAt, &resolvedAt); err != nil {
			return nil, fmt.Errorf("failed to scan hint request: %w", err)
		}
		if resolvedAt.Valid {
			req.ResolvedAt = &resolvedAt.Time
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

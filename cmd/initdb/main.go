package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/clausops/escaperoom/internal/dbconfig"
)

// Schema for the remote projection: team progress, hint requests, the
// singleton game-state row, and the transactional outbox.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS teams (
		id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		team_name       TEXT NOT NULL,
		current_room    INT NOT NULL DEFAULT 0,
		started_at      TIMESTAMPTZ,
		completed_at    TIMESTAMPTZ,
		completion_secs INT,
		hints_used      JSONB,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS hint_requests (
		id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		team_id      UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		room_key     TEXT NOT NULL,
		hint_number  INT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'PENDING',
		requested_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		resolved_at  TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_hint_requests_status
		ON hint_requests (status)`,
	`CREATE TABLE IF NOT EXISTS game_state (
		id         INT PRIMARY KEY,
		is_active  BOOLEAN NOT NULL DEFAULT FALSE,
		started_at TIMESTAMPTZ,
		ended_at   TIMESTAMPTZ,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS outbox (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		team_id    UUID,
		event_type TEXT NOT NULL,
		payload    JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		sent_at    TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_unsent
		ON outbox (created_at) WHERE sent_at IS NULL`,
	// Seed the singleton game-state row.
	`INSERT INTO game_state (id, is_active)
		VALUES (1, FALSE)
		ON CONFLICT (id) DO NOTHING`,
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load .env file: %v\n", err)
	}

	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(context.Background(), cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	for _, stmt := range statements {
		if _, err := pool.Exec(context.Background(), stmt); err != nil {
			fmt.Fprintf(os.Stderr, "schema statement failed: %v\n%s\n", err, stmt)
			os.Exit(1)
		}
	}

	fmt.Printf("Schema ready on database %s\n", cfg.Database)
}

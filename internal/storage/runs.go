package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// RunRecord is a stored discovery run. Payload holds the JSON-encoded run.
type RunRecord struct {
	ID          string
	ClaimID     string
	Strategy    string
	Status      string
	StartedAt   time.Time
	CompletedAt *time.Time
	Message     string
	Payload     []byte
}

// SaveRun upserts a discovery run.
func (db *DB) SaveRun(ctx context.Context, r RunRecord) error {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return fmt.Errorf("run id %q: %w", r.ID, err)
	}

	completed := pgtype.Timestamptz{Valid: false}
	if r.CompletedAt != nil {
		completed = pgtype.Timestamptz{Time: *r.CompletedAt, Valid: true}
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO discovery_runs (id, claim_id, strategy, status, started_at, completed_at, message, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			completed_at = EXCLUDED.completed_at,
			message = EXCLUDED.message,
			payload = EXCLUDED.payload
	`, id, r.ClaimID, r.Strategy, r.Status, r.StartedAt, completed, SanitizeUTF8(r.Message), r.Payload)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	return nil
}

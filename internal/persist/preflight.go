package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/gyeh/billcheck/internal/sql"
)

// PreflightResult identifies the run a result will be saved under.
type PreflightResult struct {
	RunID        uuid.UUID
	Fingerprint  string
	AlreadySaved bool
}

// Preflight registers a run for fingerprint, or finds the existing one.
// An existing incomplete run, or any existing run under force, is reset
// and reused.
func Preflight(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, caseID, fingerprint string, force bool) (*PreflightResult, error) {
	runID := uuid.New()
	var got uuid.UUID
	err := pool.QueryRow(ctx, embedsql.RegisterRun, runID, caseID, fingerprint).Scan(&got)
	if err == nil {
		log.Info().Str("run_id", got.String()).Msg("run registered")
		return &PreflightResult{RunID: got, Fingerprint: fingerprint}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("register run: %w", err)
	}

	// ON CONFLICT DO NOTHING returned no row: the fingerprint is known.
	var status string
	if err := pool.QueryRow(ctx, embedsql.LookupRun, fingerprint).Scan(&got, &status); err != nil {
		return nil, fmt.Errorf("lookup existing run: %w", err)
	}
	if status == "complete" && !force {
		return &PreflightResult{RunID: got, Fingerprint: fingerprint, AlreadySaved: true}, nil
	}

	if _, err := pool.Exec(ctx, embedsql.ResetRun, got, caseID); err != nil {
		return nil, fmt.Errorf("reset run: %w", err)
	}
	if _, err := pool.Exec(ctx, embedsql.DeleteStagingRun, got); err != nil {
		return nil, fmt.Errorf("clear stale staging: %w", err)
	}
	log.Info().Str("run_id", got.String()).Str("previous_status", status).Msg("run reset for re-save")
	return &PreflightResult{RunID: got, Fingerprint: fingerprint}, nil
}

// UpdateStatus updates the run status.
func UpdateStatus(ctx context.Context, pool *pgxpool.Pool, runID uuid.UUID, status string) error {
	_, err := pool.Exec(ctx, embedsql.UpdateRunStatus, runID, status)
	return err
}

package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/billcheck/internal/model"
	embedsql "github.com/gyeh/billcheck/internal/sql"
)

// Finalize records the run totals, marks it complete and refreshes planner
// statistics on the detections table.
func Finalize(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, runID uuid.UUID, res *model.AnalyzerResult) error {
	_, err := pool.Exec(ctx, embedsql.FinalizeRun, runID,
		len(res.LineItems), len(res.Detections), res.Savings.TotalCents, res.Confidence.Overall)
	if err != nil {
		return fmt.Errorf("finalize run: %w", err)
	}
	if _, err := pool.Exec(ctx, embedsql.AnalyzeDetections); err != nil {
		return fmt.Errorf("analyze detections: %w", err)
	}
	log.Info().Str("run_id", runID.String()).Msg("run complete")
	return nil
}

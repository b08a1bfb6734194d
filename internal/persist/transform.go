package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/gyeh/billcheck/internal/sql"
)

// Transform upserts the run's staged detections into the serving table and
// returns the number of rows written.
func Transform(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, runID uuid.UUID) (int64, error) {
	start := time.Now()
	tag, err := pool.Exec(ctx, embedsql.TransformStagedDetections, runID)
	if err != nil {
		return 0, fmt.Errorf("transform staged detections: %w", err)
	}
	log.Info().
		Int64("rows_inserted", tag.RowsAffected()).
		Dur("duration", time.Since(start)).
		Msg("transform complete")
	return tag.RowsAffected(), nil
}

package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/billcheck/internal/db"
	"github.com/gyeh/billcheck/internal/model"
)

const stageBufferSize = 256

// StageResult holds metrics from the staging phase.
type StageResult struct {
	RowsStaged int64
	Duration   time.Duration
}

// Stage flattens detections and COPY-loads them into the staging table
// through a channel-backed CopyFromSource.
func Stage(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, runID uuid.UUID, detections []model.Detection) (*StageResult, error) {
	start := time.Now()

	ch := make(chan *model.DetectionRow, stageBufferSize)
	errCh := make(chan error, 1)

	go func() {
		defer close(ch)
		for i := range detections {
			row, err := model.ToDetectionRow(runID, &detections[i])
			if err != nil {
				errCh <- err
				return
			}
			select {
			case ch <- row:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		errCh <- nil
	}()

	source := db.NewChannelSource(ch)
	staged, err := pool.CopyFrom(ctx,
		pgx.Identifier{"billcheck", "stage_detections"},
		model.DetectionColumns(),
		source,
	)

	// COPY may stop early on error; drain so the producer can exit.
	for range ch {
	}
	if prodErr := <-errCh; prodErr != nil {
		return nil, fmt.Errorf("stage producer: %w", prodErr)
	}
	if err != nil {
		return nil, fmt.Errorf("stage copy: %w", err)
	}

	dur := time.Since(start)
	log.Info().
		Int64("rows_staged", staged).
		Dur("duration", dur).
		Msg("staging complete")
	return &StageResult{RowsStaged: staged, Duration: dur}, nil
}

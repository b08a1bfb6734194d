// Package persist saves analysis results to Postgres: register the run by
// case fingerprint, stage detections with COPY, move them into the serving
// table, then mark the run complete.
package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/billcheck/internal/model"
)

// Phase names used in PhaseError.
const (
	PhasePreflight = "preflight"
	PhaseStage     = "stage"
	PhaseTransform = "transform"
	PhaseFinalize  = "finalize"
)

// PhaseError wraps an error with the phase where it occurred.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// SaveSummary reports what Save did.
type SaveSummary struct {
	RunID           string
	Fingerprint     string
	AlreadySaved    bool
	RowsStaged      int64
	RowsServing     int64
	DurationStage   time.Duration
	DurationTotal   time.Duration
	DetectionsTotal int
}

// Save persists res under the case fingerprint. A fingerprint that already
// has a complete run is skipped unless force is set, in which case the run's
// detections are replaced.
func Save(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, res *model.AnalyzerResult, fingerprint string, force bool) (*SaveSummary, error) {
	totalStart := time.Now()
	log = log.With().Str("case_id", res.CaseID).Logger()

	pf, err := Preflight(ctx, pool, log, res.CaseID, fingerprint, force)
	if err != nil {
		return nil, &PhaseError{Phase: PhasePreflight, Err: err}
	}
	if pf.AlreadySaved {
		log.Info().
			Str("run_id", pf.RunID.String()).
			Str("sha256", fingerprint).
			Msg("case already saved, skipping (use --force to re-save)")
		return &SaveSummary{
			RunID:         pf.RunID.String(),
			Fingerprint:   fingerprint,
			AlreadySaved:  true,
			DurationTotal: time.Since(totalStart),
		}, nil
	}

	if err := UpdateStatus(ctx, pool, pf.RunID, "staging"); err != nil {
		return nil, &PhaseError{Phase: PhaseStage, Err: err}
	}
	stageResult, err := Stage(ctx, pool, log, pf.RunID, res.Detections)
	if err != nil {
		_ = UpdateStatus(ctx, pool, pf.RunID, "failed")
		return nil, &PhaseError{Phase: PhaseStage, Err: err}
	}

	serving, err := Transform(ctx, pool, log, pf.RunID)
	if err != nil {
		_ = UpdateStatus(ctx, pool, pf.RunID, "failed")
		return nil, &PhaseError{Phase: PhaseTransform, Err: err}
	}

	if err := Finalize(ctx, pool, log, pf.RunID, res); err != nil {
		_ = UpdateStatus(ctx, pool, pf.RunID, "failed")
		return nil, &PhaseError{Phase: PhaseFinalize, Err: err}
	}

	if err := Cleanup(ctx, pool, log, pf.RunID); err != nil {
		log.Warn().Err(err).Msg("staging cleanup failed (non-fatal)")
	}

	summary := &SaveSummary{
		RunID:           pf.RunID.String(),
		Fingerprint:     fingerprint,
		RowsStaged:      stageResult.RowsStaged,
		RowsServing:     serving,
		DurationStage:   stageResult.Duration,
		DurationTotal:   time.Since(totalStart),
		DetectionsTotal: len(res.Detections),
	}
	log.Info().
		Str("run_id", summary.RunID).
		Int64("rows_staged", summary.RowsStaged).
		Int64("rows_serving", summary.RowsServing).
		Dur("total_duration", summary.DurationTotal).
		Msg("result saved")
	return summary, nil
}

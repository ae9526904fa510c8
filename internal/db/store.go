package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/pcroster/internal/model"
	embedsql "github.com/gyeh/pcroster/internal/sql"
)

const copyBufferSize = 1024

// StoreResult holds metrics from loading one run.
type StoreResult struct {
	RunID         uuid.UUID
	ProvidersRows int64
	NotFoundRows  int64
	Activated     bool
	Duration      time.Duration
}

// Store loads a finished roster into the roster schema under a new run. With
// activate set, the run replaces the region's previously active run. A failed
// load removes the partial run.
func Store(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, summary *model.RunSummary, runDate time.Time, roster []model.LinkedProvider, notFound []model.NotFoundRecord, activate bool) (*StoreResult, error) {
	start := time.Now()

	runID, err := uuid.Parse(summary.RunID)
	if err != nil {
		return nil, fmt.Errorf("parse run id: %w", err)
	}

	if _, err := pool.Exec(ctx, embedsql.RegisterRun, runID, summary.Region, runDate); err != nil {
		return nil, fmt.Errorf("register run: %w", err)
	}
	log.Info().Str("run_id", runID.String()).Msg("run registered")

	res, err := load(ctx, pool, runID, summary, roster, notFound)
	if err != nil {
		if _, delErr := pool.Exec(context.WithoutCancel(ctx), embedsql.DeleteRun, runID); delErr != nil {
			log.Warn().Err(delErr).Str("run_id", runID.String()).Msg("failed run cleanup failed")
		}
		return nil, err
	}

	if activate {
		if err := Activate(ctx, pool, log, summary.Region, runID); err != nil {
			return nil, err
		}
		res.Activated = true
	}

	res.Duration = time.Since(start)
	log.Info().
		Str("run_id", runID.String()).
		Int64("providers", res.ProvidersRows).
		Int64("not_found", res.NotFoundRows).
		Bool("activated", res.Activated).
		Str("duration", res.Duration.String()).
		Msg("roster stored")
	return res, nil
}

func load(ctx context.Context, pool *pgxpool.Pool, runID uuid.UUID, summary *model.RunSummary, roster []model.LinkedProvider, notFound []model.NotFoundRecord) (*StoreResult, error) {
	providers, err := copyRows(ctx, pool, pgx.Identifier{"roster", "providers"}, ProviderColumns, len(roster), func(i int) CopyRow {
		return ProviderRow{RunID: runID, Provider: &roster[i]}
	})
	if err != nil {
		return nil, fmt.Errorf("copy providers: %w", err)
	}

	missing, err := copyRows(ctx, pool, pgx.Identifier{"roster", "not_found"}, NotFoundColumns, len(notFound), func(i int) CopyRow {
		return NotFoundRow{RunID: runID, Record: &notFound[i]}
	})
	if err != nil {
		return nil, fmt.Errorf("copy not found: %w", err)
	}

	if _, err := pool.Exec(ctx, embedsql.CompleteRun,
		runID, summary.RosterDigest, summary.ClaimsRows, summary.RegistryRows,
		summary.Residents, providers, missing,
	); err != nil {
		return nil, fmt.Errorf("complete run: %w", err)
	}

	return &StoreResult{RunID: runID, ProvidersRows: providers, NotFoundRows: missing}, nil
}

// copyRows streams n rows through a bounded channel into COPY.
func copyRows(ctx context.Context, pool *pgxpool.Pool, table pgx.Identifier, columns []string, n int, row func(i int) CopyRow) (int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan CopyRow, copyBufferSize)
	go func() {
		defer close(ch)
		for i := 0; i < n; i++ {
			select {
			case ch <- row(i):
			case <-ctx.Done():
				return
			}
		}
	}()

	return pool.CopyFrom(ctx, table, columns, NewChannelSource(ch))
}

// Activate makes runID the region's active run in one transaction.
func Activate(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, region string, runID uuid.UUID) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin activate: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, embedsql.DeactivateOlderRuns, region, runID)
	if err != nil {
		return fmt.Errorf("deactivate older runs: %w", err)
	}
	if _, err := tx.Exec(ctx, embedsql.ActivateRun, runID); err != nil {
		return fmt.Errorf("activate run: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit activate: %w", err)
	}

	log.Info().
		Str("region", region).
		Str("run_id", runID.String()).
		Int64("deactivated", tag.RowsAffected()).
		Msg("run activated")
	return nil
}

// ActiveRun describes the region's currently active run.
type ActiveRun struct {
	RunID      uuid.UUID
	RunDate    time.Time
	Digest     string
	RosterRows int64
}

// GetActiveRun returns the active run for region, or nil when none exists.
func GetActiveRun(ctx context.Context, pool *pgxpool.Pool, region string) (*ActiveRun, error) {
	var (
		run    ActiveRun
		digest *string
	)
	err := pool.QueryRow(ctx, embedsql.ActiveRun, region).Scan(&run.RunID, &run.RunDate, &digest, &run.RosterRows)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query active run: %w", err)
	}
	if digest != nil {
		run.Digest = *digest
	}
	return &run, nil
}

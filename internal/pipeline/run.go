package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/pcroster/internal/config"
	"github.com/gyeh/pcroster/internal/db"
	"github.com/gyeh/pcroster/internal/enrich"
	"github.com/gyeh/pcroster/internal/model"
	"github.com/gyeh/pcroster/internal/orgfilter"
	"github.com/gyeh/pcroster/internal/output"
	"github.com/gyeh/pcroster/internal/progress"
	"github.com/gyeh/pcroster/internal/publish"
	"github.com/gyeh/pcroster/internal/source"
)

// Deps are the optional collaborators of Run. Nil members skip their phase.
type Deps struct {
	Pool      *pgxpool.Pool
	Enrich    enrich.Source
	Publisher *publish.Publisher
	Progress  progress.Manager
}

// Loaded holds the in-memory tables and the open registry reader.
type Loaded struct {
	Inputs   Inputs
	registry *source.Reader[model.RegistryRecord]
}

// Close releases the registry reader.
func (l *Loaded) Close() error {
	return l.registry.Close()
}

// LoadInputs reads the claims, licensing and taxonomy tables, opens the
// registry for streaming and loads the organization table. Every input's
// schema is validated before any rows are processed.
func LoadInputs(log zerolog.Logger, cfg *config.Config) (*Loaded, error) {
	claims, err := source.LoadFile[model.ClaimsRecord](cfg.ClaimsPath, source.ClaimsColumns)
	if err != nil {
		return nil, fmt.Errorf("claims: %w", err)
	}
	licenses, err := source.LoadFile[model.LicenseRecord](cfg.LicensesPath, source.LicenseColumns)
	if err != nil {
		return nil, fmt.Errorf("licenses: %w", err)
	}
	codes, err := source.LoadFile[model.TaxonomyCode](cfg.TaxonomyPath, source.TaxonomyColumns)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: %w", err)
	}

	table, err := orgfilter.Load(cfg.OrgTablePath)
	if err != nil {
		return nil, fmt.Errorf("organization table: %w", err)
	}

	reg, err := source.Open[model.RegistryRecord](cfg.RegistryPath, source.RegistryColumns...)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}

	log.Info().
		Int("claims_rows", len(claims)).
		Int64("registry_rows", reg.NumRows()).
		Int("license_rows", len(licenses)).
		Int("taxonomy_rows", len(codes)).
		Int("organizations", len(table)).
		Msg("inputs loaded")

	return &Loaded{
		Inputs: Inputs{
			Claims:       claims,
			Registry:     reg,
			RegistryRows: reg.NumRows(),
			Licenses:     licenses,
			Taxonomy:     codes,
			OrgTable:     table,
		},
		registry: reg,
	}, nil
}

// Run executes the full build: load → build → enrich → write → store →
// publish. Enrich, store and publish run only when their dependency is set.
func Run(ctx context.Context, log zerolog.Logger, cfg *config.Config, deps Deps) (*model.RunSummary, error) {
	totalStart := time.Now()
	if deps.Progress == nil {
		deps.Progress = progress.NoopManager{}
	}
	runID := uuid.New()
	log = log.With().Str("run_id", runID.String()).Logger()

	// Phase 1: load
	loadStart := time.Now()
	loaded, err := LoadInputs(log, cfg)
	if err != nil {
		return nil, &PipelineError{Phase: PhaseLoad, Err: err}
	}
	defer loaded.Close()
	loadDur := time.Since(loadStart)

	// Phases 2-6: pure build
	out, err := Build(ctx, log, loaded.Inputs, OptionsFromConfig(cfg), deps.Progress)
	if err != nil {
		return nil, err
	}
	sum := out.Summary
	sum.RunID = runID.String()
	sum.DurationLoad = loadDur

	// Phase 7: enrichment
	if deps.Enrich != nil {
		enricher := enrich.New(log, deps.Enrich, enrich.Options{
			Region:      cfg.Region,
			MaxAttempts: cfg.EnrichAttempts,
			Timeout:     cfg.EnrichTimeout,
		})
		tracker := deps.Progress.NewTracker("enrichment", int64(len(out.Roster)))
		er, err := enricher.EnrichAll(ctx, out.Roster, tracker)
		if err != nil {
			return nil, &PipelineError{Phase: PhaseEnrich, Err: err}
		}
		sum.Enriched = int64(er.Enriched)
		sum.EnrichmentFailed = int64(er.Failed)
		sum.DurationEnrich = er.Duration
		sum.RosterDigest = output.RosterDigest(out.Roster)
	} else {
		log.Info().Msg("skipping enrichment (no lookup source configured)")
	}
	deps.Progress.Wait()

	// Phase 8: write
	written, err := output.Write(log, cfg.OutputDir, cfg.Region, cfg.RunDate, out.Roster, out.NotFound)
	if err != nil {
		return nil, &PipelineError{Phase: PhaseWrite, Err: err}
	}
	sum.DurationWrite = written.Duration

	// Phase 9: store
	if deps.Pool != nil {
		runDate, err := cfg.RunDateTime()
		if err != nil {
			return nil, &PipelineError{Phase: PhaseStore, Err: err}
		}
		stored, err := db.Store(ctx, deps.Pool, log, sum, runDate, out.Roster, out.NotFound, cfg.Activate)
		if err != nil {
			return nil, &PipelineError{Phase: PhaseStore, Err: err}
		}
		sum.DurationStore = stored.Duration
	}

	// Phase 10: publish
	if deps.Publisher != nil {
		sum.DurationTotal = time.Since(totalStart)
		pub, err := deps.Publisher.Publish(ctx, log, written.Paths.Files(), sum)
		if err != nil {
			return nil, &PipelineError{Phase: PhasePublish, Err: err}
		}
		sum.DurationPublish = pub.Duration
	}

	sum.DurationTotal = time.Since(totalStart)
	log.Info().
		Int64("claims_rows", sum.ClaimsRows).
		Int64("registry_rows", sum.RegistryRows).
		Int64("residents", sum.Residents).
		Int64("roster_rows", sum.RosterRows).
		Int64("not_found", sum.NotFound).
		Int64("confirmed", sum.ConfirmByStatus[model.ConfirmationConfirmed]).
		Int64("enriched", sum.Enriched).
		Str("digest", sum.RosterDigest).
		Str("total_duration", sum.DurationTotal.String()).
		Msg("roster pipeline complete")

	return sum, nil
}

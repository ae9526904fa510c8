package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gyeh/pcroster/internal/db"
	"github.com/gyeh/pcroster/internal/enrich"
	"github.com/gyeh/pcroster/internal/exitcode"
	"github.com/gyeh/pcroster/internal/logging"
	"github.com/gyeh/pcroster/internal/model"
	"github.com/gyeh/pcroster/internal/pipeline"
	"github.com/gyeh/pcroster/internal/progress"
	"github.com/gyeh/pcroster/internal/publish"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the roster and write the output tables",
	RunE:  runBuild,
}

func init() {
	f := buildCmd.Flags()
	addInputFlags(f)
	f.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Directory for the roster and not-found tables")
	f.StringVar(&cfg.RunDate, "run-date", cfg.RunDate, "Run date stamp for output names (YYYY-MM-DD)")
	f.Int64Var(&cfg.LowVolumeThreshold, "low-volume-threshold", cfg.LowVolumeThreshold, "Total claims at or below which an unmatched NPI is flagged low volume")
	f.Float64Var(&cfg.CorePerFTE, "core-per-fte", cfg.CorePerFTE, "Core prevention claims per FTE")
	f.Float64Var(&cfg.TotalPerFTE, "total-per-fte", cfg.TotalPerFTE, "Total claims per FTE")
	f.BoolVar(&cfg.Activate, "activate", cfg.Activate, "Make the stored run the region's active run")
	f.StringVar(&cfg.Progress, "progress", cfg.Progress, "Progress display: bar, log or none")
	f.StringVar(&cfg.EnrichURL, "enrich-url", "", "Base URL of the licensing lookup service (enrichment is skipped when empty)")
	f.IntVar(&cfg.EnrichAttempts, "enrich-attempts", cfg.EnrichAttempts, "Lookup attempts per provider")
	f.DurationVar(&cfg.EnrichTimeout, "enrich-timeout", cfg.EnrichTimeout, "Timeout per lookup attempt")
	f.StringVar(&cfg.S3Bucket, "s3-bucket", "", "Publish outputs to this S3 bucket")
	f.StringVar(&cfg.S3Region, "s3-region", cfg.S3Region, "AWS region of the S3 bucket")
	f.StringVar(&cfg.S3Prefix, "s3-prefix", "", "Key prefix for published outputs")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	mgr, err := progress.New(cfg.Progress)
	if err != nil {
		log.Error().Err(err).Msg("invalid progress mode")
		os.Exit(exitcode.UsageError)
	}
	deps := pipeline.Deps{Progress: mgr}

	if cfg.DSN != "" {
		pool, err := db.NewPool(ctx, cfg.DSN)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			os.Exit(exitcode.DBConnError)
		}
		defer pool.Close()
		deps.Pool = pool
	}
	if cfg.EnrichURL != "" {
		deps.Enrich = enrich.NewHTTPSource(cfg.EnrichURL)
	}
	if cfg.S3Bucket != "" {
		pub, err := publish.NewS3(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix)
		if err != nil {
			log.Error().Err(err).Msg("S3 client setup failed")
			os.Exit(exitcode.UsageError)
		}
		deps.Publisher = pub
	}

	summary, err := pipeline.Run(ctx, log, &cfg, deps)
	if err != nil {
		var pe *pipeline.PipelineError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("build failed")
			os.Exit(exitCodeFor(pe.Phase))
		}
		log.Error().Err(err).Msg("build failed")
		os.Exit(exitcode.PipelineFailure)
	}

	printSummary(summary)
	return nil
}

func exitCodeFor(phase string) int {
	switch phase {
	case pipeline.PhaseLoad, pipeline.PhaseFilter:
		return exitcode.ValidationError
	case pipeline.PhaseWrite:
		return exitcode.WriteError
	case pipeline.PhaseStore:
		return exitcode.CopyError
	case pipeline.PhasePublish:
		// Outputs are on disk and, when configured, in the database.
		return exitcode.PartialSuccess
	default:
		return exitcode.PipelineFailure
	}
}

func printSummary(s *model.RunSummary) {
	fmt.Printf("Roster complete: %d providers (%d core prevention, %d immunization-only), %d not found (%.1fs)\n",
		s.RosterRows, s.CorePrevention, s.ImmunizationOnly, s.NotFound, s.DurationTotal.Seconds())
	fmt.Printf("Licenses confirmed: %d, ambiguous: %d, no candidate: %d, mismatch: %d\n",
		s.ConfirmByStatus[model.ConfirmationConfirmed],
		s.ConfirmByStatus[model.ConfirmationAmbiguous],
		s.ConfirmByStatus[model.ConfirmationNoCandidate],
		s.ConfirmByStatus[model.ConfirmationLicenseMismatch])
	fmt.Printf("Physician FTE: %.1f core prevention, %.1f total claims\n",
		s.PhysicianCorePreventionFTE, s.PhysicianTotalClaimsFTE)
	fmt.Printf("Run %s, digest %s\n", s.RunID, s.RosterDigest)
}

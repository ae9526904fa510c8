package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/pcroster/internal/db"
	"github.com/gyeh/pcroster/internal/exitcode"
	"github.com/gyeh/pcroster/internal/licensure"
	"github.com/gyeh/pcroster/internal/logging"
	"github.com/gyeh/pcroster/internal/normalize"
	"github.com/gyeh/pcroster/internal/orgfilter"
	"github.com/gyeh/pcroster/internal/pipeline"
	"github.com/gyeh/pcroster/internal/taxonomy"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run validation and stats (no writes)",
	RunE:  runPlan,
}

func init() {
	addInputFlags(planCmd.Flags())
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	loaded, err := pipeline.LoadInputs(log, &cfg)
	if err != nil {
		log.Error().Err(err).Msg("input validation failed")
		os.Exit(exitcode.ValidationError)
	}
	defer loaded.Close()
	in := loaded.Inputs

	files := []struct{ label, path string }{
		{"Claims", cfg.ClaimsPath},
		{"Registry", cfg.RegistryPath},
		{"Licenses", cfg.LicensesPath},
		{"Taxonomy", cfg.TaxonomyPath},
	}

	fmt.Println("=== pcroster plan ===")
	fmt.Printf("Region:     %s\n", cfg.Region)
	for _, f := range files {
		sha, err := normalize.FileHash(f.path)
		if err != nil {
			log.Error().Err(err).Str("file", f.path).Msg("failed to hash file")
			os.Exit(exitcode.ValidationError)
		}
		fmt.Printf("%-10s  %s\n            SHA-256 %s\n", f.label+":", f.path, sha)
	}
	fmt.Println()

	filtered := orgfilter.Filter(log, in.Claims, in.OrgTable)
	fmt.Printf("Claims rows:        %d\n", len(in.Claims))
	fmt.Printf("Unique NPIs:        %d → %d after organization filter (%d rows removed)\n",
		filtered.UniqueBefore, filtered.UniqueAfter, filtered.RowsRemoved)
	fmt.Printf("Registry rows:      %d (%d batches of %d)\n",
		in.RegistryRows, batches(in.RegistryRows, cfg.BatchSize), cfg.BatchSize)
	fmt.Printf("Licensing rows:     %d (%d grouped entries)\n",
		len(in.Licenses), len(licensure.Group(in.Licenses)))

	rules := taxonomy.BuildRules(in.Taxonomy)
	fmt.Printf("Taxonomy codes:     %d (%d exclusion codes)\n", len(in.Taxonomy), len(rules.Exclusion))
	fmt.Println()
	fmt.Println("Role rules (codes):")
	for _, r := range rules.Roles {
		fmt.Printf("  %-28s %5d\n", r.Label, len(r.Codes))
	}
	fmt.Println("Specialty rules (codes):")
	for _, r := range rules.Specialties {
		fmt.Printf("  %-28s %5d\n", r.Label, len(r.Codes))
	}

	if cfg.DSN != "" {
		pool, err := db.NewPool(ctx, cfg.DSN)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			os.Exit(exitcode.DBConnError)
		}
		defer pool.Close()

		active, err := db.GetActiveRun(ctx, pool, cfg.Region)
		if err != nil {
			log.Warn().Err(err).Msg("could not read active run (has migrate been run?)")
		} else if active != nil {
			fmt.Printf("\nActive run:  %s (%s, %d providers, digest %s)\n",
				active.RunID, active.RunDate.Format("2006-01-02"), active.RosterRows, active.Digest)
		} else {
			fmt.Println("\nActive run:  none")
		}
	}

	fmt.Println("\nSchema validation: OK")
	return nil
}

func batches(rows int64, size int) int64 {
	if size <= 0 {
		return 0
	}
	return (rows + int64(size) - 1) / int64(size)
}

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gyeh/pcroster/internal/config"
)

var (
	cfg        = config.Default()
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "pcroster",
	Short: "Primary-care clinician roster builder",
	Long: "Links claims, national registry and state licensing extracts into a roster of in-region " +
		"primary-care clinicians, written as Parquet and optionally loaded into Postgres.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			return nil
		}
		return cfg.LoadFromFile(configPath, cmd.Flags().Changed)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file (flags set on the command line take precedence)")
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("PCROSTER_DB_URL"), "Postgres connection string (or set PCROSTER_DB_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
}

// addInputFlags registers the flags shared by commands that read the extracts.
func addInputFlags(f *pflag.FlagSet) {
	f.StringVar(&cfg.Region, "region", cfg.Region, "Two-letter region (state) code")
	f.StringVar(&cfg.ClaimsPath, "claims", "", "Claims extract Parquet file (required)")
	f.StringVar(&cfg.RegistryPath, "registry", "", "National registry extract Parquet file (required)")
	f.StringVar(&cfg.LicensesPath, "licenses", "", "State licensing extract Parquet file (required)")
	f.StringVar(&cfg.TaxonomyPath, "taxonomy", "", "Taxonomy code table Parquet file (required)")
	f.StringVar(&cfg.OrgTablePath, "org-table", "", "YAML table of organizational NPIs (default: embedded table)")
	f.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "Registry rows per batch")
	f.BoolVar(&cfg.ExcludeOrganizations, "exclude-organizations", cfg.ExcludeOrganizations, "Drop organization entity types during residency")
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RunDateLayout is the layout of Config.RunDate.
const RunDateLayout = "2006-01-02"

// Config holds all runtime configuration for a pcroster run.
type Config struct {
	Region string

	ClaimsPath   string
	RegistryPath string
	LicensesPath string
	TaxonomyPath string
	OrgTablePath string // empty means the embedded organization table

	OutputDir string
	RunDate   string // stamps output file names only

	BatchSize            int
	ExcludeOrganizations bool
	LowVolumeThreshold   int64
	CorePerFTE           float64
	TotalPerFTE          float64

	DSN      string
	Activate bool

	LogFormat string // "text" or "json"
	LogLevel  string
	Progress  string // "bar", "log" or "none"

	EnrichURL      string
	EnrichAttempts int
	EnrichTimeout  time.Duration

	S3Bucket string
	S3Region string
	S3Prefix string
}

// Default returns a Config with every default applied.
func Default() Config {
	return Config{
		Region:             "RI",
		OutputDir:          "out",
		RunDate:            time.Now().Format(RunDateLayout),
		BatchSize:          200000,
		LowVolumeThreshold: 100,
		CorePerFTE:         900,
		TotalPerFTE:        3360,
		Activate:           true,
		LogFormat:          "text",
		LogLevel:           "info",
		Progress:           "bar",
		EnrichAttempts:     2,
		EnrichTimeout:      3 * time.Second,
		S3Region:           "us-east-1",
	}
}

// yamlConfig is the on-disk YAML structure. Keys match the CLI flag names.
type yamlConfig struct {
	Region               *string  `yaml:"region"`
	Claims               *string  `yaml:"claims"`
	Registry             *string  `yaml:"registry"`
	Licenses             *string  `yaml:"licenses"`
	Taxonomy             *string  `yaml:"taxonomy"`
	OrgTable             *string  `yaml:"org-table"`
	OutputDir            *string  `yaml:"output-dir"`
	RunDate              *string  `yaml:"run-date"`
	BatchSize            *int     `yaml:"batch-size"`
	ExcludeOrganizations *bool    `yaml:"exclude-organizations"`
	LowVolumeThreshold   *int64   `yaml:"low-volume-threshold"`
	CorePerFTE           *float64 `yaml:"core-per-fte"`
	TotalPerFTE          *float64 `yaml:"total-per-fte"`
	DSN                  *string  `yaml:"dsn"`
	Activate             *bool    `yaml:"activate"`
	LogFormat            *string  `yaml:"log-format"`
	LogLevel             *string  `yaml:"log-level"`
	Progress             *string  `yaml:"progress"`
	EnrichURL            *string  `yaml:"enrich-url"`
	EnrichAttempts       *int     `yaml:"enrich-attempts"`
	EnrichTimeout        *string  `yaml:"enrich-timeout"`
	S3Bucket             *string  `yaml:"s3-bucket"`
	S3Region             *string  `yaml:"s3-region"`
	S3Prefix             *string  `yaml:"s3-prefix"`
}

// LoadFromFile reads a YAML config file and merges its values into Config.
// Keys for which keep returns true are left untouched, so flags set on the
// command line win over the file. A nil keep applies every key.
func (c *Config) LoadFromFile(path string, keep func(name string) bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if keep == nil {
		keep = func(string) bool { return false }
	}

	set(&c.Region, yc.Region, "region", keep)
	set(&c.ClaimsPath, yc.Claims, "claims", keep)
	set(&c.RegistryPath, yc.Registry, "registry", keep)
	set(&c.LicensesPath, yc.Licenses, "licenses", keep)
	set(&c.TaxonomyPath, yc.Taxonomy, "taxonomy", keep)
	set(&c.OrgTablePath, yc.OrgTable, "org-table", keep)
	set(&c.OutputDir, yc.OutputDir, "output-dir", keep)
	set(&c.RunDate, yc.RunDate, "run-date", keep)
	set(&c.BatchSize, yc.BatchSize, "batch-size", keep)
	set(&c.ExcludeOrganizations, yc.ExcludeOrganizations, "exclude-organizations", keep)
	set(&c.LowVolumeThreshold, yc.LowVolumeThreshold, "low-volume-threshold", keep)
	set(&c.CorePerFTE, yc.CorePerFTE, "core-per-fte", keep)
	set(&c.TotalPerFTE, yc.TotalPerFTE, "total-per-fte", keep)
	set(&c.DSN, yc.DSN, "dsn", keep)
	set(&c.Activate, yc.Activate, "activate", keep)
	set(&c.LogFormat, yc.LogFormat, "log-format", keep)
	set(&c.LogLevel, yc.LogLevel, "log-level", keep)
	set(&c.Progress, yc.Progress, "progress", keep)
	set(&c.EnrichURL, yc.EnrichURL, "enrich-url", keep)
	set(&c.EnrichAttempts, yc.EnrichAttempts, "enrich-attempts", keep)
	set(&c.S3Bucket, yc.S3Bucket, "s3-bucket", keep)
	set(&c.S3Region, yc.S3Region, "s3-region", keep)
	set(&c.S3Prefix, yc.S3Prefix, "s3-prefix", keep)

	if yc.EnrichTimeout != nil && !keep("enrich-timeout") {
		d, err := time.ParseDuration(*yc.EnrichTimeout)
		if err != nil {
			return fmt.Errorf("enrich-timeout in config: %w", err)
		}
		c.EnrichTimeout = d
	}
	return nil
}

func set[T any](dst *T, v *T, name string, keep func(string) bool) {
	if v != nil && !keep(name) {
		*dst = *v
	}
}

// Validate checks settings shared by every command that reads the inputs.
func (c *Config) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("--region is required")
	}
	inputs := []struct{ flag, path string }{
		{"--claims", c.ClaimsPath},
		{"--registry", c.RegistryPath},
		{"--licenses", c.LicensesPath},
		{"--taxonomy", c.TaxonomyPath},
	}
	for _, in := range inputs {
		if in.path == "" {
			return fmt.Errorf("%s is required", in.flag)
		}
		if _, err := os.Stat(in.path); err != nil {
			return fmt.Errorf("%s not accessible: %w", in.flag, err)
		}
	}
	if c.OrgTablePath != "" {
		if _, err := os.Stat(c.OrgTablePath); err != nil {
			return fmt.Errorf("--org-table not accessible: %w", err)
		}
	}
	if _, err := time.Parse(RunDateLayout, c.RunDate); err != nil {
		return fmt.Errorf("--run-date must be YYYY-MM-DD: %w", err)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("--batch-size must be positive")
	}
	if c.LowVolumeThreshold < 0 {
		return fmt.Errorf("--low-volume-threshold must not be negative")
	}
	if c.CorePerFTE <= 0 || c.TotalPerFTE <= 0 {
		return fmt.Errorf("FTE divisors must be positive")
	}
	switch c.Progress {
	case "", "bar", "log", "none":
	default:
		return fmt.Errorf("unknown --progress mode %q", c.Progress)
	}
	if c.EnrichURL != "" {
		if c.EnrichAttempts < 1 {
			return fmt.Errorf("--enrich-attempts must be at least 1")
		}
		if c.EnrichTimeout <= 0 {
			return fmt.Errorf("--enrich-timeout must be positive")
		}
	}
	if c.S3Bucket != "" && c.S3Region == "" {
		return fmt.Errorf("--s3-region is required with --s3-bucket")
	}
	return nil
}

// ValidateWithDSN checks the inputs and the DSN.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or PCROSTER_DB_URL is required")
	}
	return nil
}

// RunDateTime parses RunDate.
func (c *Config) RunDateTime() (time.Time, error) {
	return time.Parse(RunDateLayout, c.RunDate)
}

// Package output writes the roster tables.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"

	"github.com/gyeh/pcroster/internal/model"
	"github.com/gyeh/pcroster/internal/normalize"
)

// WriteFile writes rows to a new Parquet file at path, creating parent
// directories as needed.
func WriteFile[T any](path string, rows []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	writer := parquet.NewGenericWriter[T](f)
	if _, err := writer.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close writer: %w", err)
	}
	return f.Close()
}

// Paths names the files produced by one run.
type Paths struct {
	Roster   string
	NotFound string
}

// PathsFor returns the output file names for a run stamped with stamp.
func PathsFor(dir, region, stamp string) Paths {
	prefix := strings.ToLower(region)
	return Paths{
		Roster:   filepath.Join(dir, fmt.Sprintf("%s_%s_roster.parquet", stamp, prefix)),
		NotFound: filepath.Join(dir, fmt.Sprintf("%s_%s_not_found.parquet", stamp, prefix)),
	}
}

// Files lists the paths in upload order.
func (p Paths) Files() []string {
	return []string{p.Roster, p.NotFound}
}

// Result holds the written paths and the roster digest.
type Result struct {
	Paths    Paths
	Digest   string
	Duration time.Duration
}

// Write writes the roster and not-found tables under dir.
func Write(log zerolog.Logger, dir, region, stamp string, roster []model.LinkedProvider, notFound []model.NotFoundRecord) (*Result, error) {
	start := time.Now()
	paths := PathsFor(dir, region, stamp)

	if err := WriteFile(paths.Roster, roster); err != nil {
		return nil, err
	}
	if err := WriteFile(paths.NotFound, notFound); err != nil {
		return nil, err
	}

	res := &Result{Paths: paths, Digest: RosterDigest(roster), Duration: time.Since(start)}
	log.Info().
		Str("roster", paths.Roster).
		Str("not_found", paths.NotFound).
		Int("roster_rows", len(roster)).
		Int("not_found_rows", len(notFound)).
		Str("digest", res.Digest).
		Str("duration", res.Duration.String()).
		Msg("output written")
	return res, nil
}

// RosterDigest hashes the ordered roster content. Identical inputs produce
// identical digests.
func RosterDigest(roster []model.LinkedProvider) string {
	d := normalize.NewDigest()
	for i := range roster {
		p := &roster[i]
		reg := &p.Registry
		e := &p.Enrichment
		d.AddRow(
			strconv.FormatInt(p.NPI, 10),
			p.Basis,
			strconv.FormatInt(p.Claims.TotalClaims, 10),
			strconv.FormatInt(p.Claims.CorePreventionClaims, 10),
			reg.FirstName, reg.MiddleName, reg.LastName,
			strings.Join(reg.TaxonomyCodes, ","),
			strconv.FormatBool(p.Residency.InRegionByAddress),
			strconv.FormatBool(p.Residency.MatchedOnName),
			strconv.FormatBool(p.Residency.MatchedOnLicense),
			p.Role, strings.Join(p.Roles, ","), strings.Join(p.RoleCodes, ","),
			p.Specialty, strings.Join(p.Specialties, ","), strings.Join(p.SpecialtyCodes, ","),
			p.DerivedSpecialty,
			strings.Join(p.CleanedLicenses, ","),
			p.ConfirmedLicense, p.ConfirmedSpecialty, p.ConfirmationStatus,
			strconv.FormatFloat(p.CorePreventionFTE, 'f', -1, 64),
			strconv.FormatFloat(p.TotalClaimsFTE, 'f', -1, 64),
			e.Method, e.LicenseNumber, e.Name, e.Profession, e.LicenseType, e.LicenseStatus,
			e.City, e.State, e.IssueDate, e.ExpirationDate, e.SchoolName, e.GraduationDate, e.SpecialtyInfo,
		)
	}
	return d.Sum()
}

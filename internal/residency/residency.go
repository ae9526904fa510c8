// Package residency decides which registry records belong to in-region
// clinicians.
package residency

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/pcroster/internal/licensure"
	"github.com/gyeh/pcroster/internal/model"
	"github.com/gyeh/pcroster/internal/progress"
	"github.com/gyeh/pcroster/internal/source"
)

// DefaultBatchSize bounds the number of registry rows held in memory at once.
const DefaultBatchSize = 200000

// Options controls the resolver.
type Options struct {
	Region               string
	ExcludeOrganizations bool
	BatchSize            int
}

// Result holds the retained records and the per-signal counts.
type Result struct {
	Residents []model.ResidentRecord

	RowsRead             int64
	RowsRejected         int64
	NotInClaims          int64
	OrganizationsDropped int64
	Duplicates           int64
	ByAddress            int64
	ByName               int64
	ByLicense            int64
	Discarded            int64
	Batches              int
	Duration             time.Duration
}

// Resolver applies the residency cascade to registry records.
type Resolver struct {
	log    zerolog.Logger
	opts   Options
	claims map[int64]struct{}
	index  *licensure.Index
}

// NewResolver returns a resolver restricted to the NPIs present in claims.
func NewResolver(log zerolog.Logger, opts Options, claims []model.ClaimsRecord, index *licensure.Index) *Resolver {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	npis := make(map[int64]struct{}, len(claims))
	for _, c := range claims {
		npis[c.NPI] = struct{}{}
	}
	return &Resolver{log: log, opts: opts, claims: npis, index: index}
}

// InRegionByAddress reports whether the mailing state, practice state, any
// license-state slot or any other-identifier-state slot equals region.
func InRegionByAddress(rec *model.RegistryRecord, region string) bool {
	if rec.MailingState == region || rec.PracticeState == region {
		return true
	}
	for _, l := range rec.Licenses {
		if l.State == region {
			return true
		}
	}
	for _, s := range rec.OtherIdentifierStates {
		if s == region {
			return true
		}
	}
	return false
}

// Flags evaluates the residency signals for one record. The licensing
// cross-checks run only when the address check fails.
func (r *Resolver) Flags(rec *model.RegistryRecord) model.ResidencyFlags {
	if InRegionByAddress(rec, r.opts.Region) {
		return model.ResidencyFlags{InRegionByAddress: true}
	}
	return model.ResidencyFlags{
		MatchedOnName:    r.index.NameMatch(rec.FirstName, rec.LastName),
		MatchedOnLicense: r.index.LicenseMatch(rec.Licenses),
	}
}

// ResolveBatch evaluates one batch in order and appends retained records to acc.
func (r *Resolver) ResolveBatch(batch []model.RegistryRecord, acc *Accumulator, res *Result) {
	for i := range batch {
		rec := &batch[i]
		res.RowsRead++

		if err := rec.Validate(); err != nil {
			res.RowsRejected++
			r.log.Warn().Err(err).Int64("row", res.RowsRead).Msg("registry row rejected")
			continue
		}
		if _, ok := r.claims[rec.NPI]; !ok {
			res.NotInClaims++
			continue
		}
		if r.opts.ExcludeOrganizations && rec.IsOrganization() {
			res.OrganizationsDropped++
			continue
		}

		flags := r.Flags(rec)
		if !flags.InRegion() {
			res.Discarded++
			continue
		}
		if !acc.Add(model.ResidentRecord{Registry: rec.Clone(), Residency: flags}) {
			res.Duplicates++
			continue
		}
		if flags.InRegionByAddress {
			res.ByAddress++
		}
		if flags.MatchedOnName {
			res.ByName++
		}
		if flags.MatchedOnLicense {
			res.ByLicense++
		}
	}
}

// Run streams the registry through the resolver in file order, one bounded
// batch at a time. totalRows sizes the progress tracker and may be zero.
func (r *Resolver) Run(ctx context.Context, src source.BatchReader[model.RegistryRecord], totalRows int64, tracker progress.Tracker) (*Result, error) {
	start := time.Now()
	res := &Result{}
	acc := NewAccumulator()
	buf := make([]model.RegistryRecord, r.opts.BatchSize)

	tracker.SetStage("resolving residency")
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, readErr := src.Read(buf)
		if n > 0 {
			res.Batches++
			before := acc.Len()
			r.ResolveBatch(buf[:n], acc, res)
			r.log.Debug().
				Int("batch", res.Batches).
				Int("rows", n).
				Int("retained", acc.Len()-before).
				Int("total_retained", acc.Len()).
				Msg("registry batch resolved")
			tracker.SetProgress(res.RowsRead, totalRows)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read registry at row %d: %w", res.RowsRead, readErr)
		}
	}
	tracker.Done()

	res.Residents = acc.Records()
	res.Duration = time.Since(start)

	r.log.Info().
		Int64("rows_read", res.RowsRead).
		Int64("rows_rejected", res.RowsRejected).
		Int64("not_in_claims", res.NotInClaims).
		Int64("organizations_dropped", res.OrganizationsDropped).
		Int64("by_address", res.ByAddress).
		Int64("by_name", res.ByName).
		Int64("by_license", res.ByLicense).
		Int64("discarded", res.Discarded).
		Int("residents", len(res.Residents)).
		Str("duration", res.Duration.String()).
		Msg("residency resolved")

	return res, nil
}

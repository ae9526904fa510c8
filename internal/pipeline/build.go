// Package pipeline runs the roster phases in order.
package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/gyeh/pcroster/internal/config"
	"github.com/gyeh/pcroster/internal/licensure"
	"github.com/gyeh/pcroster/internal/linker"
	"github.com/gyeh/pcroster/internal/model"
	"github.com/gyeh/pcroster/internal/normalize"
	"github.com/gyeh/pcroster/internal/orgfilter"
	"github.com/gyeh/pcroster/internal/output"
	"github.com/gyeh/pcroster/internal/progress"
	"github.com/gyeh/pcroster/internal/residency"
	"github.com/gyeh/pcroster/internal/source"
	"github.com/gyeh/pcroster/internal/taxonomy"
	"github.com/gyeh/pcroster/internal/triangulate"
)

// Inputs are the four source tables plus the organization table. The
// registry is streamed; the other tables are held in memory.
type Inputs struct {
	Claims       []model.ClaimsRecord
	Registry     source.BatchReader[model.RegistryRecord]
	RegistryRows int64 // sizes progress only; zero when unknown
	Licenses     []model.LicenseRecord
	Taxonomy     []model.TaxonomyCode
	OrgTable     orgfilter.Table
}

// Options holds the tunables of a build.
type Options struct {
	Region               string
	ExcludeOrganizations bool
	BatchSize            int
	LowVolumeThreshold   int64
	CorePerFTE           float64
	TotalPerFTE          float64
}

// OptionsFromConfig copies the build tunables out of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Region:               cfg.Region,
		ExcludeOrganizations: cfg.ExcludeOrganizations,
		BatchSize:            cfg.BatchSize,
		LowVolumeThreshold:   cfg.LowVolumeThreshold,
		CorePerFTE:           cfg.CorePerFTE,
		TotalPerFTE:          cfg.TotalPerFTE,
	}
}

// Outcome is the product of Build.
type Outcome struct {
	Roster   []model.LinkedProvider
	NotFound []model.NotFoundRecord
	Summary  *model.RunSummary
}

// Build runs filter, residency, link, classify, triangulate and the
// productivity ratios. It performs no I/O beyond reading in.Registry, so
// identical inputs yield an identical roster.
func Build(ctx context.Context, log zerolog.Logger, in Inputs, opts Options, mgr progress.Manager) (*Outcome, error) {
	if mgr == nil {
		mgr = progress.NoopManager{}
	}
	sum := &model.RunSummary{
		Region:       opts.Region,
		ClaimsRows:   int64(len(in.Claims)),
		LicenseRows:  int64(len(in.Licenses)),
		TaxonomyRows: int64(len(in.Taxonomy)),
	}

	// Phase 1: organizational-entity filter
	filtered := orgfilter.Filter(log, in.Claims, in.OrgTable)
	sum.OrganizationsRemoved = int64(filtered.RowsRemoved)

	// Phase 2: residency
	resolver := residency.NewResolver(log, residency.Options{
		Region:               opts.Region,
		ExcludeOrganizations: opts.ExcludeOrganizations,
		BatchSize:            opts.BatchSize,
	}, filtered.Claims, licensure.NewIndex(in.Licenses))

	tracker := mgr.NewTracker("registry", in.RegistryRows)
	res, err := resolver.Run(ctx, in.Registry, in.RegistryRows, tracker)
	if err != nil {
		return nil, &PipelineError{Phase: PhaseResidency, Err: err}
	}
	sum.RegistryRows = res.RowsRead
	sum.RegistryRejected = res.RowsRejected
	sum.Residents = int64(len(res.Residents))
	sum.ResidentsByAddress = res.ByAddress
	sum.ResidentsByName = res.ByName
	sum.ResidentsByLicense = res.ByLicense
	sum.DurationResidency = res.Duration

	if err := ctx.Err(); err != nil {
		return nil, &PipelineError{Phase: PhaseLink, Err: err}
	}

	// Phase 3: link
	rules := taxonomy.BuildRules(in.Taxonomy)
	linked := linker.Link(log, filtered.Claims, res.Residents, rules.Exclusion, opts.LowVolumeThreshold)
	sum.Linked = int64(linked.Joined)
	sum.NotFound = int64(len(linked.NotFound))
	sum.NotFoundLowVolume = int64(linked.NotFoundLowVolume)
	sum.CorePrevention = int64(linked.CorePrevention)
	sum.ImmunizationOnly = int64(linked.ImmunizationOnly)
	sum.SubspecialtyDropped = int64(linked.SubspecialtyDropped)
	sum.RosterRows = int64(len(linked.Roster))
	sum.DurationLink = linked.Duration

	// Phase 4: classify
	classified := rules.ClassifyAll(log, linked.Roster)
	sum.DurationClassify = classified.Duration

	// Phase 5: triangulate
	tri := triangulate.NewIndex(licensure.Group(in.Licenses)).ConfirmAll(log, linked.Roster)
	sum.ConfirmByStatus = make(map[string]int64, len(tri.ByStatus))
	for status, n := range tri.ByStatus {
		sum.ConfirmByStatus[status] = int64(n)
	}
	sum.DurationTriangulate = tri.Duration

	// Phase 6: productivity
	ApplyFTE(linked.Roster, opts.CorePerFTE, opts.TotalPerFTE)
	sum.PhysicianCorePreventionFTE, sum.PhysicianTotalClaimsFTE = PhysicianFTE(linked.Roster, opts.CorePerFTE, opts.TotalPerFTE)

	sum.RosterDigest = output.RosterDigest(linked.Roster)
	log.Info().
		Int64("roster_rows", sum.RosterRows).
		Int64("not_found", sum.NotFound).
		Float64("physician_core_pc_fte", sum.PhysicianCorePreventionFTE).
		Float64("physician_total_claims_fte", sum.PhysicianTotalClaimsFTE).
		Str("digest", sum.RosterDigest).
		Msg("roster built")

	return &Outcome{Roster: linked.Roster, NotFound: linked.NotFound, Summary: sum}, nil
}

// ApplyFTE fills the productivity ratios of every roster row.
func ApplyFTE(roster []model.LinkedProvider, corePerFTE, totalPerFTE float64) {
	for i := range roster {
		p := &roster[i]
		p.CorePreventionFTE = normalize.FTE(p.Claims.CorePreventionClaims, corePerFTE)
		p.TotalClaimsFTE = normalize.FTE(p.Claims.TotalClaims, totalPerFTE)
	}
}

// PhysicianFTE divides the summed raw claim counts of Physician rows by the
// per-FTE divisors. Totals are not rounded.
func PhysicianFTE(roster []model.LinkedProvider, corePerFTE, totalPerFTE float64) (core, total float64) {
	var coreClaims, totalClaims int64
	for i := range roster {
		if roster[i].Role != model.RolePhysician {
			continue
		}
		coreClaims += roster[i].Claims.CorePreventionClaims
		totalClaims += roster[i].Claims.TotalClaims
	}
	if corePerFTE > 0 {
		core = float64(coreClaims) / corePerFTE
	}
	if totalPerFTE > 0 {
		total = float64(totalClaims) / totalPerFTE
	}
	return core, total
}

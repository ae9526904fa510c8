// Package linker joins claims to resident registry records and selects the
// primary-care roster.
package linker

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/pcroster/internal/model"
	"github.com/gyeh/pcroster/internal/taxonomy"
)

// DefaultLowVolumeThreshold is the total-claims count at or below which an
// unmatched NPI is flagged for manual triage.
const DefaultLowVolumeThreshold = 100

// Result holds the roster, the unmatched claims and the partition counts.
type Result struct {
	Roster   []model.LinkedProvider
	NotFound []model.NotFoundRecord

	Joined              int
	NotFoundLowVolume   int
	CorePrevention      int
	WithoutCore         int
	ImmunizationOnly    int
	SubspecialtyDropped int
	Duration            time.Duration
}

// Link inner-joins claims to residents on NPI. Joined rows with core
// prevention activity are kept; rows without it are kept only when no
// taxonomy slot carries an exclusion code. The roster lists the
// core-prevention partition first, then the immunization-only partition,
// each in claims order.
func Link(log zerolog.Logger, claims []model.ClaimsRecord, residents []model.ResidentRecord, exclusion taxonomy.CodeSet, lowVolume int64) *Result {
	start := time.Now()
	byNPI := make(map[int64]*model.ResidentRecord, len(residents))
	for i := range residents {
		byNPI[residents[i].Registry.NPI] = &residents[i]
	}

	res := &Result{}
	var core, immunization []model.LinkedProvider
	for _, c := range claims {
		rr, ok := byNPI[c.NPI]
		if !ok {
			nf := model.NotFoundRecord{Claims: c, LowVolume: c.TotalClaims <= lowVolume}
			if nf.LowVolume {
				res.NotFoundLowVolume++
			}
			res.NotFound = append(res.NotFound, nf)
			continue
		}
		res.Joined++

		p := model.LinkedProvider{
			NPI:       c.NPI,
			Claims:    c,
			Registry:  rr.Registry,
			Residency: rr.Residency,
		}
		if c.CorePreventionPresent {
			p.Basis = model.BasisCorePrevention
			core = append(core, p)
			continue
		}
		res.WithoutCore++
		if exclusion.Any(rr.Registry.TaxonomyCodes) {
			res.SubspecialtyDropped++
			continue
		}
		p.Basis = model.BasisImmunizationOnly
		immunization = append(immunization, p)
	}

	res.CorePrevention = len(core)
	res.ImmunizationOnly = len(immunization)
	res.Roster = append(core, immunization...)
	res.Duration = time.Since(start)

	log.Info().
		Int("joined", res.Joined).
		Int("not_found", len(res.NotFound)).
		Int("not_found_low_volume", res.NotFoundLowVolume).
		Int64("low_volume_threshold", lowVolume).
		Int("core_prevention", res.CorePrevention).
		Int("without_core_prevention", res.WithoutCore).
		Int("subspecialty_excluded", res.SubspecialtyDropped).
		Int("immunization_only", res.ImmunizationOnly).
		Int("roster", len(res.Roster)).
		Str("duration", res.Duration.String()).
		Msg("claims linked to registry")

	return res
}

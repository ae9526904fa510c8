package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/pcroster/internal/model"
	"github.com/gyeh/pcroster/internal/normalize"
	"github.com/gyeh/pcroster/internal/progress"
)

// Methods recorded in the enrichment output.
const (
	MethodLicense = "License Look-up"
	MethodName    = "First and Last Name Look-up"
)

// Defaults for the attempt policy.
const (
	DefaultMaxAttempts = 2
	DefaultTimeout     = 3 * time.Second
)

var (
	errRegionPrefix  = errors.New("license carries the region prefix, searching on name")
	errNameMismatch  = errors.New("listed name does not match provider")
	errNoLicenseData = errors.New("license search found no detail, searching on name")
)

// licensePrefixes maps license number prefixes to search professions, tried
// in order.
var licensePrefixes = []struct {
	prefix     string
	profession string
}{
	{"DO", ProfessionPhysician},
	{"MD", ProfessionPhysician},
	{"CNM", ProfessionMidwifery},
	{"PA", ProfessionPhysicianAssistant},
	{"APRN", ProfessionNursing},
	{"RN", ProfessionNursing},
	{"ETL", ProfessionNursing},
	{"NPP", ProfessionNursing},
	{"CAPRN", ProfessionNursing},
}

// ProfessionForLicense returns the search profession implied by a license
// prefix, or "" when the prefix is unknown.
func ProfessionForLicense(license string) string {
	for _, p := range licensePrefixes {
		if strings.HasPrefix(license, p.prefix) {
			return p.profession
		}
	}
	return ""
}

// ProfessionForRole returns the search profession for a roster role, or ""
// when the role cannot be searched.
func ProfessionForRole(role string) string {
	switch role {
	case model.RolePhysician:
		return ProfessionPhysician
	case model.RolePhysicianAssistant:
		return ProfessionPhysicianAssistant
	case model.RoleNursePractitioner, model.RoleNurse, model.RoleClinicalNurseSpecialist:
		return ProfessionNursing
	case model.RoleCertifiedNurseMidwife:
		return ProfessionMidwifery
	}
	return ""
}

// LicenseToSearch picks the license to look up: the confirmed license when
// there is one, else the first registry license slot issued in region with
// spaces removed. Returns "" when neither exists.
func LicenseToSearch(p *model.LinkedProvider, region string) string {
	if p.ConfirmedLicense != "" && p.ConfirmedLicense != model.Unconfirmed {
		return p.ConfirmedLicense
	}
	for _, l := range p.Registry.Licenses {
		if l.State == region {
			return normalize.CompactLicense(l.Number)
		}
	}
	return ""
}

// Options controls the attempt policy.
type Options struct {
	Region      string
	MaxAttempts int
	Timeout     time.Duration
}

// Enricher runs licensing lookups with bounded attempts and a fallback from
// license search to name search.
type Enricher struct {
	src  Source
	opts Options
	log  zerolog.Logger
}

// New returns an Enricher over src.
func New(log zerolog.Logger, src Source, opts Options) *Enricher {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Enricher{src: src, opts: opts, log: log}
}

// Eligible reports whether p can be looked up at all.
func Eligible(p *model.LinkedProvider) bool {
	reg := &p.Registry
	if reg.IsOrganization() {
		return false
	}
	if normalize.IsBlank(reg.FirstName) || normalize.IsBlank(reg.LastName) {
		return false
	}
	return model.IsEnrichableRole(p.Role)
}

// Enrich looks one provider up. It returns the zero Enrichment and the last
// attempt's error when every attempt fails.
func (e *Enricher) Enrich(ctx context.Context, p *model.LinkedProvider) (model.Enrichment, error) {
	if !Eligible(p) {
		return model.Enrichment{}, nil
	}

	skipLicense := false
	var lastErr error
	for attempt := 1; attempt <= e.opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return model.Enrichment{}, err
		}

		var q Query
		method := MethodName
		license := ""
		if !skipLicense {
			license = LicenseToSearch(p, e.opts.Region)
		}
		if license != "" && strings.HasPrefix(license, e.opts.Region) {
			skipLicense = true
			lastErr = errRegionPrefix
			e.logAttempt(p, attempt, lastErr)
			continue
		}
		if license != "" {
			q = Query{Profession: ProfessionForLicense(license), LicenseNumber: license}
			method = MethodLicense
		} else {
			q = Query{
				Profession: ProfessionForRole(p.Role),
				FirstName:  p.Registry.FirstName,
				LastName:   p.Registry.LastName,
			}
		}

		out, err := e.attempt(ctx, p, q)
		if err != nil {
			if errors.Is(err, errNameMismatch) || errors.Is(err, errNoLicenseData) {
				skipLicense = true
			}
			lastErr = err
			e.logAttempt(p, attempt, err)
			continue
		}
		out.Method = method
		return out, nil
	}
	return model.Enrichment{}, lastErr
}

func (e *Enricher) attempt(ctx context.Context, p *model.LinkedProvider, q Query) (model.Enrichment, error) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	listings, err := e.src.Search(ctx, q)
	if err != nil {
		return model.Enrichment{}, fmt.Errorf("search: %w", err)
	}

	first := normalize.CompactName(p.Registry.FirstName)
	last := normalize.CompactName(p.Registry.LastName)

	var chosen *Listing
	for i := range listings {
		l := &listings[i]
		// The board's search wildcards the license prefix, so only the exact
		// license searched for counts.
		if q.ByLicense() && l.LicenseNumber != q.LicenseNumber {
			continue
		}
		name := normalize.CompactName(l.Name)
		if !strings.Contains(name, first) || !strings.Contains(name, last) {
			return model.Enrichment{}, errNameMismatch
		}
		chosen = l
		break
	}

	if chosen == nil || !chosen.HasDetail() {
		if q.ByLicense() {
			return model.Enrichment{}, errNoLicenseData
		}
		if chosen == nil {
			return model.Enrichment{}, nil
		}
	}

	return model.Enrichment{
		LicenseNumber:  chosen.LicenseNumber,
		Name:           chosen.Name,
		Profession:     chosen.Profession,
		LicenseType:    chosen.LicenseType,
		LicenseStatus:  chosen.Status,
		City:           chosen.City,
		State:          chosen.State,
		IssueDate:      normalize.ISODate(chosen.IssueDate),
		ExpirationDate: normalize.ISODate(chosen.ExpirationDate),
		SchoolName:     chosen.SchoolName,
		GraduationDate: normalize.ISODate(chosen.GraduationDate),
		SpecialtyInfo:  chosen.SpecialtyInfo,
	}, nil
}

func (e *Enricher) logAttempt(p *model.LinkedProvider, attempt int, err error) {
	e.log.Debug().
		Int64("npi", p.NPI).
		Int("attempt", attempt).
		Int("max_attempts", e.opts.MaxAttempts).
		Err(err).
		Msg("enrichment attempt failed")
}

// Result summarizes an enrichment pass.
type Result struct {
	Eligible int
	Enriched int
	Failed   int
	Duration time.Duration
}

// EnrichAll enriches every eligible roster row in place. Per-provider failures
// are logged and leave that row's enrichment empty; only cancellation of ctx
// is returned as an error.
func (e *Enricher) EnrichAll(ctx context.Context, roster []model.LinkedProvider, tracker progress.Tracker) (*Result, error) {
	start := time.Now()
	res := &Result{}
	tracker.SetStage("licensing lookups")
	for i := range roster {
		p := &roster[i]
		tracker.SetProgress(int64(i+1), int64(len(roster)))
		if !Eligible(p) {
			continue
		}
		res.Eligible++

		out, err := e.Enrich(ctx, p)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		if err != nil {
			res.Failed++
			e.log.Warn().Err(err).Int64("npi", p.NPI).Msg("enrichment failed, leaving fields empty")
			p.Enrichment = model.Enrichment{}
			continue
		}
		p.Enrichment = out
		if out.LicenseNumber != "" {
			res.Enriched++
		}
	}
	tracker.Done()
	res.Duration = time.Since(start)

	e.log.Info().
		Int("eligible", res.Eligible).
		Int("enriched", res.Enriched).
		Int("failed", res.Failed).
		Str("duration", res.Duration.String()).
		Msg("enrichment complete")

	return res, nil
}

package db

import (
	"github.com/google/uuid"

	"github.com/gyeh/pcroster/internal/model"
)

// ProviderColumns is the COPY column order of roster.providers.
var ProviderColumns = []string{
	"run_id", "npi", "basis",
	"first_name", "middle_name", "last_name",
	"total_claims", "core_pc_claims",
	"in_region_by_address", "matched_licensing_name", "matched_licensing_license",
	"role", "roles", "specialty", "specialties", "specialty_count", "derived_specialty",
	"cleaned_licenses", "confirmed_license", "confirmed_specialty", "confirmation_status",
	"core_pc_fte", "total_claims_fte",
	"enrichment_method", "enrichment_license_no", "enrichment_name", "enrichment_profession",
	"enrichment_license_type", "enrichment_license_status", "enrichment_city", "enrichment_state",
	"enrichment_issue_date", "enrichment_expiration_date", "enrichment_school_name",
	"enrichment_graduation_date", "enrichment_specialty_info",
}

// NotFoundColumns is the COPY column order of roster.not_found.
var NotFoundColumns = []string{
	"run_id", "npi", "total_claims", "core_pc_claims", "low_volume",
}

// ProviderRow adapts a roster row for COPY.
type ProviderRow struct {
	RunID    uuid.UUID
	Provider *model.LinkedProvider
}

func (r ProviderRow) CopyValues() []any {
	p := r.Provider
	e := p.Enrichment
	return []any{
		r.RunID, p.NPI, p.Basis,
		nullIfEmpty(p.Registry.FirstName), nullIfEmpty(p.Registry.MiddleName), nullIfEmpty(p.Registry.LastName),
		p.Claims.TotalClaims, p.Claims.CorePreventionClaims,
		p.Residency.InRegionByAddress, p.Residency.MatchedOnName, p.Residency.MatchedOnLicense,
		nullIfEmpty(p.Role), p.Roles, nullIfEmpty(p.Specialty), p.Specialties, p.SpecialtyCount, p.DerivedSpecialty,
		p.CleanedLicenses, p.ConfirmedLicense, p.ConfirmedSpecialty, p.ConfirmationStatus,
		p.CorePreventionFTE, p.TotalClaimsFTE,
		nullIfEmpty(e.Method), nullIfEmpty(e.LicenseNumber), nullIfEmpty(e.Name), nullIfEmpty(e.Profession),
		nullIfEmpty(e.LicenseType), nullIfEmpty(e.LicenseStatus), nullIfEmpty(e.City), nullIfEmpty(e.State),
		nullIfEmpty(e.IssueDate), nullIfEmpty(e.ExpirationDate), nullIfEmpty(e.SchoolName),
		nullIfEmpty(e.GraduationDate), nullIfEmpty(e.SpecialtyInfo),
	}
}

// NotFoundRow adapts a not-found row for COPY.
type NotFoundRow struct {
	RunID  uuid.UUID
	Record *model.NotFoundRecord
}

func (r NotFoundRow) CopyValues() []any {
	c := r.Record.Claims
	return []any{r.RunID, c.NPI, c.TotalClaims, c.CorePreventionClaims, r.Record.LowVolume}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

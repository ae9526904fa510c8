package output

import (
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gyeh/pcroster/internal/model"
	"github.com/gyeh/pcroster/internal/source"
)

func sampleRoster() []model.LinkedProvider {
	return []model.LinkedProvider{
		{
			NPI:   1000000001,
			Basis: model.BasisCorePrevention,
			Claims: model.ClaimsRecord{
				NPI: 1000000001, TotalClaims: 3360, CorePreventionClaims: 900, CorePreventionPresent: true,
			},
			Registry: model.RegistryRecord{
				NPI: 1000000001, FirstName: "Jane", LastName: "Doe",
				Licenses:      []model.LicenseSlot{{Number: "MD01234", State: "RI"}},
				TaxonomyCodes: []string{"207Q00000X"},
			},
			Residency:          model.ResidencyFlags{InRegionByAddress: true},
			Role:               model.RolePhysician,
			Roles:              []string{model.RolePhysician},
			Specialty:          model.SpecialtyFamilyMedicine,
			Specialties:        []string{model.SpecialtyFamilyMedicine},
			SpecialtyCount:     1,
			DerivedSpecialty:   model.SpecialtyFamilyMedicine,
			CleanedLicenses:    []string{"1234"},
			ConfirmedLicense:   "MD01234",
			ConfirmedSpecialty: "Family Medicine",
			ConfirmationStatus: model.ConfirmationConfirmed,
			CorePreventionFTE:  1,
			TotalClaimsFTE:     1,
		},
		{
			NPI:                1000000002,
			Basis:              model.BasisImmunizationOnly,
			Claims:             model.ClaimsRecord{NPI: 1000000002, TotalClaims: 40},
			Registry:           model.RegistryRecord{NPI: 1000000002, LastName: "Clinic", EntityType: model.EntityTypeOrganization},
			DerivedSpecialty:   model.DerivedUnknown,
			ConfirmedLicense:   model.Unconfirmed,
			ConfirmedSpecialty: model.Unconfirmed,
			ConfirmationStatus: model.ConfirmationNoCandidate,
		},
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	roster := sampleRoster()
	notFound := []model.NotFoundRecord{{Claims: model.ClaimsRecord{NPI: 9, TotalClaims: 5}, LowVolume: true}}

	res, err := Write(zerolog.Nop(), dir+"/out", "RI", "2026-10-16", roster, notFound)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if res.Digest != RosterDigest(roster) {
		t.Error("digest mismatch")
	}

	got, err := source.LoadFile[model.LinkedProvider](res.Paths.Roster, []string{"npi", "role"})
	if err != nil {
		t.Fatalf("read roster: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].ConfirmedLicense != "MD01234" || got[0].Registry.Licenses[0].State != "RI" {
		t.Errorf("row 0 = %+v", got[0])
	}
	if RosterDigest(got) != res.Digest {
		t.Error("digest changed after round trip")
	}

	nf, err := source.LoadFile[model.NotFoundRecord](res.Paths.NotFound, []string{"low_volume"})
	if err != nil {
		t.Fatalf("read not found: %v", err)
	}
	if len(nf) != 1 || !nf[0].LowVolume {
		t.Errorf("not found rows = %+v", nf)
	}
}

func TestWrite_ByteIdentical(t *testing.T) {
	a, err := Write(zerolog.Nop(), t.TempDir(), "RI", "x", sampleRoster(), nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	b, err := Write(zerolog.Nop(), t.TempDir(), "RI", "x", sampleRoster(), nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	da, _ := os.ReadFile(a.Paths.Roster)
	db, _ := os.ReadFile(b.Paths.Roster)
	if string(da) != string(db) {
		t.Error("identical rosters produced different files")
	}
}

func TestRosterDigest_SensitiveToContent(t *testing.T) {
	r1 := sampleRoster()
	r2 := sampleRoster()
	r2[1].ConfirmationStatus = model.ConfirmationAmbiguous
	if RosterDigest(r1) == RosterDigest(r2) {
		t.Error("digest ignored a changed field")
	}
}

func TestPathsFor(t *testing.T) {
	p := PathsFor("out", "RI", "2026-10-16")
	if p.Roster != "out/2026-10-16_ri_roster.parquet" {
		t.Errorf("Roster = %q", p.Roster)
	}
	if len(p.Files()) != 2 {
		t.Errorf("Files = %v", p.Files())
	}
}

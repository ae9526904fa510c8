package pipeline

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gyeh/pcroster/internal/config"
	"github.com/gyeh/pcroster/internal/enrich"
	"github.com/gyeh/pcroster/internal/model"
	"github.com/gyeh/pcroster/internal/orgfilter"
	"github.com/gyeh/pcroster/internal/output"
	"github.com/gyeh/pcroster/internal/source"
	"github.com/gyeh/pcroster/internal/taxonomy"
)

const orgNPI = 1013332014

func testClaims() []model.ClaimsRecord {
	return []model.ClaimsRecord{
		{NPI: orgNPI, TotalClaims: 9000, CorePreventionClaims: 4000, CorePreventionPresent: true},
		{NPI: 1000000001, TotalClaims: 3360, CorePreventionClaims: 900, CorePreventionPresent: true},
		{NPI: 1000000002, TotalClaims: 336},
		{NPI: 1000000003, TotalClaims: 50},
		{NPI: 1000000004, TotalClaims: 700},
	}
}

func testRegistry() []model.RegistryRecord {
	return []model.RegistryRecord{
		{NPI: 1999999999, EntityType: 1, FirstName: "Zed", LastName: "Nobody", MailingState: "RI"},
		{
			NPI: 1000000001, EntityType: 1, FirstName: "Jane", LastName: "Doe", MailingState: "RI",
			Licenses:      []model.LicenseSlot{{Number: "MD01234", State: "RI"}},
			TaxonomyCodes: []string{"207Q00000X"},
		},
		{
			NPI: 1000000002, EntityType: 1, FirstName: "Ana", LastName: "Silva", MailingState: "MA", PracticeState: "MA",
			Licenses:      []model.LicenseSlot{{Number: "LP05555", State: "MA"}},
			TaxonomyCodes: []string{"363L00000X"},
		},
		{NPI: 1000000003, EntityType: 1, FirstName: "Bob", LastName: "Smith", MailingState: "CT"},
		{NPI: 1000000004, EntityType: 1, FirstName: "Eve", LastName: "Stone", PracticeState: "RI", TaxonomyCodes: []string{"207RE0101X"}},
	}
}

func testLicenses() []model.LicenseRecord {
	return []model.LicenseRecord{
		{Credential: model.RolePhysician, FirstName: "Jane", LastName: "Doe", LicenseNumber: "MD01234", Specialty: "Family Medicine"},
		{Credential: model.RoleNursePractitioner, FirstName: "Ana", LastName: "Silva", LicenseNumber: "LP05555"},
	}
}

func testTaxonomy() []model.TaxonomyCode {
	return []model.TaxonomyCode{
		{Code: "207Q00000X", Grouping: taxonomy.PhysicianGrouping, Classification: "Family Medicine"},
		{Code: "207RE0101X", Grouping: taxonomy.PhysicianGrouping, Classification: "Internal Medicine", Exclude: true, InternalMedicineSubspecialtyExclude: true},
		{Code: "363L00000X", Grouping: "Physician Assistants & Advanced Practice Nursing Providers", Classification: "Nurse Practitioner"},
	}
}

func testInputs() Inputs {
	return Inputs{
		Claims:   testClaims(),
		Registry: source.FromSlice(testRegistry()),
		Licenses: testLicenses(),
		Taxonomy: testTaxonomy(),
		OrgTable: orgfilter.Table{orgNPI: "Roger Williams"},
	}
}

func testOptions() Options {
	return Options{
		Region:             "RI",
		BatchSize:          2,
		LowVolumeThreshold: 100,
		CorePerFTE:         900,
		TotalPerFTE:        3360,
	}
}

func TestBuild(t *testing.T) {
	out, err := Build(context.Background(), zerolog.Nop(), testInputs(), testOptions(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(out.Roster) != 2 {
		t.Fatalf("roster rows = %d, want 2", len(out.Roster))
	}
	jane, ana := out.Roster[0], out.Roster[1]

	if jane.NPI != 1000000001 || jane.Basis != model.BasisCorePrevention {
		t.Errorf("row 0 = %d %q", jane.NPI, jane.Basis)
	}
	if jane.Role != model.RolePhysician || jane.DerivedSpecialty != model.SpecialtyFamilyMedicine {
		t.Errorf("jane classified as %q / %q", jane.Role, jane.DerivedSpecialty)
	}
	if !jane.IsConfirmed() || jane.ConfirmedLicense != "MD01234" || jane.ConfirmedSpecialty != "Family Medicine" {
		t.Errorf("jane triangulation = %q %q %q", jane.ConfirmedLicense, jane.ConfirmedSpecialty, jane.ConfirmationStatus)
	}
	if jane.CorePreventionFTE != 1 || jane.TotalClaimsFTE != 1 {
		t.Errorf("jane FTE = %v / %v", jane.CorePreventionFTE, jane.TotalClaimsFTE)
	}

	if ana.NPI != 1000000002 || ana.Basis != model.BasisImmunizationOnly {
		t.Errorf("row 1 = %d %q", ana.NPI, ana.Basis)
	}
	if ana.Residency.InRegionByAddress || !ana.Residency.MatchedOnLicense {
		t.Errorf("ana residency = %+v", ana.Residency)
	}
	if ana.Role != model.RoleNursePractitioner || !ana.IsConfirmed() {
		t.Errorf("ana = %q %q", ana.Role, ana.ConfirmationStatus)
	}
	if ana.TotalClaimsFTE != 0.1 {
		t.Errorf("ana TotalClaimsFTE = %v", ana.TotalClaimsFTE)
	}

	if len(out.NotFound) != 1 || out.NotFound[0].Claims.NPI != 1000000003 || !out.NotFound[0].LowVolume {
		t.Errorf("not found = %+v", out.NotFound)
	}

	s := out.Summary
	if s.OrganizationsRemoved != 1 || s.SubspecialtyDropped != 1 {
		t.Errorf("removed=%d dropped=%d", s.OrganizationsRemoved, s.SubspecialtyDropped)
	}
	if s.RegistryRows != 5 || s.Residents != 3 {
		t.Errorf("registry rows=%d residents=%d", s.RegistryRows, s.Residents)
	}
	if s.ConfirmByStatus[model.ConfirmationConfirmed] != 2 {
		t.Errorf("confirm by status = %v", s.ConfirmByStatus)
	}
	if s.PhysicianCorePreventionFTE != 1 || s.PhysicianTotalClaimsFTE != 1 {
		t.Errorf("physician FTE = %v / %v", s.PhysicianCorePreventionFTE, s.PhysicianTotalClaimsFTE)
	}
	if s.RosterDigest == "" {
		t.Error("digest not set")
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a, err := Build(context.Background(), zerolog.Nop(), testInputs(), testOptions(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	opts := testOptions()
	opts.BatchSize = 1000
	b, err := Build(context.Background(), zerolog.Nop(), testInputs(), opts, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if a.Summary.RosterDigest != b.Summary.RosterDigest {
		t.Error("batch size changed the roster")
	}
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, zerolog.Nop(), testInputs(), testOptions(), nil)
	var pe *PipelineError
	if !errors.As(err, &pe) || pe.Phase != PhaseResidency {
		t.Fatalf("expected residency PipelineError, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func TestPhysicianFTE(t *testing.T) {
	roster := []model.LinkedProvider{
		{Role: model.RolePhysician, Claims: model.ClaimsRecord{CorePreventionClaims: 450, TotalClaims: 1680}},
		{Role: model.RoleNursePractitioner, Claims: model.ClaimsRecord{CorePreventionClaims: 900, TotalClaims: 3360}},
		{Role: model.RolePhysician, Claims: model.ClaimsRecord{CorePreventionClaims: 1800, TotalClaims: 6720}},
	}
	ApplyFTE(roster, 900, 3360)
	core, total := PhysicianFTE(roster, 900, 3360)
	if core != 2.5 || total != 2.5 {
		t.Errorf("PhysicianFTE = %v / %v, want 2.5 / 2.5", core, total)
	}
}

func TestPhysicianFTE_SumsRawClaims(t *testing.T) {
	roster := make([]model.LinkedProvider, 10)
	for i := range roster {
		roster[i] = model.LinkedProvider{
			Role:   model.RolePhysician,
			Claims: model.ClaimsRecord{CorePreventionClaims: 50, TotalClaims: 200},
		}
	}
	ApplyFTE(roster, 900, 3360)
	if roster[0].CorePreventionFTE != 0.1 {
		t.Fatalf("row FTE = %v, want 0.1", roster[0].CorePreventionFTE)
	}

	core, total := PhysicianFTE(roster, 900, 3360)
	if math.Abs(core-500.0/900) > 1e-9 {
		t.Errorf("core FTE = %v, want %v", core, 500.0/900)
	}
	if math.Abs(total-2000.0/3360) > 1e-9 {
		t.Errorf("total FTE = %v, want %v", total, 2000.0/3360)
	}

	if c, tot := PhysicianFTE(roster, 0, 0); c != 0 || tot != 0 {
		t.Errorf("zero divisors = %v / %v, want 0 / 0", c, tot)
	}
}

type failingSource struct{}

func (failingSource) Search(ctx context.Context, q enrich.Query) ([]enrich.Listing, error) {
	return nil, errors.New("service unavailable")
}

func writeInputs(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.RunDate = "2026-10-16"
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.ClaimsPath = filepath.Join(dir, "claims.parquet")
	cfg.RegistryPath = filepath.Join(dir, "registry.parquet")
	cfg.LicensesPath = filepath.Join(dir, "licenses.parquet")
	cfg.TaxonomyPath = filepath.Join(dir, "taxonomy.parquet")

	if err := output.WriteFile(cfg.ClaimsPath, testClaims()); err != nil {
		t.Fatal(err)
	}
	if err := output.WriteFile(cfg.RegistryPath, testRegistry()); err != nil {
		t.Fatal(err)
	}
	if err := output.WriteFile(cfg.LicensesPath, testLicenses()); err != nil {
		t.Fatal(err)
	}
	if err := output.WriteFile(cfg.TaxonomyPath, testTaxonomy()); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestRun_WritesOutputs(t *testing.T) {
	cfg := writeInputs(t)

	sum, err := Run(context.Background(), zerolog.Nop(), &cfg, Deps{Enrich: failingSource{}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.RunID == "" || sum.RosterRows != 2 || sum.NotFound != 1 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.Enriched != 0 || sum.EnrichmentFailed != 2 {
		t.Errorf("enriched=%d failed=%d", sum.Enriched, sum.EnrichmentFailed)
	}

	paths := output.PathsFor(cfg.OutputDir, cfg.Region, cfg.RunDate)
	roster, err := source.LoadFile[model.LinkedProvider](paths.Roster, []string{"npi"})
	if err != nil {
		t.Fatalf("read roster: %v", err)
	}
	if output.RosterDigest(roster) != sum.RosterDigest {
		t.Error("written roster does not match summary digest")
	}
	for _, p := range roster {
		if !p.Enrichment.IsZero() {
			t.Errorf("npi %d: failed enrichment left fields %+v", p.NPI, p.Enrichment)
		}
	}
}

func TestRun_MissingInput(t *testing.T) {
	cfg := writeInputs(t)
	cfg.ClaimsPath = filepath.Join(t.TempDir(), "missing.parquet")

	_, err := Run(context.Background(), zerolog.Nop(), &cfg, Deps{})
	var pe *PipelineError
	if !errors.As(err, &pe) || pe.Phase != PhaseLoad {
		t.Fatalf("expected load PipelineError, got %v", err)
	}
}

func TestRun_SchemaMismatch(t *testing.T) {
	cfg := writeInputs(t)
	// A taxonomy table is not a valid claims table.
	cfg.ClaimsPath = cfg.TaxonomyPath

	_, err := Run(context.Background(), zerolog.Nop(), &cfg, Deps{})
	var pe *PipelineError
	if !errors.As(err, &pe) || pe.Phase != PhaseLoad {
		t.Fatalf("expected load PipelineError, got %v", err)
	}
}

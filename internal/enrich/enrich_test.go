package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/pcroster/internal/model"
	"github.com/gyeh/pcroster/internal/progress"
)

// fakeSource replays scripted responses and records each query.
type fakeSource struct {
	mu      sync.Mutex
	queries []Query
	respond func(q Query) ([]Listing, error)
}

func (f *fakeSource) Search(ctx context.Context, q Query) ([]Listing, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	return f.respond(q)
}

func doctor() *model.LinkedProvider {
	return &model.LinkedProvider{
		NPI:  1234567890,
		Role: model.RolePhysician,
		Registry: model.RegistryRecord{
			FirstName: "Mary-Ann",
			LastName:  "Smith",
			Licenses: []model.LicenseSlot{
				{Number: "MA 555", State: "MA"},
				{Number: "MD 01234", State: "RI"},
			},
		},
		ConfirmedLicense: model.Unconfirmed,
	}
}

func fullListing(name, license string) Listing {
	return Listing{
		Name:          name,
		LicenseNumber: license,
		Profession:    "Physician",
		LicenseType:   "Physician",
		Status:        "Active",
		City:          "Providence",
		State:         "RI",
		IssueDate:     "07/01/2010",
		SchoolName:    "Brown University",
	}
}

func newEnricher(src Source) *Enricher {
	return New(zerolog.Nop(), src, Options{Region: "RI", Timeout: time.Second})
}

func TestLicenseToSearch(t *testing.T) {
	p := doctor()
	if got := LicenseToSearch(p, "RI"); got != "MD01234" {
		t.Errorf("LicenseToSearch = %q", got)
	}
	p.ConfirmedLicense = "MD09999"
	if got := LicenseToSearch(p, "RI"); got != "MD09999" {
		t.Errorf("confirmed license should win, got %q", got)
	}
	p.ConfirmedLicense = model.Unconfirmed
	p.Registry.Licenses = nil
	if got := LicenseToSearch(p, "RI"); got != "" {
		t.Errorf("expected no license, got %q", got)
	}
}

func TestProfessionForLicense(t *testing.T) {
	tests := map[string]string{
		"MD01234": ProfessionPhysician,
		"DO0567":  ProfessionPhysician,
		"PA00123": ProfessionPhysicianAssistant,
		"CNM0012": ProfessionMidwifery,
		"RN12345": ProfessionNursing,
		"CAPRN01": ProfessionNursing,
		"F031706": "",
	}
	for lic, want := range tests {
		if got := ProfessionForLicense(lic); got != want {
			t.Errorf("ProfessionForLicense(%q) = %q, want %q", lic, got, want)
		}
	}
}

func TestEnrich_LicenseLookup(t *testing.T) {
	src := &fakeSource{respond: func(q Query) ([]Listing, error) {
		return []Listing{
			fullListing("Other Person", "MD012345"),
			fullListing("SMITH, MARY ANN", "MD01234"),
		}, nil
	}}

	out, err := newEnricher(src).Enrich(context.Background(), doctor())
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if out.Method != MethodLicense || out.LicenseNumber != "MD01234" || out.SchoolName != "Brown University" {
		t.Errorf("unexpected enrichment: %+v", out)
	}
	if out.IssueDate != "2010-07-01" {
		t.Errorf("IssueDate = %q, want ISO date", out.IssueDate)
	}
	if len(src.queries) != 1 || src.queries[0].Profession != ProfessionPhysician {
		t.Errorf("queries = %+v", src.queries)
	}
}

func TestEnrich_NameMismatchFallsBackToName(t *testing.T) {
	src := &fakeSource{respond: func(q Query) ([]Listing, error) {
		if q.ByLicense() {
			return []Listing{fullListing("Jones, Robert", "MD01234")}, nil
		}
		return []Listing{fullListing("Smith, Mary-Ann", "MD07777")}, nil
	}}

	out, err := newEnricher(src).Enrich(context.Background(), doctor())
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if out.Method != MethodName || out.LicenseNumber != "MD07777" {
		t.Errorf("unexpected enrichment: %+v", out)
	}
	if len(src.queries) != 2 || src.queries[1].FirstName != "Mary-Ann" || src.queries[1].Profession != ProfessionPhysician {
		t.Errorf("queries = %+v", src.queries)
	}
}

func TestEnrich_EmptyLicenseDetailFallsBack(t *testing.T) {
	src := &fakeSource{respond: func(q Query) ([]Listing, error) {
		if q.ByLicense() {
			return nil, nil
		}
		return []Listing{fullListing("Mary Ann Smith", "MD01234")}, nil
	}}

	out, err := newEnricher(src).Enrich(context.Background(), doctor())
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if out.Method != MethodName {
		t.Errorf("Method = %q", out.Method)
	}
}

func TestEnrich_RegionPrefixForcesNameSearch(t *testing.T) {
	p := doctor()
	p.Registry.Licenses = []model.LicenseSlot{{Number: "RI 1234", State: "RI"}}
	src := &fakeSource{respond: func(q Query) ([]Listing, error) {
		return []Listing{fullListing("Mary-Ann Smith", "MD01234")}, nil
	}}

	out, err := newEnricher(src).Enrich(context.Background(), p)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if out.Method != MethodName {
		t.Errorf("Method = %q", out.Method)
	}
	for _, q := range src.queries {
		if q.ByLicense() {
			t.Errorf("region-prefixed license must not be searched: %+v", q)
		}
	}
}

func TestEnrich_BoundedAttempts(t *testing.T) {
	src := &fakeSource{respond: func(q Query) ([]Listing, error) {
		return nil, errors.New("service unavailable")
	}}

	out, err := newEnricher(src).Enrich(context.Background(), doctor())
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if !out.IsZero() {
		t.Errorf("failed enrichment must be empty, got %+v", out)
	}
	if len(src.queries) != DefaultMaxAttempts {
		t.Errorf("attempts = %d, want %d", len(src.queries), DefaultMaxAttempts)
	}
}

func TestEnrich_Ineligible(t *testing.T) {
	src := &fakeSource{respond: func(q Query) ([]Listing, error) {
		t.Fatal("ineligible provider must not be searched")
		return nil, nil
	}}
	e := newEnricher(src)

	org := doctor()
	org.Registry.EntityType = model.EntityTypeOrganization
	noName := doctor()
	noName.Registry.FirstName = " "
	student := doctor()
	student.Role = model.RoleStudent

	for _, p := range []*model.LinkedProvider{org, noName, student} {
		out, err := e.Enrich(context.Background(), p)
		if err != nil || !out.IsZero() {
			t.Errorf("expected empty enrichment, got %+v, %v", out, err)
		}
	}
}

func TestEnrichAll_TolerantOfFailures(t *testing.T) {
	src := &fakeSource{respond: func(q Query) ([]Listing, error) {
		if q.LastName == "Broken" {
			return nil, errors.New("timeout")
		}
		return []Listing{fullListing("Mary-Ann Smith", "MD01234")}, nil
	}}
	broken := doctor()
	broken.Registry.LastName = "Broken"
	broken.Registry.Licenses = nil

	roster := []model.LinkedProvider{*doctor(), *broken}
	res, err := newEnricher(src).EnrichAll(context.Background(), roster, progress.NoopManager{}.NewTracker("enrich", 2))
	if err != nil {
		t.Fatalf("EnrichAll: %v", err)
	}
	if res.Eligible != 2 || res.Enriched != 1 || res.Failed != 1 {
		t.Errorf("result = %+v", res)
	}
	if roster[0].Enrichment.LicenseNumber != "MD01234" || !roster[1].Enrichment.IsZero() {
		t.Errorf("roster enrichment = %+v / %+v", roster[0].Enrichment, roster[1].Enrichment)
	}
}

func TestHTTPSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("license_no") != "MD01234" || r.URL.Query().Get("profession") != "Physician" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(searchResponse{
			ResultCount: 1,
			Results:     []Listing{fullListing("Smith, Mary-Ann", "MD01234")},
		})
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL + "/")
	got, err := src.Search(context.Background(), Query{Profession: ProfessionPhysician, LicenseNumber: "MD01234"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].SchoolName != "Brown University" {
		t.Errorf("unexpected listings: %+v", got)
	}
}

func TestHTTPSource_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if _, err := NewHTTPSource(server.URL).Search(context.Background(), Query{FirstName: "A", LastName: "B"}); err == nil {
		t.Fatal("expected error for 503")
	}
}

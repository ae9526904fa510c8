package db_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/pcroster/internal/db"
	"github.com/gyeh/pcroster/internal/model"
)

const (
	testPort     = 15433
	testDB       = "rostertest"
	testUser     = "postgres"
	testPassword = "postgres"
)

var testDSN string

func TestMain(m *testing.M) {
	if os.Getenv("PCROSTER_PG_TESTS") != "1" {
		fmt.Fprintln(os.Stderr, "SKIP: set PCROSTER_PG_TESTS=1 to run database tests")
		os.Exit(0)
	}

	testDSN = fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable",
		testUser, testPassword, testPort, testDB)

	pg := embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(uint32(testPort)).
			Database(testDB).
			Username(testUser).
			Password(testPassword).
			Version(embeddedpostgres.V16).
			StartTimeout(30 * time.Second),
	)
	if err := pg.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start embedded postgres: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	if err := pg.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop embedded postgres: %v\n", err)
	}
	os.Exit(code)
}

func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pool, err := db.NewPool(ctx, testDSN)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := pool.Exec(ctx, "DROP SCHEMA IF EXISTS roster CASCADE"); err != nil {
		t.Fatalf("drop schema: %v", err)
	}
	if err := db.ApplyMigrations(ctx, pool, zerolog.Nop()); err != nil {
		pool.Close()
		t.Fatalf("migrations: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func testRoster() ([]model.LinkedProvider, []model.NotFoundRecord) {
	roster := []model.LinkedProvider{
		{
			NPI:                1000000001,
			Basis:              model.BasisCorePrevention,
			Claims:             model.ClaimsRecord{NPI: 1000000001, TotalClaims: 3360, CorePreventionClaims: 900},
			Registry:           model.RegistryRecord{NPI: 1000000001, FirstName: "Jane", LastName: "Doe"},
			Residency:          model.ResidencyFlags{InRegionByAddress: true},
			Role:               model.RolePhysician,
			Roles:              []string{model.RolePhysician},
			DerivedSpecialty:   model.SpecialtyFamilyMedicine,
			ConfirmedLicense:   "MD01234",
			ConfirmedSpecialty: "Family Medicine",
			ConfirmationStatus: model.ConfirmationConfirmed,
			CorePreventionFTE:  1,
			TotalClaimsFTE:     1,
		},
		{
			NPI:                1000000002,
			Basis:              model.BasisImmunizationOnly,
			Claims:             model.ClaimsRecord{NPI: 1000000002, TotalClaims: 12},
			DerivedSpecialty:   model.DerivedUnknown,
			ConfirmedLicense:   model.Unconfirmed,
			ConfirmedSpecialty: model.Unconfirmed,
			ConfirmationStatus: model.ConfirmationNoCandidate,
		},
	}
	notFound := []model.NotFoundRecord{
		{Claims: model.ClaimsRecord{NPI: 1000000009, TotalClaims: 5}, LowVolume: true},
	}
	return roster, notFound
}

func TestStore_LoadAndActivate(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	roster, notFound := testRoster()
	runDate := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	first := &model.RunSummary{RunID: uuid.NewString(), Region: "RI", RosterDigest: "abc"}
	res, err := db.Store(ctx, pool, zerolog.Nop(), first, runDate, roster, notFound, true)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if res.ProvidersRows != 2 || res.NotFoundRows != 1 {
		t.Errorf("copied %d providers, %d not found", res.ProvidersRows, res.NotFoundRows)
	}

	second := &model.RunSummary{RunID: uuid.NewString(), Region: "RI", RosterDigest: "def"}
	if _, err := db.Store(ctx, pool, zerolog.Nop(), second, runDate, roster, notFound, true); err != nil {
		t.Fatalf("Store second: %v", err)
	}

	active, err := db.GetActiveRun(ctx, pool, "RI")
	if err != nil {
		t.Fatalf("GetActiveRun: %v", err)
	}
	if active == nil || active.RunID.String() != second.RunID {
		t.Fatalf("active run = %+v, want %s", active, second.RunID)
	}
	if active.Digest != "def" || active.RosterRows != 2 {
		t.Errorf("active = %+v", active)
	}

	var activeCount int
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM roster.runs WHERE is_active").Scan(&activeCount); err != nil {
		t.Fatalf("count active: %v", err)
	}
	if activeCount != 1 {
		t.Errorf("expected 1 active run, got %d", activeCount)
	}

	var status string
	if err := pool.QueryRow(ctx,
		"SELECT confirmation_status FROM roster.providers WHERE run_id = $1 AND npi = $2",
		second.RunID, int64(1000000002)).Scan(&status); err != nil {
		t.Fatalf("query provider: %v", err)
	}
	if status != model.ConfirmationNoCandidate {
		t.Errorf("status = %q", status)
	}
}

func TestStore_DuplicateNPIRemovesRun(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	roster, _ := testRoster()
	roster = append(roster, roster[0])

	summary := &model.RunSummary{RunID: uuid.NewString(), Region: "RI"}
	if _, err := db.Store(ctx, pool, zerolog.Nop(), summary, time.Now(), roster, nil, false); err == nil {
		t.Fatal("expected error for duplicate NPI")
	}

	var runs int
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM roster.runs").Scan(&runs); err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if runs != 0 {
		t.Errorf("expected failed run removed, found %d", runs)
	}
}

func TestGetActiveRun_None(t *testing.T) {
	pool := setupDB(t)
	active, err := db.GetActiveRun(context.Background(), pool, "RI")
	if err != nil {
		t.Fatalf("GetActiveRun: %v", err)
	}
	if active != nil {
		t.Errorf("expected no active run, got %+v", active)
	}
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	pool := setupDB(t)
	if err := db.ApplyMigrations(context.Background(), pool, zerolog.Nop()); err != nil {
		t.Fatalf("second ApplyMigrations: %v", err)
	}
}

package model

import "time"

// RunSummary captures metrics from a single roster build.
type RunSummary struct {
	RunID        string
	Region       string
	RosterDigest string

	ClaimsRows       int64
	RegistryRows     int64
	RegistryRejected int64
	LicenseRows      int64
	TaxonomyRows     int64

	OrganizationsRemoved int64
	Residents            int64
	ResidentsByAddress   int64
	ResidentsByName      int64
	ResidentsByLicense   int64

	Linked              int64
	NotFound            int64
	NotFoundLowVolume   int64
	CorePrevention      int64
	ImmunizationOnly    int64
	SubspecialtyDropped int64
	RosterRows          int64

	ConfirmByStatus  map[string]int64
	Enriched         int64
	EnrichmentFailed int64

	PhysicianCorePreventionFTE float64
	PhysicianTotalClaimsFTE    float64

	DurationLoad        time.Duration
	DurationResidency   time.Duration
	DurationLink        time.Duration
	DurationClassify    time.Duration
	DurationTriangulate time.Duration
	DurationEnrich      time.Duration
	DurationWrite       time.Duration
	DurationStore       time.Duration
	DurationPublish     time.Duration
	DurationTotal       time.Duration
}

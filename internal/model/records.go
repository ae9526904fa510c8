package model

import (
	"fmt"
	"slices"
)

// Slot bounds of the national registry extract.
const (
	MaxLicenseSlots         = 15
	MaxTaxonomySlots        = 15
	MaxIdentifierStateSlots = 50
)

// EntityTypeOrganization is the registry entity-type code for organizations.
const EntityTypeOrganization = 2

// ClaimsRecord is one row per NPI from the claims (APCD) extract.
type ClaimsRecord struct {
	NPI                   int64 `parquet:"npi"`
	TotalClaims           int64 `parquet:"total_claims_all"`
	CorePreventionClaims  int64 `parquet:"core_pc_claims"`
	CorePreventionPresent bool  `parquet:"pc_codes_present"`
}

// LicenseSlot is one of the numbered license-number/license-state pairs of a
// registry record. Empty fields mean the slot is unused.
type LicenseSlot struct {
	Number string `parquet:"number"`
	State  string `parquet:"state"`
}

// RegistryRecord mirrors one national registry (NPPES) row. The numbered
// slot columns are carried as ordered lists; slot 1 is element 0.
type RegistryRecord struct {
	NPI           int64  `parquet:"npi"`
	EntityType    int32  `parquet:"entity_type_code"`
	FirstName     string `parquet:"first_name"`
	MiddleName    string `parquet:"middle_name"`
	LastName      string `parquet:"last_name"`
	Gender        string `parquet:"gender"`
	MailingState  string `parquet:"mailing_state"`
	PracticeState string `parquet:"practice_state"`

	Licenses              []LicenseSlot `parquet:"licenses"`
	TaxonomyCodes         []string      `parquet:"taxonomy_codes"`
	OtherIdentifierStates []string      `parquet:"other_identifier_states"`
}

// IsOrganization reports whether the record carries the organization entity type.
func (r *RegistryRecord) IsOrganization() bool {
	return r.EntityType == EntityTypeOrganization
}

// Validate rejects rows without an NPI or with more slots than the extract allows.
func (r *RegistryRecord) Validate() error {
	if r.NPI == 0 {
		return fmt.Errorf("registry row has no NPI")
	}
	if len(r.Licenses) > MaxLicenseSlots {
		return fmt.Errorf("npi %d: %d license slots exceeds %d", r.NPI, len(r.Licenses), MaxLicenseSlots)
	}
	if len(r.TaxonomyCodes) > MaxTaxonomySlots {
		return fmt.Errorf("npi %d: %d taxonomy slots exceeds %d", r.NPI, len(r.TaxonomyCodes), MaxTaxonomySlots)
	}
	if len(r.OtherIdentifierStates) > MaxIdentifierStateSlots {
		return fmt.Errorf("npi %d: %d identifier-state slots exceeds %d", r.NPI, len(r.OtherIdentifierStates), MaxIdentifierStateSlots)
	}
	return nil
}

// LicenseRecord is one row of the state licensing (RIDOH) extract. Credential
// is the role implied by the licensee list the row came from; it is empty for
// lists that mix credentials (nursing).
type LicenseRecord struct {
	Credential     string `parquet:"credential"`
	Name           string `parquet:"name"`
	FirstName      string `parquet:"first_name"`
	MiddleName     string `parquet:"middle_name"`
	LastName       string `parquet:"last_name"`
	LicenseNumber  string `parquet:"license_no"`
	LicenseType    string `parquet:"license_type"`
	Status         string `parquet:"status"`
	IssueDate      string `parquet:"issue_date"`
	ExpirationDate string `parquet:"expiration_date"`
	AddressLine1   string `parquet:"address_line_1"`
	AddressLine2   string `parquet:"address_line_2"`
	AddressLine3   string `parquet:"address_line_3"`
	City           string `parquet:"city"`
	State          string `parquet:"state"`
	Zip            string `parquet:"zip"`
	Email          string `parquet:"email"`
	Phone          string `parquet:"phone"`
	Fax            string `parquet:"fax"`
	Profession     string `parquet:"profession"`
	Specialty      string `parquet:"specialty"`
}

// TaxonomyCode is one row of the external taxonomy code table.
type TaxonomyCode struct {
	Code           string `parquet:"code"`
	Grouping       string `parquet:"grouping"`
	Classification string `parquet:"classification"`
	Specialization string `parquet:"specialization"`
	// Exclude marks codes not expected to be primary care.
	Exclude bool `parquet:"exclude"`
	// InternalMedicineSubspecialtyExclude marks codes that disqualify an
	// immunization-only biller.
	InternalMedicineSubspecialtyExclude bool `parquet:"im_subspecialty_exclude"`
}

// Clone returns a copy that shares no slice memory with r. Batch readers
// reuse their buffers, so records kept past the next read must be cloned.
func (r RegistryRecord) Clone() RegistryRecord {
	r.Licenses = slices.Clone(r.Licenses)
	r.TaxonomyCodes = slices.Clone(r.TaxonomyCodes)
	r.OtherIdentifierStates = slices.Clone(r.OtherIdentifierStates)
	return r
}

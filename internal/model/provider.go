package model

// ResidencyFlags records which residency signals retained a registry record.
type ResidencyFlags struct {
	InRegionByAddress bool `parquet:"in_region_by_address"`
	MatchedOnName     bool `parquet:"matched_licensing_name"`
	MatchedOnLicense  bool `parquet:"matched_licensing_license"`
}

// InRegion reports whether any residency signal succeeded.
func (f ResidencyFlags) InRegion() bool {
	return f.InRegionByAddress || f.MatchedOnName || f.MatchedOnLicense
}

// ResidentRecord is a registry record retained by the residency resolver.
type ResidentRecord struct {
	Registry  RegistryRecord
	Residency ResidencyFlags
}

// Enrichment holds the optional licensing lookup result. All fields are empty
// when the lookup was skipped or failed.
type Enrichment struct {
	Method         string `parquet:"method"`
	LicenseNumber  string `parquet:"license_no"`
	Name           string `parquet:"name"`
	Profession     string `parquet:"profession"`
	LicenseType    string `parquet:"license_type"`
	LicenseStatus  string `parquet:"license_status"`
	City           string `parquet:"city"`
	State          string `parquet:"state"`
	IssueDate      string `parquet:"issue_date"`
	ExpirationDate string `parquet:"expiration_date"`
	SchoolName     string `parquet:"school_name"`
	GraduationDate string `parquet:"graduation_date"`
	SpecialtyInfo  string `parquet:"specialty_info"`
}

// IsZero reports whether no lookup data was recorded.
func (e Enrichment) IsZero() bool {
	return e == Enrichment{}
}

// LinkedProvider is one resolved roster row. The linker fills Claims,
// Registry, Residency and Basis; the classifier, triangulator and enricher
// each own their own block of fields.
type LinkedProvider struct {
	NPI       int64          `parquet:"npi"`
	Basis     string         `parquet:"basis"`
	Claims    ClaimsRecord   `parquet:"claims"`
	Registry  RegistryRecord `parquet:"registry"`
	Residency ResidencyFlags `parquet:"residency"`

	// Classification
	Role             string         `parquet:"role"`
	Roles            []string       `parquet:"roles"`
	RoleCodes        []string       `parquet:"role_codes"`
	Specialty        string         `parquet:"specialty"`
	Specialties      []string       `parquet:"specialties"`
	SpecialtyCodes   []string       `parquet:"specialty_codes"`
	SpecialtyCount   int32          `parquet:"specialty_count"`
	DerivedSpecialty string         `parquet:"derived_specialty"`
	IsRole           RoleFlags      `parquet:"is_role"`
	IsSpecialty      SpecialtyFlags `parquet:"is_specialty"`

	// Triangulation
	CleanedLicenses    []string `parquet:"cleaned_licenses"`
	ConfirmedLicense   string   `parquet:"confirmed_license"`
	ConfirmedSpecialty string   `parquet:"confirmed_specialty"`
	ConfirmationStatus string   `parquet:"confirmation_status"`

	// Productivity
	CorePreventionFTE float64 `parquet:"core_pc_fte"`
	TotalClaimsFTE    float64 `parquet:"total_claims_fte"`

	Enrichment Enrichment `parquet:"enrichment"`
}

// RoleFlags has one column per known role, set when any taxonomy slot
// matched that role.
type RoleFlags struct {
	MiscOther               bool `parquet:"misc_other"`
	Podiatrist              bool `parquet:"podiatrist"`
	Optometrist             bool `parquet:"optometrist"`
	CaseManagement          bool `parquet:"case_management"`
	Psychologist            bool `parquet:"psychologist"`
	Organization            bool `parquet:"organization"`
	ClinicalNurseSpecialist bool `parquet:"clinical_nurse_specialist"`
	CertifiedNurseMidwife   bool `parquet:"certified_nurse_midwife"`
	Nurse                   bool `parquet:"nurse"`
	Student                 bool `parquet:"student"`
	NursePractitioner       bool `parquet:"nurse_practitioner"`
	PhysicianAssistant      bool `parquet:"physician_assistant"`
	Physician               bool `parquet:"physician"`
}

// NewRoleFlags sets the flag of every label in roles. Unknown labels are ignored.
func NewRoleFlags(roles []string) RoleFlags {
	var f RoleFlags
	for _, r := range roles {
		switch r {
		case RoleMiscOther:
			f.MiscOther = true
		case RolePodiatrist:
			f.Podiatrist = true
		case RoleOptometrist:
			f.Optometrist = true
		case RoleCaseManagement:
			f.CaseManagement = true
		case RolePsychologist:
			f.Psychologist = true
		case RoleOrganization:
			f.Organization = true
		case RoleClinicalNurseSpecialist:
			f.ClinicalNurseSpecialist = true
		case RoleCertifiedNurseMidwife:
			f.CertifiedNurseMidwife = true
		case RoleNurse:
			f.Nurse = true
		case RoleStudent:
			f.Student = true
		case RoleNursePractitioner:
			f.NursePractitioner = true
		case RolePhysicianAssistant:
			f.PhysicianAssistant = true
		case RolePhysician:
			f.Physician = true
		}
	}
	return f
}

// SpecialtyFlags has one column per known specialty.
type SpecialtyFlags struct {
	EmergencyMedicine   bool `parquet:"emergency_medicine"`
	IntegrativeMedicine bool `parquet:"integrative_medicine"`
	PreventiveMedicine  bool `parquet:"preventive_medicine"`
	InternalMedicine    bool `parquet:"internal_medicine"`
	FamilyMedicine      bool `parquet:"family_medicine"`
	GeneralPractice     bool `parquet:"general_practice"`
	ObGyn               bool `parquet:"ob_gyn"`
	Pediatrics          bool `parquet:"pediatrics"`
}

// NewSpecialtyFlags sets the flag of every label in specialties.
func NewSpecialtyFlags(specialties []string) SpecialtyFlags {
	var f SpecialtyFlags
	for _, s := range specialties {
		switch s {
		case SpecialtyEmergencyMedicine:
			f.EmergencyMedicine = true
		case SpecialtyIntegrativeMedicine:
			f.IntegrativeMedicine = true
		case SpecialtyPreventiveMedicine:
			f.PreventiveMedicine = true
		case SpecialtyInternalMedicine:
			f.InternalMedicine = true
		case SpecialtyFamilyMedicine:
			f.FamilyMedicine = true
		case SpecialtyGeneralPractice:
			f.GeneralPractice = true
		case SpecialtyObGyn:
			f.ObGyn = true
		case SpecialtyPediatrics:
			f.Pediatrics = true
		}
	}
	return f
}

// HasRole reports whether any taxonomy slot matched the given role.
func (p *LinkedProvider) HasRole(role string) bool {
	return contains(p.Roles, role)
}

// HasSpecialty reports whether any taxonomy slot matched the given specialty.
func (p *LinkedProvider) HasSpecialty(specialty string) bool {
	return contains(p.Specialties, specialty)
}

// IsConfirmed reports whether the triangulator confirmed a license.
func (p *LinkedProvider) IsConfirmed() bool {
	return p.ConfirmationStatus == ConfirmationConfirmed
}

// NotFoundRecord is a claims row with no in-region registry match.
type NotFoundRecord struct {
	Claims    ClaimsRecord `parquet:"claims"`
	LowVolume bool         `parquet:"low_volume"`
}

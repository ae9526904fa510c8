// Package enrich looks providers up in the state licensing board's public
// verification service. Enrichment is best effort: failures leave the
// enrichment fields empty and never stop a run.
package enrich

import "context"

// Professions accepted by the licensing board search.
const (
	ProfessionPhysician          = "Physician"
	ProfessionPhysicianAssistant = "Physician Assistant"
	ProfessionNursing            = "Nursing"
	ProfessionMidwifery          = "Midwifery"
)

// Query is one licensing search. Either LicenseNumber or both name fields are
// set. An empty Profession searches every profession.
type Query struct {
	Profession    string
	LicenseNumber string
	FirstName     string
	LastName      string
}

// ByLicense reports whether the query searches on license number.
func (q Query) ByLicense() bool {
	return q.LicenseNumber != ""
}

// Listing is one search result row together with its detail page fields.
// Detail fields are empty when the page did not carry them.
type Listing struct {
	Name          string `json:"name"`
	LicenseNumber string `json:"license_no"`
	Profession    string `json:"profession"`
	LicenseType   string `json:"license_type"`
	Status        string `json:"status"`
	City          string `json:"city"`
	State         string `json:"state"`

	IssueDate      string `json:"issue_date"`
	ExpirationDate string `json:"expiration_date"`
	SchoolName     string `json:"school_name"`
	GraduationDate string `json:"graduation_date"`
	SpecialtyInfo  string `json:"specialty_info"`
}

// HasDetail reports whether any detail-page field was found.
func (l *Listing) HasDetail() bool {
	return l.IssueDate != "" || l.ExpirationDate != "" || l.SchoolName != "" ||
		l.GraduationDate != "" || l.SpecialtyInfo != ""
}

// Source performs licensing searches.
type Source interface {
	Search(ctx context.Context, q Query) ([]Listing, error)
}

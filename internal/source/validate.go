package source

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Required top-level columns per input table.
var (
	ClaimsColumns   = []string{"npi", "total_claims_all", "pc_codes_present"}
	RegistryColumns = []string{"npi", "entity_type_code", "first_name", "last_name", "mailing_state", "practice_state", "licenses", "taxonomy_codes"}
	LicenseColumns  = []string{"first_name", "last_name", "license_no", "credential"}
	TaxonomyColumns = []string{"code", "grouping", "classification", "exclude", "im_subspecialty_exclude"}
)

// ValidateSchema checks that the Parquet schema contains all required columns.
func ValidateSchema(schema *parquet.Schema, required []string) error {
	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[strings.ToLower(field.Name())] = true
	}

	var missing []string
	for _, col := range required {
		if !columns[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

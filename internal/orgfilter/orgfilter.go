// Package orgfilter removes known organizational billing entities from the
// claims extract.
package orgfilter

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/gyeh/pcroster/internal/model"
)

//go:embed known_organizations.yaml
var defaultTable []byte

// Table maps organizational NPIs to display names.
type Table map[int64]string

type yamlTable struct {
	Organizations map[int64]string `yaml:"organizations"`
}

// Default returns the embedded curated table.
func Default() (Table, error) {
	return parse(defaultTable)
}

// LoadFile reads a curated table from a YAML file with the same layout as the
// embedded default.
func LoadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read organization table: %w", err)
	}
	return parse(data)
}

// Load returns the table at path, or the embedded default when path is empty.
func Load(path string) (Table, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

func parse(data []byte) (Table, error) {
	var yt yamlTable
	if err := yaml.Unmarshal(data, &yt); err != nil {
		return nil, fmt.Errorf("parse organization table: %w", err)
	}
	if len(yt.Organizations) == 0 {
		return nil, fmt.Errorf("organization table is empty")
	}
	return Table(yt.Organizations), nil
}

// Result holds the filtered claims and the audit counts.
type Result struct {
	Claims        []model.ClaimsRecord
	UniqueBefore  int
	UniqueAfter   int
	RowsRemoved   int
	MatchedByName map[string]int
}

// Filter drops every claims row whose NPI is a key of the table, keeping the
// remaining rows in input order.
func Filter(log zerolog.Logger, claims []model.ClaimsRecord, table Table) *Result {
	res := &Result{
		Claims:        make([]model.ClaimsRecord, 0, len(claims)),
		MatchedByName: make(map[string]int),
	}
	before := make(map[int64]struct{}, len(claims))
	after := make(map[int64]struct{}, len(claims))

	for _, c := range claims {
		before[c.NPI] = struct{}{}
		if name, ok := table[c.NPI]; ok {
			res.RowsRemoved++
			res.MatchedByName[name]++
			continue
		}
		after[c.NPI] = struct{}{}
		res.Claims = append(res.Claims, c)
	}
	res.UniqueBefore = len(before)
	res.UniqueAfter = len(after)

	log.Info().
		Int("unique_npis_before", res.UniqueBefore).
		Int("unique_npis_after", res.UniqueAfter).
		Int("rows_removed", res.RowsRemoved).
		Msg("organizational entities filtered")

	return res
}

package residency

import "github.com/gyeh/pcroster/internal/model"

// Accumulator collects retained records across batches, keeping the first
// occurrence of each NPI in arrival order.
type Accumulator struct {
	seen    map[int64]struct{}
	records []model.ResidentRecord
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{seen: make(map[int64]struct{})}
}

// Add appends rec unless its NPI was already accumulated. It reports whether
// the record was added.
func (a *Accumulator) Add(rec model.ResidentRecord) bool {
	if _, dup := a.seen[rec.Registry.NPI]; dup {
		return false
	}
	a.seen[rec.Registry.NPI] = struct{}{}
	a.records = append(a.records, rec)
	return true
}

// Len returns the number of accumulated records.
func (a *Accumulator) Len() int {
	return len(a.records)
}

// Records returns the accumulated records in arrival order.
func (a *Accumulator) Records() []model.ResidentRecord {
	return a.records
}

package pipeline

import "fmt"

// Phase names carried by PipelineError.
const (
	PhaseLoad        = "load"
	PhaseFilter      = "filter"
	PhaseResidency   = "residency"
	PhaseLink        = "link"
	PhaseClassify    = "classify"
	PhaseTriangulate = "triangulate"
	PhaseEnrich      = "enrich"
	PhaseWrite       = "write"
	PhaseStore       = "store"
	PhasePublish     = "publish"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

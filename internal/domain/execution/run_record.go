package execution

import (
	"time"

	"github.com/tensorflow/tfhub.dev/internal/domain/values"
)

// RunRecord is the persisted summary of a validation run.
type RunRecord struct {
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	RootDir   string        `json:"root_dir" yaml:"root_dir"`
	Duration  time.Duration `json:"duration_ms" yaml:"duration_ms"`
	Total     int           `json:"total" yaml:"total"`
	Passed    int           `json:"passed" yaml:"passed"`
	Failed    int           `json:"failed" yaml:"failed"`
	Errors    int           `json:"errors" yaml:"errors"`
	RunID     values.RunID  `json:"run_id" yaml:"run_id"`
}

// NewRunRecord summarizes a finalized result.
func NewRunRecord(r *ValidationResult) RunRecord {
	return RunRecord{
		RunID:     r.RunID,
		StartedAt: r.StartTime,
		Duration:  r.Duration,
		RootDir:   r.RootDir,
		Total:     r.Summary.Total,
		Passed:    r.Summary.Passed,
		Failed:    r.Summary.Failed,
		Errors:    r.Summary.Errored,
	}
}

// Succeeded reports whether the run had no failed or errored documents.
func (r RunRecord) Succeeded() bool {
	return r.Failed == 0 && r.Errors == 0
}

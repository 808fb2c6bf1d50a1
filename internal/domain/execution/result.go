// Package execution provides domain models for validation run results.
package execution

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/tensorflow/tfhub.dev/internal/domain/validation"
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
)

// ValidationResult represents the complete result of one validation run.
type ValidationResult struct {
	StartTime     time.Time     `json:"start_time" yaml:"start_time"`
	EndTime       time.Time     `json:"end_time" yaml:"end_time"`
	HubdocVersion string        `json:"hubdoc_version,omitempty" yaml:"hubdoc_version,omitempty"`
	RootDir       string        `json:"root_dir" yaml:"root_dir"`
	DocsDir       string        `json:"docs_dir" yaml:"docs_dir"`
	Files         []FileResult  `json:"files" yaml:"files"`
	Summary       ResultSummary `json:"summary" yaml:"summary"`
	Duration      time.Duration `json:"duration_ms" yaml:"duration_ms"`
	SmokeTested   bool          `json:"smoke_tested" yaml:"smoke_tested"`
	mu            sync.Mutex
	RunID         values.RunID `json:"run_id" yaml:"run_id"`
}

// FileResult represents the result of validating a single document.
type FileResult struct {
	RawError   error           `json:"-" yaml:"-"`
	Path       string          `json:"path" yaml:"path"`
	HandleID   string          `json:"handle,omitempty" yaml:"handle,omitempty"`
	DocType    string          `json:"doc_type,omitempty" yaml:"doc_type,omitempty"`
	Status     values.Status   `json:"status" yaml:"status"`
	ErrorKind  validation.Kind `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Message    string          `json:"message,omitempty" yaml:"message,omitempty"`
	SkipReason string          `json:"skip_reason,omitempty" yaml:"skip_reason,omitempty"`
	Index      int             `json:"index" yaml:"index"`
	Duration   time.Duration   `json:"duration_ms" yaml:"duration_ms"`
}

// ResultSummary provides aggregate statistics about the run.
type ResultSummary struct {
	ErrorsByKind map[validation.Kind]int `json:"errors_by_kind,omitempty" yaml:"errors_by_kind,omitempty"`
	Total        int                     `json:"total" yaml:"total"`
	Passed       int                     `json:"passed" yaml:"passed"`
	Failed       int                     `json:"failed" yaml:"failed"`
	Errored      int                     `json:"errored" yaml:"errored"`
	Skipped      int                     `json:"skipped" yaml:"skipped"`
}

// NewValidationResult creates a new result for a run over rootDir.
func NewValidationResult(rootDir, docsDir string) *ValidationResult {
	return NewValidationResultWithID(values.NewRunID(), rootDir, docsDir)
}

// NewValidationResultWithID creates a new result with a specific run ID.
func NewValidationResultWithID(id values.RunID, rootDir, docsDir string) *ValidationResult {
	return &ValidationResult{
		RunID:     id,
		RootDir:   rootDir,
		DocsDir:   docsDir,
		StartTime: time.Now(),
		Files:     make([]FileResult, 0),
	}
}

// GetID returns the run ID.
func (r *ValidationResult) GetID() values.RunID {
	return r.RunID
}

// NewFileResult classifies the outcome of validating one document.
// A nil error is a pass, a *validation.Error a failure and anything else an error.
func NewFileResult(index int, path string, err error) FileResult {
	fr := FileResult{Index: index, Path: path, Status: values.StatusPass}
	if err == nil {
		return fr
	}

	fr.RawError = err
	fr.Message = err.Error()
	var verr *validation.Error
	if errors.As(err, &verr) {
		fr.Status = values.StatusFail
		fr.ErrorKind = verr.Kind
	} else {
		fr.Status = values.StatusError
	}
	return fr
}

// SkippedFileResult records a document excluded from the run.
func SkippedFileResult(index int, path, reason string) FileResult {
	return FileResult{Index: index, Path: path, Status: values.StatusSkipped, SkipReason: reason}
}

// AddFileResult adds a document result.
// Thread-safe for concurrent calls during parallel validation.
func (r *ValidationResult) AddFileResult(fr FileResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Files = append(r.Files, fr)
}

// GetFileResult returns a copy of the result for path.
// Thread-safe.
func (r *ValidationResult) GetFileResult(path string) (FileResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.Files {
		if f.Path == path {
			return f, true
		}
	}
	return FileResult{}, false
}

// IsComplete checks if the number of recorded documents matches the expected count.
func (r *ValidationResult) IsComplete(expected int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Files) >= expected
}

// Finalize completes the result and calculates the summary.
// Files are sorted by discovery order for deterministic output.
func (r *ValidationResult) Finalize() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)

	sort.SliceStable(r.Files, func(i, j int) bool {
		return r.Files[i].Index < r.Files[j].Index
	})

	r.calculateSummary()
}

func (r *ValidationResult) calculateSummary() {
	r.Summary = ResultSummary{Total: len(r.Files)}

	for _, f := range r.Files {
		switch f.Status {
		case values.StatusPass:
			r.Summary.Passed++
		case values.StatusFail:
			r.Summary.Failed++
			if r.Summary.ErrorsByKind == nil {
				r.Summary.ErrorsByKind = make(map[validation.Kind]int)
			}
			r.Summary.ErrorsByKind[f.ErrorKind]++
		case values.StatusError:
			r.Summary.Errored++
		case values.StatusSkipped:
			r.Summary.Skipped++
		}
	}
}

// HasFailures reports whether any document failed or errored.
func (r *ValidationResult) HasFailures() bool {
	return r.Summary.Failed > 0 || r.Summary.Errored > 0
}

// Errors returns the path to error view of failed and errored documents.
func (r *ValidationResult) Errors() map[string]error {
	out := make(map[string]error)
	for _, f := range r.Files {
		if !f.Status.IsFailure() {
			continue
		}
		if f.RawError != nil {
			out[f.Path] = f.RawError
			continue
		}
		out[f.Path] = errors.New(f.Message)
	}
	return out
}

// FailedFiles returns the failed and errored documents in order.
func (r *ValidationResult) FailedFiles() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Status.IsFailure() {
			out = append(out, f)
		}
	}
	return out
}

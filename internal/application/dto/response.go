package dto

import (
	"time"

	"github.com/tensorflow/tfhub.dev/internal/domain/execution"
)

// ValidateDocsResponse contains the result of a documentation run.
type ValidateDocsResponse struct {
	// Result contains the per-document outcomes
	Result *execution.ValidationResult

	// Metadata contains response metadata
	Metadata ResponseMetadata

	// Diagnostics contains additional diagnostic information
	Diagnostics Diagnostics
}

// ResponseMetadata contains metadata about the response.
type ResponseMetadata struct {
	// RequestID from the original request
	RequestID string

	// ProcessedAt is when the request was processed
	ProcessedAt time.Time

	// Duration is how long the request took
	Duration time.Duration
}

// Diagnostics contains diagnostic information about the run.
type Diagnostics struct {
	// Warnings are non-fatal issues encountered
	Warnings []string
}

// ValidateTagsResponse contains the result of validating tag definition files.
type ValidateTagsResponse struct {
	// Validated lists every checked file, relative to the tags directory
	Validated []string

	// Errors maps a file to its definition error
	Errors map[string]error
}

// ScaffoldResponse is the rendered skeleton and where it belongs.
type ScaffoldResponse struct {
	Path    string
	Content string
	Written bool
}

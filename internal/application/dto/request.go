// Package dto contains data transfer objects for application layer use cases.
package dto

// DefaultDocsPath is the documentation directory relative to the root.
const DefaultDocsPath = "assets/docs"

// DefaultTagsPath is the tag definition directory relative to the root.
const DefaultTagsPath = "tags"

// ValidateDocsRequest encapsulates all inputs needed to validate documentation.
type ValidateDocsRequest struct {
	// RootDir contains DocsPath and the tag definitions
	RootDir string
	// DocsPath is relative to RootDir; empty means DefaultDocsPath
	DocsPath string
	// Files are relative to the docs directory; empty validates the whole tree
	Files     []string
	Config    ValidationConfig
	Filters   FilterOptions
	Execution ExecutionOptions
	Metadata  RequestMetadata
}

// ValidationConfig selects which checks run for every document.
type ValidationConfig struct {
	SkipFilePathCheck bool
	SkipAssetCheck    bool
	SkipContentCheck  bool
	DoSmokeTest       bool
}

// DefaultValidationConfig returns the checks used when no override is given:
// explicitly listed files are smoke tested, a whole-tree run is not.
func DefaultValidationConfig(filesGiven bool) ValidationConfig {
	return ValidationConfig{DoSmokeTest: filesGiven}
}

// FilterOptions defines which discovered documents are validated.
type FilterOptions struct {
	FilterExpression string
}

// ExecutionOptions controls how documents are scheduled.
type ExecutionOptions struct {
	// Parallel enables parallel validation of documents
	Parallel bool

	// MaxConcurrentDocuments limits parallel validation (0 = engine default)
	MaxConcurrentDocuments int
}

// RequestMetadata contains metadata for request tracking.
type RequestMetadata struct {
	// RequestID uniquely identifies this request
	RequestID string
}

// ValidateTagsRequest encapsulates inputs for validating tag definition files.
type ValidateTagsRequest struct {
	RootDir  string
	TagsPath string
	// Files are relative to the tags directory; empty validates every *.yaml file
	Files []string
}

// ScaffoldRequest describes a new documentation record.
type ScaffoldRequest struct {
	DocsDir     string
	DocType     string
	Publisher   string
	Name        string
	Version     string
	Description string
	// DryRun renders the document without writing it
	DryRun bool
}

// Package validation defines the error taxonomy for documentation checks.
// Every rule violation is returned as an *Error carrying a Kind, so batch
// runs can classify failures without matching on message text.
package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a documentation error.
type Kind string

const (
	KindHandleFormat        Kind = "handle_format"
	KindPathPlacement       Kind = "path_placement"
	KindMetadataGrammar     Kind = "metadata_grammar"
	KindMetadataMissing     Kind = "metadata_missing"
	KindMetadataUnsupported Kind = "metadata_unsupported"
	KindMetadataDuplicate   Kind = "metadata_duplicate"
	KindTagValue            Kind = "tag_value"
	KindRegistryLoad        Kind = "registry_load"
	KindAssetPath           Kind = "asset_path"
	KindAssetSmokeTest      Kind = "asset_smoke_test"
	KindCrossReference      Kind = "cross_reference"
	KindDefinitionFormat    Kind = "definition_format"
)

// AllKinds lists every kind in a stable order for reports.
var AllKinds = []Kind{
	KindHandleFormat,
	KindPathPlacement,
	KindMetadataGrammar,
	KindMetadataMissing,
	KindMetadataUnsupported,
	KindMetadataDuplicate,
	KindTagValue,
	KindRegistryLoad,
	KindAssetPath,
	KindAssetSmokeTest,
	KindCrossReference,
	KindDefinitionFormat,
}

var kindDescriptions = map[Kind]string{
	KindHandleFormat:        "First line does not declare a known document type and handle",
	KindPathPlacement:       "Document is stored at a location its type and handle do not allow",
	KindMetadataGrammar:     "Description or metadata preamble is malformed",
	KindMetadataMissing:     "Required metadata tags are missing",
	KindMetadataUnsupported: "Metadata tags are not supported for this document type",
	KindMetadataDuplicate:   "Non-repeatable metadata tags carry more than one value",
	KindTagValue:            "Metadata values are not accepted by their tag registry",
	KindRegistryLoad:        "Tag registry file is missing or malformed",
	KindAssetPath:           "asset-path tag is invalid",
	KindAssetSmokeTest:      "Referenced asset could not be fetched or parsed",
	KindCrossReference:      "Collection references are missing or broken",
	KindDefinitionFormat:    "Tag definition file is malformed",
}

// Description returns a one-line description of the kind.
func (k Kind) Description() string {
	if d, ok := kindDescriptions[k]; ok {
		return d
	}
	return string(k)
}

// IsTagValue reports whether k is a tag value error, including registry load failures.
func (k Kind) IsTagValue() bool {
	return k == KindTagValue || k == KindRegistryLoad
}

// Error is a documentation rule violation.
// Message is written for the document author and is returned verbatim by Error().
type Error struct {
	Cause   error
	Kind    Kind
	Path    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind that keeps cause for errors.Is/As.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// WithPath returns a copy of e annotated with the document path.
func (e *Error) WithPath(path string) *Error {
	c := *e
	c.Path = path
	return &c
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// FormatList renders items as a bracketed list of single-quoted strings,
// e.g. ['a', 'b']. Messages use it so the reported values read the same
// regardless of where they came from.
func FormatList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = "'" + item + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

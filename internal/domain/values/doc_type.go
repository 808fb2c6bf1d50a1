package values

import (
	"fmt"
	"strings"
)

// DocType is the closed set of documentation record types.
type DocType int

const (
	DocTypeUnknown DocType = iota
	DocTypeSavedModel
	DocTypePlaceholder
	DocTypeLite
	DocTypeTfjs
	DocTypeCoral
	DocTypePublisher
	DocTypeCollection
)

// AllDocTypes lists every known type in handle-matching order.
var AllDocTypes = []DocType{
	DocTypeSavedModel,
	DocTypePlaceholder,
	DocTypeLite,
	DocTypeTfjs,
	DocTypeCoral,
	DocTypePublisher,
	DocTypeCollection,
}

var docTypeKeywords = map[DocType]string{
	DocTypeSavedModel:  "Module",
	DocTypePlaceholder: "Placeholder",
	DocTypeLite:        "Lite",
	DocTypeTfjs:        "Tfjs",
	DocTypeCoral:       "Coral",
	DocTypePublisher:   "Publisher",
	DocTypeCollection:  "Collection",
}

var docTypeNames = map[DocType]string{
	DocTypeSavedModel:  "saved_model",
	DocTypePlaceholder: "placeholder",
	DocTypeLite:        "lite",
	DocTypeTfjs:        "tfjs",
	DocTypeCoral:       "coral",
	DocTypePublisher:   "publisher",
	DocTypeCollection:  "collection",
}

// Keyword returns the literal that introduces this type on a document's first line.
func (d DocType) Keyword() string {
	return docTypeKeywords[d]
}

// String returns the snake_case name used in reports and filter expressions.
func (d DocType) String() string {
	if name, ok := docTypeNames[d]; ok {
		return name
	}
	return "unknown"
}

// Label returns a human-readable label, e.g. "TF Model" for SavedModel.
func (d DocType) Label() string {
	if d == DocTypeSavedModel {
		return "TF Model"
	}
	if d == DocTypeTfjs {
		return "TFJS"
	}
	return d.Keyword()
}

// IsModel reports whether documents of this type reference a downloadable asset.
func (d DocType) IsModel() bool {
	switch d {
	case DocTypeSavedModel, DocTypeLite, DocTypeTfjs, DocTypeCoral:
		return true
	default:
		return false
	}
}

// ParseDocType accepts either the report name ("saved_model") or the
// first-line keyword ("Module"), case-insensitively.
func ParseDocType(s string) (DocType, error) {
	s = strings.TrimSpace(s)
	for _, d := range AllDocTypes {
		if strings.EqualFold(s, d.String()) || strings.EqualFold(s, d.Keyword()) {
			return d, nil
		}
	}
	return DocTypeUnknown, fmt.Errorf("unknown document type: %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (d DocType) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *DocType) UnmarshalText(data []byte) error {
	parsed, err := ParseDocType(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

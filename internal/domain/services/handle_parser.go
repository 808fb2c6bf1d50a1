// Package services contains the pure documentation rules: first-line handle
// parsing, description and metadata consumption, per-type policies and the
// collection body scan. Nothing here touches the network; file existence is
// reached through the PathGlobber interface.
package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tensorflow/tfhub.dev/internal/domain/validation"
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
)

const (
	publisherIDPattern  = `[a-z\d-]+`
	modelNamePattern    = `[\w.-]+(/[\w.-]+)*`
	modelVersionPattern = `\d+`

	// zeroWidthNonJoiner is sometimes pasted into first lines by editors.
	zeroWidthNonJoiner = "&zwnj;"
)

type handlePattern struct {
	docType values.DocType
	source  string
	re      *regexp.Regexp
}

func modelHandlePattern(keyword string) string {
	return "# " + keyword + " " +
		"(?P<publisher>" + publisherIDPattern + ")/" +
		"(?P<name>" + modelNamePattern + ")/" +
		"(?P<vers>" + modelVersionPattern + ")"
}

func newHandlePattern(d values.DocType, source string) handlePattern {
	return handlePattern{docType: d, source: source, re: compileUnicode("^" + source + "$")}
}

// handlePatterns are tried in this order; they are mutually exclusive because
// each starts with a distinct keyword.
var handlePatterns = []handlePattern{
	newHandlePattern(values.DocTypeSavedModel, modelHandlePattern("Module")),
	newHandlePattern(values.DocTypePlaceholder, modelHandlePattern("Placeholder")),
	newHandlePattern(values.DocTypeLite, modelHandlePattern("Lite")),
	newHandlePattern(values.DocTypeTfjs, modelHandlePattern("Tfjs")),
	newHandlePattern(values.DocTypeCoral, modelHandlePattern("Coral")),
	newHandlePattern(values.DocTypePublisher, "# Publisher (?P<publisher>"+publisherIDPattern+")"),
	newHandlePattern(values.DocTypeCollection,
		"# Collection (?P<publisher>"+publisherIDPattern+")/"+
			`(?P<name>(\w|-|/|&|;|\.)+)/`+
			"("+modelVersionPattern+")"),
}

// patternHelpOrder is the order used when listing formats in error messages.
var patternHelpOrder = []values.DocType{
	values.DocTypeSavedModel,
	values.DocTypeTfjs,
	values.DocTypeLite,
	values.DocTypeCoral,
	values.DocTypePublisher,
	values.DocTypeCollection,
	values.DocTypePlaceholder,
}

// HandlePattern returns the first-line regular expression for d, without anchors.
func HandlePattern(d values.DocType) string {
	for _, p := range handlePatterns {
		if p.docType == d {
			return p.source
		}
	}
	return ""
}

// ParseHandle parses the first line of a document into its type and handle.
// Exactly one pattern can match; an unmatched line yields a HandleFormat error
// listing every accepted format.
func ParseHandle(firstLine string) (values.Handle, error) {
	line := strings.ReplaceAll(firstLine, zeroWidthNonJoiner, "")

	for _, p := range handlePatterns {
		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		h := values.Handle{DocType: p.docType}
		for i, name := range p.re.SubexpNames() {
			switch name {
			case "publisher":
				h.Publisher = m[i]
			case "name":
				h.Name = m[i]
			case "vers":
				h.Version = m[i]
			}
		}
		return h, nil
	}

	return values.Handle{}, validation.New(validation.KindHandleFormat, "%s", handleFormatHelp(line))
}

func handleFormatHelp(line string) string {
	var b strings.Builder
	b.WriteString("First line of the documentation file must match one of the following\n")
	b.WriteString("formats depending on the MD type:\n")
	for _, d := range patternHelpOrder {
		fmt.Fprintf(&b, "%s: %s\n", d.Label(), HandlePattern(d))
	}
	b.WriteString("For example '# Module google/text-embedding-model/1'.\n")
	fmt.Fprintf(&b, "Instead the first line is '%s'", line)
	return b.String()
}

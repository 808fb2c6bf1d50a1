package services

import (
	"strings"

	"github.com/tensorflow/tfhub.dev/internal/domain/validation"
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
)

// MarkdownFormatURL is where authors are pointed for the record format.
const MarkdownFormatURL = "https://www.tensorflow.org/hub/writing_model_documentation"

// publisherIconPrefix marks the only non-metadata line tolerated in the preamble.
const publisherIconPrefix = "[![Icon URL]]"

// metadataLinePattern matches "<!-- key: value -->". Key and value keep their
// surrounding whitespace until Metadata.Add trims them.
var metadataLinePattern = compileUnicode(`^<!--(?P<key>(\w|\s|-)+):(?P<value>.+)-->$`)

// ConsumeDescription reads the short description that follows the first line.
// One blank line between the handle and the description is allowed. The
// description ends at a blank line, a metadata comment or the end of input.
// next is the index of the first line after the description.
func ConsumeDescription(lines []string) (desc string, next int, err error) {
	i := 1
	if i < len(lines) && lines[i] == "" {
		i++
	}

	var parts []string
	for i < len(lines) && lines[i] != "" && !strings.HasPrefix(lines[i], "<!--") {
		parts = append(parts, lines[i])
		i++
	}

	desc = strings.Join(parts, " ")
	if desc == "" {
		return "", i, validation.New(validation.KindMetadataGrammar,
			"Second line of the documentation file has to contain a short description. "+
				"For example 'Word2vec text embedding model.'.")
	}
	return desc, i, nil
}

// ConsumeMetadata reads metadata comments starting at start until the first
// Markdown heading or the end of input. next is the index of the heading.
func ConsumeMetadata(lines []string, start int) (md values.Metadata, next int, err error) {
	md = values.Metadata{}
	keyIdx := metadataLinePattern.SubexpIndex("key")
	valueIdx := metadataLinePattern.SubexpIndex("value")

	i := start
	for ; i < len(lines) && !strings.HasPrefix(lines[i], "#"); i++ {
		line := lines[i]
		if line == "" {
			continue
		}
		if m := metadataLinePattern.FindStringSubmatch(line); m != nil {
			md.Add(m[keyIdx], m[valueIdx])
			continue
		}
		if strings.HasPrefix(line, publisherIconPrefix) {
			continue
		}
		return nil, i, validation.New(validation.KindMetadataGrammar,
			"Unexpected line found: '%s'. Please refer to %s for information about markdown format.",
			line, MarkdownFormatURL)
	}
	return md, i, nil
}

// SplitLines splits raw document text the same way for every caller.
func SplitLines(content string) []string {
	return strings.Split(content, "\n")
}

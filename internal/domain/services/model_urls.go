package services

import (
	"regexp"

	"github.com/tensorflow/tfhub.dev/internal/domain/validation"
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
)

// DefaultCatalogHost is the host whose model URLs collections reference.
const DefaultCatalogHost = "tfhub.dev"

var trailingVersion = regexp.MustCompile(`/(` + modelVersionPattern + `)$`)

var urlPrefixTypes = map[string]values.DocType{
	"tfjs-model/":  values.DocTypeTfjs,
	"lite-model/":  values.DocTypeLite,
	"coral-model/": values.DocTypeCoral,
}

// ModelURLScanner finds catalog model URLs in free text.
type ModelURLScanner struct {
	re *regexp.Regexp
}

// NewModelURLScanner builds a scanner for URLs on host. An empty host means
// DefaultCatalogHost.
func NewModelURLScanner(host string) *ModelURLScanner {
	if host == "" {
		host = DefaultCatalogHost
	}
	re := regexp.MustCompile("https://" + regexp.QuoteMeta(host) + "/" +
		"(?P<publisher>" + publisherIDPattern + ")/" +
		"(?P<prefix>(tfjs|lite|coral)-model/)?" +
		"(?P<name>" + modelNamePattern + ")")
	return &ModelURLScanner{re: re}
}

// Scan returns a handle for every model URL found in line, in order of appearance.
// A URL without a trailing version yields a handle with WildcardVersion.
func (s *ModelURLScanner) Scan(line string) []values.Handle {
	pubIdx := s.re.SubexpIndex("publisher")
	prefixIdx := s.re.SubexpIndex("prefix")
	nameIdx := s.re.SubexpIndex("name")

	var out []values.Handle
	for _, m := range s.re.FindAllStringSubmatch(line, -1) {
		name := m[nameIdx]
		version := values.WildcardVersion
		if v := trailingVersion.FindStringSubmatchIndex(name); v != nil {
			version = name[v[2]:v[3]]
			name = name[:v[0]]
		}

		docType, ok := urlPrefixTypes[m[prefixIdx]]
		if !ok {
			docType = values.DocTypeSavedModel
		}
		out = append(out, values.Handle{
			DocType:   docType,
			Publisher: m[pubIdx],
			Name:      name,
			Version:   version,
		})
	}
	return out
}

// CheckCollectionContent verifies that the collection body references at
// least one model and that every referenced model has documentation.
func CheckCollectionContent(fs PathGlobber, docsDir string, scanner *ModelURLScanner, body []string) error {
	found := false
	for _, line := range body {
		for _, ref := range scanner.Scan(line) {
			found = true
			policy, err := PolicyFor(ref.DocType)
			if err != nil {
				return err
			}
			paths := policy.AllowedPaths(docsDir, ref)
			ok, err := anyPathExists(fs, paths)
			if err != nil {
				return err
			}
			if !ok {
				return validation.New(validation.KindCrossReference,
					"No documentation file found in %s.", validation.FormatList(paths))
			}
		}
	}
	if !found {
		return validation.New(validation.KindCrossReference,
			"A collection needs to contain at least one model URL.")
	}
	return nil
}

package tags

import (
	"fmt"
	"net/url"
	"slices"

	"github.com/tensorflow/tfhub.dev/internal/domain/services"
	"github.com/tensorflow/tfhub.dev/internal/domain/validation"
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
)

var (
	_ services.TagValueChecker = (*EnumChecker)(nil)
	_ services.TagValueChecker = (*URLChecker)(nil)
)

// EnumChecker accepts only the ids listed in an enumerable tag file.
type EnumChecker struct {
	ids  values.StringSet
	tag  string
	file string
}

// NewEnumChecker creates a checker for tag whose ids were read from file.
// file is reported back to the user, e.g. "tags/language.yaml".
func NewEnumChecker(tag, file string, ids ...string) *EnumChecker {
	return &EnumChecker{tag: tag, file: file, ids: values.NewStringSet(ids...)}
}

// IDs returns the accepted ids in sorted order.
func (c *EnumChecker) IDs() []string {
	return c.ids.Sorted()
}

// Check reports every unsupported value at once.
func (c *EnumChecker) Check(vals []string) error {
	var unsupported []string
	for _, v := range vals {
		if !c.ids.Has(v) {
			unsupported = append(unsupported, v)
		}
	}
	if len(unsupported) == 0 {
		return nil
	}
	slices.Sort(unsupported)
	unsupported = slices.Compact(unsupported)
	return validation.New(validation.KindTagValue,
		"Unsupported values for %s tag were found: %s. Please add them to %s.",
		c.tag, validation.FormatList(unsupported), c.file)
}

// URLChecker accepts HTTPS URLs, optionally restricted to one domain.
type URLChecker struct {
	requiredDomain string
}

// NewURLChecker creates a URL checker. An empty domain accepts any host.
func NewURLChecker(requiredDomain string) *URLChecker {
	return &URLChecker{requiredDomain: requiredDomain}
}

// RequiredDomain returns the enforced host, if any.
func (c *URLChecker) RequiredDomain() string {
	return c.requiredDomain
}

// Check stops at the first value that is not acceptable.
func (c *URLChecker) Check(vals []string) error {
	for _, v := range vals {
		u, err := url.Parse(v)
		if err != nil {
			return validation.Wrap(validation.KindTagValue, err, "%s is not a valid URL.", v)
		}
		if u.Scheme != "https" {
			return validation.New(validation.KindTagValue, "%s is not an HTTPS URL.", v)
		}
		if c.requiredDomain != "" && u.Host != c.requiredDomain {
			return validation.New(validation.KindTagValue,
				"URL must lead to domain %s but is %s.", c.requiredDomain, u.Host)
		}
	}
	return nil
}

func (c *URLChecker) String() string {
	if c.requiredDomain == "" {
		return "url"
	}
	return fmt.Sprintf("url(%s)", c.requiredDomain)
}

package values

// WildcardVersion stands in for any version when a handle is derived from a
// catalog URL that does not pin one.
const WildcardVersion = "*"

// Handle is the parsed identity of a documentation record.
type Handle struct {
	Publisher string  `json:"publisher" yaml:"publisher"`
	Name      string  `json:"name,omitempty" yaml:"name,omitempty"`
	Version   string  `json:"version,omitempty" yaml:"version,omitempty"`
	DocType   DocType `json:"doc_type" yaml:"doc_type"`
}

// ID returns the identifier used in diagnostics:
// publisher for publishers, publisher/name for collections and
// publisher/name/version for everything else.
func (h Handle) ID() string {
	switch h.DocType {
	case DocTypePublisher:
		return h.Publisher
	case DocTypeCollection:
		return h.Publisher + "/" + h.Name
	default:
		return h.Publisher + "/" + h.Name + "/" + h.Version
	}
}

// HasWildcardVersion reports whether the handle matches every version.
func (h Handle) HasWildcardVersion() bool {
	return h.Version == WildcardVersion
}

// PublisherHandle returns the handle of the publisher page this record depends on.
func (h Handle) PublisherHandle() Handle {
	return Handle{DocType: DocTypePublisher, Publisher: h.Publisher}
}

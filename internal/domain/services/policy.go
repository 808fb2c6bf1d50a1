package services

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tensorflow/tfhub.dev/internal/domain/validation"
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
)

// Metadata keys understood by the policies.
const (
	KeyArchitecture = "network-architecture"
	KeyAssetPath    = "asset-path"
	KeyColab        = "colab"
	KeyDataset      = "dataset"
	KeyDemo         = "demo"
	KeyFineTunable  = "fine-tunable"
	KeyFormat       = "format"
	KeyLanguage     = "language"
	KeyLicense      = "license"
	KeyParentModel  = "parent-model"
	KeyTask         = "task"
	KeyVisualizer   = "interactive-visualizer"
)

const (
	TarSuffix    = ".tar.gz"
	TfliteSuffix = ".tflite"
)

// RepeatableKeys may carry more than one value in a single document.
var RepeatableKeys = values.NewStringSet(KeyDataset, KeyLanguage, KeyTask, KeyArchitecture)

// SavedModelFormats are the accepted values of the format tag.
var SavedModelFormats = []string{"hub", "saved_model", "saved_model_2"}

var taskPrefixes = []string{"image-", "text-", "audio-", "video-"}

// TagValueChecker decides whether the values given for one tag are acceptable.
type TagValueChecker interface {
	Check(values []string) error
}

// TagRegistry resolves the checker for a tag. ok is false for tags without
// a registered checker. err reports a registry that could not be loaded.
type TagRegistry interface {
	CheckerFor(tag string) (checker TagValueChecker, ok bool, err error)
}

// PathGlobber is the filesystem view the path and cross-reference rules need.
type PathGlobber interface {
	Glob(pattern string) ([]string, error)
	Exists(path string) (bool, error)
}

// Path template placeholders.
const (
	phPublisher = "{publisher}"
	phName      = "{name}"
	phVersion   = "{version}"
)

// Policy is the rule set for one document type.
type Policy struct {
	Required      values.StringSet
	Optional      values.StringSet
	AssetSuffix   string
	PathTemplates []string
	DocType       values.DocType
}

func modelPaths(subdir string) []string {
	file := phVersion + ".md"
	if subdir != "" {
		file = subdir + "/" + file
	}
	return []string{
		phPublisher + "/" + phName + "/" + file,
		phPublisher + "/models/" + phName + "/" + file,
	}
}

var policies = map[values.DocType]Policy{
	values.DocTypeSavedModel: {
		DocType:  values.DocTypeSavedModel,
		Required: values.NewStringSet(KeyAssetPath, KeyFineTunable, KeyFormat, KeyTask),
		Optional: values.NewStringSet(KeyArchitecture, KeyColab, KeyDataset, KeyLanguage,
			KeyLicense, KeyVisualizer),
		AssetSuffix:   TarSuffix,
		PathTemplates: modelPaths(""),
	},
	values.DocTypePlaceholder: {
		DocType:  values.DocTypePlaceholder,
		Required: values.NewStringSet(KeyTask),
		Optional: values.NewStringSet(KeyDataset, KeyFineTunable, KeyVisualizer, KeyLanguage,
			KeyLicense, KeyArchitecture),
		PathTemplates: modelPaths(""),
	},
	values.DocTypeTfjs: {
		DocType:       values.DocTypeTfjs,
		Required:      values.NewStringSet(KeyAssetPath, KeyParentModel),
		Optional:      values.NewStringSet(KeyColab, KeyDemo, KeyVisualizer),
		AssetSuffix:   TarSuffix,
		PathTemplates: modelPaths("tfjs"),
	},
	values.DocTypeLite: {
		DocType:       values.DocTypeLite,
		Required:      values.NewStringSet(KeyAssetPath, KeyParentModel),
		Optional:      values.NewStringSet(KeyColab, KeyVisualizer),
		AssetSuffix:   TfliteSuffix,
		PathTemplates: modelPaths("lite"),
	},
	values.DocTypeCoral: {
		DocType:       values.DocTypeCoral,
		Required:      values.NewStringSet(KeyAssetPath, KeyParentModel),
		Optional:      values.NewStringSet(KeyColab, KeyVisualizer),
		AssetSuffix:   TfliteSuffix,
		PathTemplates: modelPaths("coral"),
	},
	values.DocTypePublisher: {
		DocType:       values.DocTypePublisher,
		Required:      values.NewStringSet(),
		Optional:      values.NewStringSet(),
		PathTemplates: []string{phPublisher + "/" + phPublisher + ".md"},
	},
	values.DocTypeCollection: {
		DocType:       values.DocTypeCollection,
		Required:      values.NewStringSet(KeyTask),
		Optional:      values.NewStringSet(KeyDataset, KeyLanguage, KeyArchitecture),
		PathTemplates: []string{phPublisher + "/collections/" + phName + "/1.md"},
	},
}

// PolicyFor returns the rule set for d.
func PolicyFor(d values.DocType) (Policy, error) {
	p, ok := policies[d]
	if !ok {
		return Policy{}, fmt.Errorf("no policy for document type %q", d)
	}
	return p, nil
}

// Supported returns the union of required and optional keys.
func (p Policy) Supported() values.StringSet {
	return p.Required.Union(p.Optional)
}

// HasAsset reports whether documents of this type carry an asset-path tag.
func (p Policy) HasAsset() bool {
	return p.AssetSuffix != ""
}

// AllowedPaths returns the absolute locations a document for h may live at.
// Handles with a wildcard version produce glob patterns.
func (p Policy) AllowedPaths(docsDir string, h values.Handle) []string {
	r := strings.NewReplacer(phPublisher, h.Publisher, phName, h.Name, phVersion, h.Version)
	out := make([]string, 0, len(p.PathTemplates))
	for _, tmpl := range p.PathTemplates {
		out = append(out, filepath.Join(docsDir, filepath.FromSlash(r.Replace(tmpl))))
	}
	return out
}

// ValidateMetadata applies the metadata rules in order and returns the first
// violation. registry may be nil, in which case tag values are not checked.
func (p Policy) ValidateMetadata(md values.Metadata, registry TagRegistry) error {
	provided := md.KeySet()

	if missing := p.Required.Difference(provided); len(missing) > 0 {
		return validation.New(validation.KindMetadataMissing,
			"The MD file is missing the following required metadata properties: %s. "+
				"Please refer to %s for information about markdown format.",
			validation.FormatList(missing), MarkdownFormatURL)
	}

	if unsupported := provided.Difference(p.Supported()); len(unsupported) > 0 {
		return validation.New(validation.KindMetadataUnsupported,
			"The MD file contains unsupported metadata properties: %s. "+
				"Please refer to %s for information about markdown format.",
			validation.FormatList(unsupported), MarkdownFormatURL)
	}

	var duplicated []string
	for _, key := range md.Keys() {
		if !RepeatableKeys.Has(key) && len(md[key]) > 1 {
			duplicated = append(duplicated, key)
		}
	}
	if len(duplicated) > 0 {
		return validation.New(validation.KindMetadataDuplicate,
			"There are duplicate metadata values. Please refer to %s for information "+
				"about markdown format. In particular the duplicated metadata are: %s",
			MarkdownFormatURL, validation.FormatList(duplicated))
	}

	for _, task := range md.Values(KeyTask) {
		if !hasAnyPrefix(task, taskPrefixes) {
			return validation.New(validation.KindTagValue,
				"The 'task' metadata has to start with any of 'image-', 'text', 'audio-', "+
					"'video-', but is: '%s'", task)
		}
	}

	if err := checkTagValues(md, registry); err != nil {
		return err
	}

	if p.DocType == values.DocTypeSavedModel {
		format := md.First(KeyFormat)
		if !slices.Contains(SavedModelFormats, format) {
			return validation.New(validation.KindMetadataGrammar,
				"The 'format' metadata should be one of ('hub', 'saved_model', 'saved_model_2') "+
					"but was '%s'.", format)
		}
	}

	return nil
}

func checkTagValues(md values.Metadata, registry TagRegistry) error {
	if registry == nil {
		return nil
	}
	for _, tag := range md.Keys() {
		checker, ok, err := registry.CheckerFor(tag)
		if err != nil {
			return validation.Wrap(validation.KindRegistryLoad, err, "Validating %s failed: %v", tag, err)
		}
		if !ok {
			continue
		}
		if err := checker.Check(md.Values(tag)); err != nil {
			return validation.Wrap(validation.KindTagValue, err, "Validating %s failed: %v", tag, err)
		}
	}
	return nil
}

// CheckPath verifies that actualPath is one of the allowed locations for h.
func (p Policy) CheckPath(fs PathGlobber, docsDir string, h values.Handle, actualPath string) error {
	allowed := p.AllowedPaths(docsDir, h)
	for _, candidate := range allowed {
		if !hasGlobMeta(candidate) {
			if candidate == actualPath {
				return nil
			}
			continue
		}
		matches, err := fs.Glob(candidate)
		if err != nil {
			return fmt.Errorf("expanding %s: %w", candidate, err)
		}
		if slices.Contains(matches, actualPath) {
			return nil
		}
	}
	return validation.New(validation.KindPathPlacement,
		"Expected %s to have documentation stored in one of %s but was %s.",
		h.ID(), validation.FormatList(allowed), actualPath)
}

// PublisherPagePath returns where the publisher page for h must live.
func PublisherPagePath(docsDir string, h values.Handle) string {
	return policies[values.DocTypePublisher].AllowedPaths(docsDir, h.PublisherHandle())[0]
}

// CheckPublisherPage verifies that the publisher of h has a documentation page.
func CheckPublisherPage(fs PathGlobber, docsDir string, h values.Handle) error {
	path := PublisherPagePath(docsDir, h)
	ok, err := fs.Exists(path)
	if err != nil {
		return fmt.Errorf("checking publisher page %s: %w", path, err)
	}
	if !ok {
		return validation.New(validation.KindPathPlacement,
			"Publisher documentation does not exist. It should be added to %s.", path)
	}
	return nil
}

// anyPathExists reports whether at least one of the possibly wildcarded paths
// resolves to an existing file.
func anyPathExists(fs PathGlobber, paths []string) (bool, error) {
	for _, candidate := range paths {
		if hasGlobMeta(candidate) {
			matches, err := fs.Glob(candidate)
			if err != nil {
				return false, fmt.Errorf("expanding %s: %w", candidate, err)
			}
			if len(matches) > 0 {
				return true, nil
			}
			continue
		}
		ok, err := fs.Exists(candidate)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func hasGlobMeta(p string) bool {
	return strings.ContainsAny(p, "*?[")
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

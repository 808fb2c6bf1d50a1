// Package tags loads the tag value registries that constrain metadata values.
//
// Every registered tag is backed by one YAML file below the tags directory.
// A file with a values list is enumerable; a file with format: url describes
// a URL-shaped tag. Files are read lazily on first use and cached for the
// lifetime of the Registry.
package tags

import (
	"errors"
	"fmt"
	"maps"
	"path"
	"path/filepath"
	"slices"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/tensorflow/tfhub.dev/internal/application/ports"
	"github.com/tensorflow/tfhub.dev/internal/domain/services"
	"github.com/tensorflow/tfhub.dev/internal/domain/validation"
)

// FormatURL is the only supported format of a URL-shaped tag file.
const FormatURL = "url"

// DefaultFiles maps each registered tag to its file in the tags directory.
var DefaultFiles = map[string]string{
	services.KeyDataset:      "dataset.yaml",
	services.KeyVisualizer:   "interactive_visualizer.yaml",
	services.KeyLanguage:     "language.yaml",
	services.KeyLicense:      "license.yaml",
	services.KeyArchitecture: "network_architecture.yaml",
	services.KeyTask:         "task.yaml",
	services.KeyColab:        "colab.yaml",
	services.KeyDemo:         "demo.yaml",
}

// Ensure interface compliance
var _ ports.TagRegistry = (*Registry)(nil)

type tagItem struct {
	ID          string `yaml:"id"`
	DisplayName string `yaml:"display_name"`
}

type tagFile struct {
	Format         string     `yaml:"format"`
	RequiredDomain string     `yaml:"required_domain"`
	Values         *[]tagItem `yaml:"values"`
}

type entry struct {
	checker services.TagValueChecker
	err     error
}

// Registry resolves value checkers for tags.
type Registry struct {
	fs       ports.FileSystem
	files    map[string]string
	loaded   map[string]entry
	rootDir  string
	tagsPath string
	mu       sync.Mutex
}

// NewRegistry creates a registry reading files from rootDir/tagsPath.
// overrides replaces or extends DefaultFiles.
func NewRegistry(fs ports.FileSystem, rootDir, tagsPath string, overrides map[string]string) *Registry {
	files := maps.Clone(DefaultFiles)
	maps.Copy(files, overrides)
	return &Registry{
		fs:       fs,
		files:    files,
		loaded:   make(map[string]entry),
		rootDir:  rootDir,
		tagsPath: tagsPath,
	}
}

// Tags returns the registered tag names in sorted order.
func (r *Registry) Tags() []string {
	return slices.Sorted(maps.Keys(r.files))
}

// CheckerFor returns the checker of tag. Load failures are cached as well,
// so every document using a broken tag file reports the same error.
func (r *Registry) CheckerFor(tag string) (services.TagValueChecker, bool, error) {
	file, ok := r.files[tag]
	if !ok {
		return nil, false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.loaded[tag]; ok {
		return e.checker, true, e.err
	}
	checker, err := r.load(tag, file)
	r.loaded[tag] = entry{checker: checker, err: err}
	return checker, true, err
}

// Warm loads every registered tag file and returns the joined load errors.
func (r *Registry) Warm() error {
	var errs []error
	for _, tag := range r.Tags() {
		if _, _, err := r.CheckerFor(tag); err != nil {
			errs = append(errs, fmt.Errorf("tag %s: %w", tag, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) load(tag, file string) (services.TagValueChecker, error) {
	rel := path.Join(filepath.ToSlash(r.tagsPath), file)
	abs := filepath.Join(r.rootDir, r.tagsPath, file)

	data, err := r.fs.ReadFile(abs)
	if err != nil {
		return nil, validation.Wrap(validation.KindRegistryLoad, err, "Could not read %s: %v", rel, err).WithPath(abs)
	}

	var tf tagFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, validation.Wrap(validation.KindRegistryLoad, err, "Could not parse %s: %v", rel, err).WithPath(abs)
	}

	if tf.Format != "" {
		if tf.Format != FormatURL {
			return nil, validation.New(validation.KindRegistryLoad,
				"Unsupported format '%s' in %s. Expected '%s'.", tf.Format, rel, FormatURL).WithPath(abs)
		}
		return NewURLChecker(tf.RequiredDomain), nil
	}

	// An empty list is allowed and rejects every value.
	if tf.Values == nil {
		return nil, validation.New(validation.KindRegistryLoad,
			"%s must contain a 'values' list.", rel).WithPath(abs)
	}
	ids := make([]string, 0, len(*tf.Values))
	for i, item := range *tf.Values {
		if item.ID == "" {
			return nil, validation.New(validation.KindRegistryLoad,
				"Item %d of %s has no id.", i, rel).WithPath(abs)
		}
		ids = append(ids, item.ID)
	}
	return NewEnumChecker(tag, rel, ids...), nil
}

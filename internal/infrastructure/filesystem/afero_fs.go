// Package filesystem adapts spf13/afero to the application FileSystem port.
package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/tensorflow/tfhub.dev/internal/application/ports"
)

// Ensure interface compliance
var _ ports.FileSystem = (*AferoFS)(nil)

// AferoFS implements ports.FileSystem on top of an afero.Fs.
type AferoFS struct {
	fs afero.Fs
}

// NewOS returns a FileSystem backed by the host filesystem.
func NewOS() *AferoFS {
	return &AferoFS{fs: afero.NewOsFs()}
}

// NewMemory returns an empty in-memory FileSystem.
func NewMemory() *AferoFS {
	return &AferoFS{fs: afero.NewMemMapFs()}
}

// New wraps an existing afero filesystem.
func New(fs afero.Fs) *AferoFS {
	return &AferoFS{fs: fs}
}

// Fs exposes the underlying afero filesystem, mainly for tests that seed files.
func (a *AferoFS) Fs() afero.Fs {
	return a.fs
}

// ReadFile reads the whole file.
func (a *AferoFS) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(a.fs, path)
}

// WriteFile creates parent directories and writes data to path.
// It refuses to overwrite an existing file.
func (a *AferoFS) WriteFile(path string, data []byte) error {
	exists, err := a.Exists(path)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%s: %w", path, os.ErrExist)
	}
	if err := a.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	return afero.WriteFile(a.fs, path, data, 0o644)
}

// Exists reports whether path exists.
func (a *AferoFS) Exists(path string) (bool, error) {
	return afero.Exists(a.fs, path)
}

// IsDir reports whether path is an existing directory.
func (a *AferoFS) IsDir(path string) (bool, error) {
	ok, err := afero.IsDir(a.fs, path)
	if os.IsNotExist(err) {
		return false, nil
	}
	return ok, err
}

// Glob returns the paths matching pattern, with filepath.Match semantics.
func (a *AferoFS) Glob(pattern string) ([]string, error) {
	return afero.Glob(a.fs, pattern)
}

// Walk calls fn for every regular file below root, in lexical order.
func (a *AferoFS) Walk(root string, fn func(path string) error) error {
	return afero.Walk(a.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return fn(path)
	})
}

// Package templates provides embedded skeletons for new documentation records.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed docs/*.tmpl
var docTemplates embed.FS

// Tag is one metadata line of a skeleton.
type Tag struct {
	Key   string
	Value string
}

// DocData contains the data used to render documentation skeletons.
type DocData struct {
	// Keyword is the first-line keyword (e.g., "Module")
	Keyword string
	// HandleID is the handle as written on the first line (e.g., "google/bert/1")
	HandleID string
	// Publisher is the publisher id (e.g., "google")
	Publisher string
	// Title is a readable publisher title (e.g., "Google")
	Title string
	// Description is the one-line description placeholder
	Description string
	// Host is the catalog host used for example model links
	Host string
	// Tags are the metadata lines, in output order
	Tags []Tag
}

// DocTemplates returns the parsed documentation templates, keyed by kind.
func DocTemplates() (*template.Template, error) {
	tmpl := template.New("")

	err := fs.WalkDir(docTemplates, "docs", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}

		content, err := docTemplates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", path, err)
		}

		// "docs/model.md.tmpl" is registered as "model"
		name := strings.TrimPrefix(path, "docs/")
		name = strings.TrimSuffix(name, ".md.tmpl")

		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Errorf("parsing template %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	return tmpl, nil
}

// TemplateNames returns the template kinds that can be rendered.
func TemplateNames() []string {
	return []string{"model", "publisher", "collection"}
}

// Render executes the named template with data.
func Render(name string, data DocData) (string, error) {
	tmpl, err := DocTemplates()
	if err != nil {
		return "", err
	}
	t := tmpl.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("unknown template: %s", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}

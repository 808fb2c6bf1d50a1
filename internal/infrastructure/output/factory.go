package output

import (
	"fmt"
	"io"

	"github.com/tensorflow/tfhub.dev/internal/application/ports"
)

// FormatterFactory implements ports.OutputFormatterFactory.
type FormatterFactory struct {
	version string
}

// NewFormatterFactory creates a new formatter factory. version is reported as
// the tool version by formats that carry one.
func NewFormatterFactory(version string) *FormatterFactory {
	return &FormatterFactory{version: version}
}

// Create returns a formatter for the given format name.
func (f *FormatterFactory) Create(
	format string,
	writer io.Writer,
	options ports.FormatterOptions,
) (ports.OutputFormatter, error) {
	switch format {
	case "table", "":
		return NewTableFormatter(writer, options.Verbose, options.Color, options.MaxMessageWidth), nil
	case "json":
		return NewJSONFormatter(writer, options.Indent), nil
	case "yaml":
		return NewYAMLFormatter(writer), nil
	case "junit":
		return NewJUnitFormatter(writer), nil
	case "sarif":
		return NewSARIFFormatter(writer, f.version), nil
	default:
		return nil, fmt.Errorf(
			"unknown format: %s (supported: %v)",
			format, f.SupportedFormats(),
		)
	}
}

// SupportedFormats returns list of available format names.
func (f *FormatterFactory) SupportedFormats() []string {
	return []string{"table", "json", "yaml", "junit", "sarif"}
}

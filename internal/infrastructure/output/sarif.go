// Package output provides formatters for hubdoc validation results.
package output

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/tensorflow/tfhub.dev/internal/domain/execution"
)

const (
	toolName           = "hubdoc"
	toolInformationURI = "https://github.com/tensorflow/tfhub.dev"
	toolOrganization   = "TensorFlow Hub"
)

// SARIFFormatter formats validation results as SARIF 2.1.0 JSON.
// Error kinds become SARIF rules and failing documents become results
// located at the document file.
//
// Usage:
//
//	formatter := output.NewSARIFFormatter(os.Stdout, version.Version)
//	if err := formatter.Format(result); err != nil {
//	    log.Fatal(err)
//	}
type SARIFFormatter struct {
	writer  io.Writer
	version string
}

// NewSARIFFormatter creates a new SARIF formatter. version is used when the
// result does not carry its own tool version.
func NewSARIFFormatter(writer io.Writer, version string) *SARIFFormatter {
	return &SARIFFormatter{
		writer:  writer,
		version: version,
	}
}

// Format writes the validation result as SARIF 2.1.0 JSON.
func (f *SARIFFormatter) Format(result *execution.ValidationResult) error {
	report := sarif.NewReport()

	run := sarif.NewRunWithInformationURI(toolName, toolInformationURI)
	version := result.HubdocVersion
	if version == "" {
		version = f.version
	}
	if version != "" {
		run.Tool.Driver.Version = &version
	}
	run.Tool.Driver.Organization = ptrString(toolOrganization)

	newSARIFMapper(result).mapToRun(run)
	report.AddRun(run)

	if err := report.Write(f.writer); err != nil {
		return fmt.Errorf("failed to write SARIF output: %w", err)
	}

	_, err := f.writer.Write([]byte("\n"))
	return err
}

func ptrString(s string) *string {
	return &s
}

func ptrBool(b bool) *bool {
	return &b
}

package output

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/tensorflow/tfhub.dev/internal/domain/execution"
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
)

const junitSuitesName = "hubdoc validation"

// JUnitFormatter formats validation results as JUnit XML, one test case per
// document.
type JUnitFormatter struct {
	writer io.Writer
}

// NewJUnitFormatter creates a new JUnit formatter.
func NewJUnitFormatter(w io.Writer) *JUnitFormatter {
	return &JUnitFormatter{
		writer: w,
	}
}

// JUnitTestSuites JUnit XML structures
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Timestamp string          `xml:"timestamp,attr,omitempty"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

type JUnitError struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// Format writes the validation result as JUnit XML.
func (f *JUnitFormatter) Format(result *execution.ValidationResult) error {
	suite := JUnitTestSuite{
		Name:     result.DocsDir,
		Tests:    result.Summary.Total,
		Failures: result.Summary.Failed,
		Errors:   result.Summary.Errored,
		Skipped:  result.Summary.Skipped,
		Time:     result.Duration.Seconds(),
	}
	if !result.StartTime.IsZero() {
		suite.Timestamp = result.StartTime.UTC().Format("2006-01-02T15:04:05")
	}

	for _, fr := range result.Files {
		suite.TestCases = append(suite.TestCases, testCase(fr))
	}

	suites := JUnitTestSuites{
		Name:       junitSuitesName,
		Tests:      result.Summary.Total,
		Failures:   result.Summary.Failed,
		Errors:     result.Summary.Errored,
		Time:       result.Duration.Seconds(),
		TestSuites: []JUnitTestSuite{suite},
	}

	_, err := f.writer.Write([]byte(xml.Header))
	if err != nil {
		return err
	}

	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(suites); err != nil {
		return err
	}

	_, err = f.writer.Write([]byte("\n"))
	return err
}

func testCase(fr execution.FileResult) JUnitTestCase {
	name := fr.Path
	if fr.HandleID != "" {
		name = fr.HandleID + " (" + fr.Path + ")"
	}
	className := fr.DocType
	if className == "" {
		className = "document"
	}

	c := JUnitTestCase{
		Name:      name,
		ClassName: className,
		Time:      fr.Duration.Seconds(),
	}

	switch fr.Status {
	case values.StatusFail:
		c.Failure = &JUnitFailure{
			Message: firstLine(fr.Message),
			Type:    string(fr.ErrorKind),
			Content: fr.Message,
		}
	case values.StatusError:
		c.Error = &JUnitError{
			Message: firstLine(fr.Message),
			Content: fr.Message,
		}
	case values.StatusSkipped:
		c.Skipped = &JUnitSkipped{
			Message: fr.SkipReason,
		}
	}
	return c
}

func firstLine(msg string) string {
	line, _, _ := strings.Cut(msg, "\n")
	return line
}

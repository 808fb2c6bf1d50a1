package output

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/tensorflow/tfhub.dev/internal/domain/execution"
	"github.com/tensorflow/tfhub.dev/internal/domain/validation"
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
)

// executionErrorRule identifies documents that could not be validated at all.
const executionErrorRule = "execution_error"

const sarifTimeLayout = "2006-01-02T15:04:05.000Z"

type sarifMapper struct {
	result    *execution.ValidationResult
	artifacts []*sarif.Artifact
	seen      map[string]bool
}

func newSARIFMapper(result *execution.ValidationResult) *sarifMapper {
	return &sarifMapper{
		result: result,
		seen:   make(map[string]bool),
	}
}

// mapToRun populates the SARIF run with rules, results, artifacts, and invocations.
func (m *sarifMapper) mapToRun(run *sarif.Run) {
	m.addRules(run)
	m.addResults(run)
	m.addArtifacts(run)
	m.addInvocation(run)
	m.addProperties(run)
}

// addRules registers one rule per error kind.
func (m *sarifMapper) addRules(run *sarif.Run) {
	for _, kind := range validation.AllKinds {
		run.Tool.Driver.AddRule(newRule(string(kind), kind.Description(), tagsFor(kind)))
	}
	run.Tool.Driver.AddRule(newRule(executionErrorRule,
		"Document could not be read or processed", []string{"execution"}))
}

func newRule(id, description string, tags []string) *sarif.ReportingDescriptor {
	rule := sarif.NewReportingDescriptor().WithID(id).WithName(ruleName(id))
	rule.WithShortDescription(&sarif.MultiformatMessageString{Text: &description})
	rule.WithFullDescription(&sarif.MultiformatMessageString{Text: &description})
	rule.WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: "error"})

	props := sarif.NewPropertyBag()
	props.WithTags(tags)
	rule.WithProperties(props)
	return rule
}

// ruleName turns a snake_case identifier into PascalCase.
func ruleName(id string) string {
	parts := strings.Split(id, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "")
}

func tagsFor(kind validation.Kind) []string {
	tags := []string{"documentation"}
	if kind.IsTagValue() {
		tags = append(tags, "tags")
	}
	return tags
}

// addResults emits a result for every failed or errored document.
func (m *sarifMapper) addResults(run *sarif.Run) {
	for _, fr := range m.result.Files {
		m.registerArtifact(fr.Path)
		if !fr.Status.IsFailure() {
			continue
		}
		run.AddResult(m.mapFileResult(fr))
	}
}

func (m *sarifMapper) mapFileResult(fr execution.FileResult) *sarif.Result {
	ruleID := string(fr.ErrorKind)
	if fr.Status == values.StatusError || ruleID == "" {
		ruleID = executionErrorRule
	}

	result := sarif.NewRuleResult(ruleID)
	result.Level = "error"
	result.Kind = "fail"

	msg := fr.Message
	if msg == "" {
		msg = "Document " + fr.Path + " failed validation"
	}
	result.Message = sarif.NewTextMessage(msg)

	pLoc := sarif.NewPhysicalLocation().
		WithArtifactLocation(sarif.NewArtifactLocation().WithURI(m.normalizeURI(fr.Path))).
		WithRegion(sarif.NewRegion().WithStartLine(1))
	result.Locations = []*sarif.Location{sarif.NewLocation().WithPhysicalLocation(pLoc)}

	props := sarif.NewPropertyBag()
	props.Add("duration_ms", fr.Duration.Milliseconds())
	if fr.HandleID != "" {
		props.Add("handle", fr.HandleID)
	}
	if fr.DocType != "" {
		props.Add("docType", fr.DocType)
	}
	result.WithProperties(props)

	return result
}

// normalizeURI makes path relative to the repository root when possible.
func (m *sarifMapper) normalizeURI(path string) string {
	if m.result.RootDir != "" {
		if rel, err := filepath.Rel(m.result.RootDir, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	if filepath.IsAbs(path) {
		return "file://" + filepath.ToSlash(path)
	}
	return filepath.ToSlash(path)
}

func (m *sarifMapper) registerArtifact(path string) {
	uri := m.normalizeURI(path)
	if m.seen[uri] {
		return
	}
	m.seen[uri] = true

	artifact := sarif.NewArtifact().
		WithLocation(sarif.NewArtifactLocation().WithURI(uri))
	artifact.MimeType = ptrString("text/markdown")
	m.artifacts = append(m.artifacts, artifact)
}

func (m *sarifMapper) addArtifacts(run *sarif.Run) {
	for _, artifact := range m.artifacts {
		run.AddArtifact(artifact)
	}
}

// addInvocation adds run metadata.
func (m *sarifMapper) addInvocation(run *sarif.Run) {
	invocation := sarif.NewInvocation()
	invocation.ExecutionSuccessful = ptrBool(m.result.Summary.Errored == 0)

	startTime := m.result.StartTime.UTC().Format(sarifTimeLayout)
	endTime := m.result.EndTime.UTC().Format(sarifTimeLayout)
	invocation.StartTimeUtc = &startTime
	invocation.EndTimeUtc = &endTime

	if hostname, err := os.Hostname(); err == nil {
		invocation.Machine = &hostname
	}
	if m.result.RootDir != "" {
		invocation.WorkingDirectory = sarif.NewArtifactLocation().
			WithURI("file://" + filepath.ToSlash(m.result.RootDir))
	}

	props := sarif.NewPropertyBag()
	props.Add("runId", m.result.RunID.String())
	props.Add("docsDir", m.result.DocsDir)
	props.Add("smokeTested", m.result.SmokeTested)
	invocation.WithProperties(props)

	run.AddInvocation(invocation)
}

// addProperties adds summary statistics to run properties.
func (m *sarifMapper) addProperties(run *sarif.Run) {
	props := sarif.NewPropertyBag()
	props.Add("summary", m.result.Summary)
	run.WithProperties(props)
}

package services

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/tensorflow/tfhub.dev/internal/domain/values"
)

// DocumentEnv defines the variables available during filter expression evaluation.
type DocumentEnv struct {
	DocType   string `expr:"doc_type"`
	Publisher string `expr:"publisher"`
	Name      string `expr:"name"`
	Version   string `expr:"version"`
	ID        string `expr:"id"`
	Path      string `expr:"path"`
}

// NewDocumentEnv builds the evaluation environment for a parsed handle.
func NewDocumentEnv(h values.Handle, path string) DocumentEnv {
	return DocumentEnv{
		DocType:   h.DocType.String(),
		Publisher: h.Publisher,
		Name:      h.Name,
		Version:   h.Version,
		ID:        h.ID(),
		Path:      path,
	}
}

// CompileDocumentFilter compiles a boolean filter expression such as
// `doc_type == "collection" && publisher startsWith "goo"`.
func CompileDocumentFilter(filterExpr string) (*vm.Program, error) {
	program, err := expr.Compile(filterExpr, expr.Env(DocumentEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return program, nil
}

// DocumentFilter selects which documents a run validates.
type DocumentFilter struct {
	program *vm.Program
}

// NewDocumentFilter wraps a compiled program. A nil program matches everything.
func NewDocumentFilter(program *vm.Program) *DocumentFilter {
	return &DocumentFilter{program: program}
}

// Matches evaluates the filter for one document.
// It returns false along with a reason when the document should be skipped.
func (f *DocumentFilter) Matches(h values.Handle, path string) (bool, string) {
	if f == nil || f.program == nil {
		return true, ""
	}

	output, err := expr.Run(f.program, NewDocumentEnv(h, path))
	if err != nil {
		return false, fmt.Sprintf("filter expression error: %v", err)
	}

	result, ok := output.(bool)
	if !ok {
		return false, fmt.Sprintf("filter expression did not return boolean: %v", output)
	}
	if !result {
		return false, "excluded by filter expression"
	}
	return true, ""
}

package tags

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tensorflow/tfhub.dev/internal/application/ports"
	"github.com/tensorflow/tfhub.dev/internal/domain/validation"
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	keyValues         = "values"
	keyFormat         = "format"
	keyRequiredDomain = "required_domain"
	keyDomains        = "domains"
)

var (
	requiredTopLevelKeys = values.NewStringSet(keyValues)
	urlTopLevelKeys      = values.NewStringSet(keyFormat, keyRequiredDomain)
	requiredItemKeys     = []string{"id", "display_name"}
	supportedItemKeys    = []string{"id", "display_name", "url", "description", "aggregation_rule"}

	// extraItemKeys are required and supported on top of the common keys.
	extraItemKeys = map[string][]string{
		"task.yaml": {keyDomains},
	}

	// YAML 1.1 reads these plain scalars as booleans.
	yaml11Bools = values.NewStringSet(
		"y", "Y", "yes", "Yes", "YES", "n", "N", "no", "No", "NO",
		"on", "On", "ON", "off", "Off", "OFF",
	)

	duplicateKeyPattern = regexp.MustCompile(`mapping key "([^"]*)" already defined`)
)

var compileSchemas = sync.OnceValues(func() (map[string]*jsonschema.Schema, error) {
	compiled := make(map[string]*jsonschema.Schema)
	for _, name := range []string{"values.json", "url.json"} {
		data, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
		}

		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to add schema resource %s: %w", name, err)
		}
		schema, err := compiler.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		compiled[name] = schema
	}
	return compiled, nil
})

// RequiredItemKeys returns the keys every item of fileName must define.
func RequiredItemKeys(fileName string) []string {
	return append(slices.Clone(requiredItemKeys), extraItemKeys[path.Base(fileName)]...)
}

// SupportedItemKeys returns the keys an item of fileName may define.
func SupportedItemKeys(fileName string) []string {
	return append(slices.Clone(supportedItemKeys), extraItemKeys[path.Base(fileName)]...)
}

// DefinitionValidator checks tag definition files themselves, as opposed to
// the values documents use.
type DefinitionValidator struct {
	fs     ports.FileSystem
	logger *slog.Logger
}

// NewDefinitionValidator creates a validator reading files from fs.
func NewDefinitionValidator(fs ports.FileSystem, logger *slog.Logger) *DefinitionValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefinitionValidator{fs: fs, logger: logger}
}

// ValidateFiles validates every file and maps each broken one to its error.
func (v *DefinitionValidator) ValidateFiles(paths []string) map[string]error {
	out := make(map[string]error)
	for _, p := range paths {
		v.logger.Info("validating tag definition", "path", p)
		if err := v.ValidateFile(p); err != nil {
			out[p] = err
		}
	}
	return out
}

// ValidateFile reads and validates one tag definition file.
func (v *DefinitionValidator) ValidateFile(p string) error {
	data, err := v.fs.ReadFile(p)
	if err != nil {
		return fmt.Errorf("failed to read tag definition %s: %w", p, err)
	}
	if err := ParseDefinition(filepath.Base(p), data); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) && verr.Path == "" {
			return verr.WithPath(p)
		}
		return err
	}
	return nil
}

// ParseDefinition validates the content of a tag definition file named fileName.
// Checks run in this order: YAML syntax, unique keys and string scalars,
// top-level keys, item keys and finally the value schema.
func ParseDefinition(fileName string, data []byte) error {
	body, err := parseBody(data)
	if err != nil {
		return err
	}
	if err := checkNode(body); err != nil {
		return err
	}

	top := mappingPairs(body)
	topKeys := values.NewStringSet()
	for _, pair := range top {
		topKeys.Add(keyOf(pair))
	}

	schemaName := "values.json"
	if topKeys.Has(keyFormat) {
		if extra := topKeys.Difference(urlTopLevelKeys); len(extra) > 0 {
			return definitionError("Expected top-level keys %s but got %s.",
				formatSet(urlTopLevelKeys.Sorted()), validation.FormatList(topKeys.Sorted()))
		}
		schemaName = "url.json"
	} else {
		if !sameKeys(topKeys, requiredTopLevelKeys) {
			return definitionError("Expected top-level keys %s but got %s.",
				formatSet(requiredTopLevelKeys.Sorted()), validation.FormatList(topKeys.Sorted()))
		}
		if err := checkItems(fileName, valueOf(top, keyValues)); err != nil {
			return err
		}
	}

	return checkSchema(schemaName, toValue(body))
}

func parseBody(data []byte) (ast.Node, error) {
	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		if m := duplicateKeyPattern.FindStringSubmatch(err.Error()); m != nil {
			return nil, validation.Wrap(validation.KindDefinitionFormat, err, "Found duplicate key: %s", m[1])
		}
		return nil, validation.Wrap(validation.KindDefinitionFormat, err, "Cannot parse file to YAML.")
	}
	if len(file.Docs) != 1 {
		return nil, definitionError("Cannot parse file to YAML.")
	}
	body := unwrap(file.Docs[0].Body)
	switch body.(type) {
	case *ast.MappingNode, *ast.MappingValueNode:
		return body, nil
	default:
		return nil, definitionError("Cannot parse file to YAML.")
	}
}

// checkNode walks the tree depth first, rejecting duplicate keys and
// scalars that would not load as strings.
func checkNode(node ast.Node) error {
	node = unwrap(node)
	switch n := node.(type) {
	case *ast.MappingNode, *ast.MappingValueNode:
		seen := values.NewStringSet()
		for _, pair := range mappingPairs(n) {
			key, ok := stringValue(pair.Key)
			if !ok {
				return nonString(pair.Key)
			}
			if seen.Has(key) {
				return definitionError("Found duplicate key: %s", key)
			}
			seen.Add(key)
			if err := checkNode(pair.Value); err != nil {
				return err
			}
		}
		return nil
	case *ast.SequenceNode:
		for _, item := range n.Values {
			if err := checkNode(item); err != nil {
				return err
			}
		}
		return nil
	default:
		if _, ok := stringValue(node); !ok {
			return nonString(node)
		}
		return nil
	}
}

func checkItems(fileName string, node ast.Node) error {
	seq, ok := unwrap(node).(*ast.SequenceNode)
	if !ok {
		return definitionError("Expected '%s' to be a list of items.", keyValues)
	}

	required := values.NewStringSet(RequiredItemKeys(fileName)...)
	supported := values.NewStringSet(SupportedItemKeys(fileName)...)
	for _, item := range seq.Values {
		item = unwrap(item)
		switch item.(type) {
		case *ast.MappingNode, *ast.MappingValueNode:
		default:
			return definitionError("Expected every item of '%s' to be a mapping.", keyValues)
		}

		keys := values.NewStringSet()
		for _, pair := range mappingPairs(item) {
			keys.Add(keyOf(pair))
		}
		if missing := required.Difference(keys); len(missing) > 0 {
			return definitionError("Missing required item-level keys: %s.", formatSet(missing))
		}
		if unsupported := keys.Difference(supported); len(unsupported) > 0 {
			return definitionError("Unsupported item-level keys: %s.", formatSet(unsupported))
		}
	}
	return nil
}

func checkSchema(name string, doc any) error {
	schemas, err := compileSchemas()
	if err != nil {
		return err
	}
	if err := schemas[name].Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return validation.Wrap(validation.KindDefinitionFormat, err,
				"Tag definition does not match its schema: %s", schemaMessages(verr))
		}
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func schemaMessages(err *jsonschema.ValidationError) string {
	var messages []string
	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 && e.Message != "" {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)
	if len(messages) == 0 {
		return err.Message
	}
	return strings.Join(messages, "; ")
}

func unwrap(node ast.Node) ast.Node {
	for {
		switch n := node.(type) {
		case *ast.AnchorNode:
			node = n.Value
		case *ast.TagNode:
			if n.Start == nil || n.Start.Value != "!!str" {
				return node
			}
			node = n.Value
		default:
			return node
		}
	}
}

func mappingPairs(node ast.Node) []*ast.MappingValueNode {
	switch n := unwrap(node).(type) {
	case *ast.MappingNode:
		return n.Values
	case *ast.MappingValueNode:
		return []*ast.MappingValueNode{n}
	}
	return nil
}

func keyOf(pair *ast.MappingValueNode) string {
	key, _ := stringValue(pair.Key)
	return key
}

func valueOf(pairs []*ast.MappingValueNode, key string) ast.Node {
	for _, pair := range pairs {
		if keyOf(pair) == key {
			return pair.Value
		}
	}
	return nil
}

// stringValue reports the text of a scalar that loads as a string.
func stringValue(node ast.Node) (string, bool) {
	switch n := unwrap(node).(type) {
	case *ast.StringNode:
		if n.Token != nil && n.Token.Type == token.StringType && yaml11Bools.Has(n.Value) {
			return "", false
		}
		return n.Value, true
	case *ast.LiteralNode:
		if n.Value == nil {
			return "", true
		}
		return n.Value.Value, true
	}
	return "", false
}

func toValue(node ast.Node) any {
	switch n := unwrap(node).(type) {
	case *ast.MappingNode, *ast.MappingValueNode:
		m := make(map[string]any)
		for _, pair := range mappingPairs(n) {
			m[keyOf(pair)] = toValue(pair.Value)
		}
		return m
	case *ast.SequenceNode:
		out := make([]any, 0, len(n.Values))
		for _, item := range n.Values {
			out = append(out, toValue(item))
		}
		return out
	default:
		s, _ := stringValue(n)
		return s
	}
}

func nonString(node ast.Node) error {
	if node == nil {
		return definitionError("Found non-string value: null")
	}
	desc := node.Type().String()
	if tk := node.GetToken(); tk != nil {
		desc = fmt.Sprintf("%s '%s'", desc, tk.Value)
		if tk.Type == token.StringType && yaml11Bools.Has(tk.Value) {
			desc = fmt.Sprintf("Bool '%s'", tk.Value)
		}
		if tk.Position != nil {
			desc = fmt.Sprintf("%s at line %d", desc, tk.Position.Line)
		}
	}
	return definitionError("Found non-string value: %s", desc)
}

func definitionError(format string, args ...any) *validation.Error {
	return validation.New(validation.KindDefinitionFormat, format, args...)
}

func sameKeys(a, b values.StringSet) bool {
	return len(a.Difference(b)) == 0 && len(b.Difference(a)) == 0
}

// formatSet renders keys the way they appear in set notation, e.g. {'id', 'url'}.
func formatSet(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = "'" + item + "'"
	}
	return "{" + strings.Join(quoted, ", ") + "}"
}

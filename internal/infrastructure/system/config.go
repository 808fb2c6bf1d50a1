// Package system loads the hubdoc configuration file (.hubdoc.yaml).
package system

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-yaml"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tensorflow/tfhub.dev/internal/application/dto"
	"github.com/tensorflow/tfhub.dev/internal/domain/services"
	"github.com/tensorflow/tfhub.dev/internal/infrastructure/assets"
	"github.com/tensorflow/tfhub.dev/internal/version"
)

// DefaultGitReference is the ref asset-path changes are compared against.
const DefaultGitReference = assets.DefaultGitReference

//go:embed schemas/config.json
var schemaFS embed.FS

// Config represents the hubdoc configuration file.
// Zero values mean "use the default".
type Config struct {
	TagFiles         map[string]string `yaml:"tag_files"`
	RootDir          string            `yaml:"root_dir"`
	DocsPath         string            `yaml:"docs_path"`
	TagsPath         string            `yaml:"tags_path"`
	CatalogHost      string            `yaml:"catalog_host"`
	GitReference     string            `yaml:"git_reference"`
	RequiredVersion  string            `yaml:"required_version"`
	SmokeTestTimeout time.Duration     `yaml:"smoke_test_timeout"`
	CISleep          time.Duration     `yaml:"ci_sleep"`
	Parallelism      int               `yaml:"parallelism"`
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() *Config {
	return &Config{
		TagFiles:         map[string]string{},
		DocsPath:         dto.DefaultDocsPath,
		TagsPath:         dto.DefaultTagsPath,
		CatalogHost:      services.DefaultCatalogHost,
		GitReference:     DefaultGitReference,
		SmokeTestTimeout: assets.DefaultTimeout,
		CISleep:          assets.DefaultCISleep,
	}
}

// ConfigLoader loads configuration from disk.
type ConfigLoader struct{}

// NewConfigLoader creates a new config loader.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// Load reads the configuration at path and fills unset fields with defaults.
// A missing file yields DefaultConfig().
func (l *ConfigLoader) Load(path string) (*Config, error) {
	//nolint:gosec // G304: path is the user-provided config file
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates configuration YAML.
func Parse(data []byte) (*Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return DefaultConfig(), nil
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validateSchema(doc); err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.TagFiles == nil {
		c.TagFiles = d.TagFiles
	}
	if c.DocsPath == "" {
		c.DocsPath = d.DocsPath
	}
	if c.TagsPath == "" {
		c.TagsPath = d.TagsPath
	}
	if c.CatalogHost == "" {
		c.CatalogHost = d.CatalogHost
	}
	if c.GitReference == "" {
		c.GitReference = d.GitReference
	}
	if c.SmokeTestTimeout == 0 {
		c.SmokeTestTimeout = d.SmokeTestTimeout
	}
	if c.CISleep == 0 {
		c.CISleep = d.CISleep
	}
}

// CheckVersion fails when the running binary does not satisfy required_version.
func (c *Config) CheckVersion(current string) error {
	if c.RequiredVersion == "" {
		return nil
	}
	ok, err := version.Satisfies(current, c.RequiredVersion)
	if err != nil {
		return fmt.Errorf("invalid required_version %q: %w", c.RequiredVersion, err)
	}
	if !ok {
		return fmt.Errorf("hubdoc %s does not satisfy required_version %s", current, c.RequiredVersion)
	}
	return nil
}

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	data, err := schemaFS.ReadFile("schemas/config.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read config schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("config.json", bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to add config schema: %w", err)
	}
	return compiler.Compile("config.json")
})

func validateSchema(doc any) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("invalid config: %s", schemaMessages(verr))
		}
		return fmt.Errorf("config schema validation failed: %w", err)
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
			messages = append(messages, location+": "+e.Message)
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

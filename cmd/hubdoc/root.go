package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tensorflow/tfhub.dev/internal/infrastructure/system"
	"github.com/tensorflow/tfhub.dev/internal/version"
)

var (
	cfgFile string
	rootDir string
	verbose bool
	quiet   bool
)

// rootCmd is the application entry point.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hubdoc",
		Short: "Validate TF Hub markdown documentation",
		Long: `hubdoc checks the markdown documentation of a TF Hub repository.

Every document names a model, placeholder, publisher or collection on its first
line and carries its metadata as HTML comments. hubdoc verifies the handle, the
file location, the metadata against the tag definitions and, on request, the
model archives the documents point to.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if verbose && quiet {
				return fmt.Errorf("--verbose and --quiet are mutually exclusive")
			}
			setupLogging()
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.hubdoc.yaml or $HOME/.hubdoc.yaml)")
	cmd.PersistentFlags().StringVar(&rootDir, "root-dir", "", "repository root (default is the current directory)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")

	cmd.AddCommand(
		newValidateCmd(),
		newValidateTagsCmd(),
		newWatchCmd(),
		newHistoryCmd(),
		newScaffoldCmd(),
		newInspectCmd(),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig loads configuration from the config file and environment.
func initConfig() {
	// A .env file is optional.
	_ = godotenv.Load()

	_ = viper.BindPFlag("root_dir", rootCmd.PersistentFlags().Lookup("root-dir"))

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".hubdoc")
	}

	viper.SetEnvPrefix("HUBDOC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "file", viper.ConfigFileUsed())
	}
}

func setupLogging() {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}

	// Using TextHandler for CLI friendliness
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// overridableKeys are config keys that HUBDOC_* variables and flags may replace.
var overridableKeys = []string{"root_dir", "docs_path", "tags_path", "catalog_host", "git_reference"}

// loadConfig reads the config file found by initConfig, validates it and
// applies environment and flag overrides.
func loadConfig() (*system.Config, error) {
	cfg := system.DefaultConfig()
	if path := viper.ConfigFileUsed(); path != "" {
		if _, err := os.Stat(path); err != nil {
			if cfgFile != "" || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else {
			loaded, err := system.NewConfigLoader().Load(path)
			if err != nil {
				return nil, err
			}
			cfg = loaded
		}
	}

	fields := map[string]*string{
		"root_dir":      &cfg.RootDir,
		"docs_path":     &cfg.DocsPath,
		"tags_path":     &cfg.TagsPath,
		"catalog_host":  &cfg.CatalogHost,
		"git_reference": &cfg.GitReference,
	}
	for _, key := range overridableKeys {
		if v := viper.GetString(key); v != "" {
			*fields[key] = v
		}
	}

	if err := cfg.CheckVersion(version.Version); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveRootDir returns the configured root, falling back to the working directory.
func resolveRootDir(cfg *system.Config) (string, error) {
	if cfg.RootDir != "" {
		return cfg.RootDir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to determine working directory: %w", err)
	}
	return wd, nil
}

package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tensorflow/tfhub.dev/internal/application/dto"
	"github.com/tensorflow/tfhub.dev/internal/domain/execution"
	"github.com/tensorflow/tfhub.dev/internal/infrastructure/container"
)

type validateOptions struct {
	CommonOptions
	filter      string
	historyDB   string
	metricsFile string
	skipPath    bool
	skipAsset   bool
	skipContent bool
	smokeTest   bool
}

func newValidateCmd() *cobra.Command {
	opts := &validateOptions{CommonOptions: DefaultCommonOptions()}

	cmd := &cobra.Command{
		Use:   "validate [files...]",
		Short: "Validate documentation files",
		Long: `Validate the markdown documentation below the docs directory.

Files are given relative to the docs directory. Without files the whole tree
is validated. Explicitly listed files are smoke tested by default: the model
archive behind a newly added asset-path is downloaded and checked for a
saved_model.pb. Use --smoke-test=false to turn that off, or --smoke-test to
force it for a whole-tree run.

Filtering:
  --filter "doc_type == 'saved_model'"     Only validate SavedModel documents
  --filter "publisher in ['google']"       Only validate one publisher`,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.ValidateFlags()
		},
		RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, args []string) error {
			return runValidate(cc, cmd, opts, args)
		}, func(o *container.Options) {
			o.HistoryDB = opts.historyDB
			o.MetricsFile = opts.metricsFile
		}),
	}

	opts.registerFlags(cmd)

	return cmd
}

func (opts *validateOptions) registerFlags(cmd *cobra.Command) {
	opts.RegisterFlags(cmd)
	cmd.Flags().BoolVar(&opts.skipPath, "skip-path-check", false, "Do not check where documents are stored")
	cmd.Flags().BoolVar(&opts.skipAsset, "skip-asset-check", false, "Do not check asset-path tags")
	cmd.Flags().BoolVar(&opts.skipContent, "skip-content-check", false, "Do not check model links in collections")
	cmd.Flags().BoolVar(&opts.smokeTest, "smoke-test", false, "Download and inspect new SavedModel archives (default: on when files are given)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Filter expression selecting documents (e.g. \"doc_type == 'tfjs'\")")
	cmd.Flags().StringVar(&opts.historyDB, "history-db", "", "SQLite file recording run summaries")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")
}

func buildValidateRequest(cmd *cobra.Command, opts *validateOptions, rootDir, docsPath string, files []string) dto.ValidateDocsRequest {
	cfg := dto.DefaultValidationConfig(len(files) > 0)
	cfg.SkipFilePathCheck = opts.skipPath
	cfg.SkipAssetCheck = opts.skipAsset
	cfg.SkipContentCheck = opts.skipContent
	if cmd.Flags().Changed("smoke-test") {
		cfg.DoSmokeTest = opts.smokeTest
	}

	return dto.ValidateDocsRequest{
		RootDir:  rootDir,
		DocsPath: docsPath,
		Files:    files,
		Config:   cfg,
		Filters:  dto.FilterOptions{FilterExpression: opts.filter},
		Execution: dto.ExecutionOptions{
			Parallel:               opts.Parallel,
			MaxConcurrentDocuments: opts.Parallelism,
		},
		Metadata: dto.RequestMetadata{RequestID: uuid.NewString()},
	}
}

func runValidate(cc *CommandContext, cmd *cobra.Command, opts *validateOptions, files []string) error {
	ctx, cancel := opts.ApplyToContext(cc.Context)
	defer cancel()

	result, err := validateOnce(ctx, cc, cmd, opts, files)
	if err != nil {
		return err
	}
	s := result.Summary
	if result.HasFailures() {
		return fmt.Errorf("validation failed: %d passed, %d failed, %d errors", s.Passed, s.Failed, s.Errored)
	}
	return nil
}

// validateOnce runs one validation and writes its report.
func validateOnce(ctx context.Context, cc *CommandContext, cmd *cobra.Command, opts *validateOptions, files []string) (*execution.ValidationResult, error) {
	if opts.Parallelism == 0 {
		opts.Parallelism = cc.Config.Parallelism
	}

	req := buildValidateRequest(cmd, opts, cc.RootDir, cc.Config.DocsPath, files)
	resp, err := cc.Container.ValidateDocsUseCase().Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	for _, w := range resp.Diagnostics.Warnings {
		cc.Logger.Warn(w)
	}

	if err := writeResult(cc, cmd, &opts.CommonOptions, resp.Result); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// writeResult renders result with the selected formatter.
func writeResult(cc *CommandContext, cmd *cobra.Command, opts *CommonOptions, result *execution.ValidationResult) error {
	w, done, err := opts.openOutput(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer done()

	formatter, err := cc.Container.Formatters().Create(opts.Format, w, opts.FormatterOptions())
	if err != nil {
		return err
	}
	if err := formatter.Format(result); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

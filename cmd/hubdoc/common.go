package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/tensorflow/tfhub.dev/internal/application/ports"
	"github.com/tensorflow/tfhub.dev/internal/infrastructure/output"
)

// CommonOptions contains flags shared by the commands that report results.
type CommonOptions struct {
	// Output
	Format string
	Output string

	// Execution
	Timeout     time.Duration
	Parallelism int

	MaxMessageWidth int
	Parallel        bool
}

// DefaultCommonOptions returns sensible defaults.
func DefaultCommonOptions() CommonOptions {
	return CommonOptions{
		Format:   "table",
		Timeout:  30 * time.Minute,
		Parallel: true,
	}
}

// RegisterFlags adds common flags to a cobra command.
func (opts *CommonOptions) RegisterFlags(cmd *cobra.Command) {
	// Execution
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", opts.Timeout,
		"Global timeout for the entire run (0 to disable)")
	cmd.Flags().BoolVar(&opts.Parallel, "parallel", opts.Parallel,
		"Validate documents in parallel")
	cmd.Flags().IntVar(&opts.Parallelism, "parallelism", opts.Parallelism,
		"Maximum documents validated at once (0 = number of CPUs)")

	// Output
	cmd.Flags().StringVar(&opts.Format, "format", opts.Format,
		"Output format: table, json, yaml, junit, sarif")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", opts.Output,
		"Output file path (default: stdout)")
	cmd.Flags().IntVar(&opts.MaxMessageWidth, "max-message-width", opts.MaxMessageWidth,
		"Truncate table messages to this width (0 = no limit)")
}

// ApplyToContext applies timeout to context.
// Returns new context and cancel function.
func (opts *CommonOptions) ApplyToContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	return ctx, func() {}
}

// ValidateFlags validates common options.
func (opts *CommonOptions) ValidateFlags() error {
	formats := output.NewFormatterFactory("").SupportedFormats()
	if !slices.Contains(formats, opts.Format) {
		return fmt.Errorf("invalid format: %s (valid: %v)", opts.Format, formats)
	}
	if opts.Parallelism < 0 {
		return fmt.Errorf("--parallelism must not be negative")
	}
	if opts.MaxMessageWidth < 0 {
		return fmt.Errorf("--max-message-width must not be negative")
	}
	return nil
}

// FormatterOptions returns the rendering options for the selected format.
func (opts *CommonOptions) FormatterOptions() ports.FormatterOptions {
	return ports.FormatterOptions{
		Indent:          true,
		Verbose:         verbose,
		MaxMessageWidth: opts.MaxMessageWidth,
	}
}

// openOutput returns the writer results go to and a function that closes it.
func (opts *CommonOptions) openOutput(stdout io.Writer) (io.Writer, func(), error) {
	if opts.Output == "" {
		return stdout, func() {}, nil
	}
	//nolint:gosec // G304: User-controlled output file path is intentional
	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	slog.Info("writing output", "file", opts.Output, "format", opts.Format)
	return file, func() {
		_ = file.Close() // Best-effort cleanup
	}, nil
}

package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/tensorflow/tfhub.dev/internal/application/services"
)

func newInspectCmd() *cobra.Command {
	var render bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show how a document is parsed",
		Long: `Print the handle, description and metadata hubdoc reads from a document,
and the locations the document is allowed to be stored at. The file is given
relative to the docs directory. No validation rule is applied.`,
		Args: cobra.ExactArgs(1),
		RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, args []string) error {
			path := args[0]
			if !filepath.IsAbs(path) {
				path = filepath.Join(cc.Container.DocsDir(), path)
			}

			doc, err := cc.Container.Parser().Parse(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printDocument(out, doc, cc.Container.DocsDir())

			if !render || len(doc.Body) == 0 {
				return nil
			}
			rendered, err := glamour.Render(strings.Join(doc.Body, "\n"), "dark")
			if err != nil {
				return fmt.Errorf("failed to render body: %w", err)
			}
			_, err = fmt.Fprint(out, rendered)
			return err
		}),
	}

	cmd.Flags().BoolVar(&render, "render", false, "Render the document body as formatted markdown")
	return cmd
}

//nolint:errcheck // best-effort terminal output
func printDocument(w io.Writer, doc *services.ParsedDocument, docsDir string) {
	fmt.Fprintf(w, "Type:        %s\n", doc.Handle.DocType)
	fmt.Fprintf(w, "Handle:      %s\n", doc.Handle.ID())
	fmt.Fprintf(w, "Description: %s\n", doc.Description)

	if keys := doc.Metadata.Keys(); len(keys) > 0 {
		fmt.Fprintln(w, "Metadata:")
		for _, k := range keys {
			fmt.Fprintf(w, "  %s: %s\n", k, strings.Join(doc.Metadata.Values(k), ", "))
		}
	}

	fmt.Fprintln(w, "Allowed paths:")
	for _, p := range doc.Policy.AllowedPaths(docsDir, doc.Handle) {
		fmt.Fprintf(w, "  %s\n", p)
	}
}

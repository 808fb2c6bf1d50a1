package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tensorflow/tfhub.dev/internal/application/dto"
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
)

func newScaffoldCmd() *cobra.Command {
	var (
		req     dto.ScaffoldRequest
		noInput bool
	)

	cmd := &cobra.Command{
		Use:   "scaffold",
		Short: "Create a skeleton document",
		Long: `Create a documentation skeleton at the first location its type allows.

The skeleton carries every required metadata tag with a placeholder value and
passes validation once the placeholders describe the real model. Missing
values are asked for interactively unless --no-input is set.`,
		Example: `  hubdoc scaffold --type saved_model --publisher google --name bert --version 1
  hubdoc scaffold --type publisher --publisher google --dry-run`,
		Args: cobra.NoArgs,
		RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, _ []string) error {
			if !noInput {
				if err := promptScaffold(&req); err != nil {
					return err
				}
			}
			req.DocsDir = cc.Container.DocsDir()

			resp, err := cc.Container.ScaffoldUseCase().Execute(cc.Context, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !resp.Written {
				_, err := fmt.Fprint(out, resp.Content)
				return err
			}
			_, err = fmt.Fprintf(out, "Created %s\n", resp.Path)
			return err
		}),
	}

	cmd.Flags().StringVar(&req.DocType, "type", "", "Document type: saved_model, placeholder, lite, tfjs, coral, publisher, collection")
	cmd.Flags().StringVar(&req.Publisher, "publisher", "", "Publisher id")
	cmd.Flags().StringVar(&req.Name, "name", "", "Model or collection name")
	cmd.Flags().StringVar(&req.Version, "version", "1", "Model version")
	cmd.Flags().StringVar(&req.Description, "description", "", "One-line description")
	cmd.Flags().BoolVar(&req.DryRun, "dry-run", false, "Print the skeleton instead of writing it")
	cmd.Flags().BoolVar(&noInput, "no-input", false, "Never prompt for missing values")

	return cmd
}

// promptScaffold asks for the values not given as flags.
func promptScaffold(req *dto.ScaffoldRequest) error {
	if req.DocType == "" {
		options := make([]huh.Option[string], 0, len(values.AllDocTypes))
		for _, d := range values.AllDocTypes {
			options = append(options, huh.NewOption(d.Label(), d.String()))
		}
		err := huh.NewSelect[string]().
			Title("Document type").
			Options(options...).
			Value(&req.DocType).
			Run()
		if err != nil {
			return err
		}
	}

	if req.Publisher == "" {
		err := huh.NewInput().
			Title("Publisher").
			Value(&req.Publisher).
			Run()
		if err != nil {
			return err
		}
	}

	docType, err := values.ParseDocType(req.DocType)
	if err != nil || docType == values.DocTypePublisher {
		// The use case reports invalid types.
		return nil
	}
	if req.Name == "" {
		err := huh.NewInput().
			Title("Name").
			Value(&req.Name).
			Run()
		if err != nil {
			return err
		}
	}
	return nil
}

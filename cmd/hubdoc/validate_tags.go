package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tensorflow/tfhub.dev/internal/application/dto"
)

func newValidateTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-tags [files...]",
		Short: "Validate tag definition files",
		Long: `Validate the YAML tag definition files below the tags directory.

Files are given relative to the tags directory. Without files every *.yaml
file is validated.`,
		RunE: withContainer(func(cc *CommandContext, _ *cobra.Command, args []string) error {
			resp, err := cc.Container.ValidateTagsUseCase().Execute(cc.Context, dto.ValidateTagsRequest{
				RootDir:  cc.RootDir,
				TagsPath: cc.Config.TagsPath,
				Files:    args,
			})
			if err != nil {
				return err
			}
			if len(resp.Errors) == 0 {
				cc.Logger.Info("Successfully validated all files.")
				return nil
			}

			files := make([]string, 0, len(resp.Errors))
			for f := range resp.Errors {
				files = append(files, f)
			}
			sort.Strings(files)
			cc.Logger.Error(fmt.Sprintf("The following files contain issues: %v", files))
			for _, f := range files {
				cc.Logger.Error("invalid tag definition", "file", f, "error", resp.Errors[f])
			}
			return fmt.Errorf("%d of %d tag files are invalid", len(files), len(resp.Validated))
		}),
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tensorflow/tfhub.dev/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of hubdoc",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hubdoc version %s\n", version.Get().Full())
		},
	}
}

package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tensorflow/tfhub.dev/internal/infrastructure/container"
)

func newHistoryCmd() *cobra.Command {
	var (
		historyDB string
		limit     int
	)

	cmd := &cobra.Command{
		Use:     "history",
		Short:   "List recent validation runs",
		Long:    `List the run summaries recorded by 'hubdoc validate --history-db'.`,
		Example: `  hubdoc history --history-db .hubdoc/history.db --limit 5`,
		Args:    cobra.NoArgs,
		RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, _ []string) error {
			runs, err := cc.Container.Runs().Recent(cc.Context, limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				_, err := fmt.Fprintln(out, "No runs recorded.")
				return err
			}

			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			if _, err := fmt.Fprintln(w, "RUN\tSTARTED\tDURATION\tTOTAL\tPASSED\tFAILED\tERRORS"); err != nil {
				return fmt.Errorf("failed to write header: %w", err)
			}
			for _, r := range runs {
				id := r.RunID.String()
				// Truncate run ID
				if len(id) > 8 {
					id = id[:8]
				}
				if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
					id,
					r.StartedAt.Local().Format(time.DateTime),
					r.Duration.Round(time.Millisecond),
					r.Total, r.Passed, r.Failed, r.Errors,
				); err != nil {
					return fmt.Errorf("failed to write run: %w", err)
				}
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("failed to flush writer: %w", err)
			}
			return nil
		}, func(o *container.Options) {
			o.HistoryDB = historyDB
		}),
	}

	cmd.Flags().StringVar(&historyDB, "history-db", "", "SQLite file holding run summaries")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of runs to show (0 = all)")
	_ = cmd.MarkFlagRequired("history-db")

	return cmd
}

package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [executable]",
		Short: "List recorded scoring runs, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeDB, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			executable := ""
			if len(args) == 1 {
				executable = args[0]
			}
			runs, err := repo.ListRuns(cmd.Context(), executable, limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CREATED\tSCORE\tEXECUTABLE\tID\tSTATUS")
			for _, run := range runs {
				status := "ok"
				switch {
				case !run.Verified:
					status = "TAMPERED"
				case run.Error != "":
					status = "failed"
				}
				fmt.Fprintf(tw, "%s\t%d%%\t%s\t%s\t%s\n",
					run.CreatedAt.Local().Format(time.DateTime), run.Score, run.Executable, run.ID, status)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	return cmd
}

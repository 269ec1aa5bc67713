package main

import (
	"github.com/amccague/zscore/internal/models"
	"github.com/amccague/zscore/internal/watch"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	var opts watch.Options

	cmd := &cobra.Command{
		Use:   "watch <executable>",
		Short: "Re-score a submission on a schedule or whenever it changes",
		Long: `Scores the executable once, then again on every trigger until interrupted.

Examples:
  zscore watch ./quote --on-change
  zscore watch ./quote --schedule "@every 5m"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			svc, cleanup := a.buildService(cmd.Context(), args[0])
			defer cleanup()

			out := cmd.OutOrStdout()
			handle := func(r models.Report) {
				if err := a.emit(out, r); err != nil {
					a.log.Errorf("Failed to write report: %v", err)
				}
			}
			return watch.New(svc, opts, handle, a.log).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&opts.Schedule, "schedule", "", `cron schedule, e.g. "@every 5m" or "*/10 * * * *"`)
	cmd.Flags().BoolVar(&opts.OnChange, "on-change", false, "re-score when the executable changes")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 0, "quiet period before re-scoring after a change")
	cmd.Flags().BoolVar(&a.history, "history", false, "record every run in the history database")
	cmd.Flags().StringVar(&a.format, "format", "json", "format of the --report file (text, json, yaml, junit)")
	cmd.Flags().StringVar(&a.reportPath, "report", "", "also write each report to this file")
	return cmd
}

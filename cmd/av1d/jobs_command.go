package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"av1janitor/internal/history"
	"av1janitor/internal/jobs"
	"av1janitor/internal/logging"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var includeHistory bool
	var historyLimit int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List encode job records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			stdout := cmd.OutOrStdout()

			store := jobs.NewStore(cfg.Paths.JobsDir, logging.NewNop())
			records, err := store.LoadAll()
			if err != nil {
				return fmt.Errorf("load job records: %w", err)
			}

			rows := buildJobRows(records)
			if includeHistory {
				catalog, err := history.Open(cfg.Paths.HistoryDB)
				if err != nil {
					return fmt.Errorf("open history catalog: %w", err)
				}
				defer catalog.Close()

				entries, err := catalog.Recent(cmd.Context(), historyLimit)
				if err != nil {
					return fmt.Errorf("read history: %w", err)
				}
				seen := make(map[string]bool, len(records))
				for _, record := range records {
					seen[record.ID] = true
				}
				rows = append(rows, buildHistoryRows(entries, seen)...)
			}

			if len(rows) == 0 {
				fmt.Fprintln(stdout, "No job records found")
				return nil
			}

			fmt.Fprintln(stdout, renderTable(
				[]string{"Status", "File", "Original", "New", "Saved", "Duration", "Reason"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&includeHistory, "all", false, "Include finished jobs from the history catalog")
	cmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum history rows added by --all")
	return cmd
}

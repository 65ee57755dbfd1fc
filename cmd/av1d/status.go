package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"av1janitor/internal/deps"
	"av1janitor/internal/fileutil"
	"av1janitor/internal/history"
	"av1janitor/internal/jobs"
	"av1janitor/internal/logging"
	"av1janitor/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show system, job, and history status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			printSectionHeader(stdout, "System Checks", colorize)
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				fmt.Fprintln(stdout, renderStatusLine(result.Name, preflightKind(result), result.Detail, colorize))
			}
			fmt.Fprintln(stdout)

			printSectionHeader(stdout, "Dependencies", colorize)
			for _, status := range preflight.CheckSystemDeps(cfg.FFmpegBinary(), cfg.FFprobeBinary()) {
				fmt.Fprintln(stdout, renderStatusLine(status.Name, dependencyKind(status), dependencyDetail(status), colorize))
			}
			fmt.Fprintln(stdout)

			printSectionHeader(stdout, "Job Records", colorize)
			if err := renderJobCounts(stdout, ctx, colorize); err != nil {
				return err
			}
			fmt.Fprintln(stdout)

			printSectionHeader(stdout, "History", colorize)
			return renderHistoryTotals(cmd, stdout, ctx)
		},
	}
}

func preflightKind(result preflight.Result) statusKind {
	switch {
	case result.Passed:
		return statusOK
	case preflight.AdvisoryOnly(result):
		return statusWarn
	default:
		return statusError
	}
}

func dependencyKind(status deps.Status) statusKind {
	switch {
	case status.Available:
		return statusOK
	case status.Optional:
		return statusWarn
	default:
		return statusError
	}
}

func dependencyDetail(status deps.Status) string {
	if status.Available {
		return fmt.Sprintf("ready (command: %s)", status.Command)
	}
	return status.Detail
}

func renderJobCounts(w io.Writer, ctx *commandContext, colorize bool) error {
	cfg := ctx.configValue()
	store := jobs.NewStore(cfg.Paths.JobsDir, logging.NewNop())
	records, err := store.LoadAll()
	if err != nil {
		return fmt.Errorf("load job records: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "No job records")
		return nil
	}

	counts := make(map[jobs.Status]int, len(jobs.AllStatuses()))
	for _, job := range records {
		counts[job.Status]++
	}

	if colorize {
		rows := make([][]string, 0, len(counts))
		for _, status := range jobs.AllStatuses() {
			if counts[status] == 0 {
				continue
			}
			rows = append(rows, []string{status.Display(), strconv.Itoa(counts[status])})
		}
		fmt.Fprintln(w, renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
		return nil
	}
	for _, status := range jobs.AllStatuses() {
		if counts[status] == 0 {
			continue
		}
		fmt.Fprintf(w, "%s%-*s %d\n", statusIndent, statusLabelWidth, status.Display()+":", counts[status])
	}
	return nil
}

func renderHistoryTotals(cmd *cobra.Command, w io.Writer, ctx *commandContext) error {
	cfg := ctx.configValue()
	catalog, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		return fmt.Errorf("open history catalog: %w", err)
	}
	defer catalog.Close()

	totals, err := catalog.Totals(cmd.Context())
	if err != nil {
		return fmt.Errorf("read history totals: %w", err)
	}

	fmt.Fprintf(w, "%s%-*s %d (success %d, failed %d, skipped %d)\n",
		statusIndent, statusLabelWidth, "Finished jobs:",
		totals.Jobs, totals.Succeeded, totals.Failed, totals.Skipped)
	if totals.Succeeded > 0 {
		fmt.Fprintf(w, "%s%-*s %s -> %s\n",
			statusIndent, statusLabelWidth, "Bytes encoded:",
			fileutil.FormatBytes(totals.OriginalBytes), fileutil.FormatBytes(totals.NewBytes))
		fmt.Fprintf(w, "%s%-*s %s\n",
			statusIndent, statusLabelWidth, "Space reclaimed:",
			fileutil.FormatBytes(totals.SavedBytes()))
	}
	return nil
}

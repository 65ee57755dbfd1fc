package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"av1janitor/internal/fileutil"
	"av1janitor/internal/jobs"
)

const ansiClearScreen = "\x1b[2J\x1b[H"

const (
	monitorTableLimit  = 15
	monitorFileWidth   = 44
	monitorReasonWidth = 32
)

// renderSnapshot formats one poll as plain text: a counts line, one line
// per active encode, the most recent job records, and lifetime totals.
func renderSnapshot(snap snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "av1janitor  %s\n", snap.takenAt.Format("2006-01-02 15:04:05"))
	if snap.loadErr != nil {
		fmt.Fprintf(&b, "job store unavailable: %v\n", snap.loadErr)
		return b.String()
	}

	fmt.Fprintf(&b, "pending %d  running %d  success %d  failed %d  skipped %d\n",
		snap.counts[jobs.StatusPending],
		snap.counts[jobs.StatusRunning],
		snap.counts[jobs.StatusSuccess],
		snap.counts[jobs.StatusFailed],
		snap.counts[jobs.StatusSkipped],
	)

	if len(snap.running) > 0 {
		b.WriteString("\n")
		for _, progress := range snap.running {
			b.WriteString(renderProgressLine(progress))
		}
	}

	b.WriteString("\n")
	if len(snap.jobs) == 0 {
		b.WriteString("no job records yet\n")
	} else {
		b.WriteString(renderJobTable(snap.jobs))
	}

	if snap.totalsOK && snap.totals.Jobs > 0 {
		fmt.Fprintf(&b, "\nlifetime: %d finished (%d success, %d failed, %d skipped), %s reclaimed\n",
			snap.totals.Jobs,
			snap.totals.Succeeded,
			snap.totals.Failed,
			snap.totals.Skipped,
			fileutil.FormatBytes(snap.totals.SavedBytes()),
		)
	}
	return b.String()
}

// renderProgressLine shows how far one encode has written against the
// size of its source. The temp file only ever grows, so the percentage
// is a floor on the final compression, not a completion estimate.
func renderProgressLine(progress encodeProgress) string {
	name := truncateName(filepath.Base(progress.job.SourcePath), monitorFileWidth)
	line := fmt.Sprintf("encoding %s: %s of %s",
		name,
		fileutil.FormatBytes(progress.currentBytes),
		fileutil.FormatBytes(progress.job.OriginalBytes),
	)
	if progress.job.OriginalBytes > 0 {
		percent := float64(progress.currentBytes) / float64(progress.job.OriginalBytes) * 100
		line += fmt.Sprintf(" (%.0f%%)", percent)
	}
	if progress.elapsed > 0 {
		line += fmt.Sprintf(", elapsed %s", progress.elapsed.Round(time.Second))
	}
	return line + "\n"
}

func renderJobTable(records []jobs.Job) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Status", "File", "Original", "New", "Saved", "Reason"})

	limit := min(len(records), monitorTableLimit)
	for _, job := range records[:limit] {
		newSize := "-"
		if job.NewBytes > 0 {
			newSize = fileutil.FormatBytes(job.NewBytes)
		}
		saved := "-"
		if ratio, ok := job.SavingsRatio(); ok {
			saved = fmt.Sprintf("%.1f%%", ratio*100)
		}
		tw.AppendRow(table.Row{
			job.Status.Display(),
			truncateName(filepath.Base(job.SourcePath), monitorFileWidth),
			fileutil.FormatBytes(job.OriginalBytes),
			newSize,
			saved,
			truncateName(job.Reason, monitorReasonWidth),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	out := tw.Render() + "\n"
	if len(records) > limit {
		out += fmt.Sprintf("… %d older records not shown\n", len(records)-limit)
	}
	return out
}

func truncateName(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}

package main

import (
	"fmt"
	"path/filepath"
	"time"

	"av1janitor/internal/fileutil"
	"av1janitor/internal/history"
	"av1janitor/internal/jobs"
)

const (
	fileColumnWidth   = 48
	reasonColumnWidth = 40
)

// buildJobRows renders live store records. LoadAll already sorts newest
// first, so rows keep that order.
func buildJobRows(records []jobs.Job) [][]string {
	rows := make([][]string, 0, len(records))
	for _, job := range records {
		ratio, ratioKnown := job.SavingsRatio()
		duration, durationKnown := job.Duration()
		rows = append(rows, []string{
			job.Status.Display(),
			truncateLabel(filepath.Base(job.SourcePath), fileColumnWidth),
			fileutil.FormatBytes(job.OriginalBytes),
			formatNewBytes(job.NewBytes),
			formatSavings(ratio, ratioKnown),
			formatJobDuration(duration, durationKnown),
			truncateLabel(job.Reason, reasonColumnWidth),
		})
	}
	return rows
}

// buildHistoryRows renders catalog entries, skipping ids still present in
// the live store so --all never shows one job twice.
func buildHistoryRows(entries []history.Entry, seen map[string]bool) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		if seen[entry.JobID] {
			continue
		}
		var duration time.Duration
		durationKnown := false
		if entry.FinishedAt != nil {
			duration = entry.FinishedAt.Sub(entry.CreatedAt)
			durationKnown = true
		}
		var ratio float64
		ratioKnown := false
		if entry.OriginalBytes > 0 && entry.NewBytes > 0 {
			ratio = 1 - float64(entry.NewBytes)/float64(entry.OriginalBytes)
			ratioKnown = true
		}
		rows = append(rows, []string{
			entry.Status.Display(),
			truncateLabel(filepath.Base(entry.SourcePath), fileColumnWidth),
			fileutil.FormatBytes(entry.OriginalBytes),
			formatNewBytes(entry.NewBytes),
			formatSavings(ratio, ratioKnown),
			formatJobDuration(duration, durationKnown),
			truncateLabel(entry.Reason, reasonColumnWidth),
		})
	}
	return rows
}

func formatNewBytes(newBytes int64) string {
	if newBytes <= 0 {
		return "-"
	}
	return fileutil.FormatBytes(newBytes)
}

func formatSavings(ratio float64, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", ratio*100)
}

func formatJobDuration(d time.Duration, ok bool) string {
	if !ok {
		return "-"
	}
	return d.Round(time.Second).String()
}

func truncateLabel(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}

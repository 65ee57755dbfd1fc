package main

import (
	"context"
	"os"
	"time"

	"av1janitor/internal/history"
	"av1janitor/internal/jobs"
)

// encodeProgress pairs a running job with what can be observed about it
// from the outside: the temp file size so far and the elapsed wall time.
type encodeProgress struct {
	job          jobs.Job
	currentBytes int64
	elapsed      time.Duration
}

// snapshot is one poll of the job store and the history catalog.
type snapshot struct {
	takenAt  time.Time
	counts   map[jobs.Status]int
	jobs     []jobs.Job
	running  []encodeProgress
	totals   history.Totals
	totalsOK bool
	loadErr  error
}

// collect reads the current job records and lifetime totals. Store and
// catalog failures are captured on the snapshot rather than returned so
// the monitor keeps redrawing while the daemon restarts or the disk
// hiccups.
func collect(ctx context.Context, store *jobs.Store, catalog *history.Catalog) snapshot {
	snap := snapshot{
		takenAt: time.Now(),
		counts:  make(map[jobs.Status]int),
	}

	records, err := store.LoadAll()
	if err != nil {
		snap.loadErr = err
		return snap
	}
	snap.jobs = records

	for _, job := range records {
		snap.counts[job.Status]++
		if job.Status != jobs.StatusRunning {
			continue
		}
		progress := encodeProgress{job: job}
		if info, err := os.Stat(job.OutputPath); err == nil {
			progress.currentBytes = info.Size()
		}
		if job.StartedAt != nil {
			progress.elapsed = snap.takenAt.Sub(*job.StartedAt)
		}
		snap.running = append(snap.running, progress)
	}

	if totals, err := catalog.Totals(ctx); err == nil {
		snap.totals = totals
		snap.totalsOK = true
	}
	return snap
}

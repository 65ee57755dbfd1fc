package main

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"av1janitor/internal/history"
	"av1janitor/internal/jobs"
)

func TestRenderSnapshotSections(t *testing.T) {
	started := time.Date(2026, 3, 14, 10, 28, 30, 0, time.UTC)
	takenAt := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

	running := jobs.Job{
		ID:            "r1",
		SourcePath:    "/lib/active movie.mkv",
		Status:        jobs.StatusRunning,
		OriginalBytes: 8192,
		CreatedAt:     takenAt,
		StartedAt:     &started,
	}
	finished := jobs.Job{
		ID:            "s1",
		SourcePath:    "/lib/finished.mkv",
		Status:        jobs.StatusSuccess,
		OriginalBytes: 10240,
		NewBytes:      4096,
		CreatedAt:     takenAt,
	}

	snap := snapshot{
		takenAt: takenAt,
		counts: map[jobs.Status]int{
			jobs.StatusPending: 1,
			jobs.StatusRunning: 1,
			jobs.StatusSuccess: 1,
		},
		jobs:    []jobs.Job{running, finished},
		running: []encodeProgress{{job: running, currentBytes: 2048, elapsed: 90 * time.Second}},
		totals: history.Totals{
			Jobs:          3,
			Succeeded:     2,
			Failed:        1,
			OriginalBytes: 10240,
			NewBytes:      4096,
		},
		totalsOK: true,
	}

	out := renderSnapshot(snap)
	requireContains(t, out, "av1janitor  2026-03-14 10:30:00")
	requireContains(t, out, "pending 1  running 1  success 1  failed 0  skipped 0")
	requireContains(t, out, "encoding active movie.mkv: 2 KiB of 8 KiB (25%), elapsed 1m30s")
	requireContains(t, out, "RUNNING")
	requireContains(t, out, "SUCCESS")
	requireContains(t, out, "finished.mkv")
	requireContains(t, out, "60.0%")
	requireContains(t, out, "lifetime: 3 finished (2 success, 1 failed, 0 skipped), 6 KiB reclaimed")
}

func TestRenderSnapshotEmptyStore(t *testing.T) {
	snap := snapshot{
		takenAt: time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		counts:  map[jobs.Status]int{},
	}

	out := renderSnapshot(snap)
	requireContains(t, out, "no job records yet")
	if strings.Contains(out, "lifetime:") {
		t.Fatalf("expected no lifetime line without totals, got %q", out)
	}
}

func TestRenderSnapshotLoadError(t *testing.T) {
	snap := snapshot{
		takenAt: time.Now(),
		counts:  map[jobs.Status]int{},
		loadErr: fmt.Errorf("read dir: permission denied"),
	}

	out := renderSnapshot(snap)
	requireContains(t, out, "job store unavailable: read dir: permission denied")
	if strings.Contains(out, "pending") {
		t.Fatalf("expected no counts line after a load error, got %q", out)
	}
}

func TestRenderJobTableCapsRows(t *testing.T) {
	records := make([]jobs.Job, 0, monitorTableLimit+5)
	for i := 0; i < monitorTableLimit+5; i++ {
		records = append(records, jobs.Job{
			ID:            fmt.Sprintf("job-%d", i),
			SourcePath:    fmt.Sprintf("/lib/file-%d.mkv", i),
			Status:        jobs.StatusSuccess,
			OriginalBytes: 1000,
			NewBytes:      400,
		})
	}

	out := renderJobTable(records)
	requireContains(t, out, "… 5 older records not shown")
	requireContains(t, out, "file-0.mkv")
	if strings.Contains(out, fmt.Sprintf("file-%d.mkv", monitorTableLimit)) {
		t.Fatalf("expected row %d to be cut, got %q", monitorTableLimit, out)
	}
}

func TestRenderProgressLineWithoutStart(t *testing.T) {
	progress := encodeProgress{
		job: jobs.Job{SourcePath: "/lib/new.mkv", OriginalBytes: 4096},
	}

	line := renderProgressLine(progress)
	requireContains(t, line, "encoding new.mkv: 0 B of 4 KiB (0%)")
	if strings.Contains(line, "elapsed") {
		t.Fatalf("expected no elapsed segment, got %q", line)
	}
}

func TestTruncateName(t *testing.T) {
	long := strings.Repeat("a", 60)
	got := truncateName(long, 10)
	if runes := []rune(got); len(runes) != 10 {
		t.Fatalf("truncated to %d runes, want 10", len(runes))
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
	if got := truncateName("short.mkv", 20); got != "short.mkv" {
		t.Fatalf("short name changed: %q", got)
	}
}

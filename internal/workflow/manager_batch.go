package workflow

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"av1janitor/internal/decision"
	"av1janitor/internal/fileutil"
	"av1janitor/internal/logging"
	"av1janitor/internal/services"
)

// Results aggregates terminal outcomes across one discovery batch.
// Counts need not sum to Total: a shutdown mid-batch leaves undiscovered
// work untallied, and a path already in flight is ignored entirely.
type Results struct {
	Total   int
	Success int
	Skipped int
	Failed  int
}

type outcome int

const (
	outcomeNone outcome = iota
	outcomeSuccess
	outcomeSkipped
	outcomeFailed
)

type tally struct {
	mu      sync.Mutex
	results Results
}

func (t *tally) record(o outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch o {
	case outcomeSuccess:
		t.results.Success++
	case outcomeSkipped:
		t.results.Skipped++
	case outcomeFailed:
		t.results.Failed++
	}
}

// RunBatch scans the watched directories once and processes every
// admitted candidate, bounded by the configured concurrency. It blocks
// until all spawned workflows reach a terminal state. Cancelling ctx
// stops admissions; it never interrupts started workflows.
func (m *Manager) RunBatch(ctx context.Context) Results {
	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, m.logger)

	paths := Scan(m.cfg, logger)
	batch := &tally{}
	batch.results.Total = len(paths)
	if len(paths) == 0 {
		return batch.results
	}

	logger.Info("scan pass found candidates",
		logging.Int("count", len(paths)),
		logging.String(logging.FieldEventType, "scan_complete"),
	)
	if m.cfg.Daemon.DryRun {
		logger.Warn("dry run mode; no encodes will start",
			logging.String(logging.FieldEventType, "dry_run"),
			logging.String(logging.FieldErrorHint, "unset daemon.dry_run to encode"),
			logging.String(logging.FieldImpact, "candidates are evaluated but never modified"),
		)
	}

	var wg sync.WaitGroup
	for _, path := range paths {
		select {
		case <-ctx.Done():
			logger.Warn("shutdown requested; stopping new admissions",
				logging.String(logging.FieldEventType, "shutdown_requested"),
				logging.String(logging.FieldErrorHint, "in-flight encodes finish before exit"),
				logging.String(logging.FieldImpact, "remaining candidates wait for the next start"),
			)
			wg.Wait()
			return batch.results
		default:
		}

		if !m.tryAcquirePath(path) {
			logger.Debug("path already in flight; ignoring", logging.String("path", path))
			continue
		}

		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			defer m.releasePath(path)
			batch.record(m.admitAndProcess(ctx, path))
		}(path)
	}
	wg.Wait()
	return batch.results
}

// admitAndProcess walks one discovered path through the admission
// gauntlet and, once a slot is claimed, through the encode pipeline.
func (m *Manager) admitAndProcess(ctx context.Context, path string) outcome {
	logger := logging.WithContext(ctx, m.logger).With(logging.String(logging.FieldSource, path))

	if _, err := os.Stat(fileutil.SkipMarker(path)); err == nil {
		logger.Debug("skip marker present; never retried")
		return outcomeSkipped
	}

	info, err := os.Stat(path)
	if err != nil {
		logger.Warn("candidate vanished before admission",
			logging.Error(err),
			logging.String(logging.FieldEventType, "candidate_vanished"),
			logging.String(logging.FieldImpact, "file dropped from this pass"),
		)
		return outcomeSkipped
	}
	if decision.ShouldSkipForSize(info.Size(), m.cfg.Scan.MinFileSizeBytes) {
		logger.Debug("below minimum size",
			logging.String("size", fileutil.FormatBytes(info.Size())),
			logging.String("minimum", fileutil.FormatBytes(m.cfg.Scan.MinFileSizeBytes)),
		)
		return outcomeSkipped
	}

	stable, err := waitForStable(ctx, path, m.cfg.Scan.StabilitySamples, time.Duration(m.cfg.Scan.StabilityDelayMS)*time.Millisecond)
	if err != nil {
		if ctx.Err() != nil {
			return outcomeNone
		}
		logger.Warn("stability check failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "stability_check_failed"),
			logging.String(logging.FieldImpact, "file dropped from this pass"),
		)
		return outcomeSkipped
	}
	if !stable {
		logger.Debug("file still changing size; deferred to next pass")
		return outcomeSkipped
	}

	select {
	case <-ctx.Done():
		return outcomeNone
	case m.slots <- struct{}{}:
	}
	defer func() { <-m.slots }()

	return m.processFile(ctx, path, info.Size(), logger)
}

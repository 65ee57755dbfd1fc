package workflow

import (
	"context"
	"errors"
	"time"

	"av1janitor/internal/logging"
)

// Start begins the scan loop in the background.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.runLoop(runCtx)
	return nil
}

// Stop halts new admissions and waits for in-flight workflows to reach a
// terminal state.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Running reports whether the scan loop is active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Manager) runLoop(ctx context.Context) {
	defer m.wg.Done()

	interval := time.Duration(m.cfg.Scan.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	m.runAndReport(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runAndReport(ctx)
		}
	}
}

func (m *Manager) runAndReport(ctx context.Context) {
	results := m.RunBatch(ctx)
	if results.Total == 0 {
		return
	}
	m.logger.Info("scan pass complete",
		logging.Int("total", results.Total),
		logging.Int("success", results.Success),
		logging.Int("skipped", results.Skipped),
		logging.Int("failed", results.Failed),
		logging.String(logging.FieldEventType, "batch_complete"),
	)
}

package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"av1janitor/internal/config"
	"av1janitor/internal/fileutil"
	"av1janitor/internal/logging"
	"av1janitor/internal/workflow"
)

// Daemon coordinates the background services and enforces single-instance
// execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	workflow *workflow.Manager
	monitor  *drmMonitor

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// LockFilePath returns the single-instance lock location for a config.
// Anything that mutates the library or the job store shares this lock.
func LockFilePath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.LogDir, "av1d.lock")
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger, wf *workflow.Manager) (*Daemon, error) {
	if cfg == nil || logger == nil || wf == nil {
		return nil, errors.New("daemon requires config, logger, and workflow manager")
	}

	lockPath := LockFilePath(cfg)
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		workflow: wf,
		monitor:  newDRMMonitor(logger),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the scan loop and hotplug
// monitor.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another av1janitor daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.logStartupSummary()
	if err := d.monitor.Start(runCtx); err != nil {
		d.logger.Warn("hotplug monitor did not start", logging.Error(err))
	}
	if err := d.workflow.Start(runCtx); err != nil {
		d.monitor.Stop()
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return fmt.Errorf("start workflow: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop halts new admissions, waits for in-flight encodes, and releases
// the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workflow.Stop()
	d.monitor.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Running reports whether the daemon services are active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// LockPath returns the single-instance lock file location.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

// RenderNodeAvailable reports the hotplug monitor's last observation.
func (d *Daemon) RenderNodeAvailable() bool {
	return d.monitor.Available()
}

func (d *Daemon) logStartupSummary() {
	d.logger.Info("configuration",
		logging.String("min_file_size", fileutil.FormatBytes(d.cfg.Scan.MinFileSizeBytes)),
		logging.Float64("size_gate_factor", d.cfg.Postprocess.SizeGateFactor),
		logging.String("extensions", strings.Join(d.cfg.Scan.MediaExtensions, ",")),
		logging.Int("scan_interval_seconds", d.cfg.Scan.IntervalSeconds),
		logging.Int("max_concurrent", d.cfg.Encoding.MaxConcurrent),
		logging.Bool("dry_run", d.cfg.Daemon.DryRun),
		logging.String("jobs_dir", d.cfg.Paths.JobsDir),
		logging.String("watched_directories", strings.Join(d.cfg.Paths.WatchedDirectories, ",")),
	)
}

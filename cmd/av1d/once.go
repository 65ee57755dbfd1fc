package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"av1janitor/internal/daemon"
	"av1janitor/internal/history"
	"av1janitor/internal/jobs"
	"av1janitor/internal/logging"
	"av1janitor/internal/media"
	"av1janitor/internal/preflight"
	"av1janitor/internal/workflow"
)

func newOnceCommand(ctx *commandContext) *cobra.Command {
	overrides := &encodeOverrides{}
	cmd := &cobra.Command{
		Use:   "once",
		Short: "Scan and encode one pass, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, ctx, overrides)
		},
	}
	overrides.register(cmd)
	return cmd
}

func runOnce(cmd *cobra.Command, ctx *commandContext, overrides *encodeOverrides) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := overrides.apply(cfg); err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if failures := preflight.FatalFailures(preflight.RunAll(signalCtx, cfg)); len(failures) > 0 {
		return fmt.Errorf("%d preflight check(s) failed; run 'av1d status' for details", len(failures))
	}

	install, err := validateFFmpeg(signalCtx, cfg)
	if err != nil {
		return err
	}

	// The pass mutates the library, so it contends with a running daemon.
	lock := flock.New(daemon.LockFilePath(cfg))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return errors.New("another av1janitor instance is already running")
	}
	defer lock.Unlock() //nolint:errcheck

	catalog, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		return fmt.Errorf("open history catalog: %w", err)
	}
	defer catalog.Close()

	store := jobs.NewStore(cfg.Paths.JobsDir, logger)
	manager := workflow.NewManager(cfg, store, catalog, logger,
		workflow.WithFFmpeg(install.FFmpegPath),
		workflow.WithProber(media.NewFFprobe(media.WithBinary(install.FFprobePath))),
	)

	results := manager.RunBatch(signalCtx)

	stdout := cmd.OutOrStdout()
	if results.Total == 0 {
		fmt.Fprintln(stdout, "No candidates found")
		return nil
	}
	fmt.Fprintf(stdout, "Candidates: %d\n", results.Total)
	fmt.Fprintf(stdout, "Succeeded:  %d\n", results.Success)
	fmt.Fprintf(stdout, "Skipped:    %d\n", results.Skipped)
	fmt.Fprintf(stdout, "Failed:     %d\n", results.Failed)
	if cfg.Daemon.DryRun {
		fmt.Fprintln(stdout, "Dry run: no files were modified")
	}
	if results.Failed > 0 {
		return fmt.Errorf("%d of %d encodes failed", results.Failed, results.Total)
	}
	return nil
}

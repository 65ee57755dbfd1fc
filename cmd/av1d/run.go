package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"av1janitor/internal/config"
	"av1janitor/internal/daemon"
	"av1janitor/internal/deps"
	"av1janitor/internal/history"
	"av1janitor/internal/jobs"
	"av1janitor/internal/logging"
	"av1janitor/internal/media"
	"av1janitor/internal/preflight"
	"av1janitor/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	overrides := &encodeOverrides{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the encode daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemonProcess(cmd.Context(), ctx, overrides)
		},
	}
	overrides.register(cmd)
	return cmd
}

func runDaemonProcess(cmdCtx context.Context, ctx *commandContext, overrides *encodeOverrides) error {
	if ctx == nil {
		return fmt.Errorf("command context is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
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
		for _, failure := range failures {
			logging.ErrorWithContext(logger, "preflight check failed", "preflight_failed",
				logging.String("check", failure.Name),
				logging.String("detail", failure.Detail),
				logging.String(logging.FieldErrorHint, "fix the configuration and restart"),
			)
		}
		return fmt.Errorf("%d preflight check(s) failed; run 'av1d status' for details", len(failures))
	}

	install, err := validateFFmpeg(signalCtx, cfg)
	if err != nil {
		return err
	}
	logger.Info("ffmpeg validated",
		logging.String("ffmpeg", install.FFmpegPath),
		logging.String("ffprobe", install.FFprobePath),
		logging.String("version", install.Version),
	)
	if !deps.TestHardware(signalCtx, install.FFmpegPath) {
		logging.WarnWithContext(logger, "QSV smoke test failed", "qsv_smoke_failed",
			logging.String(logging.FieldErrorHint, "verify /dev/dri access and the Intel media driver"),
			logging.String(logging.FieldImpact, "encodes may fail until hardware access is restored"),
		)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "av1d.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	catalog, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		logger.Error("open history catalog", logging.Error(err))
		return err
	}
	defer catalog.Close()

	store := jobs.NewStore(cfg.Paths.JobsDir, logger)
	manager := workflow.NewManager(cfg, store, catalog, logger,
		workflow.WithFFmpeg(install.FFmpegPath),
		workflow.WithProber(media.NewFFprobe(media.WithBinary(install.FFprobePath))),
	)

	d, err := daemon.New(cfg, logger, manager)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Start(signalCtx); err != nil {
		return err
	}

	<-signalCtx.Done()
	logger.Info("av1d shutting down")
	d.Stop()
	return nil
}

func validateFFmpeg(ctx context.Context, cfg *config.Config) (deps.Installation, error) {
	ffmpegPath, err := deps.Resolve(cfg.Encoding.FFmpegPath)
	if err != nil {
		return deps.Installation{}, err
	}
	return deps.Validate(ctx, ffmpegPath)
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

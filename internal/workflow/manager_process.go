package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"av1janitor/internal/decision"
	"av1janitor/internal/encoding"
	"av1janitor/internal/fileutil"
	"av1janitor/internal/jobs"
	"av1janitor/internal/logging"
	"av1janitor/internal/postprocess"
	"av1janitor/internal/services"
)

// processFile runs one admitted candidate to a terminal state. The
// pipeline drops the caller's cancellation on entry: shutdown is polled
// at admission only, and a half-finished encode helps nobody. Every exit
// path after job creation leaves a durably saved terminal record.
func (m *Manager) processFile(ctx context.Context, path string, sizeBytes int64, logger *slog.Logger) outcome {
	ctx = context.WithoutCancel(ctx)

	desc, err := m.prober.Describe(services.WithStage(ctx, "probe"), path)
	if err != nil {
		logging.ErrorWithContext(logger, "probe failed", "probe_failed",
			logging.Error(err),
			logging.String("failure_kind", services.FailureKind(err)),
			logging.String(logging.FieldErrorHint, "check that ffprobe can read the file"),
		)
		return outcomeFailed
	}
	if !desc.HasVideo() {
		logger.Debug("no video streams; skipped")
		return outcomeSkipped
	}
	if desc.IsAV1() {
		logger.Debug("already AV1; skipped")
		return outcomeSkipped
	}

	if m.cfg.Daemon.DryRun {
		stream, _ := desc.DefaultVideoStream()
		attrs := logging.DecisionAttrs("encode", "would_encode", "dry run")
		attrs = append(attrs,
			logging.String("resolution", stream.Resolution()),
			logging.Int("quality", decision.QualityForHeight(stream.Height, m.cfg.Quality)),
			logging.String("surface", decision.SurfaceForBitDepth(stream.BitDepth)),
			logging.Bool("special_handling", decision.NeedsSpecialHandling(desc)),
		)
		logger.Info("dry run: would encode", logging.Args(attrs...)...)
		return outcomeSkipped
	}

	job := jobs.New(path, sizeBytes, decision.NeedsSpecialHandling(desc))
	ctx = services.WithJobID(ctx, job.ID)
	logger = logger.With(logging.String(logging.FieldJobID, job.ID))
	if err := m.store.Save(job); err != nil {
		logging.ErrorWithContext(logger, "job record could not be created", "job_save_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check jobs directory permissions"),
		)
		return outcomeFailed
	}

	params, err := encoding.Plan(desc, m.cfg)
	if err != nil {
		logging.ErrorWithContext(logger, "encode plan failed", "plan_failed",
			logging.Error(err),
			logging.String("failure_kind", services.FailureKind(err)),
		)
		return m.failJob(ctx, logger, job, err.Error(), "")
	}
	args := encoding.BuildArgs(params, m.languages, encoding.QSVDevice())

	job.Start(params.OutputPath)
	if err := m.store.Save(job); err != nil {
		logging.ErrorWithContext(logger, "job record could not be updated", "job_save_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check jobs directory permissions"),
		)
		return m.failJob(ctx, logger, job, "job state could not be persisted", "")
	}

	stream, _ := desc.DefaultVideoStream()
	logger.Info("encode starting",
		logging.String("resolution", stream.ResolutionLabel()),
		logging.Int("quality", params.Quality),
		logging.String("surface", params.Surface),
		logging.Bool("special_handling", params.SpecialHandling),
		logging.String("original_size", fileutil.FormatBytes(sizeBytes)),
		logging.String(logging.FieldEventType, "encode_started"),
	)

	opts := encoding.RunOptions{
		Timeout:        time.Duration(m.cfg.Encoding.EncodeTimeoutSeconds) * time.Second,
		MaxStderrLines: m.cfg.Encoding.MaxStderrLines,
		OnProgress: func(p encoding.Progress) {
			if p.Frame%100 == 0 {
				logger.Debug("encode progress",
					logging.Int64("frame", p.Frame),
					logging.Float64("fps", p.FPS),
					logging.Float64("speed", p.Speed),
				)
			}
		},
	}
	result, err := m.runner.Run(services.WithStage(ctx, "encode"), m.ffmpegPath, args, opts)
	if err != nil {
		logging.ErrorWithContext(logger, "encode could not be supervised", "encode_failed",
			logging.Error(err),
			logging.String("failure_kind", services.FailureKind(err)),
			logging.String(logging.FieldErrorHint, "check the ffmpeg installation"),
		)
		return m.failJob(ctx, logger, job, err.Error(), params.OutputPath)
	}
	if result.TimedOut {
		timeoutErr := services.Wrap(services.ErrTimeout, "encode", "watchdog",
			fmt.Sprintf("terminated after %s", result.Duration.Round(time.Second)), nil)
		logging.ErrorWithContext(logger, "encode timed out", "encode_timeout",
			logging.Error(timeoutErr),
			logging.String("failure_kind", services.FailureKind(timeoutErr)),
			logging.Duration("duration", result.Duration),
			logging.String(logging.FieldErrorHint, "raise encode_timeout_seconds for very long sources"),
		)
		return m.failJob(ctx, logger, job, fmt.Sprintf("encode timed out after %s", result.Duration.Round(time.Second)), params.OutputPath)
	}
	if !result.Success {
		attrs := []logging.Attr{
			logging.Int("exit_code", result.ExitCode),
			logging.String(logging.FieldErrorHint, "inspect the diagnostic tail for the encoder message"),
		}
		if n := len(result.Diagnostics); n > 0 {
			attrs = append(attrs, logging.String("diagnostic_tail", result.Diagnostics[n-1]))
		}
		logging.ErrorWithContext(logger, "encode failed", "encode_failed", attrs...)
		return m.failJob(ctx, logger, job, fmt.Sprintf("ffmpeg exited with code %d", result.ExitCode), params.OutputPath)
	}
	logger.Info("encode complete",
		logging.Duration("duration", result.Duration),
		logging.String(logging.FieldEventType, "encode_complete"),
	)

	verdict, err := postprocess.CheckSizeGate(path, params.OutputPath, m.cfg.Postprocess.SizeGateFactor)
	if err != nil {
		logging.ErrorWithContext(logger, "size gate could not run", "size_gate_failed",
			logging.Error(err),
			logging.String("failure_kind", services.FailureKind(err)),
		)
		return m.failJob(ctx, logger, job, err.Error(), params.OutputPath)
	}

	if !verdict.Passed {
		reason := fmt.Sprintf("size gate failed: output is %.1f%% of original (max %.1f%%)",
			verdict.Ratio*100, verdict.Threshold*100)
		logging.WarnWithContext(logger, "size gate failed; original kept", "size_gate_rejected",
			logging.Float64("ratio", verdict.Ratio),
			logging.Float64("threshold", verdict.Threshold),
			logging.String(logging.FieldErrorHint, "the source compresses poorly; nothing to do"),
			logging.String(logging.FieldImpact, "file is marked and never retried"),
		)
		if err := postprocess.WriteWhyFile(path, reason); err != nil {
			logger.Warn("why file could not be written", logging.Error(err))
		}
		if err := postprocess.WriteSkipMarker(path); err != nil {
			logging.ErrorWithContext(logger, "skip marker could not be written", "skip_marker_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check library directory permissions"),
			)
			return m.failJob(ctx, logger, job, "skip marker could not be written: "+err.Error(), params.OutputPath)
		}
		if err := postprocess.RemoveTempOutput(params.OutputPath); err != nil {
			logger.Warn("temp output could not be removed", logging.Error(err))
		}
		job.Skip("size gate failed")
		m.persistTerminal(ctx, logger, job)
		return outcomeSkipped
	}

	if err := m.replacer.Replace(services.WithStage(ctx, "postprocess"), path, params.OutputPath); err != nil {
		logging.ErrorWithContext(logger, "replacement failed", "replace_failed",
			logging.Error(err),
			logging.String("failure_kind", services.FailureKind(err)),
		)
		return m.failJob(ctx, logger, job, err.Error(), params.OutputPath)
	}
	job.Succeed(verdict.NewBytes)
	m.persistTerminal(ctx, logger, job)
	if savings, ok := job.SavingsRatio(); ok {
		logger.Info("original replaced",
			logging.String("new_size", fileutil.FormatBytes(verdict.NewBytes)),
			logging.Float64("savings", savings),
			logging.String(logging.FieldEventType, "replace_complete"),
		)
	}
	return outcomeSuccess
}

// failJob marks the job failed, persists it, records history, and
// removes any in-progress output.
func (m *Manager) failJob(ctx context.Context, logger *slog.Logger, job *jobs.Job, reason, tempOutput string) outcome {
	job.Fail(reason)
	m.persistTerminal(ctx, logger, job)
	if tempOutput != "" {
		if err := postprocess.RemoveTempOutput(tempOutput); err != nil {
			logger.Warn("temp output could not be removed", logging.Error(err))
		}
	}
	return outcomeFailed
}

// persistTerminal saves the terminal job record and mirrors it into the
// history catalog. Persistence problems are logged, never escalated: the
// in-memory outcome already decided the tally.
func (m *Manager) persistTerminal(ctx context.Context, logger *slog.Logger, job *jobs.Job) {
	if err := m.store.Save(job); err != nil {
		logging.ErrorWithContext(logger, "terminal job state could not be saved", "job_save_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check jobs directory permissions"),
		)
	}
	if m.catalog == nil {
		return
	}
	if err := m.catalog.Record(ctx, job); err != nil {
		logging.WarnWithContext(logger, "history record failed", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "lifetime totals undercount this job"),
		)
	}
}

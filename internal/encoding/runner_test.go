package encoding_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"av1janitor/internal/encoding"
	"av1janitor/internal/services"
)

func setHelperCommand(t *testing.T, mode string) {
	t.Helper()
	restore := encoding.SetCommandContextForTests(func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "FFMPEG_HELPER_MODE="+mode)
		return cmd
	})
	t.Cleanup(restore)
}

func TestSupervisorRunSuccess(t *testing.T) {
	setHelperCommand(t, "encode")

	var updates []encoding.Progress
	outcome, err := encoding.NewSupervisor().Run(context.Background(), "ffmpeg", nil, encoding.RunOptions{
		OnProgress: func(p encoding.Progress) {
			updates = append(updates, p)
		},
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("expected success, got %+v", outcome)
	}
	if outcome.TimedOut {
		t.Fatal("expected no timeout")
	}
	if outcome.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", outcome.ExitCode)
	}
	if outcome.Duration <= 0 {
		t.Fatalf("expected positive duration, got %s", outcome.Duration)
	}

	// The banner and the padded stats line carry no countable frame; only
	// the two unpadded stats lines become events.
	if len(updates) != 2 {
		t.Fatalf("expected 2 progress updates, got %d: %+v", len(updates), updates)
	}
	if updates[0].Frame != 240 || updates[1].Frame != 480 {
		t.Fatalf("unexpected frames: %+v", updates)
	}
	if updates[1].SizeBytes != 4096*1024 {
		t.Fatalf("expected 4096kB decoded, got %d", updates[1].SizeBytes)
	}

	if len(outcome.Diagnostics) != 4 {
		t.Fatalf("expected all 4 stderr lines retained, got %d: %v", len(outcome.Diagnostics), outcome.Diagnostics)
	}
}

func TestSupervisorRunNonZeroExit(t *testing.T) {
	setHelperCommand(t, "fail")

	outcome, err := encoding.NewSupervisor().Run(context.Background(), "ffmpeg", nil, encoding.RunOptions{})
	if err != nil {
		t.Fatalf("non-zero exit must be an outcome, not an error: %v", err)
	}
	if outcome.Success {
		t.Fatal("expected failure outcome")
	}
	if outcome.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", outcome.ExitCode)
	}
	if len(outcome.Diagnostics) == 0 || outcome.Diagnostics[0] != "Device creation failed: -542398533." {
		t.Fatalf("expected captured stderr, got %v", outcome.Diagnostics)
	}
}

func TestSupervisorRunTimeout(t *testing.T) {
	setHelperCommand(t, "hang")

	start := time.Now()
	outcome, err := encoding.NewSupervisor().Run(context.Background(), "ffmpeg", nil, encoding.RunOptions{
		Timeout: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !outcome.TimedOut {
		t.Fatal("expected timeout flag")
	}
	if outcome.Success {
		t.Fatal("timed out encode must not be a success")
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("watchdog failed to stop the process promptly, took %s", elapsed)
	}
}

func TestSupervisorRunTruncatesDiagnostics(t *testing.T) {
	setHelperCommand(t, "chatty")

	outcome, err := encoding.NewSupervisor().Run(context.Background(), "ffmpeg", nil, encoding.RunOptions{
		MaxStderrLines: 5,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(outcome.Diagnostics) != 6 {
		t.Fatalf("expected 5 lines plus marker, got %d", len(outcome.Diagnostics))
	}
	for i := 0; i < 5; i++ {
		want := fmt.Sprintf("stderr line %d", i+1)
		if outcome.Diagnostics[i] != want {
			t.Fatalf("diagnostics[%d] = %q, want %q", i, outcome.Diagnostics[i], want)
		}
	}
	if outcome.Diagnostics[5] != "... (output truncated) ..." {
		t.Fatalf("expected truncation marker, got %q", outcome.Diagnostics[5])
	}
}

func TestSupervisorRunCancelledContextStillFinishes(t *testing.T) {
	setHelperCommand(t, "encode")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := encoding.NewSupervisor().Run(ctx, "ffmpeg", nil, encoding.RunOptions{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("started encode must survive context cancellation, got %+v", outcome)
	}
}

func TestSupervisorRunLaunchFailure(t *testing.T) {
	outcome, err := encoding.NewSupervisor().Run(context.Background(), "/nonexistent/av1janitor-ffmpeg", nil, encoding.RunOptions{})
	if err == nil {
		t.Fatalf("expected launch error, got %+v", outcome)
	}
	if !errors.Is(err, services.ErrSupervision) {
		t.Fatalf("expected supervision marker, got %v", err)
	}
}

func TestSupervisorRunRequiresBinary(t *testing.T) {
	if _, err := encoding.NewSupervisor().Run(context.Background(), "", nil, encoding.RunOptions{}); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "encode":
		fmt.Fprintln(os.Stderr, "ffmpeg version n8.0 Copyright (c) 2000-2025 the FFmpeg developers")
		fmt.Fprintln(os.Stderr, "frame=240 fps=48.2 q=31.0 size=2048kB time=00:00:10.00 bitrate=1677.7kbits/s speed=2.01x")
		fmt.Fprintln(os.Stderr, "frame= 360 fps=50.0 q=31.0 size=3072kB time=00:00:15.00 bitrate=1677.7kbits/s speed=2.05x")
		fmt.Fprintln(os.Stderr, "frame=480 fps=52.0 q=30.0 size=4096kB time=00:00:20.00 bitrate=1677.7kbits/s speed=2.10x")
		os.Exit(0)
	case "fail":
		fmt.Fprintln(os.Stderr, "Device creation failed: -542398533.")
		os.Exit(3)
	case "hang":
		time.Sleep(30 * time.Second)
		os.Exit(0)
	case "chatty":
		for i := 1; i <= 10; i++ {
			fmt.Fprintf(os.Stderr, "stderr line %d\n", i)
		}
		os.Exit(0)
	default:
		os.Exit(0)
	}
}

package encoding

import (
	"bufio"
	"context"
	"errors"
	"os/exec"
	"sync/atomic"
	"syscall"
	"time"

	"av1janitor/internal/services"
)

var commandContext = exec.CommandContext

// SetCommandContextForTests replaces process launching and returns a
// restore function.
func SetCommandContextForTests(fn func(context.Context, string, ...string) *exec.Cmd) func() {
	previous := commandContext
	commandContext = fn
	return func() {
		commandContext = previous
	}
}

const (
	// DefaultTimeout bounds one encode when the caller supplies no limit.
	DefaultTimeout = 4 * time.Hour
	// DefaultMaxStderrLines caps retained diagnostics per encode.
	DefaultMaxStderrLines = 1000

	truncationMarker = "... (output truncated) ..."

	// scanBufferSize bounds one stderr line. Stats lines are short but
	// filter graph dumps can run long on a single line.
	scanBufferSize = 1 << 20
)

// Outcome reports how a supervised encode finished. A non-zero exit is
// data, not an error; Run returns an error only when the process could
// not be launched or observed.
type Outcome struct {
	Success     bool
	TimedOut    bool
	ExitCode    int
	Duration    time.Duration
	Diagnostics []string
}

// RunOptions bounds a supervised encode.
type RunOptions struct {
	Timeout        time.Duration
	MaxStderrLines int
	OnProgress     ProgressFunc
}

// Runner supervises one encoder process to completion.
type Runner interface {
	Run(ctx context.Context, binary string, args []string, opts RunOptions) (Outcome, error)
}

// Supervisor runs ffmpeg and watches its stderr for progress and
// diagnostics. Cancelling ctx never interrupts a started encode; a
// half-written output helps nobody, so only the watchdog stops the
// process once it is running.
type Supervisor struct{}

// NewSupervisor constructs a process supervisor.
func NewSupervisor() *Supervisor {
	return &Supervisor{}
}

var _ Runner = (*Supervisor)(nil)

// Run launches the encoder and blocks until it exits or the watchdog
// terminates it.
func (s *Supervisor) Run(ctx context.Context, binary string, args []string, opts RunOptions) (Outcome, error) {
	if binary == "" {
		return Outcome{}, services.Wrap(services.ErrSupervision, "encode", "launch", "binary path required", nil)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxLines := opts.MaxStderrLines
	if maxLines <= 0 {
		maxLines = DefaultMaxStderrLines
	}

	cmd := commandContext(context.WithoutCancel(ctx), binary, args...) //nolint:gosec
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Outcome{}, services.Wrap(services.ErrSupervision, "encode", "stderr pipe", binary, err)
	}

	started := time.Now()
	if err := cmd.Start(); err != nil {
		return Outcome{}, services.Wrap(services.ErrSupervision, "encode", "start", binary, err)
	}

	var timedOut atomic.Bool
	watchdog := time.AfterFunc(timeout, func() {
		timedOut.Store(true)
		if cmd.Process != nil {
			_ = cmd.Process.Signal(syscall.SIGTERM)
		}
	})
	defer watchdog.Stop()

	diagnostics := make([]string, 0, min(maxLines+1, 256))
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 64*1024), scanBufferSize)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case len(diagnostics) < maxLines:
			diagnostics = append(diagnostics, line)
		case len(diagnostics) == maxLines:
			diagnostics = append(diagnostics, truncationMarker)
		}
		if opts.OnProgress != nil {
			if progress, ok := ParseProgress(line); ok {
				opts.OnProgress(progress)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		_ = cmd.Wait()
		return Outcome{}, services.Wrap(services.ErrSupervision, "encode", "read stderr", binary, err)
	}

	waitErr := cmd.Wait()
	outcome := Outcome{
		TimedOut:    timedOut.Load(),
		Duration:    time.Since(started),
		Diagnostics: diagnostics,
	}
	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
		outcome.Success = !outcome.TimedOut
	case errors.As(waitErr, &exitErr):
		outcome.ExitCode = exitErr.ExitCode()
	default:
		return Outcome{}, services.Wrap(services.ErrSupervision, "encode", "wait", binary, waitErr)
	}
	return outcome, nil
}

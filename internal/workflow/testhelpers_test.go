package workflow_test

import (
	"bytes"
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"av1janitor/internal/encoding"
	"av1janitor/internal/media"
)

// descriptor1080p models a plain 1080p 8-bit constant-frame-rate matroska
// source, the uncomplicated common case. The format name deliberately
// lacks the "webm" family suffix, which would trip the webrip heuristic.
func descriptor1080p(path string) media.Descriptor {
	return media.Descriptor{
		Path:       path,
		FormatName: "matroska",
		VideoStreams: []media.VideoStream{{
			Codec:        "h264",
			Width:        1920,
			Height:       1080,
			BitDepth:     8,
			Default:      true,
			AvgFrameRate: "24000/1001",
			RawFrameRate: "24000/1001",
		}},
	}
}

type stubProber struct {
	mu    sync.Mutex
	calls int
	desc  media.Descriptor
	err   error
}

func (s *stubProber) Describe(_ context.Context, path string) (media.Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return media.Descriptor{}, s.err
	}
	desc := s.desc
	desc.Path = path
	return desc, nil
}

func (s *stubProber) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// stubRunner stands in for the ffmpeg supervisor. It writes outputBytes
// to the output path (the final argv element) and returns the configured
// outcome. A non-nil gate parks every run until the gate closes.
type stubRunner struct {
	outputBytes int64
	outcome     encoding.Outcome
	err         error
	delay       time.Duration
	gate        chan struct{}
	started     chan struct{}

	calls      atomic.Int64
	current    atomic.Int64
	maxInUse   atomic.Int64
	lastArgsMu sync.Mutex
	lastArgs   []string
}

func newStubRunner(outputBytes int64) *stubRunner {
	return &stubRunner{
		outputBytes: outputBytes,
		outcome:     encoding.Outcome{Success: true, Duration: time.Second},
	}
}

func (s *stubRunner) Run(_ context.Context, _ string, args []string, _ encoding.RunOptions) (encoding.Outcome, error) {
	s.calls.Add(1)
	inUse := s.current.Add(1)
	defer s.current.Add(-1)
	for {
		recorded := s.maxInUse.Load()
		if inUse <= recorded || s.maxInUse.CompareAndSwap(recorded, inUse) {
			break
		}
	}

	s.lastArgsMu.Lock()
	s.lastArgs = append([]string(nil), args...)
	s.lastArgsMu.Unlock()

	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return encoding.Outcome{}, s.err
	}
	if s.outputBytes > 0 && len(args) > 0 {
		output := args[len(args)-1]
		if err := os.WriteFile(output, bytes.Repeat([]byte{0x7f}, int(s.outputBytes)), 0o644); err != nil {
			return encoding.Outcome{}, err
		}
	}
	return s.outcome, nil
}

func (s *stubRunner) argv() []string {
	s.lastArgsMu.Lock()
	defer s.lastArgsMu.Unlock()
	return append([]string(nil), s.lastArgs...)
}

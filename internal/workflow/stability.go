package workflow

import (
	"context"
	"os"
	"time"
)

// waitForStable samples the file size until it holds still for the
// configured number of samples. A file still being copied in keeps
// changing size; encoding it would race the writer. The wait happens
// before a concurrency slot is claimed so a slow copy never starves
// ready work.
func waitForStable(ctx context.Context, path string, samples int, delay time.Duration) (bool, error) {
	if samples <= 0 {
		samples = 1
	}
	if delay <= 0 {
		delay = time.Millisecond
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	previous := info.Size()

	timer := time.NewTimer(delay)
	defer timer.Stop()
	for i := 0; i < samples; i++ {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
		}

		info, err := os.Stat(path)
		if err != nil {
			return false, err
		}
		if info.Size() != previous {
			return false, nil
		}
		previous = info.Size()
		timer.Reset(delay)
	}
	return true, nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"av1janitor/internal/config"
	"av1janitor/internal/history"
	"av1janitor/internal/jobs"
	"av1janitor/internal/logging"
)

// runMonitor polls until the context ends. When stdout is a terminal the
// screen is cleared before each redraw; piped output appends instead so
// snapshots stay readable in a log.
func runMonitor(ctx context.Context, cfg *config.Config, out io.Writer, interval time.Duration, once bool) error {
	if interval <= 0 {
		interval = 2 * time.Second
	}

	catalog, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		return fmt.Errorf("open history catalog: %w", err)
	}
	defer catalog.Close()

	store := jobs.NewStore(cfg.Paths.JobsDir, logging.NewNop())
	clearScreen := isTerminal(out) && !once

	draw := func() {
		snap := collect(ctx, store, catalog)
		if clearScreen {
			fmt.Fprint(out, ansiClearScreen)
		}
		fmt.Fprint(out, renderSnapshot(snap))
	}

	draw()
	if once {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			draw()
		}
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

package testsupport

import (
	"testing"

	"av1janitor/internal/config"
	"av1janitor/internal/history"
	"av1janitor/internal/jobs"
	"av1janitor/internal/logging"
)

// MustOpenStore opens a jobs.Store rooted at the config's jobs directory.
func MustOpenStore(t testing.TB, cfg *config.Config) *jobs.Store {
	t.Helper()
	return jobs.NewStore(cfg.Paths.JobsDir, logging.NewNop())
}

// MustOpenCatalog opens the history catalog for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *history.Catalog {
	t.Helper()

	catalog, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = catalog.Close()
	})
	return catalog
}

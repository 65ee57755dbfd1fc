package workflow

import (
	"context"
	"log/slog"
	"sync"

	"av1janitor/internal/config"
	"av1janitor/internal/encoding"
	"av1janitor/internal/history"
	"av1janitor/internal/jobs"
	"av1janitor/internal/logging"
	"av1janitor/internal/media"
	"av1janitor/internal/postprocess"
)

// Manager coordinates candidate discovery and per-file encode workflows.
type Manager struct {
	cfg      *config.Config
	store    *jobs.Store
	catalog  *history.Catalog
	logger   *slog.Logger
	prober   media.Prober
	runner   encoding.Runner
	replacer *postprocess.Replacer

	ffmpegPath string
	languages  []string

	// inflight is the only state shared across workflows. Membership
	// test-and-insert must stay atomic so two discovery events for one
	// path can never both start work.
	inflightMu sync.Mutex
	inflight   map[string]struct{}

	slots chan struct{}

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// ManagerOption configures optional Manager collaborators.
type ManagerOption func(*Manager)

// WithProber overrides the media prober.
func WithProber(prober media.Prober) ManagerOption {
	return func(m *Manager) {
		if prober != nil {
			m.prober = prober
		}
	}
}

// WithRunner overrides the encode supervisor.
func WithRunner(runner encoding.Runner) ManagerOption {
	return func(m *Manager) {
		if runner != nil {
			m.runner = runner
		}
	}
}

// WithFFmpeg sets the resolved ffmpeg executable path.
func WithFFmpeg(path string) ManagerOption {
	return func(m *Manager) {
		if path != "" {
			m.ffmpegPath = path
		}
	}
}

// NewManager constructs a workflow manager. The catalog may be nil; the
// manager then keeps job records only.
func NewManager(cfg *config.Config, store *jobs.Store, catalog *history.Catalog, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	concurrency := cfg.Encoding.MaxConcurrent
	if concurrency < 1 {
		concurrency = 1
	}
	manager := &Manager{
		cfg:        cfg,
		store:      store,
		catalog:    catalog,
		logger:     logging.NewComponentLogger(logger, "workflow"),
		prober:     media.NewFFprobe(media.WithBinary(cfg.FFprobeBinary())),
		runner:     encoding.NewSupervisor(),
		replacer:   postprocess.NewReplacer(logger),
		ffmpegPath: "ffmpeg",
		languages:  encoding.ExcludedLanguageSpellings(cfg.Encoding.ExcludedLanguage),
		inflight:   make(map[string]struct{}),
		slots:      make(chan struct{}, concurrency),
	}
	if configured := cfg.FFmpegBinary(); configured != "" {
		manager.ffmpegPath = configured
	}
	for _, opt := range opts {
		opt(manager)
	}
	return manager
}

// tryAcquirePath atomically claims a path for processing. It reports
// false when another workflow already owns the path.
func (m *Manager) tryAcquirePath(path string) bool {
	m.inflightMu.Lock()
	defer m.inflightMu.Unlock()
	if _, exists := m.inflight[path]; exists {
		return false
	}
	m.inflight[path] = struct{}{}
	return true
}

// releasePath removes the claim on a path. Called on every exit path so
// a failed workflow never strands its file.
func (m *Manager) releasePath(path string) {
	m.inflightMu.Lock()
	defer m.inflightMu.Unlock()
	delete(m.inflight, path)
}

// InFlight returns the paths currently owned by running workflows.
func (m *Manager) InFlight() []string {
	m.inflightMu.Lock()
	defer m.inflightMu.Unlock()
	paths := make([]string, 0, len(m.inflight))
	for path := range m.inflight {
		paths = append(paths, path)
	}
	return paths
}

package jobs

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"av1janitor/internal/logging"
	"av1janitor/internal/services"
)

// Store persists jobs under a single directory, one document apiece.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore constructs a Store rooted at dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "jobs"),
	}
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the full job document. The write goes through a temp file
// and rename so readers never observe a half-written document.
func (s *Store) Save(job *Job) error {
	if job == nil || strings.TrimSpace(job.ID) == "" {
		return services.Wrap(services.ErrPersistence, "jobs", "save", "job id required", nil)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return services.Wrap(services.ErrPersistence, "jobs", "save", s.dir, err)
	}
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrPersistence, "jobs", "save", job.ID, err)
	}
	final := filepath.Join(s.dir, job.ID+".json")
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return services.Wrap(services.ErrPersistence, "jobs", "save", tmp, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return services.Wrap(services.ErrPersistence, "jobs", "save", final, err)
	}
	return nil
}

// Load reads one job document by id.
func (s *Store) Load(id string) (*Job, error) {
	path := filepath.Join(s.dir, id+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "jobs", "load", path, err)
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "jobs", "load", path, err)
	}
	return &job, nil
}

// LoadAll reads every job document, newest first. A missing directory is
// an empty store. Unreadable or corrupt documents are skipped with a
// warning so one bad file cannot hide the rest of the history.
func (s *Store) LoadAll() ([]Job, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrPersistence, "jobs", "load", s.dir, err)
	}

	loaded := make([]Job, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("skipping unreadable job document",
				logging.String("path", path),
				logging.Error(err),
			)
			continue
		}
		var job Job
		if err := json.Unmarshal(data, &job); err != nil {
			s.logger.Warn("skipping corrupt job document",
				logging.String("path", path),
				logging.Error(err),
			)
			continue
		}
		loaded = append(loaded, job)
	}

	slices.SortFunc(loaded, func(a, b Job) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return loaded, nil
}

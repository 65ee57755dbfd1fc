// Package history keeps a queryable catalog of finished jobs in SQLite.
// The catalog is observational: losing it costs reporting, never
// correctness, because the job documents stay the durable record.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"av1janitor/internal/jobs"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; the catalog can be deleted and rebuilt from job documents.
const schemaVersion = 1

// Catalog records finished jobs for totals and reporting.
type Catalog struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	catalog := &Catalog{db: db, path: path}
	if err := catalog.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return catalog, nil
}

func (c *Catalog) initSchema(ctx context.Context) error {
	var tableExists int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return c.createSchema(ctx)
	}

	var version int
	if err := c.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("history schema version mismatch: database has %d, expected %d (delete %s to rebuild)",
			version, schemaVersion, c.path)
	}
	return nil
}

func (c *Catalog) createSchema(ctx context.Context) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the database file location.
func (c *Catalog) Path() string {
	return c.path
}

// Record upserts one finished job. Recording the same job again replaces
// the row, so retried saves stay idempotent.
func (c *Catalog) Record(ctx context.Context, job *jobs.Job) error {
	if job == nil {
		return fmt.Errorf("record job: nil job")
	}
	if !job.Status.IsTerminal() {
		return fmt.Errorf("record job %s: status %q is not terminal", job.ID, job.Status)
	}

	_, err := c.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO finished_jobs (
            job_id, source_path, status, reason,
            original_bytes, new_bytes, special_handling,
            created_at, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.SourcePath,
		string(job.Status),
		nullableString(job.Reason),
		job.OriginalBytes,
		job.NewBytes,
		boolToInt(job.SpecialHandling),
		job.CreatedAt.UTC().Format(time.RFC3339Nano),
		nullableTime(job.StartedAt),
		nullableTime(job.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("record job %s: %w", job.ID, err)
	}
	return nil
}

// Totals aggregates the catalog across all time.
type Totals struct {
	Jobs          int
	Succeeded     int
	Failed        int
	Skipped       int
	OriginalBytes int64
	NewBytes      int64
}

// SavedBytes is the space reclaimed by successful encodes.
func (t Totals) SavedBytes() int64 {
	return t.OriginalBytes - t.NewBytes
}

// Totals reads aggregate counts per status. Byte sums cover successful
// jobs only; skipped and failed encodes never replaced anything.
func (c *Catalog) Totals(ctx context.Context) (Totals, error) {
	rows, err := c.db.QueryContext(
		ctx,
		`SELECT status, COUNT(1), COALESCE(SUM(original_bytes), 0), COALESCE(SUM(new_bytes), 0)
         FROM finished_jobs GROUP BY status`,
	)
	if err != nil {
		return Totals{}, fmt.Errorf("query totals: %w", err)
	}
	defer rows.Close()

	var totals Totals
	for rows.Next() {
		var status string
		var count int
		var originalBytes, newBytes int64
		if err := rows.Scan(&status, &count, &originalBytes, &newBytes); err != nil {
			return Totals{}, fmt.Errorf("scan totals row: %w", err)
		}
		totals.Jobs += count
		switch jobs.Status(status) {
		case jobs.StatusSuccess:
			totals.Succeeded = count
			totals.OriginalBytes = originalBytes
			totals.NewBytes = newBytes
		case jobs.StatusFailed:
			totals.Failed = count
		case jobs.StatusSkipped:
			totals.Skipped = count
		}
	}
	if err := rows.Err(); err != nil {
		return Totals{}, fmt.Errorf("iterate totals: %w", err)
	}
	return totals, nil
}

// Entry is one finished job read back from the catalog.
type Entry struct {
	JobID           string
	SourcePath      string
	Status          jobs.Status
	Reason          string
	OriginalBytes   int64
	NewBytes        int64
	SpecialHandling bool
	CreatedAt       time.Time
	FinishedAt      *time.Time
}

// Recent returns up to limit finished jobs, newest first.
func (c *Catalog) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := c.db.QueryContext(
		ctx,
		`SELECT job_id, source_path, status, COALESCE(reason, ''),
                original_bytes, new_bytes, special_handling,
                created_at, finished_at
         FROM finished_jobs
         ORDER BY finished_at DESC
         LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var entry Entry
		var status string
		var special int
		var created string
		var finished sql.NullString
		if err := rows.Scan(
			&entry.JobID,
			&entry.SourcePath,
			&status,
			&entry.Reason,
			&entry.OriginalBytes,
			&entry.NewBytes,
			&special,
			&created,
			&finished,
		); err != nil {
			return nil, fmt.Errorf("scan recent row: %w", err)
		}
		entry.Status = jobs.Status(status)
		entry.SpecialHandling = special != 0
		if parsed, parseErr := time.Parse(time.RFC3339Nano, created); parseErr == nil {
			entry.CreatedAt = parsed
		}
		if finished.Valid {
			if parsed, parseErr := time.Parse(time.RFC3339Nano, finished.String); parseErr == nil {
				entry.FinishedAt = &parsed
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent: %w", err)
	}
	return entries, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

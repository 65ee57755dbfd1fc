package jobs

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle of an encode job.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

var allStatuses = []Status{
	StatusPending,
	StatusRunning,
	StatusSuccess,
	StatusFailed,
	StatusSkipped,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Display renders the status as an uppercase terminal label. The
// lowercase form stays on the wire; rendering is a view concern.
func (s Status) Display() string {
	return strings.ToUpper(string(s))
}

// IsTerminal reports whether a job in this status will never change again.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// Job records one encode attempt for one source file.
type Job struct {
	ID              string     `json:"id"`
	SourcePath      string     `json:"source_path"`
	OutputPath      string     `json:"output_path,omitempty"`
	Status          Status     `json:"status"`
	Reason          string     `json:"reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	OriginalBytes   int64      `json:"original_bytes"`
	NewBytes        int64      `json:"new_bytes,omitempty"`
	SpecialHandling bool       `json:"special_handling"`
}

// New creates a pending job for a source file that passed admission.
func New(sourcePath string, originalBytes int64, specialHandling bool) *Job {
	return &Job{
		ID:              uuid.NewString(),
		SourcePath:      sourcePath,
		Status:          StatusPending,
		CreatedAt:       time.Now().UTC(),
		OriginalBytes:   originalBytes,
		SpecialHandling: specialHandling,
	}
}

// Start marks the job running against the given temp output path.
func (j *Job) Start(outputPath string) {
	now := time.Now().UTC()
	j.Status = StatusRunning
	j.OutputPath = outputPath
	j.StartedAt = &now
}

// Succeed marks the job finished with the original replaced.
func (j *Job) Succeed(newBytes int64) {
	now := time.Now().UTC()
	j.Status = StatusSuccess
	j.NewBytes = newBytes
	j.FinishedAt = &now
}

// Fail marks the job finished with an error the operator should see.
func (j *Job) Fail(reason string) {
	now := time.Now().UTC()
	j.Status = StatusFailed
	j.Reason = reason
	j.FinishedAt = &now
}

// Skip marks the job finished without replacing the original.
func (j *Job) Skip(reason string) {
	now := time.Now().UTC()
	j.Status = StatusSkipped
	j.Reason = reason
	j.FinishedAt = &now
}

// Duration reports wall-clock encode time once the job has both started
// and finished.
func (j Job) Duration() (time.Duration, bool) {
	if j.StartedAt == nil || j.FinishedAt == nil {
		return 0, false
	}
	return j.FinishedAt.Sub(*j.StartedAt), true
}

// SizeRatio reports new size over original size once both are known.
func (j Job) SizeRatio() (float64, bool) {
	if j.OriginalBytes <= 0 || j.NewBytes <= 0 {
		return 0, false
	}
	return float64(j.NewBytes) / float64(j.OriginalBytes), true
}

// SavingsRatio reports the fraction of the original size removed.
func (j Job) SavingsRatio() (float64, bool) {
	ratio, ok := j.SizeRatio()
	if !ok {
		return 0, false
	}
	return 1 - ratio, true
}

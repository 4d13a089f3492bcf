// pkg/pipeline/job.go
package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// SourceKind identifies how a source file is ingested.
type SourceKind string

const (
	// SourceStructured covers tabular inputs (CSV, Excel).
	SourceStructured SourceKind = "structured"
	// SourceUnstructured covers free-text and JSON inputs mapped onto the
	// feedback schema.
	SourceUnstructured SourceKind = "unstructured"
)

// SourceJob represents one input source to ingest
type SourceJob struct {
	ID        string     // Unique job identifier
	Path      string     // Source file or directory path
	Kind      SourceKind // Ingestion mode
	CreatedAt time.Time  // Job creation timestamp
}

// NewSourceJob creates a new source job with defaults
func NewSourceJob(path string, kind SourceKind) SourceJob {
	return SourceJob{
		ID:        uuid.New().String(),
		Path:      path,
		Kind:      kind,
		CreatedAt: time.Now(),
	}
}

// SourceResult represents the outcome of ingesting and cleaning one source
type SourceResult struct {
	JobID     string
	Path      string
	Kind      SourceKind
	Success   bool
	RowsRead  int
	RowsKept  int
	Changes   int
	Errors    []ErrorRecord
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// NewSourceResult initializes a result for a job
func NewSourceResult(job SourceJob) *SourceResult {
	return &SourceResult{
		JobID:     job.ID,
		Path:      job.Path,
		Kind:      job.Kind,
		StartTime: time.Now(),
		Errors:    make([]ErrorRecord, 0),
	}
}

// Complete marks the source as processed and calculates duration
func (r *SourceResult) Complete(success bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = success
}

// AddError adds an error to the result
func (r *SourceResult) AddError(err ErrorRecord) {
	r.Errors = append(r.Errors, err)
	r.Success = false
}

// HasErrors checks if any errors occurred
func (r *SourceResult) HasErrors() bool {
	return len(r.Errors) > 0
}

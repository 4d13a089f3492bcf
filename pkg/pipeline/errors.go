// pkg/pipeline/errors.go
package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNoData is returned when no source yields any rows. It is the only
// condition that aborts a run.
var ErrNoData = errors.New("no data extracted from any source")

// ErrUnsupportedFormat is returned for source files whose extension maps
// to no extractor.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// ErrorCategory classifies failures during a pipeline run
type ErrorCategory int

const (
	// Error categories with increasing severity
	ErrorCategoryNone ErrorCategory = iota
	ErrorCategoryInput
	ErrorCategoryCleaning
	ErrorCategoryExport
	ErrorCategoryRegistry
	ErrorCategoryFatal
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryInput:
		return "Input"
	case ErrorCategoryCleaning:
		return "Cleaning"
	case ErrorCategoryExport:
		return "Export"
	case ErrorCategoryRegistry:
		return "Registry"
	case ErrorCategoryFatal:
		return "Fatal"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// ErrorRecord represents one recovered failure during a run
type ErrorRecord struct {
	Category    ErrorCategory
	Source      string
	Error       error
	Message     string // Derived from Error but stored for serialization
	Timestamp   time.Time
	Recoverable bool
}

// NewErrorRecord creates a new error record with current timestamp
func NewErrorRecord(err error, category ErrorCategory) ErrorRecord {
	record := ErrorRecord{
		Category:    category,
		Error:       err,
		Timestamp:   time.Now(),
		Recoverable: category < ErrorCategoryFatal,
	}

	if err != nil {
		record.Message = err.Error()
	}

	return record
}

// WithSource adds the originating source path to the error record
func (r ErrorRecord) WithSource(source string) ErrorRecord {
	r.Source = source
	return r
}

// String returns a formatted error message
func (r ErrorRecord) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] ", r.Category))

	if r.Source != "" {
		sb.WriteString(fmt.Sprintf("Source: %s ", r.Source))
	}

	if r.Error != nil {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Error.Error()))
	} else if r.Message != "" {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Message))
	}

	return sb.String()
}

// ErrorCollector accumulates recovered errors during a run
type ErrorCollector struct {
	logger  *zap.Logger
	records []ErrorRecord
	counts  map[ErrorCategory]int
	mu      sync.Mutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector(logger *zap.Logger) *ErrorCollector {
	return &ErrorCollector{
		logger:  logger,
		records: make([]ErrorRecord, 0),
		counts:  make(map[ErrorCategory]int),
	}
}

// Record saves an error occurrence and logs it
func (ec *ErrorCollector) Record(record ErrorRecord) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.records = append(ec.records, record)
	ec.counts[record.Category]++

	if ec.logger != nil {
		logLevel := zap.WarnLevel
		if record.Category == ErrorCategoryFatal {
			logLevel = zap.ErrorLevel
		}

		ec.logger.Log(logLevel, "Pipeline error",
			zap.String("category", record.Category.String()),
			zap.String("source", record.Source),
			zap.String("error", record.Message),
			zap.Bool("recoverable", record.Recoverable))
	}
}

// Count returns the total number of recorded errors
func (ec *ErrorCollector) Count() int {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return len(ec.records)
}

// Summary returns a copy of the per-category error counts
func (ec *ErrorCollector) Summary() map[ErrorCategory]int {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	summary := make(map[ErrorCategory]int)
	for category, count := range ec.counts {
		summary[category] = count
	}
	return summary
}

// Records returns a copy of all recorded errors
func (ec *ErrorCollector) Records() []ErrorRecord {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	out := make([]ErrorRecord, len(ec.records))
	copy(out, ec.records)
	return out
}

// pkg/pipeline/metrics.go
package pipeline

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RunMetrics tracks counters for one pipeline run
type RunMetrics struct {
	mu                sync.Mutex
	logger            *zap.Logger
	StartTime         time.Time
	EndTime           time.Time
	SuccessfulSources int
	FailedSources     int
	TotalRowsRead     int
	TotalRowsKept     int
	TotalChanges      int
	SourceResults     []SourceResult
	ErrorCounts       map[ErrorCategory]int
}

// NewRunMetrics creates a new RunMetrics instance
func NewRunMetrics(logger *zap.Logger) *RunMetrics {
	return &RunMetrics{
		StartTime:     time.Now(),
		SourceResults: make([]SourceResult, 0),
		ErrorCounts:   make(map[ErrorCategory]int),
		logger:        logger,
	}
}

// RecordSource records the outcome of one ingested source
func (rm *RunMetrics) RecordSource(result SourceResult) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.SourceResults = append(rm.SourceResults, result)
	rm.TotalRowsRead += result.RowsRead
	rm.TotalRowsKept += result.RowsKept
	rm.TotalChanges += result.Changes

	if result.Success {
		rm.SuccessfulSources++
	} else {
		rm.FailedSources++
		for _, err := range result.Errors {
			rm.ErrorCounts[err.Category]++
		}
	}

	if rm.logger != nil {
		rm.logger.Info("Source processed",
			zap.String("path", result.Path),
			zap.String("kind", string(result.Kind)),
			zap.Bool("success", result.Success),
			zap.Int("rowsRead", result.RowsRead),
			zap.Int("rowsKept", result.RowsKept),
			zap.Int("changes", result.Changes),
			zap.Duration("duration", result.Duration))
	}
}

// AddChanges increments the change counter for work done outside a
// per-source result, such as the final whole-dataset cleaning pass.
func (rm *RunMetrics) AddChanges(n int) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.TotalChanges += n
}

// Complete marks the run as finished
func (rm *RunMetrics) Complete() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.EndTime = time.Now()

	if rm.logger != nil {
		rm.logger.Info("Pipeline run completed",
			zap.Duration("totalDuration", rm.duration()),
			zap.Int("successfulSources", rm.SuccessfulSources),
			zap.Int("failedSources", rm.FailedSources),
			zap.Int("totalRowsRead", rm.TotalRowsRead),
			zap.Int("totalRowsKept", rm.TotalRowsKept),
			zap.Int("totalChanges", rm.TotalChanges))
	}
}

// Duration returns the total run duration
func (rm *RunMetrics) Duration() time.Duration {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.duration()
}

func (rm *RunMetrics) duration() time.Duration {
	if rm.EndTime.IsZero() {
		return time.Since(rm.StartTime)
	}
	return rm.EndTime.Sub(rm.StartTime)
}

// TotalSources returns the number of sources processed
func (rm *RunMetrics) TotalSources() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.SuccessfulSources + rm.FailedSources
}

// Report renders a short human-readable metrics block
func (rm *RunMetrics) Report() string {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	report := fmt.Sprintf(`
Pipeline Run Report
===================
Duration:            %s
Sources Processed:   %d (%d ok, %d failed)
Rows Read:           %d
Rows Kept:           %d
Changes Recorded:    %d
`,
		formatDuration(rm.duration()),
		rm.SuccessfulSources+rm.FailedSources,
		rm.SuccessfulSources,
		rm.FailedSources,
		rm.TotalRowsRead,
		rm.TotalRowsKept,
		rm.TotalChanges,
	)

	if len(rm.ErrorCounts) > 0 {
		report += "\nError Distribution\n------------------\n"
		for category, count := range rm.ErrorCounts {
			report += fmt.Sprintf("- %s: %d\n", category.String(), count)
		}
	}

	return report
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

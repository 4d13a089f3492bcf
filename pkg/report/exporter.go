// pkg/report/exporter.go
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/feedbackops/cleanse/pkg/model"
)

// Exporter serializes a completed change log to four independent sinks:
// a compressed Parquet archive, a queryable SQLite database, a JSON summary
// and a bounded CSV sample. Each sink is written independently; a failure
// in one is logged as a warning and does not block the others.
type Exporter struct {
	logger *zap.Logger
}

// NewExporter creates a report exporter.
func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{logger: logger.Named("report-exporter")}
}

// Result lists the artifacts written by one export call. A sink that failed
// has an empty path and its error recorded in Errors.
type Result struct {
	ParquetPath  string
	DatabasePath string
	SummaryPath  string
	SamplePath   string
	Errors       []error
}

// Written returns the number of artifacts successfully produced.
func (r Result) Written() int {
	n := 0
	for _, p := range []string{r.ParquetPath, r.DatabasePath, r.SummaryPath, r.SamplePath} {
		if p != "" {
			n++
		}
	}
	return n
}

// Export writes the change report next to stem: <stem>_changes.parquet,
// <stem>_changes.db, <stem>_changes_summary.json and
// <stem>_changes_sample.csv.
func (e *Exporter) Export(log *model.ChangeLog, stem string) Result {
	var result Result

	records := log.Records()
	if len(records) == 0 {
		e.logger.Info("No changes to report")
		return result
	}

	if dir := filepath.Dir(stem); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("create report directory: %w", err))
			e.logger.Warn("Failed to create report directory", zap.String("dir", dir), zap.Error(err))
			return result
		}
	}

	e.logger.Info("Saving change report", zap.Int("changes", len(records)))

	parquetPath := stem + "_changes.parquet"
	if err := writeParquet(records, parquetPath); err != nil {
		result.Errors = append(result.Errors, err)
		e.logger.Warn("Parquet export failed", zap.String("path", parquetPath), zap.Error(err))
	} else {
		result.ParquetPath = parquetPath
		e.logger.Info("Wrote Parquet archive", zap.String("path", parquetPath))
	}

	dbPath := stem + "_changes.db"
	if err := writeSQLite(records, dbPath); err != nil {
		result.Errors = append(result.Errors, err)
		e.logger.Warn("SQLite export failed", zap.String("path", dbPath), zap.Error(err))
	} else {
		result.DatabasePath = dbPath
		e.logger.Info("Wrote SQLite report database", zap.String("path", dbPath))
	}

	summaryPath := stem + "_changes_summary.json"
	if err := writeSummary(records, summaryPath); err != nil {
		result.Errors = append(result.Errors, err)
		e.logger.Warn("Summary export failed", zap.String("path", summaryPath), zap.Error(err))
	} else {
		result.SummaryPath = summaryPath
		e.logger.Info("Wrote JSON summary", zap.String("path", summaryPath))
	}

	samplePath := stem + "_changes_sample.csv"
	if err := writeSampleCSV(records, samplePath, sampleLimit); err != nil {
		result.Errors = append(result.Errors, err)
		e.logger.Warn("Sample export failed", zap.String("path", samplePath), zap.Error(err))
	} else {
		result.SamplePath = samplePath
		e.logger.Info("Wrote CSV sample", zap.String("path", samplePath))
	}

	return result
}

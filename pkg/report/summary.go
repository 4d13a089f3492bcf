// pkg/report/summary.go
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/feedbackops/cleanse/pkg/model"
)

const summarySampleSize = 5

// Summary is the machine-readable executive overview of one change log.
// Every value is a plain JSON scalar, map or list.
type Summary struct {
	ReportMetadata     ReportMetadata       `json:"report_metadata"`
	ChangesByOperation map[string]int       `json:"changes_by_operation"`
	ChangesByColumn    map[string]int       `json:"changes_by_column"`
	DataQualityMetrics DataQualityMetrics   `json:"data_quality_metrics"`
	MostActiveRows     map[string]int       `json:"most_active_rows"`
	ChangePatterns     ChangePatterns       `json:"change_patterns"`
	SampleChanges      []model.ChangeRecord `json:"sample_changes"`
}

// ReportMetadata describes the log as a whole.
type ReportMetadata struct {
	TotalChanges    int       `json:"total_changes"`
	ReportGenerated string    `json:"report_generated"`
	TimeRange       TimeRange `json:"time_range"`
}

// TimeRange holds the first and last change timestamps, nil when the log
// is empty.
type TimeRange struct {
	FirstChange *string `json:"first_change"`
	LastChange  *string `json:"last_change"`
}

// DataQualityMetrics sub-totals operations by well-known tag fragments.
type DataQualityMetrics struct {
	MissingValuesFilled int `json:"missing_values_filled"`
	AnomaliesDetected   int `json:"anomalies_detected"`
	Standardizations    int `json:"standardizations"`
	Conversions         int `json:"conversions"`
	Corrections         int `json:"corrections"`
}

// ChangePatterns captures per-column operation diversity and the most
// frequent (column, operation) pairs.
type ChangePatterns struct {
	OperationsPerColumn       map[string]int `json:"operations_per_column"`
	MostCommonTransformations map[string]int `json:"most_common_transformations"`
}

// BuildSummary computes the summary aggregate for a change log snapshot.
func BuildSummary(records []model.ChangeRecord, generatedAt time.Time) Summary {
	summary := Summary{
		ReportMetadata: ReportMetadata{
			TotalChanges:    len(records),
			ReportGenerated: generatedAt.UTC().Format(model.TimestampLayout),
		},
		ChangesByOperation: make(map[string]int),
		ChangesByColumn:    make(map[string]int),
		MostActiveRows:     make(map[string]int),
		ChangePatterns: ChangePatterns{
			OperationsPerColumn:       make(map[string]int),
			MostCommonTransformations: make(map[string]int),
		},
	}

	if len(records) == 0 {
		return summary
	}

	// Timestamps are lexically sortable, so min/max are string comparisons.
	first, last := records[0].Timestamp, records[0].Timestamp
	rowCounts := make(map[int64]int)
	pairCounts := make(map[string]int)
	opsPerColumn := make(map[string]map[string]struct{})

	for _, r := range records {
		if r.Timestamp < first {
			first = r.Timestamp
		}
		if r.Timestamp > last {
			last = r.Timestamp
		}

		summary.ChangesByOperation[r.Operation]++
		summary.ChangesByColumn[r.Column]++
		pairCounts[r.Column+"_"+r.Operation]++

		if opsPerColumn[r.Column] == nil {
			opsPerColumn[r.Column] = make(map[string]struct{})
		}
		opsPerColumn[r.Column][r.Operation] = struct{}{}

		if r.RowIndex != nil {
			rowCounts[*r.RowIndex]++
		}

		op := r.Operation
		if strings.Contains(op, "fillna") {
			summary.DataQualityMetrics.MissingValuesFilled++
		}
		if strings.Contains(op, "anomaly") {
			summary.DataQualityMetrics.AnomaliesDetected++
		}
		if strings.Contains(op, "standardize") || strings.Contains(op, "standardization") {
			summary.DataQualityMetrics.Standardizations++
		}
		if strings.Contains(op, "convert") {
			summary.DataQualityMetrics.Conversions++
		}
		if strings.Contains(op, "correct") {
			summary.DataQualityMetrics.Corrections++
		}
	}

	summary.ReportMetadata.TimeRange = TimeRange{FirstChange: &first, LastChange: &last}

	for col, ops := range opsPerColumn {
		summary.ChangePatterns.OperationsPerColumn[col] = len(ops)
	}
	summary.MostActiveRows = topRowCounts(rowCounts, 10)
	summary.ChangePatterns.MostCommonTransformations = topCounts(pairCounts, 10)

	if len(records) > summarySampleSize {
		summary.SampleChanges = records[:summarySampleSize]
	} else {
		summary.SampleChanges = records
	}

	return summary
}

// writeSummary serializes the summary aggregate to an indented JSON file.
func writeSummary(records []model.ChangeRecord, path string) error {
	summary := BuildSummary(records, time.Now())

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write summary file: %w", err)
	}
	return nil
}

// topRowCounts keeps the limit row indices with the most changes.
func topRowCounts(counts map[int64]int, limit int) map[string]int {
	keyed := make(map[string]int, len(counts))
	for idx, n := range counts {
		keyed[fmt.Sprintf("%d", idx)] = n
	}
	return topCounts(keyed, limit)
}

// topCounts keeps the limit entries with the highest counts, breaking ties
// by key for deterministic output.
func topCounts(counts map[string]int, limit int) map[string]int {
	type entry struct {
		key   string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for k, n := range counts {
		entries = append(entries, entry{key: k, count: n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].key < entries[j].key
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	out := make(map[string]int, len(entries))
	for _, e := range entries {
		out[e.key] = e.count
	}
	return out
}

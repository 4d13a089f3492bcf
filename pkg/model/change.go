// pkg/model/change.go
package model

import (
	"time"

	"github.com/feedbackops/cleanse/pkg/converter"
)

// ColumnAll is the sentinel column name for row-wide operations that are not
// tied to a single field (e.g. whole-row anomaly flags).
const ColumnAll = "ALL"

// TimestampLayout is the fixed-width RFC 3339 layout used for every recorded
// timestamp. Fixed fractional digits keep the strings lexically sortable in
// chronological order, which every downstream sink relies on.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ChangeRecord represents a single field-level mutation made during cleaning.
// Values are stored in their canonical textual form so the record survives
// serialization to every export sink without type-specific handling.
type ChangeRecord struct {
	Column        string  `db:"column_name" json:"column" parquet:"column,snappy"`
	Operation     string  `db:"operation" json:"operation" parquet:"operation,snappy"`
	OriginalValue *string `db:"original_value" json:"original_value" parquet:"original_value,optional,snappy"`
	NewValue      *string `db:"new_value" json:"new_value" parquet:"new_value,optional,snappy"`
	RowIndex      *int64  `db:"row_index" json:"row_index" parquet:"row_index,optional,snappy"`
	Timestamp     string  `db:"timestamp" json:"timestamp" parquet:"timestamp,snappy"`
}

// ChangeLog is an append-only, ordered sequence of ChangeRecords. A log is
// owned by exactly one strategy instance for the duration of one cleaning
// call and must not be shared across goroutines.
type ChangeLog struct {
	records []ChangeRecord
	now     func() time.Time
}

// NewChangeLog creates an empty change log.
func NewChangeLog() *ChangeLog {
	return &ChangeLog{now: time.Now}
}

// Append records one mutation. It never fails: original and new values of any
// type are converted to their canonical string form (temporal values via
// RFC 3339, everything else via generic string conversion), and nil stays
// nil. rowIndex may be nil for column-wide operations.
func (l *ChangeLog) Append(column, operation string, original, newValue interface{}, rowIndex *int) {
	record := ChangeRecord{
		Column:        column,
		Operation:     operation,
		OriginalValue: converter.Canonical(original),
		NewValue:      converter.Canonical(newValue),
		Timestamp:     l.now().UTC().Format(TimestampLayout),
	}
	if rowIndex != nil {
		idx := int64(*rowIndex)
		record.RowIndex = &idx
	}
	l.records = append(l.records, record)
}

// Records returns an immutable snapshot of the log in insertion order.
func (l *ChangeLog) Records() []ChangeRecord {
	snapshot := make([]ChangeRecord, len(l.records))
	copy(snapshot, l.records)
	return snapshot
}

// Len returns the number of recorded changes.
func (l *ChangeLog) Len() int {
	return len(l.records)
}

// Clear resets the log to empty. Called at the start of each cleaning call.
func (l *ChangeLog) Clear() {
	l.records = l.records[:0]
}

// Absorb copies all records from the donor log into this one, preserving
// their relative order. The donor is copied by value and not retained.
func (l *ChangeLog) Absorb(donor *ChangeLog) {
	if donor == nil {
		return
	}
	l.records = append(l.records, donor.records...)
}

// Index returns a pointer to i, for use as the rowIndex argument to Append.
func Index(i int) *int {
	return &i
}

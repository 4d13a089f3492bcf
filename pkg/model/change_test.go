// pkg/model/change_test.go
package model

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeLogAppendCanonicalizesValues(t *testing.T) {
	log := NewChangeLog()
	log.now = func() time.Time {
		return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	}

	log.Append("rating", "fillna_numeric", nil, 4.0, Index(2))
	log.Append("name", "text_standardization", " bob ", "Bob", Index(0))
	log.Append("date", "convert_datetime", "2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), nil)

	records := log.Records()
	require.Len(t, records, 3)

	assert.Nil(t, records[0].OriginalValue)
	require.NotNil(t, records[0].NewValue)
	assert.Equal(t, "4", *records[0].NewValue)
	require.NotNil(t, records[0].RowIndex)
	assert.Equal(t, int64(2), *records[0].RowIndex)
	assert.Equal(t, "2024-01-15T10:30:00.000000000Z", records[0].Timestamp)

	require.NotNil(t, records[1].OriginalValue)
	assert.Equal(t, " bob ", *records[1].OriginalValue)

	require.NotNil(t, records[2].NewValue)
	assert.Equal(t, "2024-01-15T00:00:00Z", *records[2].NewValue)
	assert.Nil(t, records[2].RowIndex)
}

func TestChangeLogTimestampsSortLexically(t *testing.T) {
	// Sub-second fractions are the usual trap: "...T10:30:00.5" sorts after
	// "...T10:30:00.25" as a string only when fractional digits are fixed.
	times := []time.Time{
		time.Date(2024, 1, 15, 10, 30, 0, 250_000_000, time.UTC),
		time.Date(2024, 1, 15, 10, 30, 0, 500_000_000, time.UTC),
		time.Date(2024, 1, 15, 10, 30, 1, 0, time.UTC),
	}

	log := NewChangeLog()
	cursor := 0
	log.now = func() time.Time {
		ts := times[cursor]
		cursor++
		return ts
	}
	for range times {
		log.Append("col", "op", nil, "v", nil)
	}

	records := log.Records()
	stamps := make([]string, len(records))
	for i, r := range records {
		stamps[i] = r.Timestamp
	}
	assert.True(t, sort.StringsAreSorted(stamps), "timestamps must sort lexically in chronological order: %v", stamps)
}

func TestChangeLogRecordsSnapshotIsIndependent(t *testing.T) {
	log := NewChangeLog()
	log.Append("a", "op", nil, "1", nil)

	snapshot := log.Records()
	snapshot[0].Column = "mutated"

	assert.Equal(t, "a", log.Records()[0].Column)
}

func TestChangeLogAbsorbPreservesOrder(t *testing.T) {
	donor := NewChangeLog()
	donor.Append("x", "op1", nil, "1", nil)
	donor.Append("y", "op2", nil, "2", nil)

	log := NewChangeLog()
	log.Append("a", "op0", nil, "0", nil)
	log.Absorb(donor)
	log.Absorb(nil)

	records := log.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "a", records[0].Column)
	assert.Equal(t, "x", records[1].Column)
	assert.Equal(t, "y", records[2].Column)
}

func TestChangeLogClear(t *testing.T) {
	log := NewChangeLog()
	log.Append("a", "op", nil, "1", nil)
	require.Equal(t, 1, log.Len())

	log.Clear()
	assert.Equal(t, 0, log.Len())
	assert.Empty(t, log.Records())
}

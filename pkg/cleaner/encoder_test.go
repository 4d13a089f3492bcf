// pkg/cleaner/encoder_test.go
package cleaner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/feedbackops/cleanse/pkg/model"
)

// anomalyDataset builds ten rows where the last row is an extreme outlier
// in the metric column.
func anomalyDataset() *model.Dataset {
	ds := model.NewDataset([]string{"id", "metric"})
	for i := 0; i < 9; i++ {
		ds.AppendRow(map[string]interface{}{"id": float64(i + 1), "metric": 1.0})
	}
	ds.AppendRow(map[string]interface{}{"id": 10.0, "metric": 100.0})
	return ds
}

func TestEncoderFlagsAnomaliesDetectionOnly(t *testing.T) {
	ds := anomalyDataset()

	e := NewEncoder(testConfig(), zap.NewNop())
	cleaned, changes, err := e.Clean(ds)
	require.NoError(t, err)

	var flags []model.ChangeRecord
	for _, r := range changes.Records() {
		if r.Operation == OpAnomalyDetection {
			flags = append(flags, r)
		}
	}
	require.Len(t, flags, 1)

	r := flags[0]
	assert.Equal(t, model.ColumnAll, r.Column)
	require.NotNil(t, r.OriginalValue)
	assert.Equal(t, "anomaly_detected", *r.OriginalValue)
	require.NotNil(t, r.NewValue)
	assert.True(t, strings.HasPrefix(*r.NewValue, "score_"), "new value carries the score: %s", *r.NewValue)
	require.NotNil(t, r.RowIndex)
	assert.Equal(t, int64(9), *r.RowIndex)

	// Detection only: the flagged value is not corrected.
	assert.Equal(t, 100.0, cleaned.Rows[9].Values["metric"])
}

func TestEncoderFlagCountRespectsContamination(t *testing.T) {
	cfg := testConfig()
	cfg.AnomalyThreshold = 0.0001 // every row scores above this
	cfg.Contamination = 0.2

	e := NewEncoder(cfg, zap.NewNop())
	_, changes, err := e.Clean(anomalyDataset())
	require.NoError(t, err)

	flags := 0
	for _, r := range changes.Records() {
		if r.Operation == OpAnomalyDetection {
			flags++
		}
	}
	assert.LessOrEqual(t, flags, 2, "ceil(0.2 * 10) rows at most")
	assert.Greater(t, flags, 0)
}

func TestEncoderScoringIsDeterministic(t *testing.T) {
	run := func() []model.ChangeRecord {
		e := NewEncoder(testConfig(), zap.NewNop())
		_, changes, err := e.Clean(anomalyDataset())
		require.NoError(t, err)
		return changes.Records()
	}

	first, second := run(), run()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Column, second[i].Column)
		assert.Equal(t, first[i].Operation, second[i].Operation)
		assert.Equal(t, first[i].NewValue, second[i].NewValue)
	}
}

func TestEncoderRecoversWhenScoringImpossible(t *testing.T) {
	// A single row cannot be scored; the baseline result is still returned.
	ds := model.NewDataset([]string{"name", "note"})
	ds.AppendRow(map[string]interface{}{"name": nil, "note": "hello"})

	e := NewEncoder(testConfig(), zap.NewNop())
	cleaned, changes, err := e.Clean(ds)
	require.NoError(t, err)

	require.Equal(t, 1, cleaned.Len())
	assert.Equal(t, "Unknown", cleaned.Rows[0].Values["name"])
	assert.Equal(t, 1, changes.Len())
}

func TestEncoderImputeMissingUsesModeAndMedian(t *testing.T) {
	ds := model.NewDataset([]string{"color", "size"})
	ds.AppendRow(map[string]interface{}{"color": "red", "size": 1.0})
	ds.AppendRow(map[string]interface{}{"color": "red", "size": 3.0})
	ds.AppendRow(map[string]interface{}{"color": "blue", "size": 2.0})
	ds.AppendRow(map[string]interface{}{"color": nil, "size": nil})

	e := NewEncoder(testConfig(), zap.NewNop())
	e.imputeMissing(ds, OpEncoderImputation)

	assert.Equal(t, "red", ds.Rows[3].Values["color"], "mode fills categorical gaps")
	assert.Equal(t, 2.0, ds.Rows[3].Values["size"], "median fills numeric gaps")

	records := e.log.Records()
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, OpEncoderImputation, r.Operation)
	}
}

func TestEncoderModeValueTieBreaksLexically(t *testing.T) {
	ds := model.NewDataset([]string{"c"})
	ds.AppendRow(map[string]interface{}{"c": "b"})
	ds.AppendRow(map[string]interface{}{"c": "a"})

	e := NewEncoder(testConfig(), zap.NewNop())
	assert.Equal(t, "a", e.modeValue(ds, "c"))

	empty := model.NewDataset([]string{"c"})
	empty.AppendRow(map[string]interface{}{"c": nil})
	assert.Equal(t, "Unknown", e.modeValue(empty, "c"))
}

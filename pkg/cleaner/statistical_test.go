// pkg/cleaner/statistical_test.go
package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/feedbackops/cleanse/pkg/model"
)

func TestStatisticalClampsOutliers(t *testing.T) {
	// Rows differ in the label column so duplicate removal keeps all five.
	ds := model.NewDataset([]string{"label", "score"})
	for i, score := range []float64{1, 2, 2, 3, 100} {
		ds.AppendRow(map[string]interface{}{
			"label": string(rune('A' + i)),
			"score": score,
		})
	}

	s := NewStatistical(testConfig(), zap.NewNop())
	cleaned, changes, err := s.Clean(ds)
	require.NoError(t, err)

	// Q1=2, Q3=3, IQR=1, upper bound 4.5.
	assert.Equal(t, 4.5, cleaned.Rows[4].Values["score"])
	assert.Equal(t, 1.0, cleaned.Rows[0].Values["score"], "in-range values untouched")

	var outlierRecords []model.ChangeRecord
	for _, r := range changes.Records() {
		if r.Operation == OpOutlierCorrection {
			outlierRecords = append(outlierRecords, r)
		}
	}
	require.Len(t, outlierRecords, 1)

	r := outlierRecords[0]
	assert.Equal(t, "score", r.Column)
	require.NotNil(t, r.OriginalValue)
	assert.Equal(t, "100", *r.OriginalValue)
	require.NotNil(t, r.NewValue)
	assert.Equal(t, "4.5", *r.NewValue)
	require.NotNil(t, r.RowIndex)
	assert.Equal(t, int64(4), *r.RowIndex)
}

func TestStatisticalStandardizesText(t *testing.T) {
	ds := model.NewDataset([]string{"name", "other"})
	ds.AppendRow(map[string]interface{}{"name": "  alice smith ", "other": "Keep"})
	ds.AppendRow(map[string]interface{}{"name": "Bob Jones", "other": "Keep2"})

	s := NewStatistical(testConfig(), zap.NewNop())
	cleaned, changes, err := s.Clean(ds)
	require.NoError(t, err)

	assert.Equal(t, "Alice Smith", cleaned.Rows[0].Values["name"])
	assert.Equal(t, "Bob Jones", cleaned.Rows[1].Values["name"])

	var stdRecords []model.ChangeRecord
	for _, r := range changes.Records() {
		if r.Operation == OpTextStandardization {
			stdRecords = append(stdRecords, r)
		}
	}
	require.Len(t, stdRecords, 1, "only changed cells are logged")
	assert.Equal(t, "  alice smith ", *stdRecords[0].OriginalValue)
	assert.Equal(t, "Alice Smith", *stdRecords[0].NewValue)
}

func TestStatisticalComposesBaselineChanges(t *testing.T) {
	ds := model.NewDataset([]string{"name", "rating"})
	ds.AppendRow(map[string]interface{}{"name": "Bob", "rating": "5"})
	ds.AppendRow(map[string]interface{}{"name": nil, "rating": "3"})

	s := NewStatistical(testConfig(), zap.NewNop())
	_, changes, err := s.Clean(ds)
	require.NoError(t, err)

	ops := make(map[string]int)
	for _, r := range changes.Records() {
		ops[r.Operation]++
	}
	assert.Equal(t, 1, ops[OpFillCategorical], "baseline changes appear in the combined log")
}

func TestStatisticalLogOrdersBaselineRecordsFirst(t *testing.T) {
	// One missing cell for the baseline pass and one outlier for the
	// statistical pass; the combined log holds the donor records first.
	ds := model.NewDataset([]string{"label", "score"})
	for i, score := range []interface{}{1.0, 2.0, 2.0, 3.0, 100.0, nil} {
		ds.AppendRow(map[string]interface{}{
			"label": string(rune('A' + i)),
			"score": score,
		})
	}

	b := NewBaseline(testConfig(), zap.NewNop())
	_, baseOnly, err := b.Clean(ds)
	require.NoError(t, err)

	s := NewStatistical(testConfig(), zap.NewNop())
	_, combined, err := s.Clean(ds)
	require.NoError(t, err)

	require.Greater(t, combined.Len(), baseOnly.Len())
	records := combined.Records()
	for i, donor := range baseOnly.Records() {
		assert.Equal(t, donor.Operation, records[i].Operation)
		assert.Equal(t, donor.Column, records[i].Column)
	}
}

func TestStatisticalSkipsNumericColumnsInTextPass(t *testing.T) {
	ds := model.NewDataset([]string{"label", "score"})
	ds.AppendRow(map[string]interface{}{"label": "One", "score": 1.0})
	ds.AppendRow(map[string]interface{}{"label": "Two", "score": 2.0})

	s := NewStatistical(testConfig(), zap.NewNop())
	_, changes, err := s.Clean(ds)
	require.NoError(t, err)
	assert.Equal(t, 0, changes.Len())
}

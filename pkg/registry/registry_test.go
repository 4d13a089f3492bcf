// pkg/registry/registry_test.go
package registry

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/feedbackops/cleanse/pkg/model"
)

func openTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := Open(filepath.Join(t.TempDir(), "registry.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })

	require.NoError(t, reg.Initialize(context.Background()))
	return reg
}

func testMeta(changes int) RunMetadata {
	return RunMetadata{
		Timestamp:       time.Now().UTC().Format(model.TimestampLayout),
		CleanerType:     "statistical",
		InputFile:       "data/raw/customer_data.csv",
		OutputFile:      "data/processed/cleaned.csv",
		TotalRecords:    6,
		TotalChanges:    changes,
		DurationSeconds: 0.42,
	}
}

func testChanges(n int) []model.ChangeRecord {
	log := model.NewChangeLog()
	for i := 0; i < n; i++ {
		log.Append("rating", "fillna_numeric", nil, 4, model.Index(i))
	}
	return log.Records()
}

func TestInitializeIsIdempotent(t *testing.T) {
	reg := openTestRegistry(t)
	require.NoError(t, reg.Initialize(context.Background()))

	// Runs recorded before the second Initialize survive it.
	ctx := context.Background()
	_, err := reg.StoreRun(ctx, testMeta(0), nil)
	require.NoError(t, err)
	require.NoError(t, reg.Initialize(ctx))

	runs, err := reg.GetRecentRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestStoreRunAndReadBack(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()

	changes := testChanges(3)
	runID, err := reg.StoreRun(ctx, testMeta(3), changes)
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	runs, err := reg.GetRecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].RunID)
	assert.Equal(t, "statistical", runs[0].CleanerType)
	assert.Equal(t, 6, runs[0].TotalRecords)
	assert.Equal(t, 3, runs[0].TotalChanges)
	assert.Equal(t, "completed", runs[0].Status)

	stored, err := reg.GetRunChanges(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, changes, stored)
}

func TestGetRecentRunsOrderAndLimit(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		id, err := reg.StoreRun(ctx, testMeta(i), nil)
		require.NoError(t, err)
		last = id
	}

	runs, err := reg.GetRecentRuns(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, last, runs[0].RunID, "most recent run first")
	assert.Greater(t, runs[0].RunID, runs[1].RunID)
	assert.Greater(t, runs[1].RunID, runs[2].RunID)
}

func TestStoreRunRollsBackOnFailure(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()

	// Sabotage the change table so the insert fails mid-transaction.
	_, err := reg.db.ExecContext(ctx, "DROP TABLE changes")
	require.NoError(t, err)

	_, err = reg.StoreRun(ctx, testMeta(1), testChanges(1))
	require.Error(t, err)

	// The run row written in the same transaction must be gone too.
	require.NoError(t, reg.Initialize(ctx))
	runs, err := reg.GetRecentRuns(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreRunDefaultsStatusAndTimestamp(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()

	meta := testMeta(0)
	meta.Status = ""
	meta.Timestamp = ""

	_, err := reg.StoreRun(ctx, meta, nil)
	require.NoError(t, err)

	runs, err := reg.GetRecentRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "completed", runs[0].Status)
	assert.NotEmpty(t, runs[0].Timestamp)
}

package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avickers/gridbench/internal/bench"
	"github.com/avickers/gridbench/internal/compare"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func sampleReport() *compare.Report {
	elapsedA := 100.0
	elapsedB := 200.0
	speedup := 0.5

	return &compare.Report{
		Timestamp: "2025-01-02T03:04:05Z",
		PackageA:  "PowSyBl",
		PackageB:  "PowerModels.jl",
		StateA:    "COMPLETED",
		StateB:    "COMPLETED",
		Summary: []compare.TestSummary{
			{
				Test:       bench.TestACPowerFlow,
				ElapsedAMs: &elapsedA,
				ElapsedBMs: &elapsedB,
				Speedup:    &speedup,
				Faster:     "PowSyBl",
			},
			{
				Test:   bench.TestDCPowerFlow,
				Faster: "N/A",
			},
		},
	}
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "run-1", sampleReport()))

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first: the dc row was inserted last.
	assert.Equal(t, bench.TestDCPowerFlow, entries[0].Test)
	assert.Nil(t, entries[0].ElapsedAMs)
	assert.Nil(t, entries[0].Speedup)
	assert.Equal(t, "N/A", entries[0].Faster)

	ac := entries[1]
	assert.Equal(t, "run-1", ac.RunID)
	assert.Equal(t, "PowSyBl", ac.PackageA)
	require.NotNil(t, ac.ElapsedAMs)
	assert.InDelta(t, 100.0, *ac.ElapsedAMs, 1e-9)
	require.NotNil(t, ac.Speedup)
	assert.InDelta(t, 0.5, *ac.Speedup, 1e-9)
}

func TestRecentLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "run-1", sampleReport()))
	require.NoError(t, store.Record(ctx, "run-2", sampleReport()))

	entries, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, "run-2", entries[0].RunID)
}

func TestRecentEmpty(t *testing.T) {
	store := openTestStore(t)

	entries, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Record(context.Background(), "run-1", sampleReport()))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	entries, err := second.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

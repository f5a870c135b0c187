package attendance

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These exercise the LedgerStore contract through the in-memory double,
// which mirrors the Mongo implementation's semantics.

func TestMarkPeriodResult(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	_, err := store.GetOrCreate(ctx, "s1", "b1")
	require.NoError(t, err)

	res, err := store.MarkPeriod(ctx, "s1", "b1", "2024-05-01", 2, true)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 0, res.Previous)

	res, err = store.MarkPeriod(ctx, "s1", "b1", "2024-05-01", 2, true)
	require.NoError(t, err)
	assert.False(t, res.Changed, "re-marking present is a no-op")
	assert.Equal(t, 1, res.Previous)

	res, err = store.MarkPeriod(ctx, "s1", "b1", "2024-05-01", 2, false)
	require.NoError(t, err)
	assert.True(t, res.Changed, "manual flip back to absent")
	assert.Equal(t, 1, res.Previous)

	_, err = store.MarkPeriod(ctx, "s1", "b1", "2024-05-01", 6, true)
	assert.Error(t, err, "period index out of range")

	_, err = store.MarkPeriod(ctx, "s1", "b1", "bad-date", 0, true)
	assert.Error(t, err)

	_, err = store.MarkPeriod(ctx, "ghost", "b1", "2024-05-01", 0, true)
	assert.Equal(t, ErrLedgerNotFound, err)
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	first, err := store.GetOrCreate(ctx, "s1", "b1")
	require.NoError(t, err)
	second, err := store.GetOrCreate(ctx, "s1", "b1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "at most one ledger per pair")

	ledgers, err := store.ForBatch(ctx, "b1")
	require.NoError(t, err)
	assert.Len(t, ledgers, 1)
}

func TestMarkPeriodConcurrentDistinctPeriods(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	_, err := store.GetOrCreate(ctx, "s1", "b1")
	require.NoError(t, err)

	// All six periods of one date marked concurrently; no update may be
	// lost and the vector must keep its six slots.
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, err := store.MarkPeriod(ctx, "s1", "b1", "2024-05-01", idx, true)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	ledger, err := store.Find(ctx, "s1", "b1")
	require.NoError(t, err)
	day, ok := ledger.Day("2024-05-01")
	require.True(t, ok)
	assert.Equal(t, []int{1, 1, 1, 1, 1, 1}, day)
}

func TestSetPercentage(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	_, err := store.GetOrCreate(ctx, "s1", "b1")
	require.NoError(t, err)

	require.NoError(t, store.SetPercentage(ctx, "s1", "b1", "87.5%"))
	ledger, err := store.Find(ctx, "s1", "b1")
	require.NoError(t, err)
	assert.Equal(t, "87.5%", ledger.Percentage)

	assert.Equal(t, ErrLedgerNotFound, store.SetPercentage(ctx, "ghost", "b1", "0%"))
}

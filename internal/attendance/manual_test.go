package attendance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolp(v bool) *bool { return &v }

func manualFixture(t *testing.T, date string) (*Service, *memStore, *fakeRoster) {
	t.Helper()
	store := newMemStore()
	roster := newFakeRoster()
	svc := NewService(store, roster, nil, fixedClock{mustDate(date)}, nil, nil)
	return svc, store, roster
}

func TestApplyManualPartialFailure(t *testing.T) {
	svc, store, roster := manualFixture(t, "2024-05-02")

	a := roster.addStudent("S001", "Asha")
	b := roster.addStudent("S002", "Ravi")
	c := roster.addStudent("S003", "Mira")
	batch := roster.addBatch("BATCH2024", a.ID.Hex(), b.ID.Hex(), c.ID.Hex())

	entries := []ManualEntry{
		{StudentID: a.ID.Hex(), Status: boolp(true)},
		{StudentID: b.ID.Hex(), Status: nil}, // malformed row
		{StudentID: c.ID.Hex(), Status: boolp(false)},
	}

	outcomes, err := svc.ApplyManual(context.Background(), batch.ID.Hex(), "", 4, entries)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.True(t, outcomes[0].OK)
	assert.False(t, outcomes[1].OK)
	assert.Equal(t, "Invalid student data.", outcomes[1].Message)
	assert.True(t, outcomes[2].OK)

	// Input order preserved.
	assert.Equal(t, a.ID.Hex(), outcomes[0].StudentID)
	assert.Equal(t, b.ID.Hex(), outcomes[1].StudentID)
	assert.Equal(t, c.ID.Hex(), outcomes[2].StudentID)

	// Valid rows persisted despite the bad one.
	la, err := store.Find(context.Background(), a.ID.Hex(), batch.ID.Hex())
	require.NoError(t, err)
	day, ok := la.Day("2024-05-02")
	require.True(t, ok)
	assert.Equal(t, []int{0, 0, 0, 1, 0, 0}, day)

	lc, err := store.Find(context.Background(), c.ID.Hex(), batch.ID.Hex())
	require.NoError(t, err)
	day, ok = lc.Day("2024-05-02")
	require.True(t, ok)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0}, day)

	_, err = store.Find(context.Background(), b.ID.Hex(), batch.ID.Hex())
	assert.Equal(t, ErrLedgerNotFound, err, "malformed row must not create a ledger")
}

func TestApplyManualOverwritesPresent(t *testing.T) {
	svc, store, roster := manualFixture(t, "2024-05-02")

	a := roster.addStudent("S001", "Asha")
	batch := roster.addBatch("BATCH2024", a.ID.Hex())

	_, err := svc.ApplyManual(context.Background(), batch.ID.Hex(), "2024-05-02", 1,
		[]ManualEntry{{StudentID: a.ID.Hex(), Status: boolp(true)}})
	require.NoError(t, err)

	// Manual entry may flip a present mark back to absent.
	_, err = svc.ApplyManual(context.Background(), batch.ID.Hex(), "2024-05-02", 1,
		[]ManualEntry{{StudentID: a.ID.Hex(), Status: boolp(false)}})
	require.NoError(t, err)

	ledger, err := store.Find(context.Background(), a.ID.Hex(), batch.ID.Hex())
	require.NoError(t, err)
	day, _ := ledger.Day("2024-05-02")
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0}, day)
}

func TestApplyManualDefaultsToToday(t *testing.T) {
	svc, store, roster := manualFixture(t, "2024-07-15")

	a := roster.addStudent("S001", "Asha")
	batch := roster.addBatch("BATCH2024", a.ID.Hex())

	_, err := svc.ApplyManual(context.Background(), batch.ID.Hex(), "", 6,
		[]ManualEntry{{StudentID: a.ID.Hex(), Status: boolp(true)}})
	require.NoError(t, err)

	ledger, err := store.Find(context.Background(), a.ID.Hex(), batch.ID.Hex())
	require.NoError(t, err)
	day, ok := ledger.Day("2024-07-15")
	require.True(t, ok)
	assert.Equal(t, 1, day[5])
}

func TestApplyManualBatchNotFound(t *testing.T) {
	svc, _, _ := manualFixture(t, "2024-05-02")

	_, err := svc.ApplyManual(context.Background(), "missing-batch", "", 1,
		[]ManualEntry{{StudentID: "s", Status: boolp(true)}})
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestApplyManualValidation(t *testing.T) {
	svc, _, roster := manualFixture(t, "2024-05-02")
	batch := roster.addBatch("BATCH2024")

	_, err := svc.ApplyManual(context.Background(), batch.ID.Hex(), "", 7,
		[]ManualEntry{{StudentID: "s", Status: boolp(true)}})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.ApplyManual(context.Background(), batch.ID.Hex(), "", 1, nil)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.ApplyManual(context.Background(), batch.ID.Hex(), "05/02/2024", 1,
		[]ManualEntry{{StudentID: "s", Status: boolp(true)}})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planwise/planwise/internal/profile"
	"github.com/planwise/planwise/store"
)

func newTestDriver(t *testing.T) store.Driver {
	t.Helper()
	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "planwise_test.db"),
	}
	driver, err := NewDB(p)
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close() })
	require.NoError(t, driver.Migrate(context.Background()))
	return driver
}

func TestSessionRecordUpsertAndList(t *testing.T) {
	driver := newTestDriver(t)
	ctx := context.Background()

	planJSON := `{"advertiser":"Nike"}`
	record := &store.SessionRecord{
		ID:        "sess-1",
		State:     "BUDGETING",
		Context:   `{"sessionId":"sess-1"}`,
		MediaPlan: &planJSON,
		CreatedTs: 100,
		UpdatedTs: 100,
	}
	_, err := driver.UpsertSessionRecord(ctx, record)
	require.NoError(t, err)

	id := "sess-1"
	list, err := driver.ListSessionRecords(ctx, &store.FindSessionRecord{ID: &id})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "BUDGETING", list[0].State)
	require.NotNil(t, list[0].MediaPlan)
	assert.Equal(t, planJSON, *list[0].MediaPlan)

	// Upsert with the same id replaces, not duplicates.
	record.State = "REFINEMENT"
	record.UpdatedTs = 200
	_, err = driver.UpsertSessionRecord(ctx, record)
	require.NoError(t, err)

	list, err = driver.ListSessionRecords(ctx, &store.FindSessionRecord{ID: &id})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "REFINEMENT", list[0].State)
	assert.Equal(t, int64(200), list[0].UpdatedTs)
}

func TestSessionRecordListFilters(t *testing.T) {
	driver := newTestDriver(t)
	ctx := context.Background()

	for i, rec := range []*store.SessionRecord{
		{ID: "a", State: "INIT", Context: "{}", CreatedTs: 1, UpdatedTs: 10},
		{ID: "b", State: "REFINEMENT", Context: "{}", CreatedTs: 2, UpdatedTs: 20},
		{ID: "c", State: "REFINEMENT", Context: "{}", CreatedTs: 3, UpdatedTs: 30},
	} {
		_, err := driver.UpsertSessionRecord(ctx, rec)
		require.NoError(t, err, "record %d", i)
	}

	state := "REFINEMENT"
	list, err := driver.ListSessionRecords(ctx, &store.FindSessionRecord{State: &state})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID, "newest first")

	after := int64(25)
	list, err = driver.ListSessionRecords(ctx, &store.FindSessionRecord{UpdatedAfter: &after})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c", list[0].ID)

	limit := 1
	list, err = driver.ListSessionRecords(ctx, &store.FindSessionRecord{Limit: &limit})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSessionRecordDelete(t *testing.T) {
	driver := newTestDriver(t)
	ctx := context.Background()

	_, err := driver.UpsertSessionRecord(ctx, &store.SessionRecord{ID: "gone", State: "INIT", Context: "{}"})
	require.NoError(t, err)
	require.NoError(t, driver.DeleteSessionRecord(ctx, &store.DeleteSessionRecord{ID: "gone"}))

	id := "gone"
	list, err := driver.ListSessionRecords(ctx, &store.FindSessionRecord{ID: &id})
	require.NoError(t, err)
	assert.Empty(t, list)

	// Deleting an absent row is not an error.
	assert.NoError(t, driver.DeleteSessionRecord(ctx, &store.DeleteSessionRecord{ID: "never-existed"}))
}

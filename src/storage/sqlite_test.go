package storage

import (
	"path/filepath"
	"testing"

	"tda-observer/src/logger"
	"tda-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	cfg := &models.MConfig{
		Storage: models.MStorageConfig{
			StoreType: "sqlite",
			DBPath:    filepath.Join(t.TempDir(), "prices.db"),
		},
	}
	store, err := NewSQLiteStore(cfg, logger.NewLogger("ERROR", "test"))
	require.NoError(t, err)
	require.NoError(t, store.Initialize())
	t.Cleanup(func() { store.Close() })
	return store
}

// -----------------------------------------------------------------------------

func TestSQLiteStoreMergeAndLoad(t *testing.T) {
	store := newTestSQLiteStore(t)

	changed, err := store.MergePriceRecords([]models.MPriceRecord{
		{Symbol: "DJIA", Date: "2024-01-02", Close: 37715.04},
		{Symbol: "^IXIC", Date: "2024-01-02", Close: 14765.94},
		{Symbol: "DJIA", Date: "2024-01-03", Close: 37430.19},
	})
	require.NoError(t, err)
	assert.True(t, changed)

	all, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, all["DJIA"], 2)
	require.Len(t, all["^IXIC"], 1)
	assert.Equal(t, "2024-01-02", all["DJIA"][0].Date)
	assert.Equal(t, "2024-01-03", all["DJIA"][1].Date)
}

// -----------------------------------------------------------------------------

func TestSQLiteStoreChangeDetection(t *testing.T) {
	store := newTestSQLiteStore(t)

	records := []models.MPriceRecord{{Symbol: "DJIA", Date: "2024-01-02", Close: 100}}
	changed, err := store.MergePriceRecords(records)
	require.NoError(t, err)
	require.True(t, changed)

	// Identical close: the conditional upsert touches no rows
	changed, err = store.MergePriceRecords(records)
	require.NoError(t, err)
	assert.False(t, changed)

	// Revised close for the same key counts as a change
	changed, err = store.MergePriceRecords([]models.MPriceRecord{
		{Symbol: "DJIA", Date: "2024-01-02", Close: 100.5},
	})
	require.NoError(t, err)
	assert.True(t, changed)

	all, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, all["DJIA"], 1)
	assert.Equal(t, 100.5, all["DJIA"][0].Close)
}

// -----------------------------------------------------------------------------

func TestSQLiteStoreLastDate(t *testing.T) {
	store := newTestSQLiteStore(t)

	last, err := store.LastDate()
	require.NoError(t, err)
	assert.Empty(t, last, "empty table has no cursor")

	_, err = store.MergePriceRecords([]models.MPriceRecord{
		{Symbol: "DJIA", Date: "2024-01-05", Close: 1},
		{Symbol: "^GSPC", Date: "2024-01-08", Close: 2},
		{Symbol: "DJIA", Date: "2024-01-03", Close: 3},
	})
	require.NoError(t, err)

	last, err = store.LastDate()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-08", last)
}

// -----------------------------------------------------------------------------

func TestSQLiteStoreEmptyMerge(t *testing.T) {
	store := newTestSQLiteStore(t)

	changed, err := store.MergePriceRecords(nil)
	require.NoError(t, err)
	assert.False(t, changed)
}

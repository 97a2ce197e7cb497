package storage

import (
	"os"
	"path/filepath"
	"testing"

	"tda-observer/src/logger"
	"tda-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func csvTestConfig(t *testing.T) *models.MConfig {
	t.Helper()
	return &models.MConfig{
		Storage: models.MStorageConfig{
			StoreType: "csv",
			CSVPath:   filepath.Join(t.TempDir(), "latest.csv"),
		},
		DataSource: models.MDataSourceConfig{
			Symbols: []string{"DJIA", "^GSPC"},
		},
	}
}

func newTestCSVStore(t *testing.T, cfg *models.MConfig) *CSVStore {
	t.Helper()
	store, err := NewCSVStore(cfg, logger.NewLogger("ERROR", "test"))
	require.NoError(t, err)
	require.NoError(t, store.Initialize())
	return store
}

// -----------------------------------------------------------------------------

func TestCSVStoreMergeAndLoad(t *testing.T) {
	cfg := csvTestConfig(t)
	store := newTestCSVStore(t, cfg)

	changed, err := store.MergePriceRecords([]models.MPriceRecord{
		{Symbol: "DJIA", Date: "2024-01-02", Close: 37715.04},
		{Symbol: "DJIA", Date: "2024-01-03", Close: 37430.19},
		{Symbol: "^GSPC", Date: "2024-01-02", Close: 4742.83},
	})
	require.NoError(t, err)
	assert.True(t, changed)

	all, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, all["DJIA"], 2)
	require.Len(t, all["^GSPC"], 1)
	assert.Equal(t, "2024-01-02", all["DJIA"][0].Date)
	assert.Equal(t, 37430.19, all["DJIA"][1].Close)

	last, err := store.LastDate()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-03", last)
}

// -----------------------------------------------------------------------------

func TestCSVStoreRoundTripIsExact(t *testing.T) {
	cfg := csvTestConfig(t)
	store := newTestCSVStore(t, cfg)

	// Closes with awkward float representations must survive a full
	// persist/reload cycle bit-for-bit.
	records := []models.MPriceRecord{
		{Symbol: "DJIA", Date: "2024-01-02", Close: 37715.0398871},
		{Symbol: "DJIA", Date: "2024-01-03", Close: 0.1},
		{Symbol: "^GSPC", Date: "2024-01-02", Close: 4742.829999999999},
	}
	_, err := store.MergePriceRecords(records)
	require.NoError(t, err)

	firstBytes, err := os.ReadFile(cfg.Storage.CSVPath)
	require.NoError(t, err)

	reopened := newTestCSVStore(t, cfg)
	all, err := reopened.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, 37715.0398871, all["DJIA"][0].Close)
	assert.Equal(t, 0.1, all["DJIA"][1].Close)
	assert.Equal(t, 4742.829999999999, all["^GSPC"][0].Close)

	// Rewriting the same content produces an identical file
	changed, err := reopened.MergePriceRecords(records)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = reopened.MergePriceRecords([]models.MPriceRecord{
		{Symbol: "^GSPC", Date: "2024-01-03", Close: 4704.81},
	})
	require.NoError(t, err)
	assert.True(t, changed)

	secondBytes, err := os.ReadFile(cfg.Storage.CSVPath)
	require.NoError(t, err)
	assert.NotEqual(t, firstBytes, secondBytes)
}

// -----------------------------------------------------------------------------

func TestCSVStoreNoChangeSkipsRewrite(t *testing.T) {
	cfg := csvTestConfig(t)
	store := newTestCSVStore(t, cfg)

	records := []models.MPriceRecord{{Symbol: "DJIA", Date: "2024-01-02", Close: 100}}
	changed, err := store.MergePriceRecords(records)
	require.NoError(t, err)
	require.True(t, changed)

	info, err := os.Stat(cfg.Storage.CSVPath)
	require.NoError(t, err)

	changed, err = store.MergePriceRecords(records)
	require.NoError(t, err)
	assert.False(t, changed)

	after, err := os.Stat(cfg.Storage.CSVPath)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), after.ModTime(), "unchanged merges must not rewrite the file")
}

// -----------------------------------------------------------------------------

func TestCSVStoreRejectsUnknownSymbol(t *testing.T) {
	store := newTestCSVStore(t, csvTestConfig(t))

	_, err := store.MergePriceRecords([]models.MPriceRecord{
		{Symbol: "AAPL", Date: "2024-01-02", Close: 185.64},
	})
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestCSVStoreMissingCells(t *testing.T) {
	cfg := csvTestConfig(t)
	store := newTestCSVStore(t, cfg)

	// ^GSPC has no close on 2024-01-03: the cell stays empty, and the
	// symbol's series simply skips the date.
	_, err := store.MergePriceRecords([]models.MPriceRecord{
		{Symbol: "DJIA", Date: "2024-01-02", Close: 100},
		{Symbol: "DJIA", Date: "2024-01-03", Close: 101},
		{Symbol: "^GSPC", Date: "2024-01-02", Close: 200},
	})
	require.NoError(t, err)

	reopened := newTestCSVStore(t, cfg)
	all, err := reopened.LoadAll()
	require.NoError(t, err)
	require.Len(t, all["DJIA"], 2)
	require.Len(t, all["^GSPC"], 1)
	assert.Equal(t, "2024-01-02", all["^GSPC"][0].Date)
}

// -----------------------------------------------------------------------------

func TestCSVStoreEmptyTableCursor(t *testing.T) {
	store := newTestCSVStore(t, csvTestConfig(t))

	last, err := store.LastDate()
	require.NoError(t, err)
	assert.Empty(t, last)

	all, err := store.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, all["DJIA"])
}

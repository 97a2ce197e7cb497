package datasource

import (
	"time"

	"tda-observer/src/helpers"
	"tda-observer/src/interfaces"
	"tda-observer/src/logger"
	"tda-observer/src/models"
)

// -----------------------------------------------------------------------------
// Refresher coordinates one fetch-and-merge cycle between the external
// provider and the persisted price table. Both the long-running dashboard
// service and the one-shot scheduled job run the same cycle.
// -----------------------------------------------------------------------------

type Refresher struct {
	Config *models.MConfig
	Source interfaces.IDataSource
	Store  interfaces.IPriceStore
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewRefresher(cfg *models.MConfig, source interfaces.IDataSource, store interfaces.IPriceStore, log *logger.Logger) *Refresher {
	return &Refresher{
		Config: cfg,
		Source: source,
		Store:  store,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// Refresh fetches prices from the store cursor (or the configured start
// date on first run) through today and merges them into the table.
// Returns true when the persisted state changed. An empty fetch is an
// error: the scheduled run aborts without touching the table and the
// next run retries from the same cursor.
func (r *Refresher) Refresh(now time.Time) (bool, error) {
	from, err := r.fetchStart()
	if err != nil {
		return false, err
	}
	to := now.UTC().Truncate(24 * time.Hour)

	if from.After(to) {
		r.Logger.Info("Cursor %s already at today, nothing to fetch", from.Format(models.DateLayout))
		return false, nil
	}

	r.Logger.Info("Fetching %d symbols from %s to %s",
		len(r.Config.DataSource.Symbols), from.Format(models.DateLayout), to.Format(models.DateLayout))

	data, err := r.Source.FetchAll(from, to)
	if err != nil {
		return false, helpers.NewDataSourceError("provider fetch failed", err)
	}

	var all []models.MPriceRecord
	for _, records := range data {
		all = append(all, records...)
	}
	if len(all) == 0 {
		return false, helpers.NewDataSourceError("provider returned no rows", nil)
	}

	changed, err := r.Store.MergePriceRecords(all)
	if err != nil {
		return false, helpers.NewStorageError("failed to merge fetched prices", err)
	}

	if changed {
		r.Logger.Info("Merged %d records, table changed", len(all))
	} else {
		r.Logger.Info("Merged %d records, no change", len(all))
	}
	return changed, nil
}

// -----------------------------------------------------------------------------

// fetchStart resolves the incremental fetch window: last stored date + 1,
// or the configured beginning of history when the store is empty.
func (r *Refresher) fetchStart() (time.Time, error) {
	cursor, err := r.Store.LastDate()
	if err != nil {
		return time.Time{}, helpers.NewStorageError("failed to read store cursor", err)
	}

	if cursor == "" {
		start := r.Config.DataSource.StartDate
		if start == "" {
			start = "1988-01-01"
		}
		return time.Parse(models.DateLayout, start)
	}

	last, err := time.Parse(models.DateLayout, cursor)
	if err != nil {
		return time.Time{}, helpers.NewStorageError("malformed store cursor '"+cursor+"'", err)
	}
	return last.AddDate(0, 0, 1), nil
}

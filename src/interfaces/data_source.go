package interfaces

import (
	"time"

	"tda-observer/src/models"
)

// -----------------------------------------------------------------------------
// IDataSource interface for fetching daily index prices from external providers.
// -----------------------------------------------------------------------------

type IDataSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchHistory retrieves daily closing prices for one symbol over
	// [from, to]. The provider may return fewer rows than calendar days
	// (weekends, holidays, missing trading days) and callers must not
	// assume a fixed row count.
	FetchHistory(symbol string, from, to time.Time) ([]models.MPriceRecord, error)

	// -----------------------------------------------------------------------------

	// FetchAll retrieves daily closing prices for every configured symbol.
	// It fails only when no symbol could be fetched at all.
	FetchAll(from, to time.Time) (map[string][]models.MPriceRecord, error)
}

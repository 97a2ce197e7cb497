package interfaces

import "tda-observer/src/models"

// -----------------------------------------------------------------------------
// IPriceStore defines the contract for the persisted price table.
// -----------------------------------------------------------------------------

type IPriceStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the underlying table or file.
	Initialize() error

	// -----------------------------------------------------------------------------

	// MergePriceRecords merges a batch of records into the table,
	// de-duplicating by (date, symbol). The table is append-only: an
	// existing (date, symbol) cell is only overwritten when the provider
	// revised it. Returns true when the persisted state changed.
	MergePriceRecords(records []models.MPriceRecord) (bool, error)

	// -----------------------------------------------------------------------------

	// LoadAll returns every stored record per symbol, ordered by date.
	LoadAll() (map[string][]models.MPriceRecord, error)

	// -----------------------------------------------------------------------------

	// LastDate returns the explicit cursor: the latest date for which any
	// record is stored, or "" when the store is empty.
	LastDate() (string, error)

	// -----------------------------------------------------------------------------

	// Close the store
	Close() error
}

package models

// DateLayout is the canonical layout for all dates stored and served
// by the observer. Lexicographic order equals chronological order.
const DateLayout = "2006-01-02"

// -----------------------------------------------------------------------------

// MPriceRecord is one daily closing price for one index symbol.
type MPriceRecord struct {
	Symbol string  `json:"symbol"`
	Date   string  `json:"date"` // YYYY-MM-DD
	Close  float64 `json:"close"`
}

// -----------------------------------------------------------------------------

// MReturnPoint is one daily log return, anchored at the later of the two
// trading dates it was derived from.
type MReturnPoint struct {
	Date      string  `json:"date"`
	LogReturn float64 `json:"log_return"`
}

// -----------------------------------------------------------------------------

// MSeriesPoint is a generic dated value, used for every series the
// dashboard plots (prices, landscape levels, norms).
type MSeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

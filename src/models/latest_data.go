package models

// -----------------------------------------------------------------------------
// Server State Structure
// -----------------------------------------------------------------------------

type MLatestData struct {
	Type       string                      `json:"type"` // "INITIAL" or "UPDATE"
	Prices     map[string][]MSeriesPoint   `json:"prices"`
	Returns    map[string][]MReturnPoint   `json:"returns"`
	Landscapes map[string]MLandscapeSeries `json:"landscapes"`
	Norms      map[string][]MSeriesPoint   `json:"norms"` // L1 norm series per symbol
	Timestamp  int64                       `json:"timestamp"`
	Metrics    MProcessingMetrics          `json:"processing_metrics"`
}

// -----------------------------------------------------------------------------
// SubscribeCommand for client messages
// -----------------------------------------------------------------------------

type MSubscribeCommand struct {
	Command string   `json:"command"`
	Symbols []string `json:"symbols"` // empty means every tracked index
	Level   *int     `json:"level"`   // nil means all landscape levels
}

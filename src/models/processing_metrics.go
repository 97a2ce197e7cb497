package models

// MProcessingMetrics represents the performance metrics for the landscape pipeline.
type MProcessingMetrics struct {
	PipelineTimeSeconds float64 `json:"pipeline_time_seconds"`
	SymbolsProcessed    int     `json:"symbols_processed"`
	WindowsProcessed    int     `json:"windows_processed"`
}

package models

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	LogLevel   string            `yaml:"log_level"`
	Storage    MStorageConfig    `yaml:"storage"`
	Network    MNetworkConfig    `yaml:"network"`
	DataSource MDataSourceConfig `yaml:"data_source"`
	Pipeline   MPipelineConfig   `yaml:"pipeline"`
}

type MStorageConfig struct {
	StoreType          string `yaml:"store_type"` // csv | sqlite | postgres
	CSVPath            string `yaml:"csv_path"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	RequestTimeout     int    `yaml:"timeout"`
	MaxRetries         int    `yaml:"retries"`
	ConcurrentRequests int    `yaml:"concurrent_requests"`
	UserAgent          string `yaml:"user_agent"` // Optional, rotates when empty
}

type MDataSourceConfig struct {
	Symbols        []string `yaml:"symbols"`
	StartDate      string   `yaml:"start_date"` // YYYY-MM-DD, first run fetches from here
	RefreshHourUTC int      `yaml:"refresh_hour_utc"`
}

// MPipelineConfig fixes every parameter of the sliding-window landscape
// computation. All of them are configuration, never derived from data.
type MPipelineConfig struct {
	Window         int    `yaml:"window"`          // w, trading days per window
	EmbeddingDim   int    `yaml:"embedding_dim"`   // d, time-delay embedding dimension
	EmbeddingDelay int    `yaml:"embedding_delay"` // tau, lag between coordinates
	Levels         int    `yaml:"levels"`          // k, landscape levels kept
	Resolution     int    `yaml:"resolution"`      // m, samples per level
	DomainMode     string `yaml:"domain_mode"`     // global | per_window
	MaxHomologyDim int    `yaml:"max_homology_dim"`
}

package config

import (
	"fmt"
	"os"
	"time"

	"tda-observer/src/helpers"
	"tda-observer/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, helpers.NewConfigurationError("config validation failed", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Storage configuration
	switch c.Storage.StoreType {
	case "csv":
		if c.Storage.CSVPath == "" {
			return fmt.Errorf("csv path cannot be empty for csv store")
		}
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	case "":
		return fmt.Errorf("store type cannot be empty")
	default:
		return fmt.Errorf("unknown store type: %s", c.Storage.StoreType)
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Network.ConcurrentRequests <= 0 {
		return fmt.Errorf("concurrent requests must be greater than 0")
	}

	// Validate DataSource configuration
	if len(c.DataSource.Symbols) == 0 {
		return fmt.Errorf("at least one index symbol must be configured")
	}
	if c.DataSource.StartDate != "" {
		if _, err := time.Parse(models.DateLayout, c.DataSource.StartDate); err != nil {
			return fmt.Errorf("invalid start_date '%s': %w", c.DataSource.StartDate, err)
		}
	}
	if c.DataSource.RefreshHourUTC < 0 || c.DataSource.RefreshHourUTC > 23 {
		return fmt.Errorf("refresh_hour_utc must be in [0, 23]")
	}

	// Validate Pipeline configuration
	p := c.Pipeline
	if p.Window < 2 {
		return fmt.Errorf("pipeline window must be at least 2 days")
	}
	if p.EmbeddingDim < 1 {
		return fmt.Errorf("embedding dimension must be at least 1")
	}
	if p.EmbeddingDelay < 1 {
		return fmt.Errorf("embedding delay must be at least 1")
	}
	if p.Window < (p.EmbeddingDim-1)*p.EmbeddingDelay+1 {
		return fmt.Errorf("window %d too short for embedding (dim %d, delay %d)",
			p.Window, p.EmbeddingDim, p.EmbeddingDelay)
	}
	if p.Levels < 1 {
		return fmt.Errorf("landscape levels must be at least 1")
	}
	if p.Resolution < 2 {
		return fmt.Errorf("landscape resolution must be at least 2")
	}
	if p.DomainMode != "global" && p.DomainMode != "per_window" {
		return fmt.Errorf("domain_mode must be 'global' or 'per_window', got '%s'", p.DomainMode)
	}
	if p.MaxHomologyDim < 0 || p.MaxHomologyDim > 1 {
		return fmt.Errorf("max_homology_dim must be 0 or 1")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tda-observer/src/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

const validYAML = `
name: "tda-observer"
host: "127.0.0.1"
port: 8421
log_level: "INFO"
storage:
  store_type: "csv"
  csv_path: "latest.csv"
network:
  timeout: 30
  retries: 3
  concurrent_requests: 2
data_source:
  symbols: ["DJIA", "^IXIC", "^RUT", "^GSPC"]
  start_date: "1988-01-01"
  refresh_hour_utc: 22
pipeline:
  window: 80
  embedding_dim: 4
  embedding_delay: 1
  levels: 5
  resolution: 100
  domain_mode: "global"
  max_homology_dim: 1
`

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// -----------------------------------------------------------------------------

func TestNewConfigValid(t *testing.T) {
	cfg, err := NewConfig(writeConfigFile(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "tda-observer", cfg.Name)
	assert.Equal(t, 8421, cfg.Port)
	assert.Equal(t, "csv", cfg.Storage.StoreType)
	assert.Equal(t, []string{"DJIA", "^IXIC", "^RUT", "^GSPC"}, cfg.DataSource.Symbols)
	assert.Equal(t, 80, cfg.Pipeline.Window)
	assert.Equal(t, "global", cfg.Pipeline.DomainMode)
}

// -----------------------------------------------------------------------------

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestNewConfigInvalidIsConfigurationError(t *testing.T) {
	broken := strings.Replace(validYAML, `store_type: "csv"`, `store_type: "redis"`, 1)
	_, err := NewConfig(writeConfigFile(t, broken))
	require.Error(t, err)

	var cfgErr *helpers.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

// -----------------------------------------------------------------------------

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"empty name", func(c *Config) { c.Name = "" }},
		{"reserved port", func(c *Config) { c.Port = 80 }},
		{"unknown store", func(c *Config) { c.Storage.StoreType = "redis" }},
		{"csv without path", func(c *Config) { c.Storage.CSVPath = "" }},
		{"no symbols", func(c *Config) { c.DataSource.Symbols = nil }},
		{"bad start date", func(c *Config) { c.DataSource.StartDate = "01/01/1988" }},
		{"refresh hour out of range", func(c *Config) { c.DataSource.RefreshHourUTC = 24 }},
		{"window too small", func(c *Config) { c.Pipeline.Window = 1 }},
		{"window shorter than embedding span", func(c *Config) {
			c.Pipeline.Window = 3
			c.Pipeline.EmbeddingDim = 5
		}},
		{"single-sample resolution", func(c *Config) { c.Pipeline.Resolution = 1 }},
		{"bad domain mode", func(c *Config) { c.Pipeline.DomainMode = "adaptive" }},
		{"homology dim too high", func(c *Config) { c.Pipeline.MaxHomologyDim = 2 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(writeConfigFile(t, validYAML))
			require.NoError(t, err)
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// -----------------------------------------------------------------------------

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := NewConfig(writeConfigFile(t, validYAML))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(path))

	reloaded, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.MConfig, reloaded.MConfig)
}

// -----------------------------------------------------------------------------

func TestSqliteRequiresDBPath(t *testing.T) {
	cfg, err := NewConfig(writeConfigFile(t, validYAML))
	require.NoError(t, err)

	cfg.Storage.StoreType = "sqlite"
	cfg.Storage.DBPath = ""
	assert.Error(t, cfg.Validate())

	cfg.Storage.DBPath = "prices.db"
	assert.NoError(t, cfg.Validate())
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SMARTSALES_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.Equal(t, 0.5, cfg.Warehouse.RejectionThreshold)
	assert.Equal(t, 500, cfg.Warehouse.BatchSize)
	assert.Equal(t, 0.0, cfg.Prep.SaleAmountLower)
	assert.Equal(t, 1000000.0, cfg.Prep.SaleAmountUpper)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SMARTSALES_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("SMARTSALES_WAREHOUSE_REJECTION_THRESHOLD", "0.1")
	t.Setenv("SMARTSALES_PATHS_DATA_DIR", "/tmp/sales-data")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.1, cfg.Warehouse.RejectionThreshold)
	assert.Equal(t, "/tmp/sales-data", cfg.Paths.DataDir)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smartsales.yaml")
	content := `
logging:
  level: debug
warehouse:
  rejection_threshold: 0.25
  batch_size: 50
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("SMARTSALES_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 0.25, cfg.Warehouse.RejectionThreshold)
	assert.Equal(t, 50, cfg.Warehouse.BatchSize)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smartsales.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0644))
	t.Setenv("SMARTSALES_CONFIG_FILE", path)
	t.Setenv("SMARTSALES_LOGGING_LEVEL", "error")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "threshold above one", key: "SMARTSALES_WAREHOUSE_REJECTION_THRESHOLD", value: "1.5"},
		{name: "negative threshold", key: "SMARTSALES_WAREHOUSE_REJECTION_THRESHOLD", value: "-0.1"},
		{name: "zero batch size", key: "SMARTSALES_WAREHOUSE_BATCH_SIZE", value: "0"},
		{name: "bad log output", key: "SMARTSALES_LOGGING_OUTPUT", value: "syslog"},
		{name: "upper below lower", key: "SMARTSALES_PREP_SALE_AMOUNT_UPPER", value: "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SMARTSALES_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestPathsLayout(t *testing.T) {
	p := NewPaths("data", "logs")

	assert.Equal(t, filepath.Join("data", "raw"), p.RawDir)
	assert.Equal(t, filepath.Join("data", "cleaned"), p.CleanedDir)
	assert.Equal(t, filepath.Join("data", "warehouse", "smart_sales_dw.db"), p.WarehouseDB)
	assert.Equal(t, filepath.Join("data", "cubes", "sales_growth_by_region_cube.csv"), p.RegionCubeCSV)
	assert.Equal(t, filepath.Join("logs", "etl.log"), p.GetLogPath("etl.log"))
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	p := NewPaths(filepath.Join(root, "data"), filepath.Join(root, "logs"))

	require.NoError(t, p.EnsureDirectories())
	for _, dir := range []string{p.RawDir, p.CleanedDir, p.WarehouseDir, p.CubesDir, p.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

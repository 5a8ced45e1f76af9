package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete pipeline configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Prep      PrepConfig      `yaml:"prep" envconfig:"PREP"`
	Warehouse WarehouseConfig `yaml:"warehouse" envconfig:"WAREHOUSE"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains the data directory layout
type PathsConfig struct {
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR"`
	LogsDir string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// PrepConfig contains parameters for the per-source cleaning pipelines
type PrepConfig struct {
	// Inclusive bounds for the sale_amount outlier filter. Bounds are fixed
	// by configuration, not inferred from the data, so runs are reproducible.
	SaleAmountLower float64 `yaml:"sale_amount_lower" envconfig:"SALE_AMOUNT_LOWER"`
	SaleAmountUpper float64 `yaml:"sale_amount_upper" envconfig:"SALE_AMOUNT_UPPER" validate:"gtefield=SaleAmountLower"`
}

// WarehouseConfig contains parameters for the warehouse loader
type WarehouseConfig struct {
	// RejectionThreshold is the fraction of fact rows that may be rejected
	// for orphan references before the run is treated as a structural
	// mismatch and aborted.
	RejectionThreshold float64 `yaml:"rejection_threshold" envconfig:"REJECTION_THRESHOLD" validate:"gte=0,lte=1"`
	BatchSize          int     `yaml:"batch_size" envconfig:"BATCH_SIZE" validate:"gt=0"`
}

// defaultConfig returns the built-in configuration.
func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "both",
			FilePath: "logs/etl.log",
		},
		Paths: PathsConfig{
			DataDir: "data",
			LogsDir: "logs",
		},
		Prep: PrepConfig{
			SaleAmountLower: 0,
			SaleAmountUpper: 1000000,
		},
		Warehouse: WarehouseConfig{
			RejectionThreshold: 0.5,
			BatchSize:          500,
		},
	}
}

// Load builds the configuration: built-in defaults, overridden by the
// optional YAML config file, overridden by environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		if err := loadFromFile(configFile, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process("SMARTSALES", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file
// keep their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate checks configuration constraints declared on the config structs
func (c *Config) validate() error {
	return validator.New().Struct(c)
}

// getConfigFilePath returns the config file location, overridable via env
func getConfigFilePath() string {
	if path := os.Getenv("SMARTSALES_CONFIG_FILE"); path != "" {
		return path
	}
	return "smartsales.yaml"
}

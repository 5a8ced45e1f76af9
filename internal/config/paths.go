package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the pipeline paths.
// This is the single source of truth for file locations across the stages.
type Paths struct {
	DataDir      string
	RawDir       string
	CleanedDir   string
	WarehouseDir string
	CubesDir     string
	LogsDir      string

	// Well-known files
	WarehouseDB string

	// Raw extracts
	RawCustomersCSV string
	RawProductsCSV  string
	RawSalesCSV     string

	// Cleaned extracts
	CleanedCustomersCSV string
	CleanedProductsCSV  string
	CleanedSalesCSV     string

	// Cube outputs
	RegionCubeCSV     string
	RegionSummaryCSV  string
	CategoryCubeCSV   string
	RunResultJSONPath string
}

// NewPaths builds the directory layout under the given data and log roots.
// Directory structure:
//
//	data/
//	  ├── raw/        (raw extracts: customers, products, sales)
//	  ├── cleaned/    (scrubbed extracts)
//	  ├── warehouse/  (SQLite star-schema database)
//	  └── cubes/      (OLAP cube CSV outputs)
//	logs/
func NewPaths(dataDir, logsDir string) *Paths {
	rawDir := filepath.Join(dataDir, "raw")
	cleanedDir := filepath.Join(dataDir, "cleaned")
	warehouseDir := filepath.Join(dataDir, "warehouse")
	cubesDir := filepath.Join(dataDir, "cubes")

	return &Paths{
		DataDir:      dataDir,
		RawDir:       rawDir,
		CleanedDir:   cleanedDir,
		WarehouseDir: warehouseDir,
		CubesDir:     cubesDir,
		LogsDir:      logsDir,

		WarehouseDB: filepath.Join(warehouseDir, "smart_sales_dw.db"),

		RawCustomersCSV: filepath.Join(rawDir, "customers_data.csv"),
		RawProductsCSV:  filepath.Join(rawDir, "products_data.csv"),
		RawSalesCSV:     filepath.Join(rawDir, "sales_data.csv"),

		CleanedCustomersCSV: filepath.Join(cleanedDir, "customers_data_prepared.csv"),
		CleanedProductsCSV:  filepath.Join(cleanedDir, "products_data_prepared.csv"),
		CleanedSalesCSV:     filepath.Join(cleanedDir, "sales_data_prepared.csv"),

		RegionCubeCSV:     filepath.Join(cubesDir, "sales_growth_by_region_cube.csv"),
		RegionSummaryCSV:  filepath.Join(cubesDir, "sales_growth_by_region_summary.csv"),
		CategoryCubeCSV:   filepath.Join(cubesDir, "sales_by_category_cube.csv"),
		RunResultJSONPath: filepath.Join(warehouseDir, "run_result.json"),
	}
}

// EnsureDirectories creates every directory in the layout that does not exist yet.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.DataDir, p.RawDir, p.CleanedDir, p.WarehouseDir, p.CubesDir, p.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetLogPath returns the path of a log file inside the logs directory.
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetCubePath returns the path of a cube output file inside the cubes directory.
func (p *Paths) GetCubePath(filename string) string {
	return filepath.Join(p.CubesDir, filename)
}

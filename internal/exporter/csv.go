package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"smartsales/internal/dataset"
)

// CSVWriter writes datasets as tabular CSV files: a header row naming the
// columns followed by one row per record, with values rendered in their
// canonical textual form (nulls as empty cells).
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteDataset writes a dataset to a CSV file at the given path, creating
// parent directories as needed and truncating any existing file.
func (w *CSVWriter) WriteDataset(path string, ds *dataset.Dataset, options WriteOptions) error {
	w.logger.Info("writing CSV file",
		slog.String("path", path),
		slog.Int("rows", ds.RowCount()),
		slog.Int("columns", ds.ColumnCount()))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(ds.Schema().Names()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, ds.ColumnCount())
	for i := 0; i < ds.RowCount(); i++ {
		row := ds.Row(i)
		for c, v := range row {
			record[c] = v.Format()
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

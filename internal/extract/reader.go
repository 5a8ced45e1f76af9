package extract

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"smartsales/internal/dataset"
	"smartsales/internal/errors"
)

// Reader loads tabular extract files into typed datasets. The first row of an
// extract names its columns; the reader matches them against the declared
// schema case-insensitively after trimming, so header casing differences in
// source systems never leak downstream.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a reader that logs through the given logger.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// Result reports what happened while reading one extract.
type Result struct {
	Rows     int // records loaded
	Coerced  int // individual cells that failed type conversion and became null
	Skipped  int // completely empty rows skipped
}

// Read loads the extract at path into a dataset with the given schema,
// dispatching on the file extension (.csv or .xlsx). A missing file or a
// header that lacks a declared column is a structural error and aborts the
// read; an individual cell that fails conversion becomes null and is counted.
func (r *Reader) Read(path string, schema dataset.Schema) (*dataset.Dataset, *Result, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readXLSX(path)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, nil, errors.NewStorageError(
			fmt.Sprintf("unsupported extract format %q", filepath.Ext(path)), nil)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, errors.NewStorageError(fmt.Sprintf("extract %s has no header row", path), nil)
	}

	columnIndex, err := mapHeader(rows[0], schema)
	if err != nil {
		return nil, nil, err
	}

	ds := dataset.New(schema)
	result := &Result{}

	for _, raw := range rows[1:] {
		if isEmptyRow(raw) {
			result.Skipped++
			continue
		}
		record := make([]dataset.Value, len(schema))
		for c, col := range schema {
			idx := columnIndex[c]
			cell := ""
			if idx < len(raw) {
				cell = raw[idx]
			}
			v, err := dataset.Coerce(cell, col.Kind)
			if err != nil {
				result.Coerced++
				v = dataset.Null()
			}
			record[c] = v
		}
		if err := ds.Append(record...); err != nil {
			return nil, nil, err
		}
		result.Rows++
	}

	r.logger.Info("extract loaded",
		slog.String("path", path),
		slog.Int("rows", result.Rows),
		slog.Int("coerced_to_null", result.Coerced),
		slog.Int("skipped_empty", result.Skipped))

	return ds, result, nil
}

// mapHeader resolves each schema column to its position in the header row.
func mapHeader(header []string, schema dataset.Schema) ([]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.ToLower(strings.TrimSpace(name))] = i
	}

	columnIndex := make([]int, len(schema))
	for c, col := range schema {
		idx, ok := positions[strings.ToLower(col.Name)]
		if !ok {
			return nil, errors.NewColumnNotFoundError(col.Name)
		}
		columnIndex[c] = idx
	}
	return columnIndex, nil
}

// readCSV reads all rows of a CSV file, tolerating ragged records.
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to open extract %s", path), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to read extract %s", path), err)
	}
	return rows, nil
}

// readXLSX reads all rows of the first sheet of an Excel workbook.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to open extract %s", path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewStorageError(fmt.Sprintf("extract %s has no sheets", path), nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to read sheet %q of %s", sheets[0], path), err)
	}
	return rows, nil
}

// isEmptyRow reports whether every cell of the row is blank.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

package scrub

import (
	"fmt"
	"log/slog"
	"strings"

	"smartsales/internal/dataset"
	"smartsales/internal/errors"
)

// CaseMode selects the case transform applied by NormalizeStrings.
type CaseMode int

const (
	CaseNone CaseMode = iota
	CaseLower
	CaseUpper
)

// Scrubber provides the library of cleaning operations applied to tabular
// datasets before warehouse loading. Every operation mutates the dataset in
// place, is deterministic for a given input and parameters, and preserves
// insertion order except where documented. Malformed individual values never
// abort an operation; they become null and are counted in the returned report.
// Only structural mismatches (an unknown column name) surface as errors.
type Scrubber struct {
	logger *slog.Logger
}

// NewScrubber creates a scrubber that logs through the given logger.
func NewScrubber(logger *slog.Logger) *Scrubber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scrubber{logger: logger}
}

// Deduplicate removes records that duplicate an earlier record across the
// given key columns, or across all columns when no keys are given. The first
// occurrence in input order is kept. Returns the number of records removed.
func (s *Scrubber) Deduplicate(ds *dataset.Dataset, keys ...string) (int, error) {
	indices := make([]int, 0, len(keys))
	if len(keys) == 0 {
		for i := range ds.Schema() {
			indices = append(indices, i)
		}
	} else {
		for _, key := range keys {
			idx, err := ds.Index(key)
			if err != nil {
				return 0, err
			}
			indices = append(indices, idx)
		}
	}

	seen := make(map[string]struct{}, ds.RowCount())
	removed := ds.Filter(func(i int, row []dataset.Value) bool {
		key := ds.RowKey(i, indices)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})

	s.logger.Debug("deduplicate",
		slog.Any("keys", keys),
		slog.Int("removed", removed),
		slog.Int("remaining", ds.RowCount()))
	return removed, nil
}

// DropMissing removes records where any of the given columns is null.
// Returns the number of records removed.
func (s *Scrubber) DropMissing(ds *dataset.Dataset, columns ...string) (int, error) {
	indices := make([]int, len(columns))
	for i, col := range columns {
		idx, err := ds.Index(col)
		if err != nil {
			return 0, err
		}
		indices[i] = idx
	}

	removed := ds.Filter(func(_ int, row []dataset.Value) bool {
		for _, idx := range indices {
			if row[idx].IsNull() {
				return false
			}
		}
		return true
	})

	s.logger.Debug("drop missing",
		slog.Any("columns", columns),
		slog.Int("removed", removed))
	return removed, nil
}

// FillMissing replaces nulls in the given column with the fill value. The fill
// value must match the column's declared kind so the operation can never
// silently change a column type. Returns the number of records filled.
func (s *Scrubber) FillMissing(ds *dataset.Dataset, column string, fill dataset.Value) (int, error) {
	idx, err := ds.Index(column)
	if err != nil {
		return 0, err
	}
	if fill.IsNull() {
		return 0, errors.NewAppValidationError(fmt.Sprintf("fill value for column %q must not be null", column))
	}
	if fill.Kind() != ds.Schema()[idx].Kind {
		return 0, errors.NewAppValidationError(
			fmt.Sprintf("fill value kind %s does not match column %q kind %s",
				fill.Kind(), column, ds.Schema()[idx].Kind))
	}

	filled := 0
	for i := 0; i < ds.RowCount(); i++ {
		if ds.Row(i)[idx].IsNull() {
			ds.Row(i)[idx] = fill
			filled++
		}
	}

	s.logger.Debug("fill missing",
		slog.String("column", column),
		slog.Int("filled", filled))
	return filled, nil
}

// FilterOutliers removes records whose value in the given numeric column falls
// outside the inclusive [lower, upper] range. Bounds are caller-supplied, never
// inferred, so a run is reproducible. Null values are retained; use DropMissing
// to remove them. Returns the number of records removed.
func (s *Scrubber) FilterOutliers(ds *dataset.Dataset, column string, lower, upper float64) (int, error) {
	idx, err := ds.Index(column)
	if err != nil {
		return 0, err
	}
	kind := ds.Schema()[idx].Kind
	if kind != dataset.KindInt && kind != dataset.KindFloat {
		return 0, errors.NewAppValidationError(
			fmt.Sprintf("outlier filter requires a numeric column, %q is %s", column, kind))
	}

	removed := ds.Filter(func(_ int, row []dataset.Value) bool {
		v := row[idx]
		if v.IsNull() {
			return true
		}
		f := v.Float64()
		return f >= lower && f <= upper
	})

	s.logger.Debug("filter outliers",
		slog.String("column", column),
		slog.Float64("lower", lower),
		slog.Float64("upper", upper),
		slog.Int("removed", removed))
	return removed, nil
}

// NormalizeStrings trims whitespace and applies the case transform to string
// values in the given columns. Nulls and non-string columns are left untouched,
// so the operation is safe to apply broadly. Returns the number of values changed.
func (s *Scrubber) NormalizeStrings(ds *dataset.Dataset, mode CaseMode, columns ...string) (int, error) {
	indices := make([]int, 0, len(columns))
	for _, col := range columns {
		idx, err := ds.Index(col)
		if err != nil {
			return 0, err
		}
		if ds.Schema()[idx].Kind == dataset.KindString {
			indices = append(indices, idx)
		}
	}

	changed := 0
	for i := 0; i < ds.RowCount(); i++ {
		row := ds.Row(i)
		for _, idx := range indices {
			v := row[idx]
			if v.IsNull() {
				continue
			}
			normalized := strings.TrimSpace(v.Str())
			switch mode {
			case CaseLower:
				normalized = strings.ToLower(normalized)
			case CaseUpper:
				normalized = strings.ToUpper(normalized)
			}
			if normalized != v.Str() {
				row[idx] = dataset.String(normalized)
				changed++
			}
		}
	}

	s.logger.Debug("normalize strings",
		slog.Any("columns", columns),
		slog.Int("changed", changed))
	return changed, nil
}

// RenameColumns applies a bijective old-name to new-name mapping. A new name
// must not collide with an existing column outside the mapping, and two old
// names must not map to the same new name.
func (s *Scrubber) RenameColumns(ds *dataset.Dataset, mapping map[string]string) error {
	targets := make(map[string]string, len(mapping))
	for old, new := range mapping {
		if prior, dup := targets[new]; dup {
			return errors.NewAppValidationError(
				fmt.Sprintf("columns %q and %q both rename to %q", prior, old, new))
		}
		targets[new] = old
	}
	for _, col := range ds.Schema() {
		if _, renamed := mapping[col.Name]; renamed {
			continue
		}
		if _, collides := targets[col.Name]; collides {
			return errors.NewAppValidationError(
				fmt.Sprintf("rename collides with existing column %q", col.Name))
		}
	}
	// Validate every source column before mutating anything.
	for old := range mapping {
		if _, err := ds.Index(old); err != nil {
			return err
		}
	}
	for old, new := range mapping {
		if err := ds.RenameColumn(old, new); err != nil {
			return err
		}
	}

	s.logger.Debug("rename columns", slog.Int("renamed", len(mapping)))
	return nil
}

// ReorderColumns rearranges the dataset's columns into the given explicit order.
func (s *Scrubber) ReorderColumns(ds *dataset.Dataset, order []string) error {
	return ds.Reorder(order)
}

// ParseDates converts a string column into a date column. Values that cannot
// be parsed against the accepted layouts become null and are counted, never
// an error; downstream steps decide whether to drop them via DropMissing.
// Returns the number of values that failed to parse.
func (s *Scrubber) ParseDates(ds *dataset.Dataset, column string) (int, error) {
	idx, err := ds.Index(column)
	if err != nil {
		return 0, err
	}
	if ds.Schema()[idx].Kind == dataset.KindDate {
		return 0, nil
	}
	if ds.Schema()[idx].Kind != dataset.KindString {
		return 0, errors.NewAppValidationError(
			fmt.Sprintf("date parsing requires a string column, %q is %s", column, ds.Schema()[idx].Kind))
	}

	unparsed := 0
	for i := 0; i < ds.RowCount(); i++ {
		row := ds.Row(i)
		v := row[idx]
		if v.IsNull() {
			row[idx] = dataset.Null()
			continue
		}
		t, err := dataset.ParseDate(v.Str())
		if err != nil {
			row[idx] = dataset.Null()
			unparsed++
			continue
		}
		row[idx] = dataset.Date(t)
	}
	if err := ds.SetColumnKind(column, dataset.KindDate); err != nil {
		return unparsed, err
	}

	if unparsed > 0 {
		s.logger.Warn("unparseable dates set to null",
			slog.String("column", column),
			slog.Int("unparsed", unparsed))
	}
	return unparsed, nil
}

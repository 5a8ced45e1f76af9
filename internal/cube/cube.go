package cube

import (
	"sort"
	"strings"

	"smartsales/internal/dataset"
)

// Level is the time granularity of a cube.
type Level int

const (
	// LevelMonth groups facts by calendar month.
	LevelMonth Level = iota
	// LevelQuarter groups facts by calendar quarter.
	LevelQuarter
	// LevelYear groups facts by calendar year.
	LevelYear
	// LevelTotal collapses time entirely, leaving one group per dimension value.
	LevelTotal
)

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelMonth:
		return "month"
	case LevelQuarter:
		return "quarter"
	case LevelYear:
		return "year"
	case LevelTotal:
		return "total"
	default:
		return "unknown"
	}
}

// Key identifies one cube cell. Quarter and Month are zero at levels where
// they do not apply; Year is zero only at LevelTotal.
type Key struct {
	Year    int
	Quarter int
	Month   int
	Dim     string
}

// Row is one cube cell with its measures. Null sale amounts contribute zero
// revenue but still count as transactions.
type Row struct {
	Key
	TotalRevenue     float64
	TransactionCount int
}

// Cube holds the diced measures for one dimension at one time level. Rows are
// ordered by total revenue descending, ties broken by ascending key, so the
// strongest cells always lead the output. The anomaly counters travel with the
// cube so callers can audit a run from the result, not only from the logs.
type Cube struct {
	Level     Level
	Dimension string
	Rows      []Row

	// SkippedUndated counts facts excluded because their sale date gave
	// them no time bucket; NullAmounts counts transactions that were
	// aggregated with zero revenue.
	SkippedUndated int
	NullAmounts    int
}

// RollUp aggregates a cube to a coarser time level from the cube's own rows;
// it never rereads the warehouse, so a rollup of a rollup stays consistent
// with the cube it came from. Rolling up to the cube's current level or finer
// returns the cube unchanged.
func RollUp(c *Cube, level Level) *Cube {
	if level <= c.Level {
		return c
	}

	groups := make(map[Key]*Row)
	order := make([]Key, 0, len(c.Rows))
	for _, row := range c.Rows {
		key := row.Key
		switch level {
		case LevelQuarter:
			if key.Quarter == 0 && key.Month > 0 {
				key.Quarter = (key.Month + 2) / 3
			}
			key.Month = 0
		case LevelYear:
			key.Quarter, key.Month = 0, 0
		case LevelTotal:
			key.Year, key.Quarter, key.Month = 0, 0, 0
		}
		cell, ok := groups[key]
		if !ok {
			cell = &Row{Key: key}
			groups[key] = cell
			order = append(order, key)
		}
		cell.TotalRevenue += row.TotalRevenue
		cell.TransactionCount += row.TransactionCount
	}

	rolled := &Cube{
		Level:          level,
		Dimension:      c.Dimension,
		Rows:           make([]Row, 0, len(order)),
		SkippedUndated: c.SkippedUndated,
		NullAmounts:    c.NullAmounts,
	}
	for _, key := range order {
		rolled.Rows = append(rolled.Rows, *groups[key])
	}
	sortRows(rolled.Rows)
	return rolled
}

// sortRows orders rows by total revenue descending; equal revenues fall back
// to ascending key order so output is deterministic.
func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.TotalRevenue != b.TotalRevenue {
			return a.TotalRevenue > b.TotalRevenue
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Quarter != b.Quarter {
			return a.Quarter < b.Quarter
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return strings.Compare(a.Dim, b.Dim) < 0
	})
}

// ToDataset renders the cube as a tabular dataset for CSV export. Time
// columns absent from the cube's level are omitted.
func ToDataset(c *Cube) (*dataset.Dataset, error) {
	schema := dataset.Schema{}
	if c.Level != LevelTotal {
		schema = append(schema, dataset.Column{Name: "year", Kind: dataset.KindInt})
	}
	if c.Level == LevelQuarter {
		schema = append(schema, dataset.Column{Name: "quarter", Kind: dataset.KindInt})
	}
	if c.Level == LevelMonth {
		schema = append(schema, dataset.Column{Name: "month", Kind: dataset.KindInt})
	}
	schema = append(schema,
		dataset.Column{Name: c.Dimension, Kind: dataset.KindString},
		dataset.Column{Name: "total_revenue", Kind: dataset.KindFloat},
		dataset.Column{Name: "transaction_count", Kind: dataset.KindInt},
	)

	ds := dataset.New(schema)
	for _, row := range c.Rows {
		record := make([]dataset.Value, 0, len(schema))
		if c.Level != LevelTotal {
			record = append(record, dataset.Int(int64(row.Year)))
		}
		if c.Level == LevelQuarter {
			record = append(record, dataset.Int(int64(row.Quarter)))
		}
		if c.Level == LevelMonth {
			record = append(record, dataset.Int(int64(row.Month)))
		}
		record = append(record,
			dataset.String(row.Dim),
			dataset.Float(row.TotalRevenue),
			dataset.Int(int64(row.TransactionCount)),
		)
		if err := ds.Append(record...); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

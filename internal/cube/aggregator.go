package cube

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"smartsales/internal/dataset"
	"smartsales/internal/errors"
)

// Aggregator dices the star-schema warehouse into OLAP cubes. It reads the
// fact table joined with a dimension, normalizes the dimension values, and
// groups measures by calendar month; coarser granularities come from RollUp.
type Aggregator struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open connects the aggregator to the warehouse database at path.
func Open(path string, logger *slog.Logger) (*Aggregator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("warehouse database %s not found", path), err)
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.NewStorageError("failed to open warehouse database", err)
	}
	return &Aggregator{db: db, logger: logger}, nil
}

// Close releases the warehouse connection.
func (a *Aggregator) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// factSlice is one fact row joined with the dimension value being cubed.
type factSlice struct {
	SaleDate   string
	SaleAmount *float64
	Dim        string
}

// SalesGrowthByRegion dices fact_sales by (year, month, region), with region
// spellings folded onto their canonical labels.
func (a *Aggregator) SalesGrowthByRegion(ctx context.Context) (*Cube, error) {
	var facts []factSlice
	err := a.db.WithContext(ctx).
		Table("fact_sales").
		Select("fact_sales.sale_date AS sale_date, fact_sales.sale_amount AS sale_amount, dim_customer.region AS dim").
		Joins("JOIN dim_customer ON dim_customer.customer_id = fact_sales.customer_id").
		Scan(&facts).Error
	if err != nil {
		return nil, errors.NewStorageError("failed to read fact_sales by region", err)
	}
	return a.dice(ctx, "region", facts, NormalizeRegion), nil
}

// SalesByCategory dices fact_sales by (year, month, product category).
func (a *Aggregator) SalesByCategory(ctx context.Context) (*Cube, error) {
	var facts []factSlice
	err := a.db.WithContext(ctx).
		Table("fact_sales").
		Select("fact_sales.sale_date AS sale_date, fact_sales.sale_amount AS sale_amount, dim_product.category AS dim").
		Joins("JOIN dim_product ON dim_product.product_id = fact_sales.product_id").
		Scan(&facts).Error
	if err != nil {
		return nil, errors.NewStorageError("failed to read fact_sales by category", err)
	}
	return a.dice(ctx, "category", facts, normalizeLabel), nil
}

// dice groups the joined fact rows by (year, month, normalized dimension).
// A fact whose sale date cannot be parsed has no place on the time axis and
// is skipped; a null amount contributes zero revenue but still counts as a
// transaction. Both anomalies are counted and logged, never fatal.
func (a *Aggregator) dice(ctx context.Context, dimension string, facts []factSlice, normalize func(string) string) *Cube {
	groups := make(map[Key]*Row)
	order := make([]Key, 0)
	undated, nullAmounts := 0, 0

	for _, fact := range facts {
		t, err := dataset.ParseDate(fact.SaleDate)
		if err != nil {
			undated++
			continue
		}
		key := Key{
			Year:  t.Year(),
			Month: int(t.Month()),
			Dim:   normalize(fact.Dim),
		}
		cell, ok := groups[key]
		if !ok {
			cell = &Row{Key: key}
			groups[key] = cell
			order = append(order, key)
		}
		if fact.SaleAmount != nil {
			cell.TotalRevenue += *fact.SaleAmount
		} else {
			nullAmounts++
		}
		cell.TransactionCount++
	}

	if undated > 0 || nullAmounts > 0 {
		a.logger.WarnContext(ctx, "anomalous facts while dicing",
			slog.String("dimension", dimension),
			slog.Int("skipped_undated", undated),
			slog.Int("null_amounts", nullAmounts))
	}

	c := &Cube{
		Level:          LevelMonth,
		Dimension:      dimension,
		Rows:           make([]Row, 0, len(order)),
		SkippedUndated: undated,
		NullAmounts:    nullAmounts,
	}
	for _, key := range order {
		c.Rows = append(c.Rows, *groups[key])
	}
	sortRows(c.Rows)

	a.logger.InfoContext(ctx, "cube built",
		slog.String("dimension", dimension),
		slog.Int("facts", len(facts)),
		slog.Int("cells", len(c.Rows)))
	return c
}

// normalizeLabel is the dimension normalizer for values without a synonym
// table: trimmed, blank folded to UNKNOWN, otherwise uppercased.
func normalizeLabel(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(trimmed)
}

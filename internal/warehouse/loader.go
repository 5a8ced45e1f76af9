package warehouse

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"smartsales/internal/dataset"
	"smartsales/internal/errors"
	"smartsales/internal/infrastructure"
)

// Config holds the loader parameters.
type Config struct {
	// WarehousePath is the SQLite database file the warehouse lives in.
	WarehousePath string
	// RejectionThreshold is the fraction of fact rows that may be rejected
	// for orphan references before the run aborts. Rates above it indicate
	// the extracts are structurally mismatched, not merely dirty.
	RejectionThreshold float64
	// BatchSize is the insert batch size.
	BatchSize int
}

// TableLoad reports how one dimension table was populated.
type TableLoad struct {
	Input             int     `json:"input"`
	Loaded            int     `json:"loaded"`
	DuplicatesDropped int     `json:"duplicates_dropped"`
	MissingKeys       int     `json:"missing_keys"`
	DuplicateIDs      []int64 `json:"duplicate_ids,omitempty"`
}

// FactLoad reports how the fact table was populated.
type FactLoad struct {
	Input             int     `json:"input"`
	Loaded            int     `json:"loaded"`
	DuplicatesDropped int     `json:"duplicates_dropped"`
	MissingKeys       int     `json:"missing_keys"`
	RejectedOrphans   int     `json:"rejected_orphans"`
	RejectionRate     float64 `json:"rejection_rate"`
}

// RunResult summarizes one warehouse rebuild.
type RunResult struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Customers  TableLoad `json:"customers"`
	Products   TableLoad `json:"products"`
	Sales      FactLoad  `json:"sales"`
}

// WriteJSON persists the run result next to the warehouse for later audit.
func (r *RunResult) WriteJSON(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create run result directory", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.NewStorageError("failed to encode run result", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewStorageError("failed to write run result", err)
	}
	return nil
}

// Loader performs full rebuilds of the star-schema warehouse. A rebuild is
// all-or-nothing: the new database is assembled in a temporary file and only
// renamed over the previous warehouse once every table has loaded, so readers
// never observe a half-built schema and a failed run leaves the prior
// warehouse untouched.
type Loader struct {
	cfg    Config
	logger *slog.Logger
}

// NewLoader creates a loader with the given configuration.
func NewLoader(cfg Config, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	return &Loader{cfg: cfg, logger: logger}
}

// Rebuild drops and reloads the warehouse from the cleaned extracts. Dimension
// rows that repeat a primary key keep the first occurrence and are warned;
// fact rows referencing a customer or product absent from the dimensions are
// rejected and counted, and the whole run aborts when the rejection rate
// exceeds the configured threshold.
func (l *Loader) Rebuild(ctx context.Context, customers, products, sales *dataset.Dataset) (*RunResult, error) {
	runID := infrastructure.GetRunID(ctx)
	if runID == "" {
		runID = infrastructure.NewRunID()
	}
	result := &RunResult{RunID: runID, StartedAt: time.Now().UTC()}

	if err := os.MkdirAll(filepath.Dir(l.cfg.WarehousePath), 0755); err != nil {
		return nil, errors.NewStorageError("failed to create warehouse directory", err)
	}
	tempPath := fmt.Sprintf("%s.building.%s", l.cfg.WarehousePath, runID)

	db, err := gorm.Open(sqlite.Open(tempPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.NewStorageError("failed to open warehouse build database", err)
	}

	if err := l.rebuild(ctx, db, customers, products, sales, result); err != nil {
		closeDB(db)
		os.Remove(tempPath)
		return nil, err
	}

	if err := closeDB(db); err != nil {
		os.Remove(tempPath)
		return nil, errors.NewStorageError("failed to close warehouse build database", err)
	}

	// Atomic swap: the previous warehouse stays intact until this succeeds.
	if err := os.Rename(tempPath, l.cfg.WarehousePath); err != nil {
		os.Remove(tempPath)
		return nil, errors.NewStorageError("failed to swap warehouse database into place", err)
	}

	result.FinishedAt = time.Now().UTC()
	l.logger.InfoContext(ctx, "warehouse rebuilt",
		slog.String("path", l.cfg.WarehousePath),
		slog.Int("customers", result.Customers.Loaded),
		slog.Int("products", result.Products.Loaded),
		slog.Int("sales", result.Sales.Loaded),
		slog.Int("rejected_orphans", result.Sales.RejectedOrphans))
	return result, nil
}

func (l *Loader) rebuild(ctx context.Context, db *gorm.DB, customers, products, sales *dataset.Dataset, result *RunResult) error {
	if err := db.WithContext(ctx).AutoMigrate(&DimCustomer{}, &DimProduct{}, &FactSale{}); err != nil {
		return errors.NewStorageError("failed to create warehouse schema", err)
	}

	customerRows, err := l.buildCustomers(ctx, customers, &result.Customers)
	if err != nil {
		return err
	}
	productRows, err := l.buildProducts(ctx, products, &result.Products)
	if err != nil {
		return err
	}

	customerIDs := make(map[int64]struct{}, len(customerRows))
	for _, c := range customerRows {
		customerIDs[c.CustomerID] = struct{}{}
	}
	productIDs := make(map[int64]struct{}, len(productRows))
	for _, p := range productRows {
		productIDs[p.ProductID] = struct{}{}
	}

	factRows, err := l.buildFacts(ctx, sales, customerIDs, productIDs, &result.Sales)
	if err != nil {
		return err
	}

	if len(customerRows) > 0 {
		if err := db.WithContext(ctx).CreateInBatches(customerRows, l.cfg.BatchSize).Error; err != nil {
			return errors.NewStorageError("failed to load dim_customer", err)
		}
	}
	result.Customers.Loaded = len(customerRows)

	if len(productRows) > 0 {
		if err := db.WithContext(ctx).CreateInBatches(productRows, l.cfg.BatchSize).Error; err != nil {
			return errors.NewStorageError("failed to load dim_product", err)
		}
	}
	result.Products.Loaded = len(productRows)

	if len(factRows) > 0 {
		if err := db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(factRows, l.cfg.BatchSize).Error; err != nil {
			return errors.NewStorageError("failed to load fact_sales", err)
		}
	}
	result.Sales.Loaded = len(factRows)
	return nil
}

// buildCustomers converts the cleaned customers dataset into dimension rows,
// keeping the first occurrence of each primary key.
func (l *Loader) buildCustomers(ctx context.Context, ds *dataset.Dataset, load *TableLoad) ([]DimCustomer, error) {
	cols, err := columnIndices(ds, "customer_id", "name", "region", "join_date")
	if err != nil {
		return nil, err
	}

	load.Input = ds.RowCount()
	rows := make([]DimCustomer, 0, ds.RowCount())
	seen := make(map[int64]struct{}, ds.RowCount())

	for i := 0; i < ds.RowCount(); i++ {
		row := ds.Row(i)
		id := row[cols[0]]
		if id.IsNull() {
			load.MissingKeys++
			continue
		}
		key := id.Int64()
		if _, dup := seen[key]; dup {
			load.DuplicatesDropped++
			load.DuplicateIDs = append(load.DuplicateIDs, key)
			l.logger.WarnContext(ctx, "duplicate customer id dropped, first occurrence kept",
				slog.Int64("customer_id", key))
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, DimCustomer{
			CustomerID: key,
			Name:       row[cols[1]].Str(),
			Region:     row[cols[2]].Str(),
			JoinDate:   row[cols[3]].Format(),
		})
	}
	return rows, nil
}

// buildProducts converts the cleaned products dataset into dimension rows,
// keeping the first occurrence of each primary key.
func (l *Loader) buildProducts(ctx context.Context, ds *dataset.Dataset, load *TableLoad) ([]DimProduct, error) {
	cols, err := columnIndices(ds, "product_id", "product_name", "category", "unit_price")
	if err != nil {
		return nil, err
	}

	load.Input = ds.RowCount()
	rows := make([]DimProduct, 0, ds.RowCount())
	seen := make(map[int64]struct{}, ds.RowCount())

	for i := 0; i < ds.RowCount(); i++ {
		row := ds.Row(i)
		id := row[cols[0]]
		if id.IsNull() {
			load.MissingKeys++
			continue
		}
		key := id.Int64()
		if _, dup := seen[key]; dup {
			load.DuplicatesDropped++
			load.DuplicateIDs = append(load.DuplicateIDs, key)
			l.logger.WarnContext(ctx, "duplicate product id dropped, first occurrence kept",
				slog.Int64("product_id", key))
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, DimProduct{
			ProductID:   key,
			ProductName: row[cols[1]].Str(),
			Category:    row[cols[2]].Str(),
			UnitPrice:   nullableFloat(row[cols[3]]),
		})
	}
	return rows, nil
}

// buildFacts converts the cleaned sales dataset into fact rows. Rows whose
// customer or product id is absent from the loaded dimensions are rejected;
// a rejection rate above the configured threshold aborts the run.
func (l *Loader) buildFacts(ctx context.Context, ds *dataset.Dataset, customerIDs, productIDs map[int64]struct{}, load *FactLoad) ([]FactSale, error) {
	cols, err := columnIndices(ds, "sale_id", "customer_id", "product_id", "sale_amount", "sale_date")
	if err != nil {
		return nil, err
	}

	load.Input = ds.RowCount()
	rows := make([]FactSale, 0, ds.RowCount())
	seen := make(map[int64]struct{}, ds.RowCount())
	candidates := 0

	for i := 0; i < ds.RowCount(); i++ {
		row := ds.Row(i)
		id := row[cols[0]]
		if id.IsNull() {
			load.MissingKeys++
			continue
		}
		key := id.Int64()
		if _, dup := seen[key]; dup {
			load.DuplicatesDropped++
			l.logger.WarnContext(ctx, "duplicate sale id dropped, first occurrence kept",
				slog.Int64("sale_id", key))
			continue
		}
		seen[key] = struct{}{}
		candidates++

		customerID, productID := row[cols[1]], row[cols[2]]
		if customerID.IsNull() || missingKey(customerIDs, customerID.Int64()) {
			load.RejectedOrphans++
			l.logger.WarnContext(ctx, "fact row rejected, customer not in dimension",
				slog.Int64("sale_id", key),
				slog.String("customer_id", customerID.Format()))
			continue
		}
		if productID.IsNull() || missingKey(productIDs, productID.Int64()) {
			load.RejectedOrphans++
			l.logger.WarnContext(ctx, "fact row rejected, product not in dimension",
				slog.Int64("sale_id", key),
				slog.String("product_id", productID.Format()))
			continue
		}

		rows = append(rows, FactSale{
			SaleID:     key,
			CustomerID: customerID.Int64(),
			ProductID:  productID.Int64(),
			SaleAmount: nullableFloat(row[cols[3]]),
			SaleDate:   row[cols[4]].Format(),
		})
	}

	if candidates > 0 {
		load.RejectionRate = float64(load.RejectedOrphans) / float64(candidates)
	}
	if load.RejectionRate > l.cfg.RejectionThreshold {
		return nil, errors.NewOrphanReferenceError(
			fmt.Sprintf("rejection rate %.2f exceeds threshold %.2f, extracts look structurally mismatched",
				load.RejectionRate, l.cfg.RejectionThreshold)).
			WithContext("rejected", load.RejectedOrphans).
			WithContext("candidates", candidates)
	}
	return rows, nil
}

// columnIndices resolves the named columns once, up front.
func columnIndices(ds *dataset.Dataset, names ...string) ([]int, error) {
	indices := make([]int, len(names))
	for i, name := range names {
		idx, err := ds.Index(name)
		if err != nil {
			return nil, err
		}
		indices[i] = idx
	}
	return indices, nil
}

func missingKey(set map[int64]struct{}, key int64) bool {
	_, ok := set[key]
	return !ok
}

func nullableFloat(v dataset.Value) *float64 {
	if v.IsNull() {
		return nil
	}
	f := v.Float64()
	return &f
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

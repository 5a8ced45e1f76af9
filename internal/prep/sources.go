package prep

import (
	"log/slog"

	"smartsales/internal/config"
	"smartsales/internal/dataset"
	"smartsales/internal/scrub"
)

// Raw extract schemas, matching the source system's column headers. The reader
// resolves headers case-insensitively, so these names only need to match up to
// casing and surrounding whitespace.
var (
	RawCustomersSchema = dataset.Schema{
		{Name: "CustomerID", Kind: dataset.KindInt},
		{Name: "Name", Kind: dataset.KindString},
		{Name: "Region", Kind: dataset.KindString},
		{Name: "JoinDate", Kind: dataset.KindString},
	}

	RawProductsSchema = dataset.Schema{
		{Name: "ProductID", Kind: dataset.KindInt},
		{Name: "ProductName", Kind: dataset.KindString},
		{Name: "Category", Kind: dataset.KindString},
		{Name: "UnitPrice", Kind: dataset.KindFloat},
	}

	RawSalesSchema = dataset.Schema{
		{Name: "TransactionID", Kind: dataset.KindInt},
		{Name: "CustomerID", Kind: dataset.KindInt},
		{Name: "ProductID", Kind: dataset.KindInt},
		{Name: "SaleAmount", Kind: dataset.KindFloat},
		{Name: "SaleDate", Kind: dataset.KindString},
	}
)

// Cleaned column orders, as written to the prepared extracts and expected by
// the warehouse loader.
var (
	CleanedCustomerColumns = []string{"customer_id", "name", "region", "join_date"}
	CleanedProductColumns  = []string{"product_id", "product_name", "category", "unit_price"}
	CleanedSalesColumns    = []string{"sale_id", "customer_id", "product_id", "sale_amount", "sale_date"}
)

// Cleaned extract schemas, for reading prepared extracts back. Dates are in
// canonical form by this point, so the columns are declared as dates outright.
var (
	CleanedCustomersSchema = dataset.Schema{
		{Name: "customer_id", Kind: dataset.KindInt},
		{Name: "name", Kind: dataset.KindString},
		{Name: "region", Kind: dataset.KindString},
		{Name: "join_date", Kind: dataset.KindDate},
	}

	CleanedProductsSchema = dataset.Schema{
		{Name: "product_id", Kind: dataset.KindInt},
		{Name: "product_name", Kind: dataset.KindString},
		{Name: "category", Kind: dataset.KindString},
		{Name: "unit_price", Kind: dataset.KindFloat},
	}

	CleanedSalesSchema = dataset.Schema{
		{Name: "sale_id", Kind: dataset.KindInt},
		{Name: "customer_id", Kind: dataset.KindInt},
		{Name: "product_id", Kind: dataset.KindInt},
		{Name: "sale_amount", Kind: dataset.KindFloat},
		{Name: "sale_date", Kind: dataset.KindDate},
	}
)

// CustomersPipeline builds the cleaning pipeline for the customers extract:
// warehouse-facing snake_case names, exact-duplicate removal, join date
// parsing, and a filled placeholder for missing names and regions. Records
// without a customer id cannot key a dimension row and are dropped.
func CustomersPipeline(scrubber *scrub.Scrubber, logger *slog.Logger) *Pipeline {
	return NewPipeline("customers", logger,
		Step{Name: "rename_columns", Run: func(ds *dataset.Dataset) (int, error) {
			return 0, scrubber.RenameColumns(ds, map[string]string{
				"CustomerID": "customer_id",
				"Name":       "name",
				"Region":     "region",
				"JoinDate":   "join_date",
			})
		}},
		Step{Name: "deduplicate", Run: func(ds *dataset.Dataset) (int, error) {
			return scrubber.Deduplicate(ds)
		}},
		Step{Name: "drop_missing_id", Run: func(ds *dataset.Dataset) (int, error) {
			return scrubber.DropMissing(ds, "customer_id")
		}},
		Step{Name: "normalize_strings", Run: func(ds *dataset.Dataset) (int, error) {
			return scrubber.NormalizeStrings(ds, scrub.CaseNone, "name", "region")
		}},
		Step{Name: "fill_missing_name", Run: func(ds *dataset.Dataset) (int, error) {
			return scrubber.FillMissing(ds, "name", dataset.String("Unknown"))
		}},
		Step{Name: "fill_missing_region", Run: func(ds *dataset.Dataset) (int, error) {
			return scrubber.FillMissing(ds, "region", dataset.String("Unknown"))
		}},
		Step{Name: "parse_join_dates", Run: func(ds *dataset.Dataset) (int, error) {
			return scrubber.ParseDates(ds, "join_date")
		}},
		Step{Name: "reorder_columns", Run: func(ds *dataset.Dataset) (int, error) {
			return 0, scrubber.ReorderColumns(ds, CleanedCustomerColumns)
		}},
	)
}

// ProductsPipeline builds the cleaning pipeline for the products extract.
// Product names are lowercased so the same product spelled differently across
// source files lands on one dimension row.
func ProductsPipeline(scrubber *scrub.Scrubber, logger *slog.Logger) *Pipeline {
	return NewPipeline("products", logger,
		Step{Name: "rename_columns", Run: func(ds *dataset.Dataset) (int, error) {
			return 0, scrubber.RenameColumns(ds, map[string]string{
				"ProductID":   "product_id",
				"ProductName": "product_name",
				"Category":    "category",
				"UnitPrice":   "unit_price",
			})
		}},
		Step{Name: "deduplicate", Run: func(ds *dataset.Dataset) (int, error) {
			return scrubber.Deduplicate(ds)
		}},
		Step{Name: "drop_missing_id", Run: func(ds *dataset.Dataset) (int, error) {
			return scrubber.DropMissing(ds, "product_id")
		}},
		Step{Name: "normalize_product_names", Run: func(ds *dataset.Dataset) (int, error) {
			return scrubber.NormalizeStrings(ds, scrub.CaseLower, "product_name")
		}},
		Step{Name: "normalize_categories", Run: func(ds *dataset.Dataset) (int, error) {
			return scrubber.NormalizeStrings(ds, scrub.CaseNone, "category")
		}},
		Step{Name: "fill_missing_category", Run: func(ds *dataset.Dataset) (int, error) {
			return scrubber.FillMissing(ds, "category", dataset.String("Unknown"))
		}},
		Step{Name: "reorder_columns", Run: func(ds *dataset.Dataset) (int, error) {
			return 0, scrubber.ReorderColumns(ds, CleanedProductColumns)
		}},
	)
}

// SalesPipeline builds the cleaning pipeline for the sales extract. Records
// missing any key are useless to the fact table and are dropped here rather
// than rejected later; sale amounts outside the configured bounds are treated
// as entry errors and removed.
func SalesPipeline(scrubber *scrub.Scrubber, cfg config.PrepConfig, logger *slog.Logger) *Pipeline {
	return NewPipeline("sales", logger,
		Step{Name: "rename_columns", Run: func(ds *dataset.Dataset) (int, error) {
			return 0, scrubber.RenameColumns(ds, map[string]string{
				"TransactionID": "sale_id",
				"CustomerID":    "customer_id",
				"ProductID":     "product_id",
				"SaleAmount":    "sale_amount",
				"SaleDate":      "sale_date",
			})
		}},
		Step{Name: "deduplicate", Run: func(ds *dataset.Dataset) (int, error) {
			return scrubber.Deduplicate(ds)
		}},
		Step{Name: "drop_missing_keys", Run: func(ds *dataset.Dataset) (int, error) {
			return scrubber.DropMissing(ds, "sale_id", "customer_id", "product_id")
		}},
		Step{Name: "filter_amount_outliers", Run: func(ds *dataset.Dataset) (int, error) {
			return scrubber.FilterOutliers(ds, "sale_amount", cfg.SaleAmountLower, cfg.SaleAmountUpper)
		}},
		Step{Name: "parse_sale_dates", Run: func(ds *dataset.Dataset) (int, error) {
			return scrubber.ParseDates(ds, "sale_date")
		}},
		Step{Name: "reorder_columns", Run: func(ds *dataset.Dataset) (int, error) {
			return 0, scrubber.ReorderColumns(ds, CleanedSalesColumns)
		}},
	)
}

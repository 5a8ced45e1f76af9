package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"smartsales/internal/config"
	"smartsales/internal/extract"
	"smartsales/internal/infrastructure"
	"smartsales/internal/prep"
	"smartsales/internal/warehouse"
)

func main() {
	dataDir := flag.String("data", "", "data directory (defaults to the configured data dir)")
	logsDir := flag.String("logs", "", "logs directory (defaults to the configured logs dir)")
	dbPath := flag.String("db", "", "warehouse database path (defaults to the standard layout)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Paths.DataDir = *dataDir
	}
	if *logsDir != "" {
		cfg.Paths.LogsDir = *logsDir
	}

	paths := config.NewPaths(cfg.Paths.DataDir, cfg.Paths.LogsDir)
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}
	warehousePath := paths.WarehouseDB
	if *dbPath != "" {
		warehousePath = *dbPath
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogger()

	ctx := infrastructure.WithRunID(context.Background(), infrastructure.NewRunID())
	logger.InfoContext(ctx, "starting warehouse rebuild",
		slog.String("cleaned_dir", paths.CleanedDir),
		slog.String("warehouse", warehousePath))

	reader := extract.NewReader(logger)
	customers, _, err := reader.Read(paths.CleanedCustomersCSV, prep.CleanedCustomersSchema)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read cleaned customers", slog.String("error", err.Error()))
		os.Exit(1)
	}
	products, _, err := reader.Read(paths.CleanedProductsCSV, prep.CleanedProductsSchema)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read cleaned products", slog.String("error", err.Error()))
		os.Exit(1)
	}
	sales, _, err := reader.Read(paths.CleanedSalesCSV, prep.CleanedSalesSchema)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read cleaned sales", slog.String("error", err.Error()))
		os.Exit(1)
	}

	loader := warehouse.NewLoader(warehouse.Config{
		WarehousePath:      warehousePath,
		RejectionThreshold: cfg.Warehouse.RejectionThreshold,
		BatchSize:          cfg.Warehouse.BatchSize,
	}, logger)

	result, err := loader.Rebuild(ctx, customers, products, sales)
	if err != nil {
		logger.ErrorContext(ctx, "warehouse rebuild failed, previous warehouse left in place",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := result.WriteJSON(paths.RunResultJSONPath); err != nil {
		logger.WarnContext(ctx, "failed to write run result", slog.String("error", err.Error()))
	}

	logger.InfoContext(ctx, "warehouse rebuild complete",
		slog.Int("customers_loaded", result.Customers.Loaded),
		slog.Int("customer_duplicates_dropped", result.Customers.DuplicatesDropped),
		slog.Int("products_loaded", result.Products.Loaded),
		slog.Int("sales_loaded", result.Sales.Loaded),
		slog.Int("orphans_rejected", result.Sales.RejectedOrphans),
		slog.Float64("rejection_rate", result.Sales.RejectionRate))
}

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"smartsales/internal/config"
	"smartsales/internal/cube"
	"smartsales/internal/exporter"
	"smartsales/internal/infrastructure"
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
	logger.InfoContext(ctx, "starting cube stage",
		slog.String("warehouse", warehousePath),
		slog.String("cubes_dir", paths.CubesDir))

	aggregator, err := cube.Open(warehousePath, logger)
	if err != nil {
		logger.ErrorContext(ctx, "failed to open warehouse", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer aggregator.Close()

	writer := exporter.NewCSVWriter(logger)

	regionCube, err := aggregator.SalesGrowthByRegion(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to build region cube", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := writeCube(regionCube, paths.RegionCubeCSV, writer); err != nil {
		logger.ErrorContext(ctx, "failed to write region cube", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Region totals across all time, rolled up from the cube itself.
	regionSummary := cube.RollUp(regionCube, cube.LevelTotal)
	if err := writeCube(regionSummary, paths.RegionSummaryCSV, writer); err != nil {
		logger.ErrorContext(ctx, "failed to write region summary", slog.String("error", err.Error()))
		os.Exit(1)
	}

	categoryCube, err := aggregator.SalesByCategory(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to build category cube", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := writeCube(categoryCube, paths.CategoryCubeCSV, writer); err != nil {
		logger.ErrorContext(ctx, "failed to write category cube", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "cube stage complete",
		slog.Int("region_cells", len(regionCube.Rows)),
		slog.Int("region_totals", len(regionSummary.Rows)),
		slog.Int("category_cells", len(categoryCube.Rows)),
		slog.Int("skipped_undated", regionCube.SkippedUndated),
		slog.Int("null_amounts", regionCube.NullAmounts))
}

func writeCube(c *cube.Cube, path string, writer *exporter.CSVWriter) error {
	ds, err := cube.ToDataset(c)
	if err != nil {
		return err
	}
	return writer.WriteDataset(path, ds, exporter.WriteOptions{})
}

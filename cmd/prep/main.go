package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"smartsales/internal/config"
	"smartsales/internal/dataset"
	"smartsales/internal/exporter"
	"smartsales/internal/extract"
	"smartsales/internal/infrastructure"
	"smartsales/internal/prep"
	"smartsales/internal/scrub"
)

func main() {
	dataDir := flag.String("data", "", "data directory (defaults to the configured data dir)")
	logsDir := flag.String("logs", "", "logs directory (defaults to the configured logs dir)")
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

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogger()

	ctx := infrastructure.WithRunID(context.Background(), infrastructure.NewRunID())
	logger.InfoContext(ctx, "starting prep stage",
		slog.String("raw_dir", paths.RawDir),
		slog.String("cleaned_dir", paths.CleanedDir))

	scrubber := scrub.NewScrubber(logger)
	reader := extract.NewReader(logger)
	writer := exporter.NewCSVWriter(logger)

	sources := []struct {
		rawPath     string
		cleanedPath string
		schema      dataset.Schema
		pipeline    *prep.Pipeline
	}{
		{paths.RawCustomersCSV, paths.CleanedCustomersCSV, prep.RawCustomersSchema, prep.CustomersPipeline(scrubber, logger)},
		{paths.RawProductsCSV, paths.CleanedProductsCSV, prep.RawProductsSchema, prep.ProductsPipeline(scrubber, logger)},
		{paths.RawSalesCSV, paths.CleanedSalesCSV, prep.RawSalesSchema, prep.SalesPipeline(scrubber, cfg.Prep, logger)},
	}

	// The three source pipelines share no state; clean them in parallel.
	g, gctx := errgroup.WithContext(ctx)
	for _, source := range sources {
		source := source
		g.Go(func() error {
			ds, _, err := reader.Read(source.rawPath, source.schema)
			if err != nil {
				return err
			}
			report, err := source.pipeline.Run(gctx, ds)
			if err != nil {
				return err
			}
			if err := writer.WriteDataset(source.cleanedPath, ds, exporter.WriteOptions{}); err != nil {
				return err
			}
			logger.InfoContext(gctx, "cleaned extract written",
				slog.String("pipeline", report.Pipeline),
				slog.String("path", source.cleanedPath),
				slog.Int("rows_before", report.Before.Rows),
				slog.Int("rows_after", report.After.Rows))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.ErrorContext(ctx, "prep stage failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.InfoContext(ctx, "prep stage complete")
}

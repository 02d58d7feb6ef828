// Command processor runs the full pipeline once: load the raw CSV files,
// clean them, cache the snapshot, and write the analysis reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"cinepulse/internal/config"
	"cinepulse/internal/domain"
	"cinepulse/internal/exporter"
	"cinepulse/internal/infrastructure"
	"cinepulse/internal/services"
	"cinepulse/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("processing failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	configFile := flag.String("config", "", "path to YAML config file (optional)")
	dataDir := flag.String("data", "", "input directory holding movies_metadata.csv and credits.csv (overrides config)")
	outDir := flag.String("out", "", "output directory for report files (overrides config)")
	noCache := flag.Bool("no-cache", false, "skip the snapshot cache and rebuild from source")
	xlsx := flag.Bool("xlsx", true, "write the XLSX workbook report")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if *dataDir != "" {
		cfg.Paths.DataDir = *dataDir
	}
	if *outDir != "" {
		cfg.Paths.ReportsDir = *outDir
	}

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return fmt.Errorf("resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	if cfg.Logging.Output != "stdout" && cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = paths.LogPath("processor.log")
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogger()

	var cache *store.Cache
	if !*noCache {
		cache, err = store.Open(paths.CacheDB(), logger)
		if err != nil {
			logger.Warn("snapshot cache unavailable, rebuilding from source",
				slog.String("error", err.Error()))
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	logger.Info("starting movie dataset processing",
		slog.String("data_dir", paths.DataDir),
		slog.String("reports_dir", paths.ReportsDir))

	ctx := context.Background()
	dataset := services.NewDatasetService(cfg, paths, cache, logger)
	ds, err := dataset.Dataset(ctx)
	if err != nil {
		return err
	}

	report := exporter.Report{
		Overview:     ds.Analyzer.Overview(ds.Snapshot.Movies),
		Summary:      ds.Analyzer.Summary(ds.Snapshot.Movies),
		Correlations: ds.Analyzer.Correlations(ds.Snapshot.Movies),
		Aggregates:   make(map[domain.Dimension][]domain.GroupAggregate),
	}
	for _, dim := range domain.Dimensions() {
		groups, err := ds.Analyzer.GroupBy(ds.Snapshot.Movies, ds.Snapshot.Associations, dim)
		if err != nil {
			return fmt.Errorf("aggregate by %s: %w", dim, err)
		}
		report.Aggregates[dim] = groups
	}

	csvWriter := exporter.NewCSVWriter(paths, logger)
	for dim, groups := range report.Aggregates {
		if err := csvWriter.WriteAggregateCSV(dim, groups); err != nil {
			return fmt.Errorf("write %s aggregate report: %w", dim, err)
		}
	}
	if err := csvWriter.WriteCorrelationCSV(report.Correlations); err != nil {
		return fmt.Errorf("write correlation report: %w", err)
	}

	jsonWriter := exporter.NewJSONWriter(paths, logger)
	if err := jsonWriter.WriteJSON("report.json", report); err != nil {
		return fmt.Errorf("write JSON report: %w", err)
	}

	if *xlsx {
		xlsxWriter := exporter.NewXLSXWriter(paths, logger)
		if err := xlsxWriter.WriteReport("report.xlsx", report); err != nil {
			return fmt.Errorf("write XLSX report: %w", err)
		}
	}

	logger.Info("processing complete",
		slog.String("snapshot_id", ds.Snapshot.ID),
		slog.Bool("from_cache", ds.FromCache),
		slog.Int("movies", len(ds.Snapshot.Movies)),
		slog.Int("associations", len(ds.Snapshot.Associations)))
	return nil
}

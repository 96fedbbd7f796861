package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"edpulse/internal/config"
	"edpulse/internal/enrollment"
	"edpulse/internal/exporter"
	"edpulse/internal/fetch"
	"edpulse/internal/infrastructure"
	"edpulse/internal/ingest"
	"edpulse/pkg/contracts"
	"edpulse/pkg/contracts/domain"
)

func main() {
	configFile := flag.String("config", "edpulse.yaml", "path to the YAML config file")
	inDir := flag.String("in", "", "input directory for snapshot workbooks (overrides config)")
	outDir := flag.String("out", "", "output directory for result tables (overrides config)")
	doFetch := flag.Bool("fetch", false, "download snapshot workbooks before processing")
	force := flag.Bool("force", false, "refetch workbooks even when already present")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *inDir != "" {
		cfg.Paths.DownloadsDir = *inDir
	}
	if *outDir != "" {
		cfg.Paths.ReportsDir = *outDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.WithRunID(context.Background(), uuid.NewString())

	if err := run(ctx, cfg, logger, *doFetch, *force); err != nil {
		logger.ErrorContext(ctx, "reconciliation run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, doFetch, force bool) error {
	if doFetch {
		if cfg.Fetch.SnapshotURLY1 == "" || cfg.Fetch.SnapshotURLY2 == "" {
			return fmt.Errorf("fetch requested but snapshot URLs are not configured")
		}
		downloader := fetch.NewDownloader(logger, cfg.Fetch.RequestsPerSecond)
		sources := []fetch.Source{
			{Year: cfg.Analysis.YearY1, URL: cfg.Fetch.SnapshotURLY1},
			{Year: cfg.Analysis.YearY2, URL: cfg.Fetch.SnapshotURLY2},
		}
		if err := downloader.FetchAll(ctx, cfg.Paths.DownloadsDir, sources, ingest.SnapshotFileName, force); err != nil {
			return fmt.Errorf("fetch snapshots: %w", err)
		}
	}

	parser := ingest.NewParser(logger)
	snapY1, err := parseSnapshot(parser, cfg, cfg.Analysis.YearY1, cfg.Analysis.LayoutY1)
	if err != nil {
		return err
	}
	snapY2, err := parseSnapshot(parser, cfg, cfg.Analysis.YearY2, cfg.Analysis.LayoutY2)
	if err != nil {
		return err
	}

	opts, err := buildOptions(cfg)
	if err != nil {
		return err
	}

	result, err := enrollment.Run(ctx, snapY1, snapY2, opts, logger)
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		logger.WarnContext(ctx, "identity warning", "detail", w.String())
	}

	csvWriter := exporter.NewCSVWriter(logger)
	reportPath := filepath.Join(cfg.Paths.ReportsDir, "enrollment_change.csv")
	if err := csvWriter.WriteReport(reportPath, result); err != nil {
		return fmt.Errorf("write change report: %w", err)
	}
	longPath := filepath.Join(cfg.Paths.ReportsDir, "enrollment_longitudinal.csv")
	if err := csvWriter.WriteLongitudinal(longPath, result); err != nil {
		return fmt.Errorf("write longitudinal table: %w", err)
	}

	workbookPath := filepath.Join(cfg.Paths.ReportsDir, "enrollment_change.xlsx")
	if err := exporter.NewWorkbookWriter(logger).Write(workbookPath, result); err != nil {
		return fmt.Errorf("write result workbook: %w", err)
	}

	logger.InfoContext(ctx, "reconciliation run complete",
		slog.String("report", reportPath),
		slog.String("longitudinal", longPath),
		slog.String("workbook", workbookPath))
	return nil
}

func parseSnapshot(parser *ingest.Parser, cfg *config.Config, year int, layout string) (domain.Snapshot, error) {
	path := filepath.Join(cfg.Paths.DownloadsDir, ingest.SnapshotFileName(year))
	snap, err := parser.ParseSnapshot(path, year, domain.SnapshotLayout(layout))
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("parse %d snapshot: %w", year, err)
	}
	return snap, nil
}

func buildOptions(cfg *config.Config) (enrollment.Options, error) {
	grades := make([]domain.GradeLevel, 0, len(cfg.Analysis.Grades))
	for _, label := range cfg.Analysis.Grades {
		grade, err := enrollment.MapGradeLabel(label, 0)
		if err != nil {
			return enrollment.Options{}, fmt.Errorf("configured grade subset: %w", err)
		}
		grades = append(grades, grade)
	}
	return enrollment.Options{
		GroupCode:     cfg.Analysis.GroupCode,
		GroupName:     cfg.Analysis.GroupName,
		Grades:        grades,
		MinEnrollment: cfg.Analysis.MinEnrollment,
	}, nil
}

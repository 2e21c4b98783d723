package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/climate-stats/internal/adapter/chart"
	"github.com/couchcryptid/climate-stats/internal/adapter/csvfile"
	"github.com/couchcryptid/climate-stats/internal/adapter/report"
	"github.com/couchcryptid/climate-stats/internal/config"
	"github.com/couchcryptid/climate-stats/internal/observability"
	"github.com/couchcryptid/climate-stats/internal/pipeline"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, cfg)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config) int {
	logger := observability.NewLogger(cfg).With("run_id", uuid.NewString())
	metrics := observability.NewMetrics()

	loader := csvfile.NewLoader(cfg.DataFile, logger)
	renderer := chart.NewRenderer(cfg.PlotsDir, cfg.HistogramBins, logger)
	reporter := report.NewWriter(cfg.OutputDir, cfg.ReportWorkbook, logger)

	p := pipeline.New(loader, renderer, reporter, logger, metrics, clockwork.NewRealClock())

	_, err := p.Run(ctx)

	if cfg.MetricsFile != "" {
		if werr := metrics.WriteTextfile(cfg.MetricsFile); werr != nil {
			logger.Error("failed to write metrics file", "path", cfg.MetricsFile, "error", werr)
		}
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, csvfile.ErrInputNotFound):
		fmt.Fprintf(os.Stderr, "ERROR: %s not found. Place the CSV file in working directory.\n", cfg.DataFile)
		return 1
	default:
		logger.Error("pipeline failed", "error", err)
		return 1
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all job settings, populated from environment variables.
type Config struct {
	DataFile  string
	OutputDir string
	PlotsDir  string
	LogLevel  string
	LogFormat string

	// MetricsFile, when set, receives the run's metrics in Prometheus text format.
	MetricsFile string

	// ReportWorkbook additionally writes the report as an .xlsx workbook.
	ReportWorkbook bool

	HistogramBins int
	RandomSeed    uint64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	bins, err := parseHistogramBins()
	if err != nil {
		return nil, err
	}

	seed, err := parseRandomSeed()
	if err != nil {
		return nil, err
	}

	workbook, err := parseBool("REPORT_WORKBOOK", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataFile:       sharedcfg.EnvOrDefault("DATA_FILE", "GlobalLandTemperaturesByCity.csv"),
		OutputDir:      sharedcfg.EnvOrDefault("OUTPUT_DIR", "outputs"),
		PlotsDir:       sharedcfg.EnvOrDefault("PLOTS_DIR", "plots"),
		LogLevel:       sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:      sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		MetricsFile:    os.Getenv("METRICS_FILE"),
		ReportWorkbook: workbook,
		HistogramBins:  bins,
		RandomSeed:     seed,
	}

	if cfg.DataFile == "" {
		return nil, errors.New("DATA_FILE is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR is required")
	}
	if cfg.PlotsDir == "" {
		return nil, errors.New("PLOTS_DIR is required")
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: want json or text", cfg.LogFormat)
	}

	return cfg, nil
}

func parseHistogramBins() (int, error) {
	s := os.Getenv("HIST_BINS")
	if s == "" {
		return 30, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 500 {
		return 0, errors.New("invalid HIST_BINS: must be an integer between 1 and 500")
	}
	return n, nil
}

func parseRandomSeed() (uint64, error) {
	s := os.Getenv("RANDOM_SEED")
	if s == "" {
		return 42, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.New("invalid RANDOM_SEED: must be a non-negative integer")
	}
	return n, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

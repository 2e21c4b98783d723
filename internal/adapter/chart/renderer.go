// Package chart renders the fixed set of climate charts as PNG files.
//
// Line, bar and pie charts use go-chart; histogram, heatmap, box, violin and
// pair plots use gonum/plot.
package chart

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/climate-stats/internal/domain"
)

// Output file names.
const (
	FileTrend    = "relational_plot_trend.png"
	FileHist     = "categorical_hist.png"
	FileBar      = "categorical_bar.png"
	FilePie      = "categorical_pie.png"
	FileHeatmap  = "stat_heatmap.png"
	FileBoxplot  = "stat_boxplot.png"
	FileViolin   = "stat_violin.png"
	FilePairplot = "stat_pairplot.png"
)

// Renderer writes charts into a directory.
// It implements pipeline.Renderer.
type Renderer struct {
	dir    string
	bins   int
	logger *slog.Logger
}

// NewRenderer creates a Renderer writing into dir with the given histogram bin count.
func NewRenderer(dir string, bins int, logger *slog.Logger) *Renderer {
	if bins < 1 {
		bins = 30
	}
	return &Renderer{dir: dir, bins: bins, logger: logger}
}

// Render draws every chart the table supports and returns the file names
// written. The first failure aborts rendering.
func (r *Renderer) Render(ctx context.Context, t *domain.Table, corr domain.Correlation) ([]string, error) {
	if !t.Capabilities.HasTemperature {
		return nil, fmt.Errorf("render charts: %w: %s", domain.ErrMissingColumn, domain.ColAvgTemperature)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create plots dir: %w", err)
	}

	var written []string
	for _, group := range []func(context.Context, *domain.Table, domain.Correlation) ([]string, error){
		r.renderRelational,
		r.renderCategorical,
		r.renderStatistical,
	} {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		names, err := group(ctx, t, corr)
		written = append(written, names...)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func (r *Renderer) renderRelational(_ context.Context, t *domain.Table, _ domain.Correlation) ([]string, error) {
	if err := r.save(FileTrend, func(path string) error { return writeTrend(path, t) }); err != nil {
		return nil, err
	}
	return []string{FileTrend}, nil
}

func (r *Renderer) renderCategorical(_ context.Context, t *domain.Table, _ domain.Correlation) ([]string, error) {
	var written []string

	if err := r.save(FileHist, func(path string) error { return writeHistogram(path, t, r.bins) }); err != nil {
		return written, err
	}
	written = append(written, FileHist)

	if err := r.save(FileBar, func(path string) error { return writeMonthlyBar(path, t) }); err != nil {
		return written, err
	}
	written = append(written, FileBar)

	if !t.Capabilities.HasUncertainty {
		r.logger.Info("skipping uncertainty pie chart", "reason", "no uncertainty column")
		return written, nil
	}
	counts := domain.CountUncertaintyLevels(t)
	if total(counts) == 0 {
		r.logger.Warn("skipping uncertainty pie chart", "reason", "no uncertainty value inside (0, 5]")
		return written, nil
	}
	if err := r.save(FilePie, func(path string) error { return writeUncertaintyPie(path, counts) }); err != nil {
		return written, err
	}
	return append(written, FilePie), nil
}

func (r *Renderer) renderStatistical(_ context.Context, t *domain.Table, corr domain.Correlation) ([]string, error) {
	temps, _ := t.Valid(domain.ColAvgTemperature)

	steps := []struct {
		name string
		draw func(string) error
	}{
		{FileHeatmap, func(p string) error { return writeHeatmap(p, corr) }},
		{FileBoxplot, func(p string) error { return writeBoxplot(p, temps) }},
		{FileViolin, func(p string) error { return writeViolin(p, temps) }},
	}

	var written []string
	for _, s := range steps {
		if err := r.save(s.name, s.draw); err != nil {
			return written, err
		}
		written = append(written, s.name)
	}

	if !t.Capabilities.HasUncertainty {
		r.logger.Info("skipping pair plot", "reason", "no uncertainty column")
		return written, nil
	}
	xs, ys, _ := domain.CompletePairs(t, domain.ColAvgTemperature, domain.ColAvgTemperatureUncert)
	if len(xs) == 0 {
		r.logger.Warn("skipping pair plot", "reason", "no row with both temperature and uncertainty")
		return written, nil
	}
	if err := r.save(FilePairplot, func(p string) error { return writePairplot(p, xs, ys) }); err != nil {
		return written, err
	}
	return append(written, FilePairplot), nil
}

func (r *Renderer) save(name string, draw func(path string) error) error {
	path := filepath.Join(r.dir, name)
	if err := draw(path); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	r.logger.Info("saved chart", "path", path)
	return nil
}

func total(counts []domain.LevelCount) int {
	n := 0
	for _, c := range counts {
		n += c.Count
	}
	return n
}

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/climate-stats/internal/domain"
	"github.com/couchcryptid/climate-stats/internal/observability"
)

// Stage names used in logs, metrics and Result.Durations.
const (
	StageExtract = "extract"
	StageClean   = "clean"
	StageStats   = "statistics"
	StageRender  = "render"
	StageReport  = "report"
)

// Extractor reads the input into a raw table.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawTable, error)
}

// Renderer draws charts for a cleaned table and returns the file names written.
type Renderer interface {
	Render(ctx context.Context, t *domain.Table, corr domain.Correlation) ([]string, error)
}

// Reporter writes the run summary and returns the file names written.
type Reporter interface {
	Write(ctx context.Context, s domain.Summary) ([]string, error)
}

// Result describes a completed run.
type Result struct {
	Clean     domain.CleanStats
	Moments   domain.Moments
	Charts    []string
	Reports   []string
	Durations map[string]time.Duration
}

// Pipeline runs load, clean, statistics, render and report once, in order.
type Pipeline struct {
	extractor Extractor
	renderer  Renderer
	reporter  Reporter
	schema    domain.Schema
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
}

// New creates a Pipeline with the given stages and observability.
// A nil clock uses the real clock.
func New(e Extractor, r Renderer, rep Reporter, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		extractor: e,
		renderer:  r,
		reporter:  rep,
		schema:    domain.DefaultSchema(),
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
	}
}

// Run executes every stage once. The context is checked between stages;
// the first error stops the run.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	res := Result{Durations: make(map[string]time.Duration)}
	p.logger.Info("pipeline started")

	var raw domain.RawTable
	err := p.stage(ctx, &res, StageExtract, func() error {
		var err error
		raw, err = p.extractor.Extract(ctx)
		return err
	})
	if err != nil {
		return res, err
	}
	p.metrics.RowsLoaded.Add(float64(raw.NumRows()))

	var cleaned domain.CleanResult
	err = p.stage(ctx, &res, StageClean, func() error {
		var err error
		cleaned, err = domain.Clean(raw, p.schema)
		return err
	})
	if err != nil {
		return res, err
	}
	res.Clean = cleaned.Stats
	p.recordClean(cleaned.Stats)
	table := &cleaned.Table

	var corr domain.Correlation
	err = p.stage(ctx, &res, StageStats, func() error {
		res.Moments = domain.ComputeMoments(table)
		corr = domain.CorrelationMatrix(table)
		return nil
	})
	if err != nil {
		return res, err
	}
	p.logMoments(res.Moments)

	err = p.stage(ctx, &res, StageRender, func() error {
		var err error
		res.Charts, err = p.renderer.Render(ctx, table, corr)
		for _, name := range res.Charts {
			p.metrics.ChartsRendered.WithLabelValues(name).Inc()
		}
		return err
	})
	if err != nil {
		return res, err
	}

	err = p.stage(ctx, &res, StageReport, func() error {
		var err error
		res.Reports, err = p.reporter.Write(ctx, domain.Summarize(table, res.Moments))
		return err
	})
	if err != nil {
		return res, err
	}

	p.logger.Info("pipeline finished",
		"rows", table.Len(),
		"charts", len(res.Charts),
		"reports", len(res.Reports),
	)
	return res, nil
}

// stage runs fn after checking the context and records its duration.
func (p *Pipeline) stage(ctx context.Context, res *Result, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	start := p.clock.Now()
	err := fn()
	elapsed := p.clock.Since(start)

	res.Durations[name] = elapsed
	p.metrics.StageDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	if err != nil {
		p.logger.Error("stage failed", "stage", name, "error", err)
		return fmt.Errorf("%s: %w", name, err)
	}
	p.logger.Debug("stage finished", "stage", name, "duration", elapsed)
	return nil
}

func (p *Pipeline) recordClean(s domain.CleanStats) {
	p.metrics.RowsDropped.WithLabelValues("invalid_date").Add(float64(s.InvalidDates))
	p.metrics.RowsDropped.WithLabelValues("duplicate").Add(float64(s.Duplicates))
	p.metrics.ValuesImputed.WithLabelValues("interpolation").Add(float64(s.Interpolated))
	p.metrics.ValuesImputed.WithLabelValues("median").Add(float64(s.MedianFilled))
	p.metrics.ColumnsMissing.Set(float64(len(s.MissingOptional)))

	if len(s.MissingOptional) > 0 {
		p.logger.Warn("optional columns missing", "columns", s.MissingOptional)
	}
	p.logger.Info("cleaned data",
		"input_rows", s.InputRows,
		"invalid_dates", s.InvalidDates,
		"duplicates", s.Duplicates,
		"interpolated", s.Interpolated,
		"median_filled", s.MedianFilled,
	)
}

func (p *Pipeline) logMoments(moments domain.Moments) {
	for _, m := range moments {
		p.logger.Info("statistical moments",
			"variable", m.Variable,
			"n", m.N,
			"mean", m.Mean,
			"variance", m.Variance,
			"skewness", m.Skewness,
			"kurtosis_excess", m.ExcessKurtosis,
		)
	}
}

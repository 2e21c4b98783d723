package chart

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/couchcryptid/climate-stats/internal/domain"
)

var (
	trendColor = drawing.Color{R: 31, G: 119, B: 180, A: 255}

	// Endpoints of a cool-to-warm diverging scale.
	coolEnd = drawing.Color{R: 59, G: 76, B: 192, A: 255}
	midTone = drawing.Color{R: 221, G: 221, B: 221, A: 255}
	warmEnd = drawing.Color{R: 180, G: 4, B: 38, A: 255}

	pieColors = []drawing.Color{
		{R: 102, G: 194, B: 165, A: 255},
		{R: 252, G: 141, B: 98, A: 255},
		{R: 141, G: 160, B: 203, A: 255},
		{R: 231, G: 138, B: 195, A: 255},
	}
)

// writeTrend draws mean AverageTemperature per year as a line.
func writeTrend(path string, t *domain.Table) error {
	years := domain.MeanTemperatureByYear(t)
	if len(years) == 0 {
		return fmt.Errorf("no temperature values")
	}

	xs := make([]float64, len(years))
	ys := make([]float64, len(years))
	for i, y := range years {
		xs[i] = float64(y.Key)
		ys[i] = y.Mean
	}
	xMin, xMax := paddedRange(xs, 0)
	yMin, yMax := paddedRange(ys, 0.05)

	series := gochart.ContinuousSeries{
		Name:    "Mean temperature",
		XValues: xs,
		YValues: ys,
		Style: gochart.Style{
			StrokeColor: trendColor,
			StrokeWidth: 2,
		},
	}
	if len(xs) == 1 {
		series.Style.DotColor = trendColor
		series.Style.DotWidth = 4
	}

	graph := gochart.Chart{
		Title:  "Average Temperature Trend Over Time",
		Width:  1200,
		Height: 600,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 50, Left: 20, Right: 30, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:           "Year",
			Range:          &gochart.ContinuousRange{Min: xMin, Max: xMax},
			ValueFormatter: yearFormatter,
		},
		YAxis: gochart.YAxis{
			Name:  "Average Temperature (°C)",
			Range: &gochart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Series: []gochart.Series{series},
	}
	return renderGoChart(path, graph.Render)
}

// writeMonthlyBar draws mean AverageTemperature per calendar month.
func writeMonthlyBar(path string, t *domain.Table) error {
	months := domain.MeanTemperatureByMonth(t)
	if len(months) == 0 {
		return fmt.Errorf("no temperature values")
	}

	means := make([]float64, len(months))
	for i, m := range months {
		means[i] = m.Mean
	}
	lo, hi := minMax(means)
	// Bars grow from zero, so the axis must include it.
	yMin, yMax := paddedRange([]float64{math.Min(lo, 0), math.Max(hi, 0)}, 0.05)

	bars := make([]gochart.Value, len(months))
	for i, m := range months {
		c := coolwarm(float64(i), 0, float64(max(len(months)-1, 1)))
		bars[i] = gochart.Value{
			Value: m.Mean,
			Label: strconv.Itoa(m.Key),
			Style: gochart.Style{FillColor: c, StrokeColor: c},
		}
	}

	graph := gochart.BarChart{
		Title:  "Average Monthly Temperature",
		Width:  1000,
		Height: 600,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 50},
		},
		BarWidth:     50,
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: gochart.YAxis{
			Name:  "Average Temperature (°C)",
			Range: &gochart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Bars: bars,
	}
	return renderGoChart(path, graph.Render)
}

// writeUncertaintyPie draws the share of rows per uncertainty level.
// Empty levels are left out because go-chart rejects zero slices.
func writeUncertaintyPie(path string, counts []domain.LevelCount) error {
	sum := total(counts)
	if sum == 0 {
		return fmt.Errorf("no labeled uncertainty values")
	}

	values := make([]gochart.Value, 0, len(counts))
	for i, c := range counts {
		if c.Count == 0 {
			continue
		}
		pct := 100 * float64(c.Count) / float64(sum)
		col := pieColors[i%len(pieColors)]
		values = append(values, gochart.Value{
			Value: float64(c.Count),
			Label: fmt.Sprintf("%s (%.1f%%)", c.Level, pct),
			Style: gochart.Style{FillColor: col, StrokeColor: drawing.ColorWhite},
		})
	}

	graph := gochart.PieChart{
		Title:  "Temperature Uncertainty Levels",
		Width:  600,
		Height: 600,
		Values: values,
	}
	return renderGoChart(path, graph.Render)
}

// renderGoChart renders into memory first so a failed render leaves no file.
func renderGoChart(path string, render func(gochart.RendererProvider, io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(gochart.PNG, &buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func yearFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.Itoa(int(math.Round(f)))
	}
	return ""
}

// paddedRange returns [min, max] widened by frac of the span. A zero span
// is widened by one unit on each side so axes never collapse.
func paddedRange(xs []float64, frac float64) (lo, hi float64) {
	lo, hi = minMax(xs)
	span := hi - lo
	if span == 0 {
		return lo - 1, hi + 1
	}
	return lo - span*frac, hi + span*frac
}

func minMax(xs []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}

// coolwarm maps v in [lo, hi] onto the diverging scale.
func coolwarm(v, lo, hi float64) drawing.Color {
	f := 0.5
	if hi > lo {
		f = (v - lo) / (hi - lo)
	}
	f = math.Max(0, math.Min(1, f))
	if f < 0.5 {
		return lerp(coolEnd, midTone, f*2)
	}
	return lerp(midTone, warmEnd, (f-0.5)*2)
}

func lerp(a, b drawing.Color, f float64) drawing.Color {
	mix := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + (float64(y)-float64(x))*f)) }
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"strconv"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/couchcryptid/climate-stats/internal/domain"
)

var (
	errNoValues = errors.New("no values to plot")

	histFill   = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	densityLn  = color.RGBA{R: 204, G: 102, B: 0, A: 255}
	boxFill    = color.RGBA{R: 135, G: 206, B: 235, A: 255}
	violinFill = color.RGBA{R: 144, G: 238, B: 144, A: 255}
	innerFill  = color.RGBA{R: 64, G: 64, B: 64, A: 255}
	scatterPt  = color.RGBA{R: 31, G: 119, B: 180, A: 160}
	nanCell    = color.Gray{Y: 200}
)

const violinSamples = 200

// density is a Gaussian KDE with Scott's bandwidth. ok is false when the
// sample is too small or constant to smooth.
func density(xs []float64) (kde *stats.KDE, bandwidth float64, ok bool) {
	if len(xs) < 2 {
		return nil, 0, false
	}
	sample := stats.Sample{Xs: xs}
	bw := stats.BandwidthScott(&sample)
	if bw <= 0 || math.IsNaN(bw) || math.IsInf(bw, 0) {
		return nil, 0, false
	}
	return &stats.KDE{Sample: sample, Bandwidth: bw}, bw, true
}

// writeHistogram draws the temperature histogram with a KDE overlay
// scaled from density to counts.
func writeHistogram(path string, t *domain.Table, bins int) error {
	temps, _ := t.Valid(domain.ColAvgTemperature)
	if len(temps) == 0 {
		return errNoValues
	}

	p := plot.New()
	p.Title.Text = "Distribution of Average Temperature"
	p.X.Label.Text = "Average Temperature (°C)"
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(plotter.Values(temps), bins)
	if err != nil {
		return fmt.Errorf("histogram: %w", err)
	}
	h.FillColor = histFill
	p.Add(h)

	if kde, _, ok := density(temps); ok && len(h.Bins) > 0 {
		scale := float64(len(temps)) * (h.Bins[0].Max - h.Bins[0].Min)
		fn := plotter.NewFunction(func(x float64) float64 { return kde.PDF(x) * scale })
		fn.Color = densityLn
		fn.Width = vg.Points(2)
		fn.Samples = 200
		p.Add(fn)
		p.Legend.Add("density", fn)
	}

	return p.Save(10*vg.Inch, 6*vg.Inch, path)
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ. Row 0 of the
// grid is the last variable so the first variable is drawn on top.
type corrGrid struct {
	values [][]float64
}

func (g corrGrid) Dims() (c, r int) { return len(g.values), len(g.values) }

func (g corrGrid) Z(c, r int) float64 {
	v := g.values[len(g.values)-1-r][c]
	if math.IsNaN(v) {
		return v
	}
	return math.Max(-1, math.Min(1, v))
}

func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

// writeHeatmap draws the annotated correlation matrix on a fixed [-1, 1]
// scale.
func writeHeatmap(path string, corr domain.Correlation) error {
	n := len(corr.Variables)
	if n == 0 {
		return errNoValues
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)

	grid := corrGrid{values: corr.Values}
	hm := plotter.NewHeatMap(grid, cmap.Palette(255))
	hm.Min = -1
	hm.Max = 1
	hm.NaN = nanCell

	p := plot.New()
	p.Title.Text = "Correlation Heatmap"
	p.Add(hm)

	xys := make(plotter.XYs, 0, n*n)
	labels := make([]string, 0, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			// Labels anchor at their left edge.
			xys = append(xys, plotter.XY{X: float64(c) - 0.1, Y: float64(r)})
			labels = append(labels, formatCorr(grid.Z(c, r)))
		}
	}
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return fmt.Errorf("heatmap labels: %w", err)
	}
	p.Add(l)

	reversed := make([]string, n)
	for i, v := range corr.Variables {
		reversed[n-1-i] = v
	}
	p.NominalX(corr.Variables...)
	p.NominalY(reversed...)

	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}

func formatCorr(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// writeBoxplot draws a single box of temperature.
func writeBoxplot(path string, temps []float64) error {
	if len(temps) == 0 {
		return errNoValues
	}

	p := plot.New()
	p.Title.Text = "Boxplot of Average Temperature"
	p.Y.Label.Text = "Average Temperature (°C)"

	box, err := plotter.NewBoxPlot(vg.Points(80), 0, plotter.Values(temps))
	if err != nil {
		return fmt.Errorf("boxplot: %w", err)
	}
	box.FillColor = boxFill
	p.Add(box)
	p.NominalX(domain.ColAvgTemperature)

	return p.Save(6*vg.Inch, 6*vg.Inch, path)
}

// writeViolin draws the mirrored KDE of temperature with an inner box.
// A constant sample has no density and gets only the inner box.
func writeViolin(path string, temps []float64) error {
	if len(temps) == 0 {
		return errNoValues
	}

	p := plot.New()
	p.Title.Text = "Violin Plot of Average Temperature"
	p.Y.Label.Text = "Average Temperature (°C)"

	if kde, bw, ok := density(temps); ok {
		outline, err := violinOutline(kde, temps, bw)
		if err != nil {
			return err
		}
		p.Add(outline)
	}

	inner, err := plotter.NewBoxPlot(vg.Points(8), 0, plotter.Values(temps))
	if err != nil {
		return fmt.Errorf("violin inner box: %w", err)
	}
	inner.FillColor = innerFill
	p.Add(inner)
	p.NominalX(domain.ColAvgTemperature)
	p.X.Min = -0.6
	p.X.Max = 0.6

	return p.Save(6*vg.Inch, 6*vg.Inch, path)
}

// violinOutline samples the KDE two bandwidths past the data on each side
// and mirrors it around x = 0 with half-width 0.4.
func violinOutline(kde *stats.KDE, temps []float64, bw float64) (*plotter.Polygon, error) {
	lo, hi := minMax(temps)
	lo -= 2 * bw
	hi += 2 * bw

	ys := make([]float64, violinSamples)
	ds := make([]float64, violinSamples)
	peak := 0.0
	for i := range ys {
		ys[i] = lo + (hi-lo)*float64(i)/float64(violinSamples-1)
		ds[i] = kde.PDF(ys[i])
		peak = math.Max(peak, ds[i])
	}
	if peak <= 0 {
		return nil, errors.New("violin: empty density")
	}

	pts := make(plotter.XYs, 0, 2*violinSamples)
	for i := range ys {
		pts = append(pts, plotter.XY{X: 0.4 * ds[i] / peak, Y: ys[i]})
	}
	for i := len(ys) - 1; i >= 0; i-- {
		pts = append(pts, plotter.XY{X: -0.4 * ds[i] / peak, Y: ys[i]})
	}

	poly, err := plotter.NewPolygon(pts)
	if err != nil {
		return nil, fmt.Errorf("violin: %w", err)
	}
	poly.Color = violinFill
	poly.LineStyle.Color = color.Black
	poly.LineStyle.Width = vg.Points(1)
	return poly, nil
}

// writePairplot draws a 2x2 matrix: histograms on the diagonal and
// scatter plots off it.
func writePairplot(path string, temps, uncerts []float64) error {
	if len(temps) == 0 || len(temps) != len(uncerts) {
		return errNoValues
	}

	cols := [][]float64{temps, uncerts}
	names := []string{domain.ColAvgTemperature, domain.ColAvgTemperatureUncert}

	plots := make([][]*plot.Plot, 2)
	for r := range plots {
		plots[r] = make([]*plot.Plot, 2)
		for c := range plots[r] {
			p := plot.New()
			if r == c {
				h, err := plotter.NewHist(plotter.Values(cols[c]), 20)
				if err != nil {
					return fmt.Errorf("pair plot histogram: %w", err)
				}
				h.FillColor = boxFill
				p.Add(h)
			} else {
				xys := make(plotter.XYs, len(cols[c]))
				for i := range xys {
					xys[i] = plotter.XY{X: cols[c][i], Y: cols[r][i]}
				}
				s, err := plotter.NewScatter(xys)
				if err != nil {
					return fmt.Errorf("pair plot scatter: %w", err)
				}
				s.GlyphStyle.Color = scatterPt
				s.GlyphStyle.Radius = vg.Points(1.5)
				p.Add(s)
			}
			if r == len(plots)-1 {
				p.X.Label.Text = names[c]
			}
			if c == 0 {
				p.Y.Label.Text = names[r]
			}
			plots[r][c] = p
		}
	}

	img := vgimg.New(8*vg.Inch, 8*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      2,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 12,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for r := range plots {
		for c := range plots[r] {
			plots[r][c].Draw(canvases[r][c])
		}
	}

	title := plot.New().Title.TextStyle
	title.Font.Size = vg.Points(14)
	title.XAlign = text.XCenter
	dc.FillText(title, vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Max.Y - vg.Millimeter*8}, "Pair Plot of Temperature and Uncertainty")

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

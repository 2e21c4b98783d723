package domain

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

type imputation struct {
	interpolated int
	medianFilled int
	median       float64
}

// imputeTemperatures fills missing AverageTemperature values in place: per
// city by linear interpolation in date order, then with the global median.
func imputeTemperatures(rows []Observation) imputation {
	res := imputation{median: math.NaN()}

	missing := make([]bool, len(rows))
	for i := range rows {
		missing[i] = math.IsNaN(rows[i].AverageTemperature)
	}
	defer func() {
		for i := range rows {
			rows[i].TemperatureImputed = missing[i] && !math.IsNaN(rows[i].AverageTemperature)
		}
	}()

	for _, idx := range groupByCity(rows) {
		sort.SliceStable(idx, func(a, b int) bool {
			return rows[idx[a]].Date.Before(rows[idx[b]].Date)
		})

		series := make([]float64, len(idx))
		for i, r := range idx {
			series[i] = rows[r].AverageTemperature
		}
		res.interpolated += Interpolate(series)
		for i, r := range idx {
			rows[r].AverageTemperature = series[i]
		}
	}

	valid := make(stats.Float64Data, 0, len(rows))
	for i := range rows {
		if !math.IsNaN(rows[i].AverageTemperature) {
			valid = append(valid, rows[i].AverageTemperature)
		}
	}
	if len(valid) == 0 {
		return res
	}

	median, err := stats.Median(valid)
	if err != nil {
		return res
	}
	res.median = median

	for i := range rows {
		if math.IsNaN(rows[i].AverageTemperature) {
			rows[i].AverageTemperature = median
			res.medianFilled++
		}
	}
	return res
}

// groupByCity returns row indices per city, cities in order of first appearance.
func groupByCity(rows []Observation) [][]int {
	pos := make(map[string]int)
	var groups [][]int
	for i := range rows {
		g, ok := pos[rows[i].City]
		if !ok {
			g = len(groups)
			pos[rows[i].City] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

// Interpolate fills NaN entries of xs in place and returns how many it
// filled. Interior gaps are interpolated linearly by position; leading and
// trailing gaps take the nearest valid value. A series with no valid value is
// left unchanged.
func Interpolate(xs []float64) int {
	first, last := -1, -1
	for i, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		return 0
	}

	filled := 0
	for i := 0; i < first; i++ {
		xs[i] = xs[first]
		filled++
	}
	for i := last + 1; i < len(xs); i++ {
		xs[i] = xs[last]
		filled++
	}

	prev := first
	for i := first + 1; i <= last; i++ {
		if math.IsNaN(xs[i]) {
			continue
		}
		if gap := i - prev; gap > 1 {
			step := (xs[i] - xs[prev]) / float64(gap)
			for k := prev + 1; k < i; k++ {
				xs[k] = xs[prev] + step*float64(k-prev)
				filled++
			}
		}
		prev = i
	}
	return filled
}

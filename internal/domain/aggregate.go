package domain

import (
	"math"
	"sort"
)

// GroupMean is the mean of a column over one group key.
type GroupMean struct {
	Key  int
	Mean float64
	N    int
}

// MeanTemperatureByYear averages AverageTemperature per Year, years ascending.
func MeanTemperatureByYear(t *Table) []GroupMean {
	return meanTemperatureBy(t, func(o *Observation) int { return o.Year })
}

// MeanTemperatureByMonth averages AverageTemperature per Month, months ascending.
func MeanTemperatureByMonth(t *Table) []GroupMean {
	return meanTemperatureBy(t, func(o *Observation) int { return o.Month })
}

func meanTemperatureBy(t *Table, key func(*Observation) int) []GroupMean {
	if !t.Capabilities.HasTemperature {
		return nil
	}
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for i := range t.Rows {
		v := t.Rows[i].AverageTemperature
		if math.IsNaN(v) {
			continue
		}
		k := key(&t.Rows[i])
		sums[k] += v
		counts[k]++
	}

	out := make([]GroupMean, 0, len(sums))
	for k, s := range sums {
		out = append(out, GroupMean{Key: k, Mean: s / float64(counts[k]), N: counts[k]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// LevelCount is the number of rows in one uncertainty level.
type LevelCount struct {
	Level UncertaintyLevel
	Count int
}

// CountUncertaintyLevels counts rows per labeled level, in level order.
// Rows without a level are not counted.
func CountUncertaintyLevels(t *Table) []LevelCount {
	counts := make(map[UncertaintyLevel]int)
	for i := range t.Rows {
		counts[t.Rows[i].UncertaintyLevel]++
	}
	levels := UncertaintyLevels()
	out := make([]LevelCount, len(levels))
	for i, l := range levels {
		out[i] = LevelCount{Level: l, Count: counts[l]}
	}
	return out
}

// CompletePairs returns the rows where both numeric columns are present.
func CompletePairs(t *Table, xName, yName string) (xs, ys []float64, ok bool) {
	x, okX := t.Column(xName)
	y, okY := t.Column(yName)
	if !okX || !okY {
		return nil, nil, false
	}
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys, true
}

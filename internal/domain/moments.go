package domain

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Moment holds the descriptive moments of one numeric column.
type Moment struct {
	Variable       string
	N              int
	Mean           float64
	Variance       float64 // population variance, divisor N
	Skewness       float64 // biased (g1)
	ExcessKurtosis float64 // Fisher, biased (g2)
}

// Moments is the moments table, one row per analyzed column.
type Moments []Moment

// Variables returns the analyzed column names in table order.
func (m Moments) Variables() []string {
	out := make([]string, len(m))
	for i := range m {
		out[i] = m[i].Variable
	}
	return out
}

// ComputeMoments computes the moments of every numeric column of the table,
// skipping columns without a single valid value.
func ComputeMoments(t *Table) Moments {
	var out Moments
	for _, name := range t.NumericColumns() {
		xs, _ := t.Valid(name)
		if len(xs) == 0 {
			continue
		}
		out = append(out, DescribeMoments(name, xs))
	}
	return out
}

// DescribeMoments computes mean, population variance, skewness and excess
// kurtosis of xs. A constant sample yields NaN skewness and kurtosis.
func DescribeMoments(name string, xs []float64) Moment {
	mean, variance := stat.PopMeanVariance(xs, nil)
	m3 := stat.Moment(3, xs, nil)
	m4 := stat.Moment(4, xs, nil)

	skew := math.NaN()
	kurt := math.NaN()
	if !degenerate(mean, variance) {
		skew = m3 / math.Pow(variance, 1.5)
		kurt = m4/(variance*variance) - 3
	}

	return Moment{
		Variable:       name,
		N:              len(xs),
		Mean:           mean,
		Variance:       variance,
		Skewness:       skew,
		ExcessKurtosis: kurt,
	}
}

// Correlation is a symmetric Pearson correlation matrix.
type Correlation struct {
	Variables []string
	Values    [][]float64
}

// CorrelationMatrix computes pairwise Pearson correlations of the table's
// numeric columns, each pair over the rows where both values are present.
func CorrelationMatrix(t *Table) Correlation {
	names := t.NumericColumns()
	cols := make([][]float64, len(names))
	for i, n := range names {
		cols[i], _ = t.Column(n)
	}

	values := make([][]float64, len(names))
	for i := range values {
		values[i] = make([]float64, len(names))
	}
	for i := range names {
		for j := i; j < len(names); j++ {
			r := pairwiseCorrelation(cols[i], cols[j])
			values[i][j] = r
			values[j][i] = r
		}
	}
	return Correlation{Variables: names, Values: values}
}

func pairwiseCorrelation(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if degenerate(stat.PopMeanVariance(xs, nil)) || degenerate(stat.PopMeanVariance(ys, nil)) {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// degenerate reports whether a sample is constant up to rounding error.
func degenerate(mean, variance float64) bool {
	eps := 1e-15 * mean
	return variance <= eps*eps
}

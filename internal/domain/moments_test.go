package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolate(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name   string
		in     []float64
		want   []float64
		filled int
	}{
		{"no gaps", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"single interior gap", []float64{1, nan, 3}, []float64{1, 2, 3}, 1},
		{"long interior gap", []float64{0, nan, nan, nan, 8}, []float64{0, 2, 4, 6, 8}, 3},
		{"leading gap", []float64{nan, nan, 5, 7}, []float64{5, 5, 5, 7}, 2},
		{"trailing gap", []float64{5, 7, nan}, []float64{5, 7, 7}, 1},
		{"single valid", []float64{nan, 4, nan}, []float64{4, 4, 4}, 2},
		{"empty", []float64{}, []float64{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xs := make([]float64, len(tt.in))
			copy(xs, tt.in)
			n := Interpolate(xs)
			assert.Equal(t, tt.filled, n)
			assert.InDeltaSlice(t, tt.want, xs, 1e-12)
		})
	}
}

func TestInterpolate_AllMissingUnchanged(t *testing.T) {
	xs := []float64{math.NaN(), math.NaN()}
	assert.Equal(t, 0, Interpolate(xs))
	assert.True(t, math.IsNaN(xs[0]))
	assert.True(t, math.IsNaN(xs[1]))
}

func TestDescribeMoments_KnownValues(t *testing.T) {
	// 1..24: mean 12.5, population variance (n^2-1)/12, symmetric, flat.
	xs := make([]float64, 24)
	for i := range xs {
		xs[i] = float64(i + 1)
	}

	m := DescribeMoments("x", xs)

	assert.Equal(t, 24, m.N)
	assert.InDelta(t, 12.5, m.Mean, 1e-12)
	assert.InDelta(t, 575.0/12.0, m.Variance, 1e-9)
	assert.InDelta(t, 0.0, m.Skewness, 1e-12)
	// Discrete uniform excess kurtosis: -6(n^2+1)/(5(n^2-1)).
	assert.InDelta(t, -6.0*577.0/(5.0*575.0), m.ExcessKurtosis, 1e-9)
}

func TestDescribeMoments_Skewed(t *testing.T) {
	xs := []float64{1, 1, 1, 1, 10}
	m := DescribeMoments("x", xs)

	// mean 2.8, deviations -1.8 x4 and 7.2.
	m2 := (4*1.8*1.8 + 7.2*7.2) / 5
	m3 := (4*math.Pow(-1.8, 3) + math.Pow(7.2, 3)) / 5
	m4 := (4*math.Pow(1.8, 4) + math.Pow(7.2, 4)) / 5

	assert.InDelta(t, 2.8, m.Mean, 1e-12)
	assert.InDelta(t, m2, m.Variance, 1e-9)
	assert.InDelta(t, m3/math.Pow(m2, 1.5), m.Skewness, 1e-9)
	assert.InDelta(t, m4/(m2*m2)-3, m.ExcessKurtosis, 1e-9)
	assert.Greater(t, m.Skewness, 0.0)
}

func TestDescribeMoments_Constant(t *testing.T) {
	m := DescribeMoments("x", []float64{0.1, 0.1, 0.1})

	assert.InDelta(t, 0.1, m.Mean, 1e-15)
	assert.InDelta(t, 0.0, m.Variance, 1e-15)
	assert.True(t, math.IsNaN(m.Skewness))
	assert.True(t, math.IsNaN(m.ExcessKurtosis))
}

func TestComputeMoments_VariableSet(t *testing.T) {
	raw := RawTable{Header: fullHeader, Rows: monthlyRows(testCityA, 1994, 24, "0.3")}
	res, err := Clean(raw, DefaultSchema())
	require.NoError(t, err)

	moments := ComputeMoments(&res.Table)

	assert.Equal(t, res.Table.NumericColumns(), moments.Variables())
	assert.Equal(t, []string{ColAvgTemperature, ColAvgTemperatureUncert}, moments.Variables())
	for _, m := range moments {
		assert.NotContains(t, []string{ColYear, ColMonth, ColDecade}, m.Variable)
		assert.GreaterOrEqual(t, m.Variance, 0.0)
	}
	assert.InDelta(t, 575.0/12.0, moments[0].Variance, 1e-9)
}

func TestComputeMoments_SkipsEmptyColumn(t *testing.T) {
	raw := RawTable{
		Header: fullHeader,
		Rows: [][]string{
			{"2000-01-01", "1", "", testCityA, "Denmark"},
			{"2000-02-01", "3", "bad", testCityA, "Denmark"},
		},
	}
	res, err := Clean(raw, DefaultSchema())
	require.NoError(t, err)

	moments := ComputeMoments(&res.Table)
	require.Len(t, moments, 1)
	assert.Equal(t, ColAvgTemperature, moments[0].Variable)
	assert.InDelta(t, 1.0, moments[0].Variance, 1e-12)
}

func TestCorrelationMatrix(t *testing.T) {
	raw := RawTable{
		Header: fullHeader,
		Rows: [][]string{
			{"2000-01-01", "1", "0.1", testCityA, "Denmark"},
			{"2000-02-01", "2", "0.2", testCityA, "Denmark"},
			{"2000-03-01", "3", "0.3", testCityA, "Denmark"},
			{"2000-04-01", "4", "", testCityA, "Denmark"},
		},
	}
	res, err := Clean(raw, DefaultSchema())
	require.NoError(t, err)

	corr := CorrelationMatrix(&res.Table)

	require.Equal(t, []string{ColAvgTemperature, ColAvgTemperatureUncert}, corr.Variables)
	assert.InDelta(t, 1.0, corr.Values[0][0], 1e-12)
	assert.InDelta(t, 1.0, corr.Values[1][1], 1e-12)
	assert.InDelta(t, 1.0, corr.Values[0][1], 1e-12)
	assert.Equal(t, corr.Values[0][1], corr.Values[1][0])
}

func TestCorrelationMatrix_ConstantColumnIsNaN(t *testing.T) {
	raw := RawTable{Header: fullHeader, Rows: monthlyRows(testCityA, 1994, 6, "0.3")}
	res, err := Clean(raw, DefaultSchema())
	require.NoError(t, err)

	corr := CorrelationMatrix(&res.Table)
	assert.True(t, math.IsNaN(corr.Values[0][1]))
	assert.True(t, math.IsNaN(corr.Values[1][1]))
}

func TestAggregates(t *testing.T) {
	raw := RawTable{Header: fullHeader, Rows: monthlyRows(testCityA, 1994, 24, "0.7")}
	res, err := Clean(raw, DefaultSchema())
	require.NoError(t, err)

	years := MeanTemperatureByYear(&res.Table)
	require.Len(t, years, 2)
	assert.Equal(t, 1994, years[0].Key)
	assert.InDelta(t, 6.5, years[0].Mean, 1e-12)
	assert.InDelta(t, 18.5, years[1].Mean, 1e-12)

	months := MeanTemperatureByMonth(&res.Table)
	require.Len(t, months, 12)
	assert.Equal(t, 1, months[0].Key)
	assert.InDelta(t, 7.0, months[0].Mean, 1e-12)
	assert.Equal(t, 2, months[0].N)

	levels := CountUncertaintyLevels(&res.Table)
	require.Len(t, levels, 4)
	assert.Equal(t, LevelLow, levels[1].Level)
	assert.Equal(t, 24, levels[1].Count)
	assert.Equal(t, 0, levels[0].Count)
}

func TestClassifyUncertainty(t *testing.T) {
	tests := []struct {
		v    float64
		want UncertaintyLevel
	}{
		{0, LevelNone},
		{0.01, LevelVeryLow},
		{0.5, LevelVeryLow},
		{0.51, LevelLow},
		{1, LevelLow},
		{2, LevelMedium},
		{5, LevelHigh},
		{5.01, LevelNone},
		{-1, LevelNone},
		{math.NaN(), LevelNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyUncertainty(tt.v), "value %v", tt.v)
	}
	assert.Equal(t, "Very Low", LevelVeryLow.String())
	assert.Equal(t, "High", LevelHigh.String())
	assert.Equal(t, "", LevelNone.String())
}

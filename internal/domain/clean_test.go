package domain

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCityA = "Århus"
	testCityB = "Abidjan"
)

var fullHeader = []string{"dt", "AverageTemperature", "AverageTemperatureUncertainty", "City", "Country"}

// monthlyRows builds n consecutive monthly rows for one city starting at
// January of startYear, with temperature i+1 and the given uncertainty.
func monthlyRows(city string, startYear, n int, uncertainty string) [][]string {
	rows := make([][]string, 0, n)
	start := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		d := start.AddDate(0, i, 0)
		rows = append(rows, []string{
			d.Format("2006-01-02"),
			fmt.Sprintf("%d", i+1),
			uncertainty,
			city,
			"Denmark",
		})
	}
	return rows
}

func TestClean_TrimsHeaderAndDerivesCalendar(t *testing.T) {
	raw := RawTable{
		Header: []string{" dt ", "AverageTemperature\t", " City"},
		Rows: [][]string{
			{"1999-12-01", "1.5", testCityA},
			{"2000-01-01", "2.5", testCityA},
		},
	}

	res, err := Clean(raw, DefaultSchema())
	require.NoError(t, err)

	require.Equal(t, 2, res.Table.Len())
	first := res.Table.Rows[0]
	assert.Equal(t, 1999, first.Year)
	assert.Equal(t, 12, first.Month)
	assert.Equal(t, 1990, first.Decade)
	assert.Equal(t, 2000, res.Table.Rows[1].Decade)
	assert.True(t, res.Table.Capabilities.HasTemperature)
	assert.True(t, res.Table.Capabilities.HasCity)
	assert.False(t, res.Table.Capabilities.HasUncertainty)
	assert.Equal(t, []string{ColAvgTemperatureUncert}, res.Stats.MissingOptional)
}

func TestClean_MissingDateColumn(t *testing.T) {
	raw := RawTable{
		Header: []string{"date", "AverageTemperature"},
		Rows:   [][]string{{"2000-01-01", "1"}},
	}

	_, err := Clean(raw, DefaultSchema())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "dt (date)")
}

func TestClean_DropsInvalidDates(t *testing.T) {
	raw := RawTable{
		Header: fullHeader,
		Rows: [][]string{
			{"2000-01-01", "1", "0.2", testCityA, "Denmark"},
			{"not a date", "2", "0.2", testCityA, "Denmark"},
			{"", "3", "0.2", testCityA, "Denmark"},
			{"2000-13-01", "4", "0.2", testCityA, "Denmark"},
		},
	}

	res, err := Clean(raw, DefaultSchema())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Table.Len())
	assert.Equal(t, 3, res.Stats.InvalidDates)
	for _, o := range res.Table.Rows {
		assert.False(t, o.Date.IsZero())
	}
}

func TestClean_RemovesDuplicateRows(t *testing.T) {
	raw := RawTable{
		Header: fullHeader,
		Rows: [][]string{
			{"2000-01-01", "1", "0.2", testCityA, "Denmark"},
			{"2000-01-01", "1.0", "0.20", testCityA, "Denmark"},
			{"2000-01-01", "1", "0.2", testCityA, "Norway"},
			{"2000-01-01", "1", "0.2", testCityB, "Denmark"},
			{"2000-01-01", "", "", testCityB, "Denmark"},
			{"2000-01-01", "", "", testCityB, "Denmark"},
		},
	}

	res, err := Clean(raw, DefaultSchema())
	require.NoError(t, err)

	assert.Equal(t, 4, res.Table.Len())
	assert.Equal(t, 2, res.Stats.Duplicates)

	seen := map[string]bool{}
	for i := range res.Table.Rows {
		key := rowKey(&res.Table.Rows[i])
		assert.False(t, seen[key], "duplicate row survived cleaning")
		seen[key] = true
	}
}

func TestClean_InterpolatesMidSeriesGap(t *testing.T) {
	raw := RawTable{
		Header: fullHeader,
		Rows: [][]string{
			{"2000-01-01", "4.0", "0.3", testCityA, "Denmark"},
			{"2000-02-01", "", "0.3", testCityA, "Denmark"},
			{"2000-03-01", "10.0", "0.3", testCityA, "Denmark"},
		},
	}

	res, err := Clean(raw, DefaultSchema())
	require.NoError(t, err)

	require.Equal(t, 3, res.Table.Len())
	assert.InDelta(t, 7.0, res.Table.Rows[1].AverageTemperature, 1e-12)
	assert.Equal(t, 1, res.Stats.Interpolated)
	assert.Equal(t, 0, res.Stats.MedianFilled)
	assert.False(t, res.Table.Rows[0].TemperatureImputed)
	assert.True(t, res.Table.Rows[1].TemperatureImputed)
}

func TestClean_InterpolatesInDateOrder(t *testing.T) {
	raw := RawTable{
		Header: fullHeader,
		Rows: [][]string{
			{"2000-03-01", "10.0", "0.3", testCityA, "Denmark"},
			{"2000-01-01", "4.0", "0.3", testCityA, "Denmark"},
			{"2000-02-01", "NaN", "0.3", testCityA, "Denmark"},
		},
	}

	res, err := Clean(raw, DefaultSchema())
	require.NoError(t, err)

	assert.InDelta(t, 7.0, res.Table.Rows[2].AverageTemperature, 1e-12)
}

func TestClean_ExtendsEdgesAndFillsMedian(t *testing.T) {
	raw := RawTable{
		Header: fullHeader,
		Rows: [][]string{
			{"2000-01-01", "", "0.3", testCityA, "Denmark"},
			{"2000-02-01", "2", "0.3", testCityA, "Denmark"},
			{"2000-03-01", "6", "0.3", testCityA, "Denmark"},
			{"2000-04-01", "", "0.3", testCityA, "Denmark"},
			{"2000-01-01", "", "0.3", testCityB, "Ivory Coast"},
			{"2000-02-01", "", "0.3", testCityB, "Ivory Coast"},
		},
	}

	res, err := Clean(raw, DefaultSchema())
	require.NoError(t, err)

	temps, ok := res.Table.Column(ColAvgTemperature)
	require.True(t, ok)
	assert.Equal(t, []float64{2, 2, 6, 6, 4, 4}, temps)
	assert.Equal(t, 2, res.Stats.Interpolated)
	assert.Equal(t, 2, res.Stats.MedianFilled)
	assert.InDelta(t, 4.0, res.Stats.TemperatureMedian, 1e-12)
}

func TestClean_NoValidTemperatureAnywhere(t *testing.T) {
	raw := RawTable{
		Header: []string{"dt", "AverageTemperature", "City"},
		Rows: [][]string{
			{"2000-01-01", "", testCityA},
			{"2000-02-01", "oops", testCityA},
		},
	}

	res, err := Clean(raw, DefaultSchema())
	require.NoError(t, err)

	for _, o := range res.Table.Rows {
		assert.True(t, math.IsNaN(o.AverageTemperature))
		assert.False(t, o.TemperatureImputed)
	}
	assert.Empty(t, ComputeMoments(&res.Table))
}

func TestClean_NoTemperatureMissingWhenAnyReadingExists(t *testing.T) {
	rows := monthlyRows(testCityA, 1990, 12, "0.4")
	for i := range rows {
		if i%3 == 0 {
			rows[i][1] = ""
		}
	}
	rows = append(rows, []string{"1990-01-01", "", "0.4", testCityB, "Ivory Coast"})

	res, err := Clean(RawTable{Header: fullHeader, Rows: rows}, DefaultSchema())
	require.NoError(t, err)

	for _, o := range res.Table.Rows {
		assert.False(t, math.IsNaN(o.AverageTemperature), "city %s at %s", o.City, o.Date)
	}
}

func TestClean_WithoutCityColumnIsOneGroup(t *testing.T) {
	raw := RawTable{
		Header: []string{"dt", "AverageTemperature"},
		Rows: [][]string{
			{"2000-01-01", "0"},
			{"2000-02-01", ""},
			{"2000-03-01", "3"},
		},
	}

	res, err := Clean(raw, DefaultSchema())
	require.NoError(t, err)

	assert.False(t, res.Table.Capabilities.HasCity)
	assert.InDelta(t, 1.5, res.Table.Rows[1].AverageTemperature, 1e-12)
}

func TestClean_UncertaintyLevels(t *testing.T) {
	raw := RawTable{
		Header: fullHeader,
		Rows: [][]string{
			{"2000-01-01", "1", "0.5", testCityA, "Denmark"},
			{"2000-02-01", "1", "0.75", testCityA, "Denmark"},
			{"2000-03-01", "1", "2", testCityA, "Denmark"},
			{"2000-04-01", "1", "4.9", testCityA, "Denmark"},
			{"2000-05-01", "1", "7.1", testCityA, "Denmark"},
			{"2000-06-01", "1", "", testCityA, "Denmark"},
		},
	}

	res, err := Clean(raw, DefaultSchema())
	require.NoError(t, err)

	want := []UncertaintyLevel{LevelVeryLow, LevelLow, LevelMedium, LevelHigh, LevelNone, LevelNone}
	for i, w := range want {
		assert.Equal(t, w, res.Table.Rows[i].UncertaintyLevel, "row %d", i)
	}
}

func TestClean_ExtraColumnsCarried(t *testing.T) {
	raw := RawTable{
		Header: []string{"dt", "AverageTemperature", "City", "Latitude", "Longitude"},
		Rows:   [][]string{{"2000-01-01", "1", testCityA, "57.05N", "10.33E"}},
	}

	res, err := Clean(raw, DefaultSchema())
	require.NoError(t, err)

	assert.Equal(t, []string{"Latitude", "Longitude"}, res.Table.ExtraColumns)
	assert.Equal(t, []string{"57.05N", "10.33E"}, res.Table.Rows[0].Extra)
	assert.Equal(t, []string{ColAvgTemperature}, res.Table.NumericColumns())
}

func TestClean_TwoYearsSingleCity(t *testing.T) {
	raw := RawTable{Header: fullHeader, Rows: monthlyRows(testCityA, 1994, 24, "0.3")}

	res, err := Clean(raw, DefaultSchema())
	require.NoError(t, err)
	require.Equal(t, 24, res.Table.Len())

	for _, o := range res.Table.Rows {
		assert.Equal(t, o.Year/10*10, o.Decade)
	}
	assert.Equal(t, 1990, res.Table.Rows[0].Decade)
	assert.Equal(t, 1990, res.Table.Rows[23].Decade)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"1743-11-01", time.Date(1743, 11, 1, 0, 0, 0, 0, time.UTC), true},
		{"2013-09-01 00:00:00", time.Date(2013, 9, 1, 0, 0, 0, 0, time.UTC), true},
		{"2013-09-01T12:00:00Z", time.Date(2013, 9, 1, 12, 0, 0, 0, time.UTC), true},
		{"2013/09/01", time.Date(2013, 9, 1, 0, 0, 0, 0, time.UTC), true},
		{"09/01/2013", time.Date(2013, 9, 1, 0, 0, 0, 0, time.UTC), true},
		{"2013-09", time.Date(2013, 9, 1, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseReal(t *testing.T) {
	assert.InDelta(t, 6.068, parseReal("6.068"), 0)
	assert.InDelta(t, -1.5, parseReal("-1.5"), 0)
	for _, s := range []string{"", "NaN", "nan", "NA", "null", "abc", "Inf"} {
		assert.True(t, math.IsNaN(parseReal(s)), s)
	}
}

func TestDecadeOf(t *testing.T) {
	assert.Equal(t, 1740, decadeOf(1743))
	assert.Equal(t, 2000, decadeOf(2000))
	assert.Equal(t, 2010, decadeOf(2013))
	assert.Equal(t, -10, decadeOf(-3))
}

package domain

import (
	"math"
	"time"
)

// RawTable is a CSV as read from disk: a header and rows of string cells.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// NumRows returns the number of data rows.
func (t RawTable) NumRows() int { return len(t.Rows) }

// NumCols returns the number of header columns.
func (t RawTable) NumCols() int { return len(t.Header) }

// UncertaintyLevel is the ordered category derived from
// AverageTemperatureUncertainty.
type UncertaintyLevel int

const (
	LevelNone UncertaintyLevel = iota
	LevelVeryLow
	LevelLow
	LevelMedium
	LevelHigh
)

// UncertaintyEdges are the bin edges for UncertaintyLevel; bins are right-closed.
var UncertaintyEdges = []float64{0, 0.5, 1, 2, 5}

// UncertaintyLevels lists the labeled levels in order.
func UncertaintyLevels() []UncertaintyLevel {
	return []UncertaintyLevel{LevelVeryLow, LevelLow, LevelMedium, LevelHigh}
}

func (l UncertaintyLevel) String() string {
	switch l {
	case LevelVeryLow:
		return "Very Low"
	case LevelLow:
		return "Low"
	case LevelMedium:
		return "Medium"
	case LevelHigh:
		return "High"
	default:
		return ""
	}
}

// ClassifyUncertainty bins an uncertainty value. Missing values and values
// outside (0, 5] return LevelNone.
func ClassifyUncertainty(v float64) UncertaintyLevel {
	if math.IsNaN(v) {
		return LevelNone
	}
	for i := 1; i < len(UncertaintyEdges); i++ {
		if v > UncertaintyEdges[i-1] && v <= UncertaintyEdges[i] {
			return UncertaintyLevel(i)
		}
	}
	return LevelNone
}

// Observation is one cleaned (city, date) reading. Missing numeric values are NaN.
type Observation struct {
	Date                          time.Time
	City                          string
	AverageTemperature            float64
	AverageTemperatureUncertainty float64

	Year   int
	Month  int
	Decade int

	UncertaintyLevel UncertaintyLevel

	// TemperatureImputed is set when AverageTemperature was filled in.
	TemperatureImputed bool

	// Extra holds the cells of columns outside the schema, in Table.ExtraColumns order.
	Extra []string
}

// Capabilities records which optional columns the cleaned table carries.
// It is derived once in Clean and consulted by every later stage.
type Capabilities struct {
	HasCity        bool
	HasTemperature bool
	HasUncertainty bool
}

// Table is the cleaned record table.
type Table struct {
	Rows         []Observation
	ExtraColumns []string
	Capabilities Capabilities
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// NumericColumns returns the analyzed measurement columns present in the
// table, in schema order. Calendar fields are never included.
func (t *Table) NumericColumns() []string {
	var cols []string
	if t.Capabilities.HasTemperature {
		cols = append(cols, ColAvgTemperature)
	}
	if t.Capabilities.HasUncertainty {
		cols = append(cols, ColAvgTemperatureUncert)
	}
	return cols
}

// Column returns a copy of a numeric column, NaN included. ok is false when
// the table does not carry the column.
func (t *Table) Column(name string) (values []float64, ok bool) {
	var get func(*Observation) float64
	switch {
	case name == ColAvgTemperature && t.Capabilities.HasTemperature:
		get = func(o *Observation) float64 { return o.AverageTemperature }
	case name == ColAvgTemperatureUncert && t.Capabilities.HasUncertainty:
		get = func(o *Observation) float64 { return o.AverageTemperatureUncertainty }
	default:
		return nil, false
	}

	values = make([]float64, len(t.Rows))
	for i := range t.Rows {
		values[i] = get(&t.Rows[i])
	}
	return values, true
}

// Valid returns the non-missing values of a numeric column.
func (t *Table) Valid(name string) ([]float64, bool) {
	all, ok := t.Column(name)
	if !ok {
		return nil, false
	}
	return dropNaN(all), true
}

func dropNaN(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

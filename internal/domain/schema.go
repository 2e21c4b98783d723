package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Column names of the input dataset and of the derived calendar fields.
const (
	ColDate                  = "dt"
	ColCity                  = "City"
	ColAvgTemperature        = "AverageTemperature"
	ColAvgTemperatureUncert  = "AverageTemperatureUncertainty"
	ColYear                  = "Year"
	ColMonth                 = "Month"
	ColDecade                = "Decade"
	ColUncertaintyLevelLabel = "UncertaintyLevel"
)

// ErrMissingColumn is returned when the input lacks a required column, or
// when a stage needs a column the cleaned table does not have.
var ErrMissingColumn = errors.New("missing required column")

// Kind is the value type of a schema column.
type Kind int

const (
	KindText Kind = iota
	KindDate
	KindReal
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindReal:
		return "real"
	default:
		return "text"
	}
}

// Column describes one expected input column.
type Column struct {
	Name     string
	Kind     Kind
	Required bool
}

// Schema lists the columns the pipeline understands, in analysis order.
type Schema struct {
	Columns []Column
}

// DefaultSchema is the GlobalLandTemperaturesByCity layout.
func DefaultSchema() Schema {
	return Schema{Columns: []Column{
		{Name: ColDate, Kind: KindDate, Required: true},
		{Name: ColCity, Kind: KindText},
		{Name: ColAvgTemperature, Kind: KindReal},
		{Name: ColAvgTemperatureUncert, Kind: KindReal},
	}}
}

// SchemaReport is the outcome of validating a header against a Schema.
type SchemaReport struct {
	// Index maps each schema column found in the header to its position.
	Index map[string]int
	// MissingOptional lists optional schema columns absent from the header.
	MissingOptional []string
	// Extra lists header columns the schema does not name, in header order.
	Extra []string
	// ExtraIndex holds the header positions of Extra.
	ExtraIndex []int
}

// Has reports whether the schema column name was found.
func (r SchemaReport) Has(name string) bool {
	_, ok := r.Index[name]
	return ok
}

// Validate matches a (trimmed) header against the schema. It fails with
// ErrMissingColumn naming every required column that is absent.
func (s Schema) Validate(header []string) (SchemaReport, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	report := SchemaReport{Index: make(map[string]int, len(s.Columns))}
	var missing []string
	known := make(map[string]bool, len(s.Columns))

	for _, c := range s.Columns {
		known[c.Name] = true
		i, ok := pos[c.Name]
		switch {
		case ok:
			report.Index[c.Name] = i
		case c.Required:
			missing = append(missing, fmt.Sprintf("%s (%s)", c.Name, c.Kind))
		default:
			report.MissingOptional = append(report.MissingOptional, c.Name)
		}
	}

	if len(missing) > 0 {
		return report, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	for i, h := range header {
		if known[h] {
			continue
		}
		report.Extra = append(report.Extra, h)
		report.ExtraIndex = append(report.ExtraIndex, i)
	}

	return report, nil
}

// RealColumns returns the names of the schema's numeric columns.
func (s Schema) RealColumns() []string {
	var out []string
	for _, c := range s.Columns {
		if c.Kind == KindReal {
			out = append(out, c.Name)
		}
	}
	return out
}

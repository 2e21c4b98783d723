package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing the dt column.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"2006-01",
}

// CleanStats counts what preprocessing removed or filled.
type CleanStats struct {
	InputRows         int
	InvalidDates      int
	Duplicates        int
	Interpolated      int
	MedianFilled      int
	TemperatureMedian float64
	MissingOptional   []string
}

// CleanResult is the output of Clean.
type CleanResult struct {
	Table Table
	Stats CleanStats
}

// Clean turns a raw CSV table into the cleaned record table: trims column
// names, validates the schema, parses dates (dropping unparseable rows),
// removes duplicate rows, derives calendar fields and uncertainty levels,
// and imputes missing temperatures.
func Clean(raw RawTable, schema Schema) (CleanResult, error) {
	header := make([]string, len(raw.Header))
	for i, h := range raw.Header {
		header[i] = strings.TrimSpace(h)
	}

	report, err := schema.Validate(header)
	if err != nil {
		return CleanResult{}, err
	}

	caps := Capabilities{
		HasCity:        report.Has(ColCity),
		HasTemperature: report.Has(ColAvgTemperature),
		HasUncertainty: report.Has(ColAvgTemperatureUncert),
	}
	stats := CleanStats{
		InputRows:         len(raw.Rows),
		MissingOptional:   report.MissingOptional,
		TemperatureMedian: math.NaN(),
	}

	rows := make([]Observation, 0, len(raw.Rows))
	seen := make(map[string]struct{}, len(raw.Rows))

	for _, cells := range raw.Rows {
		date, ok := parseDate(cell(cells, report.Index[ColDate]))
		if !ok {
			stats.InvalidDates++
			continue
		}

		obs := Observation{
			Date:                          date,
			AverageTemperature:            math.NaN(),
			AverageTemperatureUncertainty: math.NaN(),
		}
		if caps.HasCity {
			obs.City = cell(cells, report.Index[ColCity])
		}
		if caps.HasTemperature {
			obs.AverageTemperature = parseReal(cell(cells, report.Index[ColAvgTemperature]))
		}
		if caps.HasUncertainty {
			obs.AverageTemperatureUncertainty = parseReal(cell(cells, report.Index[ColAvgTemperatureUncert]))
		}
		if len(report.ExtraIndex) > 0 {
			obs.Extra = make([]string, len(report.ExtraIndex))
			for i, idx := range report.ExtraIndex {
				obs.Extra[i] = cell(cells, idx)
			}
		}

		key := rowKey(&obs)
		if _, dup := seen[key]; dup {
			stats.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		obs.Year = date.Year()
		obs.Month = int(date.Month())
		obs.Decade = decadeOf(obs.Year)

		rows = append(rows, obs)
	}

	table := Table{
		Rows:         rows,
		ExtraColumns: report.Extra,
		Capabilities: caps,
	}

	if caps.HasTemperature {
		imp := imputeTemperatures(table.Rows)
		stats.Interpolated = imp.interpolated
		stats.MedianFilled = imp.medianFilled
		stats.TemperatureMedian = imp.median
	}

	if caps.HasUncertainty {
		for i := range table.Rows {
			table.Rows[i].UncertaintyLevel = ClassifyUncertainty(table.Rows[i].AverageTemperatureUncertainty)
		}
	}

	return CleanResult{Table: table, Stats: stats}, nil
}

// decadeOf returns floor(year/10)*10, flooring toward negative infinity.
func decadeOf(year int) int {
	d := year / 10
	if year < 0 && year%10 != 0 {
		d--
	}
	return d * 10
}

func cell(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseReal parses a numeric cell, returning NaN for anything unusable.
func parseReal(s string) float64 {
	switch strings.ToLower(s) {
	case "", "nan", "na", "n/a", "null", "none":
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// rowKey identifies a full row after parsing, so "1.0" and "1" or two
// spellings of the same date count as duplicates.
func rowKey(o *Observation) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(o.Date.UnixNano(), 10))
	b.WriteByte(0x1f)
	b.WriteString(o.City)
	b.WriteByte(0x1f)
	b.WriteString(floatKey(o.AverageTemperature))
	b.WriteByte(0x1f)
	b.WriteString(floatKey(o.AverageTemperatureUncertainty))
	for _, e := range o.Extra {
		b.WriteByte(0x1f)
		b.WriteString(e)
	}
	return b.String()
}

func floatKey(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

package report

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/climate-stats/internal/domain"
)

const (
	sheetMoments = "Moments"
	sheetYearly  = "YearlyMeans"
)

// WriteWorkbook saves the moments table and per-year mean temperatures as
// an xlsx file. NaN cells are left empty.
func WriteWorkbook(path string, s domain.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	momentRows := make([][]any, 0, len(s.Moments))
	for _, m := range s.Moments {
		momentRows = append(momentRows, []any{
			m.Variable, m.N, cellFloat(m.Mean), cellFloat(m.Variance),
			cellFloat(m.Skewness), cellFloat(m.ExcessKurtosis),
		})
	}
	if err := writeSheet(f, sheetMoments,
		[]string{"variable", "n", "mean", "variance", "skewness", "kurtosis_excess"},
		momentRows); err != nil {
		return err
	}

	yearRows := make([][]any, 0, len(s.YearlyMeans))
	for _, y := range s.YearlyMeans {
		yearRows = append(yearRows, []any{y.Key, y.N, cellFloat(y.Mean)})
	}
	if err := writeSheet(f, sheetYearly, []string{"year", "n", "mean_temperature"}, yearRows); err != nil {
		return err
	}

	idx, err := f.GetSheetIndex(sheetMoments)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func cellFloat(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// Command validate checks a finished run against its input: it re-reads and
// re-cleans the dataset, verifies the cleaned-table invariants, compares the
// moments with short_report.txt, and confirms every expected output file
// exists.
//
// Usage:
//
//	go run ./cmd/validate -data GlobalLandTemperaturesByCity.csv -plots plots -output outputs
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/climate-stats/internal/adapter/chart"
	"github.com/couchcryptid/climate-stats/internal/adapter/csvfile"
	"github.com/couchcryptid/climate-stats/internal/adapter/report"
	"github.com/couchcryptid/climate-stats/internal/config"
	"github.com/couchcryptid/climate-stats/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		os.Exit(1)
	}

	dataFile := flag.String("data", cfg.DataFile, "input CSV the run read")
	plotsDir := flag.String("plots", cfg.PlotsDir, "directory the charts were written to")
	outputDir := flag.String("output", cfg.OutputDir, "directory the report was written to")
	flag.Parse()

	os.Exit(run(*dataFile, *plotsDir, *outputDir))
}

func run(dataFile, plotsDir, outputDir string) int {
	fmt.Println("=== Climate Run Validation ===")
	fmt.Println()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	raw, err := csvfile.NewLoader(dataFile, logger).Extract(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load input: %v\n", err)
		return 1
	}
	res, err := domain.Clean(raw, domain.DefaultSchema())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: clean input: %v\n", err)
		return 1
	}
	table := &res.Table
	moments := domain.ComputeMoments(table)

	phases := []*phase{
		validateCleanedTable(table),
		validateMoments(table, moments, filepath.Join(outputDir, report.FileText)),
		validateOutputs(table, plotsDir, outputDir),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d input, %d cleaned (%d invalid dates, %d duplicates)\n",
		raw.NumRows(), table.Len(), res.Stats.InvalidDates, res.Stats.Duplicates)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: cleaned table ──

func validateCleanedTable(t *domain.Table) *phase {
	p := &phase{name: "Phase 1: Cleaned table invariants"}
	fmt.Println("Phase 1: Checking cleaned table invariants...")

	anyTemp := false
	for i := range t.Rows {
		if !math.IsNaN(t.Rows[i].AverageTemperature) {
			anyTemp = true
			break
		}
	}

	seen := make(map[string]int, t.Len())
	for i := range t.Rows {
		o := &t.Rows[i]
		if o.Date.IsZero() {
			p.errorf("row %d: missing date", i)
		}
		if o.Month < 1 || o.Month > 12 {
			p.errorf("row %d: month %d out of range", i, o.Month)
		}
		if want := int(math.Floor(float64(o.Year)/10)) * 10; o.Decade != want {
			p.errorf("row %d: decade %d, want %d for year %d", i, o.Decade, want, o.Year)
		}
		if t.Capabilities.HasTemperature && anyTemp && math.IsNaN(o.AverageTemperature) {
			p.errorf("row %d (%s %s): temperature still missing", i, o.City, o.Date.Format("2006-01-02"))
		}
		if t.Capabilities.HasUncertainty {
			if want := domain.ClassifyUncertainty(o.AverageTemperatureUncertainty); o.UncertaintyLevel != want {
				p.errorf("row %d: uncertainty level %q, want %q", i, o.UncertaintyLevel, want)
			}
		}

		key := fmt.Sprintf("%d|%s|%v|%v|%s", o.Date.UnixNano(), o.City,
			o.AverageTemperature, o.AverageTemperatureUncertainty, strings.Join(o.Extra, "|"))
		// Imputed rows may legitimately equal a row they differed from before.
		if first, dup := seen[key]; dup && !o.TemperatureImputed && !t.Rows[first].TemperatureImputed {
			p.errorf("row %d duplicates row %d", i, first)
		}
		seen[key] = i
	}
	return p
}

// ── Phase 2: moments ──

func validateMoments(t *domain.Table, moments domain.Moments, reportPath string) *phase {
	p := &phase{name: "Phase 2: Moments and report"}
	fmt.Println("Phase 2: Checking moments against the report...")

	analyzed := make([]string, 0, len(t.NumericColumns()))
	for _, name := range t.NumericColumns() {
		if xs, _ := t.Valid(name); len(xs) > 0 {
			analyzed = append(analyzed, name)
		}
	}
	if !slices.Equal(analyzed, moments.Variables()) {
		p.errorf("moments variables %v, want %v", moments.Variables(), analyzed)
	}
	for _, m := range moments {
		if slices.Contains([]string{domain.ColYear, domain.ColMonth, domain.ColDecade}, m.Variable) {
			p.errorf("calendar field %s analyzed", m.Variable)
		}
		if m.Variance < 0 {
			p.errorf("%s: negative variance %g", m.Variable, m.Variance)
		}
	}

	rows, vars, table, err := readReport(reportPath)
	if err != nil {
		p.errorf("read report: %v", err)
		return p
	}
	if rows != t.Len() {
		p.errorf("report rows %d, want %d", rows, t.Len())
	}
	if !slices.Equal(vars, moments.Variables()) {
		p.errorf("report variables %v, want %v", vars, moments.Variables())
	}
	for _, m := range moments {
		got, ok := table[m.Variable]
		if !ok {
			p.errorf("report has no moments row for %s", m.Variable)
			continue
		}
		checkClose(p, m.Variable, "mean", got[0], m.Mean)
		checkClose(p, m.Variable, "variance", got[1], m.Variance)
		checkClose(p, m.Variable, "skewness", got[2], m.Skewness)
		checkClose(p, m.Variable, "kurtosis_excess", got[3], m.ExcessKurtosis)
	}
	return p
}

func checkClose(p *phase, variable, field string, got, want float64) {
	if math.IsNaN(got) && math.IsNaN(want) {
		return
	}
	if math.Abs(got-want) > 5e-6*math.Max(1, math.Abs(want)) {
		p.errorf("%s %s: report %g, computed %g", variable, field, got, want)
	}
}

// readReport parses the row count, analyzed variables and moments rows.
func readReport(path string) (rows int, vars []string, moments map[string][4]float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, nil, err
	}
	defer f.Close()

	moments = make(map[string][4]float64)
	inTable := false
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "Rows after cleaning: "):
			rows, err = strconv.Atoi(strings.TrimPrefix(line, "Rows after cleaning: "))
			if err != nil {
				return 0, nil, nil, fmt.Errorf("row count: %w", err)
			}
		case strings.HasPrefix(line, "Numeric columns analyzed:"):
			for _, v := range strings.Split(strings.TrimPrefix(line, "Numeric columns analyzed:"), ",") {
				if v = strings.TrimSpace(v); v != "" {
					vars = append(vars, v)
				}
			}
		case strings.HasPrefix(strings.TrimSpace(line), "variable"):
			inTable = true
		case inTable:
			fields := strings.Fields(line)
			if len(fields) != 5 {
				continue
			}
			var vals [4]float64
			for i, s := range fields[1:] {
				if vals[i], err = strconv.ParseFloat(s, 64); err != nil {
					return 0, nil, nil, fmt.Errorf("moments row %s: %w", fields[0], err)
				}
			}
			moments[fields[0]] = vals
		}
	}
	return rows, vars, moments, sc.Err()
}

// ── Phase 3: output files ──

func validateOutputs(t *domain.Table, plotsDir, outputDir string) *phase {
	p := &phase{name: "Phase 3: Output files"}
	fmt.Println("Phase 3: Checking output files...")

	want := []string{chart.FileTrend, chart.FileHist, chart.FileBar, chart.FileHeatmap, chart.FileBoxplot, chart.FileViolin}
	absent := []string{}
	if t.Capabilities.HasUncertainty {
		if levelsCounted(t) {
			want = append(want, chart.FilePie)
		}
		if xs, _, _ := domain.CompletePairs(t, domain.ColAvgTemperature, domain.ColAvgTemperatureUncert); len(xs) > 0 {
			want = append(want, chart.FilePairplot)
		}
	} else {
		absent = append(absent, chart.FilePie, chart.FilePairplot)
	}

	for _, name := range want {
		checkFile(p, filepath.Join(plotsDir, name))
	}
	for _, name := range absent {
		if _, err := os.Stat(filepath.Join(plotsDir, name)); err == nil {
			p.errorf("%s present but the input has no uncertainty column", name)
		}
	}
	checkFile(p, filepath.Join(outputDir, report.FileText))
	return p
}

func levelsCounted(t *domain.Table) bool {
	for _, lc := range domain.CountUncertaintyLevels(t) {
		if lc.Count > 0 {
			return true
		}
	}
	return false
}

func checkFile(p *phase, path string) {
	info, err := os.Stat(path)
	switch {
	case err != nil:
		p.errorf("missing %s", path)
	case info.Size() == 0:
		p.errorf("empty %s", path)
	}
}

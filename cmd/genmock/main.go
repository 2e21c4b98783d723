// Command genmock writes a synthetic GlobalLandTemperaturesByCity-shaped CSV
// for local runs and test fixtures. Output is deterministic for a given seed.
// It runs the real cleaning and statistics code over the generated rows and
// prints the figures tests assert on.
//
// Usage:
//
//	go run ./cmd/genmock -out GlobalLandTemperaturesByCity.csv -years 40
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/climate-stats/internal/config"
	"github.com/couchcryptid/climate-stats/internal/domain"
)

type city struct {
	name      string
	country   string
	lat       string
	lon       string
	mean      float64 // annual mean temperature, °C
	amplitude float64 // half the summer-winter spread; negative south of the equator
}

var cities = []city{
	{"Århus", "Denmark", "57.05N", "10.33E", 7.8, 8.0},
	{"Abidjan", "Côte D'Ivoire", "5.63N", "3.23W", 26.3, 1.5},
	{"Melbourne", "Australia", "37.78S", "144.41E", 14.9, -5.5},
	{"Montreal", "Canada", "45.81N", "72.69W", 6.2, 15.5},
	{"Lima", "Peru", "12.05S", "77.26W", 19.4, -3.2},
}

var header = []string{"dt", "AverageTemperature", "AverageTemperatureUncertainty", "City", "Country", "Latitude", "Longitude"}

// Per-row probabilities of injected defects.
const (
	pMissing   = 0.04
	pDuplicate = 0.01
	pBadDate   = 0.005
	pWildUncer = 0.003
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	out := flag.String("out", cfg.DataFile, "output CSV path")
	startYear := flag.Int("start", 1950, "first year generated")
	years := flag.Int("years", 40, "number of years per city")
	seed := flag.Uint64("seed", cfg.RandomSeed, "random seed")
	flag.Parse()

	if *years < 1 {
		return fmt.Errorf("-years must be positive, got %d", *years)
	}

	raw := generate(rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)), *startYear, *years)
	log.Printf("generated %d rows for %d cities", raw.NumRows(), len(cities))

	if err := writeCSV(*out, raw); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	log.Printf("wrote %s", *out)

	return printStats(raw)
}

func generate(r *rand.Rand, startYear, years int) domain.RawTable {
	start := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows := make([][]string, 0, len(cities)*years*12)

	for _, c := range cities {
		for i := range years * 12 {
			date := start.AddDate(0, i, 0)
			row := []string{
				date.Format("2006-01-02"),
				"",
				"",
				c.name, c.country, c.lat, c.lon,
			}

			if r.Float64() >= pMissing {
				row[1] = formatReading(temperature(r, c, date, startYear))
				row[2] = formatReading(uncertainty(r, date, startYear))
			}
			if r.Float64() < pBadDate {
				row[0] = "n/a"
			}

			rows = append(rows, row)
			if r.Float64() < pDuplicate {
				rows = append(rows, append([]string(nil), row...))
			}
		}
	}
	return domain.RawTable{Header: header, Rows: rows}
}

// temperature is a seasonal cycle peaking in July, a warming trend of
// 0.02 °C per year and Gaussian noise.
func temperature(r *rand.Rand, c city, date time.Time, startYear int) float64 {
	phase := 2 * math.Pi * float64(int(date.Month())-7) / 12
	trend := 0.02 * float64(date.Year()-startYear)
	return c.mean + c.amplitude*math.Cos(phase) + trend + r.NormFloat64()*0.8
}

// uncertainty shrinks from about 2 °C to about 0.3 °C over a century, with
// rare readings above the labeled range.
func uncertainty(r *rand.Rand, date time.Time, startYear int) float64 {
	if r.Float64() < pWildUncer {
		return 5 + r.Float64()*3
	}
	age := float64(date.Year() - startYear)
	base := 0.3 + 1.7*math.Exp(-age/30)
	return math.Max(0.05, base+r.NormFloat64()*0.1)
}

func formatReading(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func writeCSV(path string, raw domain.RawTable) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	records := append([][]string{raw.Header}, raw.Rows...)
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return df.Err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := df.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printStats(raw domain.RawTable) error {
	res, err := domain.Clean(raw, domain.DefaultSchema())
	if err != nil {
		return fmt.Errorf("clean generated rows: %w", err)
	}
	s := res.Stats

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Input rows: %d\n", s.InputRows)
	fmt.Printf("Rows after cleaning: %d\n", res.Table.Len())
	fmt.Printf("Dropped: invalid_date=%d, duplicate=%d\n", s.InvalidDates, s.Duplicates)
	fmt.Printf("Imputed: interpolation=%d, median=%d\n", s.Interpolated, s.MedianFilled)

	fmt.Println("\nUncertainty levels:")
	for _, lc := range domain.CountUncertaintyLevels(&res.Table) {
		fmt.Printf("  %-8s %d\n", lc.Level, lc.Count)
	}

	fmt.Println("\nMoments:")
	for _, m := range domain.ComputeMoments(&res.Table) {
		fmt.Printf("  %s: n=%d mean=%.4f variance=%.4f skewness=%.4f kurtosis_excess=%.4f\n",
			m.Variable, m.N, m.Mean, m.Variance, m.Skewness, m.ExcessKurtosis)
	}
	return nil
}

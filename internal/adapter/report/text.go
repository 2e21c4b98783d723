// Package report writes the run summary: a plain-text report and an
// optional spreadsheet copy of the same figures.
package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/couchcryptid/climate-stats/internal/domain"
)

// Output file names.
const (
	FileText     = "short_report.txt"
	FileWorkbook = "short_report.xlsx"
)

const reportTitle = "Climate Data Analysis Report"

// Writer writes reports into a directory.
// It implements pipeline.Reporter.
type Writer struct {
	dir      string
	workbook bool
	logger   *slog.Logger
}

// NewWriter creates a Writer. When workbook is true an xlsx copy is written
// next to the text report.
func NewWriter(dir string, workbook bool, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, workbook: workbook, logger: logger}
}

// Write creates the output directory and writes the report files,
// overwriting existing ones. It returns the file names written.
func (w *Writer) Write(ctx context.Context, s domain.Summary) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteText(&buf, s); err != nil {
		return nil, fmt.Errorf("format report: %w", err)
	}
	path := filepath.Join(w.dir, FileText)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	w.logger.Info("saved report", "path", path)
	written := []string{FileText}

	if !w.workbook {
		return written, nil
	}
	if err := ctx.Err(); err != nil {
		return written, err
	}
	path = filepath.Join(w.dir, FileWorkbook)
	if err := WriteWorkbook(path, s); err != nil {
		return written, fmt.Errorf("write workbook: %w", err)
	}
	w.logger.Info("saved workbook", "path", path)
	return append(written, FileWorkbook), nil
}

// WriteText renders the text report.
func WriteText(out io.Writer, s domain.Summary) error {
	var b strings.Builder
	b.WriteString(reportTitle + "\n")
	b.WriteString(strings.Repeat("=", 40) + "\n")
	fmt.Fprintf(&b, "Rows after cleaning: %d\n", s.Rows)
	fmt.Fprintf(&b, "Numeric columns analyzed: %s\n", strings.Join(s.Moments.Variables(), ", "))
	b.WriteString("\nStatistical moments:\n")
	if _, err := io.WriteString(out, b.String()); err != nil {
		return err
	}
	return writeMomentsTable(out, s.Moments)
}

func writeMomentsTable(out io.Writer, moments domain.Moments) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "variable\tmean\tvariance\tskewness\tkurtosis_excess\t")
	for _, m := range moments {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			m.Variable,
			formatFloat(m.Mean),
			formatFloat(m.Variance),
			formatFloat(m.Skewness),
			formatFloat(m.ExcessKurtosis),
		)
	}
	return tw.Flush()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

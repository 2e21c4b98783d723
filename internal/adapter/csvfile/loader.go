package csvfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/climate-stats/internal/domain"
)

// ErrInputNotFound is returned when the input CSV does not exist.
var ErrInputNotFound = errors.New("input file not found")

// Loader reads the input CSV into a raw table.
// It implements pipeline.Extractor.
type Loader struct {
	path   string
	logger *slog.Logger
}

// NewLoader creates a Loader for the CSV at path.
func NewLoader(path string, logger *slog.Logger) *Loader {
	return &Loader{path: path, logger: logger}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string { return l.path }

// Extract opens and parses the CSV. A missing file yields ErrInputNotFound.
func (l *Loader) Extract(_ context.Context) (domain.RawTable, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.RawTable{}, fmt.Errorf("%w: %s", ErrInputNotFound, l.path)
		}
		return domain.RawTable{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	table, err := Read(f)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("read %s: %w", l.path, err)
	}

	l.logger.Info("loaded input",
		"path", l.path,
		"rows", table.NumRows(),
		"columns", table.NumCols(),
	)
	return table, nil
}

// Read parses CSV from r. Every column is read as text; typing happens
// during cleaning so a malformed cell never fails the whole load.
func Read(r io.Reader) (domain.RawTable, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{}),
	)
	if df.Err != nil {
		return domain.RawTable{}, fmt.Errorf("parse csv: %w", df.Err)
	}

	records := df.Records()
	if len(records) == 0 {
		return domain.RawTable{}, errors.New("parse csv: no header")
	}
	return domain.RawTable{Header: records[0], Rows: records[1:]}, nil
}

package source

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"cdm-mapper/internal/frame"
)

const utf8BOM = "\ufeff"

// Options configures CSV loading.
type Options struct {
	// TrimSuffix drops the ".csv" extension from table names.
	TrimSuffix bool
	// StripName truncates table names to at most this many characters.
	StripName int
	// Logger receives progress messages; defaults to a no-op logger.
	Logger *zap.Logger
}

// TableName derives a table name from a file path.
func TableName(path string, opts Options) string {
	name := strings.ToLower(filepath.Base(path))
	if opts.TrimSuffix {
		name = strings.TrimSuffix(name, ".csv")
	}

	if opts.StripName > 0 && len([]rune(name)) > opts.StripName {
		name = string([]rune(name)[:opts.StripName])
	}

	return name
}

// LoadCSV loads CSV files into a dataset.
func LoadCSV(paths []string, opts Options) (*Dataset, error) {
	if len(paths) == 0 {
		return nil, ErrNoInputs
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ds := NewDataset()

	for _, path := range paths {
		f, err := readFile(path)
		if err != nil {
			return nil, err
		}

		name := TableName(path, opts)
		if _, dup := ds.Table(name); dup {
			logger.Warn("input table loaded twice, keeping the last one", zap.String("table", name))
		}

		ds.Add(name, f)
		logger.Info("loaded input",
			zap.String("table", name), zap.String("path", path),
			zap.Int("rows", f.Len()), zap.Int("columns", len(f.Columns())))
	}

	return ds, nil
}

// LoadDir loads every *.csv file of a directory, in name order.
func LoadDir(dir string, opts Options) (*Dataset, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", dir)
	}

	slices.Sort(paths)

	ds, err := LoadCSV(paths, opts)
	if errors.Is(err, ErrNoInputs) {
		return nil, errors.Wrapf(err, "no .csv files in %s", dir)
	}

	return ds, err
}

func readFile(path string) (*frame.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening input")
	}
	defer file.Close()

	f, err := ReadCSV(file)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}

	return f, nil
}

// ReadCSV reads a CSV stream with a header row into a frame. Empty cells
// become nulls.
func ReadCSV(r io.Reader) (*frame.Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return frame.New(), nil
	}

	if err != nil {
		return nil, errors.Wrap(err, "reading CSV header")
	}

	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}

		header[i] = strings.TrimSpace(h)
	}

	var rows [][]string
	for i := 1; ; i++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, errors.Wrapf(err, "row %d: reading CSV record", i)
		}

		rows = append(rows, record)
	}

	return frame.FromRecords(header, rows), nil
}

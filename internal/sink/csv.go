package sink

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"cdm-mapper/internal/common"
	"cdm-mapper/internal/frame"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// CSVDir writes each table to {Dir}/{table}.csv. The directory is created
// when the first table is written.
type CSVDir struct {
	Dir    string
	Logger *zap.Logger
}

// NewCSVDir creates a CSV directory sink.
func NewCSVDir(dir string, logger *zap.Logger) *CSVDir {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CSVDir{Dir: dir, Logger: logger}
}

// Path returns the file a table is written to.
func (s *CSVDir) Path(table string) string {
	return filepath.Join(s.Dir, table+".csv")
}

// Write writes a table with a header row. Nulls are written as empty
// cells.
func (s *CSVDir) Write(_ context.Context, table string, f *frame.Frame) error {
	if f.Empty() {
		return nil
	}

	err := os.MkdirAll(s.Dir, dirPerm)
	if err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	path := s.Path(table)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, filePerm)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}

	if err := writeCSV(file, f); err != nil {
		_ = file.Close()
		return errors.Wrapf(err, "writing %s", path)
	}

	if err := file.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", path)
	}

	s.Logger.Info("saved table", zap.String("table", table), zap.String("path", path), zap.Int("rows", f.Len()))

	return nil
}

func writeCSV(file *os.File, f *frame.Frame) error {
	w := csv.NewWriter(file)
	if err := w.Write(f.Columns()); err != nil {
		return err
	}

	record := make([]string, len(f.Columns()))
	for i := 0; i < f.Len(); i++ {
		for c, v := range f.Row(i) {
			record[c] = common.Format(v)
		}

		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

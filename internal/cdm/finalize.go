package cdm

import (
	"slices"

	"github.com/cockroachdb/errors"

	"cdm-mapper/internal/common"
	"cdm-mapper/internal/frame"
	"cdm-mapper/internal/ops"
)

// Derive fills the table's derived columns in place and returns the names
// of the columns it filled. A derived column is filled only when it is
// missing or entirely null and its source column is present.
func (t *Table) Derive(f *frame.Frame, operations *ops.Registry) ([]string, error) {
	var filled []string

	for _, d := range t.Derived {
		if col, ok := f.Column(d.Field); ok && !allNull(col) {
			continue
		}

		from, ok := f.Column(d.From)
		if !ok || allNull(from) {
			continue
		}

		op := operations.Get(d.Operation)
		if op == nil {
			return filled, errors.Newf("derived field %s.%s: operation %q not registered", t.Name, d.Field, d.Operation)
		}

		if err := f.SetColumn(d.Field, op(from)); err != nil {
			return filled, errors.Wrapf(err, "derived field %s.%s", t.Name, d.Field)
		}

		filled = append(filled, d.Field)
	}

	return filled, nil
}

// Finalize returns a frame holding exactly the table's columns in schema
// order. Present columns are kept, required columns that are missing are
// backfilled (auto-increment keys with 1..n, others with nulls) and columns
// outside the schema are dropped.
func (t *Table) Finalize(f *frame.Frame) (*frame.Frame, error) {
	n := f.Len()
	out := frame.New()

	for _, c := range t.Columns {
		col, ok := f.Column(c.Name)

		switch {
		case ok:
		case c.AutoIncrement:
			col = sequence(n)
		case c.Required:
			col = make([]any, n)
		default:
			continue
		}

		if err := out.SetColumn(c.Name, col); err != nil {
			return nil, errors.Wrapf(err, "finalizing %s", t.Name)
		}
	}

	return out, nil
}

// Extraneous returns the columns of f that are not part of the table.
func (t *Table) Extraneous(f *frame.Frame) []string {
	names := t.ColumnNames()

	var out []string
	for _, c := range f.Columns() {
		if !slices.Contains(names, c) {
			out = append(out, c)
		}
	}

	return out
}

func sequence(n int) []any {
	col := make([]any, n)
	for i := range col {
		col[i] = int64(i + 1)
	}

	return col
}

func allNull(col []any) bool {
	for _, v := range col {
		if !common.IsNull(v) {
			return false
		}
	}

	return true
}

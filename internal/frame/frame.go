package frame

import (
	"slices"

	"github.com/cockroachdb/errors"

	"cdm-mapper/internal/common"
)

// Frame is a column-oriented table. All columns have the same length.
type Frame struct {
	columns []string
	data    map[string][]any
	nrows   int

	indexName string
	index     map[string]int
}

// New creates an empty frame with the given columns and zero rows.
func New(columns ...string) *Frame {
	f := &Frame{data: make(map[string][]any, len(columns))}
	for _, c := range columns {
		if _, ok := f.data[c]; ok {
			continue
		}

		f.columns = append(f.columns, c)
		f.data[c] = []any{}
	}

	return f
}

// FromRecords builds a frame from a header and string rows, as read from a
// CSV file. Empty cells become null. Short rows are padded with nulls.
// A repeated header name keeps its first column.
func FromRecords(header []string, rows [][]string) *Frame {
	f := New()
	f.nrows = len(rows)

	for ci, c := range header {
		if _, ok := f.data[c]; ok {
			continue
		}

		col := make([]any, len(rows))
		for ri, row := range rows {
			if ci < len(row) && row[ci] != "" {
				col[ri] = row[ci]
			}
		}

		f.columns = append(f.columns, c)
		f.data[c] = col
	}

	return f
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	return slices.Clone(f.columns)
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}

	return f.nrows
}

// Empty reports whether the frame is nil or has no rows.
func (f *Frame) Empty() bool {
	return f.Len() == 0
}

// HasColumn reports whether the frame has a column with the given name.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.data[name]
	return ok
}

// Column returns the values of a column. The returned slice must not be
// modified; use SetColumn to replace values.
func (f *Frame) Column(name string) ([]any, bool) {
	col, ok := f.data[name]
	return col, ok
}

// SetColumn replaces or appends a column. The first column set on a frame
// with no columns fixes the row count; later columns must match it.
func (f *Frame) SetColumn(name string, values []any) error {
	if len(f.columns) == 0 || (len(f.columns) == 1 && f.HasColumn(name)) {
		f.nrows = len(values)
	} else if len(values) != f.nrows {
		return errors.Newf("column %q has %d rows, frame has %d", name, len(values), f.nrows)
	}

	if !f.HasColumn(name) {
		f.columns = append(f.columns, name)
	}

	f.data[name] = values

	if name == f.indexName {
		f.buildIndex()
	}

	return nil
}

// DropColumn removes a column if present.
func (f *Frame) DropColumn(name string) {
	if !f.HasColumn(name) {
		return
	}

	delete(f.data, name)
	f.columns = slices.DeleteFunc(f.columns, func(c string) bool { return c == name })

	if name == f.indexName {
		f.indexName = ""
		f.index = nil
	}

	if len(f.columns) == 0 {
		f.nrows = 0
	}
}

// RenameColumns renames columns through fn. Names mapping to an existing
// different column are rejected.
func (f *Frame) RenameColumns(fn func(string) string) error {
	renamed := make([]string, len(f.columns))
	data := make(map[string][]any, len(f.columns))

	for i, c := range f.columns {
		n := fn(c)
		if _, dup := data[n]; dup {
			return errors.Newf("renaming %q produces duplicate column %q", c, n)
		}

		renamed[i] = n
		data[n] = f.data[c]
	}

	if f.indexName != "" {
		f.indexName = fn(f.indexName)
	}

	f.columns = renamed
	f.data = data

	return nil
}

// Row returns the cell values of row i in column order.
func (f *Frame) Row(i int) []any {
	row := make([]any, len(f.columns))
	for ci, c := range f.columns {
		row[ci] = f.data[c][i]
	}

	return row
}

// Select returns a new frame with the given columns in the given order.
// Columns absent from f are skipped.
func (f *Frame) Select(columns ...string) *Frame {
	out := New()
	out.nrows = f.nrows

	for _, c := range columns {
		col, ok := f.data[c]
		if !ok || out.HasColumn(c) {
			continue
		}

		out.columns = append(out.columns, c)
		out.data[c] = col
	}

	if out.HasColumn(f.indexName) {
		out.indexName = f.indexName
		out.index = f.index
	}

	return out
}

// Slice returns rows [start, end) as a new frame sharing no column slices
// with f. The index, if any, is rebuilt for the slice.
func (f *Frame) Slice(start, end int) *Frame {
	start = max(0, min(start, f.nrows))
	end = max(start, min(end, f.nrows))

	out := New()
	out.nrows = end - start

	for _, c := range f.columns {
		out.columns = append(out.columns, c)
		out.data[c] = slices.Clone(f.data[c][start:end])
	}

	if f.indexName != "" {
		out.indexName = f.indexName
		out.buildIndex()
	}

	return out
}

// Clone returns a deep copy of the frame's column slices.
func (f *Frame) Clone() *Frame {
	return f.Slice(0, f.nrows)
}

// Chunks splits the frame into consecutive row chunks of at most size rows.
// A size <= 0 returns the frame itself as the only chunk.
func (f *Frame) Chunks(size int) []*Frame {
	if size <= 0 || f.nrows <= size {
		return []*Frame{f}
	}

	var out []*Frame
	for start := 0; start < f.nrows; start += size {
		out = append(out, f.Slice(start, start+size))
	}

	return out
}

// SetIndex indexes rows by the values of column. When a key occurs more
// than once the first row wins.
func (f *Frame) SetIndex(column string) error {
	if !f.HasColumn(column) {
		return errors.Newf("index column %q not found", column)
	}

	f.indexName = column
	f.buildIndex()

	return nil
}

// IndexName returns the name of the index column, or "" when unindexed.
func (f *Frame) IndexName() string {
	return f.indexName
}

// Lookup returns the first row whose index value has the same canonical
// form as key.
func (f *Frame) Lookup(key any) (int, bool) {
	if f.index == nil {
		return 0, false
	}

	k, ok := common.Key(key)
	if !ok {
		return 0, false
	}

	row, ok := f.index[k]

	return row, ok
}

func (f *Frame) buildIndex() {
	col := f.data[f.indexName]
	f.index = make(map[string]int, len(col))

	for i, v := range col {
		k, ok := common.Key(v)
		if !ok {
			continue
		}

		if _, seen := f.index[k]; !seen {
			f.index[k] = i
		}
	}
}

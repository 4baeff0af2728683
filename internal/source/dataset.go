package source

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"cdm-mapper/internal/diagnostic"
	"cdm-mapper/internal/frame"
	"cdm-mapper/internal/rules"
)

// ErrNoInputs is returned when no input table was supplied.
var ErrNoInputs = errors.New("no input tables")

// Dataset is an ordered set of named source tables.
type Dataset struct {
	names  []string
	tables map[string]*frame.Frame
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{tables: make(map[string]*frame.Frame)}
}

// Add adds or replaces a table. Names are lower-cased.
func (d *Dataset) Add(name string, f *frame.Frame) {
	key := normalize(name)
	if _, ok := d.tables[key]; !ok {
		d.names = append(d.names, key)
	}

	d.tables[key] = f
}

// Table returns a table by name.
func (d *Dataset) Table(name string) (*frame.Frame, bool) {
	if d == nil {
		return nil, false
	}

	f, ok := d.tables[normalize(name)]

	return f, ok
}

// Names returns the table names in the order they were added.
func (d *Dataset) Names() []string {
	return slices.Clone(d.names)
}

// Len returns the number of tables; a nil dataset has none.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}

	return len(d.names)
}

// Rows returns the row count of the longest table.
func (d *Dataset) Rows() int {
	n := 0
	for _, f := range d.tables {
		n = max(n, f.Len())
	}

	return n
}

// Catalog lists the loaded tables and their columns.
func (d *Dataset) Catalog() rules.Catalog {
	c := make(rules.Catalog, len(d.names))
	for _, name := range d.names {
		c[name] = d.tables[name].Columns()
	}

	return c
}

// SetIndexing indexes tables by an identifier column, given as source table
// -> column. Column names match case-insensitively. Tables or columns that
// are not loaded are reported as warnings and left unindexed.
func (d *Dataset) SetIndexing(index map[string]string) *diagnostic.Diagnostics {
	diags := &diagnostic.Diagnostics{}

	tables := make([]string, 0, len(index))
	for table := range index {
		tables = append(tables, table)
	}

	slices.Sort(tables)

	for _, table := range tables {
		column := index[table]

		f, ok := d.Table(table)
		if !ok {
			diags.AddWarning("index_table_not_loaded",
				fmt.Sprintf("cannot index %q by %q: table not loaded", table, column), table, column)

			continue
		}

		name, ok := findColumn(f, column)
		if !ok {
			diags.AddWarning("index_column_not_found",
				fmt.Sprintf("cannot index %q by %q: column not found", table, column), table, column)

			continue
		}

		if err := f.SetIndex(name); err != nil {
			diags.AddWarning("index_failed", err.Error(), table, column)
		}
	}

	return diags
}

// Reduce keeps only the tables and columns named in fields (source table
// -> columns), plus index columns: the current index and the person id
// column declared in index (source table -> column), matched
// case-insensitively. Unreferenced tables are dropped.
func (d *Dataset) Reduce(fields map[string][]string, index map[string]string) *diagnostic.Diagnostics {
	diags := &diagnostic.Diagnostics{}

	wanted := make(map[string][]string, len(fields))
	for table, cols := range fields {
		key := normalize(table)
		wanted[key] = append(wanted[key], cols...)
	}

	for table, col := range index {
		key := normalize(table)
		if _, ok := wanted[key]; !ok {
			continue
		}

		if f, ok := d.tables[key]; ok {
			if c, found := findColumn(f, col); found {
				wanted[key] = append(wanted[key], c)
			}
		}
	}

	kept := d.names[:0]
	for _, name := range d.names {
		cols, ok := wanted[name]
		if !ok {
			diags.AddInfo("table_not_referenced", "table is not used by any rule and was dropped", name, "")
			delete(d.tables, name)

			continue
		}

		f := d.tables[name]
		if idx := f.IndexName(); idx != "" && !slices.Contains(cols, idx) {
			cols = append(cols, idx)
		}

		for _, c := range f.Columns() {
			if !slices.Contains(cols, c) {
				f.DropColumn(c)
			}
		}

		kept = append(kept, name)
	}

	d.names = kept

	return diags
}

// Chunk is a view of a dataset in which one table is restricted to a row
// range and every other table is whole.
type Chunk struct {
	*Dataset

	table string
	start int
	total int
}

// Span returns the first row of table's range in the full table and the
// full table's row count. Tables that are not chunked span all their rows.
func (c *Chunk) Span(table string) (start, total int) {
	if normalize(table) == c.table {
		return c.start, c.total
	}

	f, _ := c.Table(table)

	return 0, f.Len()
}

// Chunks splits the rows of table into chunks of at most size rows. Every
// chunk carries the other tables whole, so index and positional lookups
// into them see the same rows as an unchunked run. maxChunks > 0 caps the
// number of chunks. A size <= 0 or a table that is not loaded gives a
// single chunk over the whole dataset.
func (d *Dataset) Chunks(table string, size, maxChunks int) []*Chunk {
	key := normalize(table)

	f, ok := d.tables[key]
	if !ok || size <= 0 {
		return []*Chunk{{Dataset: d, table: key, total: f.Len()}}
	}

	n := max(1, (f.Len()+size-1)/size)
	if maxChunks > 0 {
		n = min(n, maxChunks)
	}

	chunks := make([]*Chunk, n)
	for k := range chunks {
		view := &Dataset{names: d.names, tables: maps.Clone(d.tables)}
		view.tables[key] = f.Slice(k*size, (k+1)*size)

		chunks[k] = &Chunk{Dataset: view, table: key, start: k * size, total: f.Len()}
	}

	return chunks
}

func findColumn(f *frame.Frame, name string) (string, bool) {
	for _, c := range f.Columns() {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}

	return "", false
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

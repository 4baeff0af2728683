package mapper

import (
	"fmt"
	"slices"

	"github.com/cockroachdb/errors"

	"cdm-mapper/internal/compile"
	"cdm-mapper/internal/diagnostic"
	"cdm-mapper/internal/frame"
	"cdm-mapper/internal/ops"
)

// Inputs gives access to loaded source tables by lower-case name.
type Inputs interface {
	Table(name string) (*frame.Frame, bool)
}

// Spans is implemented by inputs that expose a row range of a table
// rather than the whole table, such as dataset chunks.
type Spans interface {
	// Span returns the first row of table's range in the full table and
	// the full table's row count.
	Span(table string) (start, total int)
}

// Object is an executable mapping object.
type Object struct {
	def        *compile.Definition
	operations *ops.Registry
}

// New creates an object for a definition. A nil registry uses
// ops.Default().
func New(def *compile.Definition, operations *ops.Registry) *Object {
	if operations == nil {
		operations = ops.Default()
	}

	return &Object{def: def, operations: operations}
}

// Name returns the definition name.
func (o *Object) Name() string {
	return o.def.Name
}

// Table returns the destination table.
func (o *Object) Table() string {
	return o.def.Table
}

// Definition returns the underlying definition.
func (o *Object) Definition() *compile.Definition {
	return o.def
}

// Execute runs the object against inputs. Bindings that cannot be satisfied
// are skipped with a warning; an unknown operation is an error.
func (o *Object) Execute(in Inputs) (*frame.Frame, *diagnostic.Diagnostics, error) {
	diags := &diagnostic.Diagnostics{}
	values := make(map[string][]any, len(o.def.Bindings))

	primaryName := o.def.PrimaryTable()
	primary, _ := in.Table(primaryName)

	start, total := 0, primary.Len()
	if s, ok := in.(Spans); ok {
		start, total = s.Span(primaryName)
	}

	for _, b := range o.def.Bindings {
		col, ok := o.bind(in, b, primaryName, primary, start, total, diags)
		if ok {
			values[b.Field] = col
		}
	}

	for _, step := range o.def.Operations {
		col, ok := values[step.Field]
		if !ok {
			continue
		}

		fn := o.operations.Get(step.Operation)
		if fn == nil {
			return nil, diags, errors.Wrapf(compile.ErrUnknownOperation,
				"%s.%s: %q", o.def.Name, step.Field, step.Operation)
		}

		values[step.Field] = fn(col)
	}

	for _, tm := range o.def.TermMaps {
		col, ok := values[tm.Field]
		if !ok {
			continue
		}

		mapped := make([]any, len(col))
		for i, v := range col {
			mapped[i] = tm.Mapping.Map(v)
		}

		values[tm.Field] = mapped
	}

	out := frame.New()
	for _, field := range o.def.Fields() {
		col, ok := values[field]
		if !ok {
			continue
		}

		if err := out.SetColumn(field, col); err != nil {
			return nil, diags, errors.Wrapf(err, "%s", o.def.Name)
		}
	}

	return out, diags, nil
}

// bind reads the source column of b, aligned to the primary table's rows.
func (o *Object) bind(
	in Inputs,
	b compile.Binding,
	primaryName string,
	primary *frame.Frame,
	start, total int,
	diags *diagnostic.Diagnostics,
) ([]any, bool) {
	src, ok := in.Table(b.SourceTable)
	if !ok {
		diags.AddWarning("source_table_not_loaded",
			fmt.Sprintf("source table %q is not loaded; field skipped", b.SourceTable), o.def.Name, b.Field)

		return nil, false
	}

	col, ok := src.Column(b.SourceField)
	if !ok {
		diags.AddWarning("source_field_not_found",
			fmt.Sprintf("column %q not found in %q; field skipped", b.SourceField, b.SourceTable), o.def.Name, b.Field)

		return nil, false
	}

	if b.SourceTable == primaryName {
		return slices.Clone(col), true
	}

	aligned, ok := align(primary, src, col, start, total)
	if !ok {
		diags.AddWarning("unaligned_source",
			fmt.Sprintf("rows of %q cannot be aligned with %q; field skipped", b.SourceTable, primaryName),
			o.def.Name, b.Field)

		return nil, false
	}

	return aligned, true
}

// align maps col, a column of src, onto the rows of primary. primary holds
// rows [start, start+primary.Len()) of a table with total rows. Indexed
// tables align by key, tables with equal row counts by position.
func align(primary, src *frame.Frame, col []any, start, total int) ([]any, bool) {
	if primary == nil {
		return nil, false
	}

	if primary.IndexName() != "" && src.IndexName() != "" {
		keys, _ := primary.Column(primary.IndexName())
		out := make([]any, len(keys))

		for i, k := range keys {
			if j, ok := src.Lookup(k); ok {
				out[i] = col[j]
			}
		}

		return out, true
	}

	if total == src.Len() {
		return slices.Clone(col[start : start+primary.Len()]), true
	}

	return nil, false
}

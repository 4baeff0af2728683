package mapper

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdm-mapper/internal/compile"
	"cdm-mapper/internal/frame"
	"cdm-mapper/internal/rules"
)

type tables map[string]*frame.Frame

func (t tables) Table(name string) (*frame.Frame, bool) {
	f, ok := t[name]
	return f, ok
}

func demo() *frame.Frame {
	return frame.FromRecords(
		[]string{"subject_id", "sex", "dob"},
		[][]string{{"101", "M", "1980-05-17"}, {"102", "F", ""}, {"101", "M", "1980-05-17"}},
	)
}

func personDef() *compile.Definition {
	return &compile.Definition{
		Name:  "person_0",
		Table: "person",
		Bindings: []compile.Binding{
			{Field: "birth_datetime", SourceTable: "demo", SourceField: "dob"},
			{Field: "gender_concept_id", SourceTable: "demo", SourceField: "sex"},
			{Field: "person_id", SourceTable: "demo", SourceField: "subject_id"},
			{Field: "race_concept_id", SourceTable: "demo", SourceField: "sex"},
		},
		Operations: []compile.Step{{Field: "birth_datetime", Operation: "get_datetime"}},
		TermMaps: []compile.TermMap{
			{Field: "gender_concept_id", Mapping: *rules.NewLookup(map[string]any{"M": 8507, "F": 8532})},
			{Field: "race_concept_id", Mapping: *rules.NewScalar(0)},
		},
	}
}

func TestExecute(t *testing.T) {
	obj := New(personDef(), nil)
	assert.Equal(t, "person_0", obj.Name())
	assert.Equal(t, "person", obj.Table())

	out, diags, err := obj.Execute(tables{"demo": demo()})
	require.NoError(t, err)
	assert.False(t, diags.HasWarnings())

	assert.Equal(t, []string{"birth_datetime", "gender_concept_id", "person_id", "race_concept_id"}, out.Columns())
	assert.Equal(t, 3, out.Len())

	col, _ := out.Column("gender_concept_id")
	assert.Equal(t, []any{8507, 8532, 8507}, col)

	col, _ = out.Column("race_concept_id")
	assert.Equal(t, []any{0, 0, 0}, col)

	col, _ = out.Column("birth_datetime")
	assert.Equal(t, []any{"1980-05-17 00:00:00", nil, "1980-05-17 00:00:00"}, col)

	col, _ = out.Column("person_id")
	assert.Equal(t, []any{"101", "102", "101"}, col)
}

func TestExecute_DoesNotModifyInputs(t *testing.T) {
	in := demo()

	_, _, err := New(personDef(), nil).Execute(tables{"demo": in})
	require.NoError(t, err)

	col, _ := in.Column("sex")
	assert.Equal(t, []any{"M", "F", "M"}, col)
}

func TestExecute_UnmappedLookupValueIsNull(t *testing.T) {
	def := &compile.Definition{
		Name:     "person_0",
		Table:    "person",
		Bindings: []compile.Binding{{Field: "gender_concept_id", SourceTable: "demo", SourceField: "sex"}},
		TermMaps: []compile.TermMap{
			{Field: "gender_concept_id", Mapping: *rules.NewLookup(map[string]any{"M": 8507})},
		},
	}

	out, _, err := New(def, nil).Execute(tables{"demo": demo()})
	require.NoError(t, err)

	col, _ := out.Column("gender_concept_id")
	assert.Equal(t, []any{8507, nil, 8507}, col)
}

func TestExecute_MissingSources(t *testing.T) {
	def := personDef()
	def.Bindings = append(def.Bindings, compile.Binding{Field: "zz", SourceTable: "nope", SourceField: "x"})
	def.Bindings[0].SourceField = "missing"

	out, diags, err := New(def, nil).Execute(tables{"demo": demo()})
	require.NoError(t, err)

	assert.Equal(t, []string{"gender_concept_id", "person_id", "race_concept_id"}, out.Columns())
	assert.Equal(t, []string{"source_field_not_found", "source_table_not_loaded"}, diags.Codes())
}

func TestExecute_AlignsByIndex(t *testing.T) {
	visits := frame.FromRecords(
		[]string{"subject_id", "site"},
		[][]string{{"102", "B"}, {"101", "A"}},
	)
	require.NoError(t, visits.SetIndex("subject_id"))

	people := demo()
	require.NoError(t, people.SetIndex("subject_id"))

	def := &compile.Definition{
		Name:  "person_0",
		Table: "person",
		Bindings: []compile.Binding{
			{Field: "care_site_id", SourceTable: "visits", SourceField: "site"},
			{Field: "gender_concept_id", SourceTable: "demo", SourceField: "sex"},
			{Field: "person_id", SourceTable: "demo", SourceField: "subject_id"},
		},
	}

	out, diags, err := New(def, nil).Execute(tables{"demo": people, "visits": visits})
	require.NoError(t, err)
	assert.False(t, diags.HasWarnings())

	col, _ := out.Column("care_site_id")
	assert.Equal(t, []any{"A", "B", "A"}, col)
}

func TestExecute_AlignsByPosition(t *testing.T) {
	extra := frame.FromRecords([]string{"site"}, [][]string{{"A"}, {"B"}, {"C"}})
	short := frame.FromRecords([]string{"site"}, [][]string{{"A"}})

	def := &compile.Definition{
		Name:  "person_0",
		Table: "person",
		Bindings: []compile.Binding{
			{Field: "care_site_id", SourceTable: "extra", SourceField: "site"},
			{Field: "gender_concept_id", SourceTable: "demo", SourceField: "sex"},
			{Field: "person_id", SourceTable: "demo", SourceField: "subject_id"},
		},
	}

	out, _, err := New(def, nil).Execute(tables{"demo": demo(), "extra": extra})
	require.NoError(t, err)

	col, _ := out.Column("care_site_id")
	assert.Equal(t, []any{"A", "B", "C"}, col)

	out, diags, err := New(def, nil).Execute(tables{"demo": demo(), "extra": short})
	require.NoError(t, err)
	assert.False(t, out.HasColumn("care_site_id"))
	assert.Equal(t, []string{"unaligned_source"}, diags.Codes())
}

type window struct {
	tables

	primary      string
	start, total int
}

func (w window) Span(table string) (int, int) {
	if table == w.primary {
		return w.start, w.total
	}

	f := w.tables[table]

	return 0, f.Len()
}

func TestExecute_AlignsWindowAgainstWholeTable(t *testing.T) {
	extra := frame.FromRecords([]string{"site"}, [][]string{{"A"}, {"B"}, {"C"}})
	short := frame.FromRecords([]string{"site"}, [][]string{{"A"}})

	def := &compile.Definition{
		Name:  "person_0",
		Table: "person",
		Bindings: []compile.Binding{
			{Field: "care_site_id", SourceTable: "extra", SourceField: "site"},
			{Field: "gender_concept_id", SourceTable: "demo", SourceField: "sex"},
			{Field: "person_id", SourceTable: "demo", SourceField: "subject_id"},
		},
	}

	in := window{tables: tables{"demo": demo().Slice(1, 3), "extra": extra}, primary: "demo", start: 1, total: 3}

	out, diags, err := New(def, nil).Execute(in)
	require.NoError(t, err)
	assert.False(t, diags.HasWarnings())

	col, _ := out.Column("care_site_id")
	assert.Equal(t, []any{"B", "C"}, col)

	// One row of demo against one row of short: lengths match in the window
	// but not in the full tables.
	in = window{tables: tables{"demo": demo().Slice(2, 3), "extra": short}, primary: "demo", start: 2, total: 3}

	out, diags, err = New(def, nil).Execute(in)
	require.NoError(t, err)
	assert.False(t, out.HasColumn("care_site_id"))
	assert.Equal(t, []string{"unaligned_source"}, diags.Codes())
}

func TestExecute_UnknownOperation(t *testing.T) {
	def := personDef()
	def.Operations = []compile.Step{{Field: "person_id", Operation: "reverse"}}

	_, _, err := New(def, nil).Execute(tables{"demo": demo()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, compile.ErrUnknownOperation))
}

func TestExecute_NoInputs(t *testing.T) {
	out, diags, err := New(personDef(), nil).Execute(tables{})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
	assert.Len(t, diags.Warnings, 4)
}

package cdm

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdm-mapper/internal/coerce"
	"cdm-mapper/internal/frame"
	"cdm-mapper/internal/ops"
)

func newFrame(t *testing.T, cols map[string][]any, order ...string) *frame.Frame {
	t.Helper()

	f := frame.New()
	for _, name := range order {
		require.NoError(t, f.SetColumn(name, cols[name]))
	}

	return f
}

func TestModel(t *testing.T) {
	m := Default()
	assert.Equal(t,
		[]string{"person", "condition_occurrence", "visit_occurrence", "measurement", "observation"},
		m.Order())

	tbl, err := m.Table(" Person ")
	require.NoError(t, err)
	assert.Equal(t, "person_id", tbl.Key())
	assert.Equal(t, "", (&Table{}).Key())

	_, err = m.Table("drug_exposure")
	assert.True(t, errors.Is(err, ErrUnknownTable))

	cols, ok := m.Columns("observation")
	require.True(t, ok)
	assert.Equal(t, "observation_id", cols[0])

	_, ok = m.Columns("nope")
	assert.False(t, ok)
}

func TestSchema_TypesResolve(t *testing.T) {
	types := coerce.Default()
	for _, tbl := range Default().tables {
		for _, c := range tbl.Columns {
			assert.True(t, types.Has(c.Type), "%s.%s: %s", tbl.Name, c.Name, c.Type)
		}

		for _, d := range tbl.Derived {
			_, ok := tbl.Column(d.Field)
			assert.True(t, ok, "%s derived %s", tbl.Name, d.Field)
			_, ok = tbl.Column(d.From)
			assert.True(t, ok, "%s derived from %s", tbl.Name, d.From)
			assert.True(t, ops.Default().Has(d.Operation))
		}
	}
}

func TestFinalize_Person(t *testing.T) {
	f := newFrame(t, map[string][]any{
		"gender_concept_id": {8507, 8532},
		"person_id":         {int64(1), int64(2)},
		"extra":             {"x", "y"},
	}, "gender_concept_id", "person_id", "extra")

	out, err := Person().Finalize(f)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"person_id", "gender_concept_id", "year_of_birth", "race_concept_id", "ethnicity_concept_id",
	}, out.Columns())
	assert.Equal(t, 2, out.Len())

	col, _ := out.Column("year_of_birth")
	assert.Equal(t, []any{nil, nil}, col)
	assert.Equal(t, []string{"extra"}, Person().Extraneous(f))
}

func TestFinalize_AutoIncrementKey(t *testing.T) {
	f := newFrame(t, map[string][]any{
		"person_id":              {int64(1), int64(1), int64(2)},
		"observation_concept_id": {1, 2, 3},
	}, "person_id", "observation_concept_id")

	out, err := Observation().Finalize(f)
	require.NoError(t, err)

	col, _ := out.Column("observation_id")
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, col)
	assert.Equal(t, "observation_id", out.Columns()[0])
}

func TestFinalize_KeepsSuppliedKey(t *testing.T) {
	f := newFrame(t, map[string][]any{"measurement_id": {"10", "11"}}, "measurement_id")

	out, err := Measurement().Finalize(f)
	require.NoError(t, err)

	col, _ := out.Column("measurement_id")
	assert.Equal(t, []any{"10", "11"}, col)
}

func TestDerive_Person(t *testing.T) {
	f := newFrame(t, map[string][]any{
		"birth_datetime": {"1980-05-17 00:00:00", nil},
		"month_of_birth": {nil, nil},
		"day_of_birth":   {3, 4},
	}, "birth_datetime", "month_of_birth", "day_of_birth")

	filled, err := Person().Derive(f, ops.Default())
	require.NoError(t, err)
	assert.Equal(t, []string{"year_of_birth", "month_of_birth"}, filled)

	year, _ := f.Column("year_of_birth")
	assert.Equal(t, []any{int64(1980), nil}, year)

	month, _ := f.Column("month_of_birth")
	assert.Equal(t, []any{int64(5), nil}, month)

	day, _ := f.Column("day_of_birth")
	assert.Equal(t, []any{3, 4}, day)
}

func TestDerive_Dates(t *testing.T) {
	f := newFrame(t, map[string][]any{
		"visit_start_datetime": {"2020-01-02 10:00:00"},
	}, "visit_start_datetime")

	filled, err := VisitOccurrence().Derive(f, ops.Default())
	require.NoError(t, err)
	assert.Equal(t, []string{"visit_start_date"}, filled)

	col, _ := f.Column("visit_start_date")
	assert.Equal(t, []any{"2020-01-02"}, col)
}

func TestDerive_UnknownOperation(t *testing.T) {
	f := newFrame(t, map[string][]any{"birth_datetime": {"2000-01-01"}}, "birth_datetime")

	_, err := Person().Derive(f, ops.NewRegistry())
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	f := newFrame(t, map[string][]any{
		"person_id":           {int64(1), int64(2)},
		"gender_concept_id":   {"8507", "x"},
		"birth_datetime":      {"1980-05-17", "nope"},
		"gender_source_value": {"M", nil},
	}, "person_id", "gender_concept_id", "birth_datetime", "gender_source_value")

	res, err := Person().Format(f, coerce.Default(), false)
	require.NoError(t, err)

	col, _ := res.Frame.Column("gender_concept_id")
	assert.Equal(t, []any{int64(8507), nil}, col)

	col, _ = res.Frame.Column("birth_datetime")
	assert.Equal(t, []any{"1980-05-17 00:00:00", nil}, col)

	col, _ = res.Frame.Column("gender_source_value")
	assert.Equal(t, []any{"M", ""}, col)

	require.Len(t, res.Reports, 4)
	assert.Equal(t, "gender_concept_id", res.Reports[1].Column)
	assert.Equal(t, 1, res.Reports[1].Lost())

	assert.Equal(t, []string{"coercion_loss", "required_value_null", "coercion_loss"}, res.Diagnostics.Codes())
	assert.Equal(t, "birth_datetime", res.Diagnostics.Warnings[2].Field)
}

func TestFormat_Raise(t *testing.T) {
	f := newFrame(t, map[string][]any{"person_id": {"abc"}}, "person_id")

	res, err := Person().Format(f, coerce.Default(), true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFormat))
	assert.NotNil(t, res)

	clean := newFrame(t, map[string][]any{"person_id": {"1"}}, "person_id")
	_, err = Person().Format(clean, coerce.Default(), true)
	assert.NoError(t, err)
}

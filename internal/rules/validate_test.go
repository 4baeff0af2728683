package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type opSet map[string]bool

func (s opSet) Has(name string) bool { return s[name] }

func TestValidate_Valid(t *testing.T) {
	doc, err := Parse([]byte(demoRules))
	require.NoError(t, err)

	result := Validate(doc, nil, opSet{"get_datetime": true})

	assert.True(t, result.IsValid(), "expected valid document, got errors: %v", result.Errors)
	assert.False(t, result.HasWarnings())
}

func TestValidate_MissingBinding(t *testing.T) {
	doc, err := Parse([]byte(`{
		"cdm": {"person": [{
			"person_id": {"source_table": "demo"},
			"gender_concept_id": {"source_field": "sex"}
		}]}
	}`))
	require.NoError(t, err)

	result := Validate(doc, nil, nil)

	require.Len(t, result.Errors, 2)
	assert.Equal(t, "missing_source_table", result.Errors[0].Code)
	assert.Equal(t, "gender_concept_id", result.Errors[0].Field)
	assert.Equal(t, "person_0", result.Errors[0].Table)
	assert.Equal(t, "missing_source_field", result.Errors[1].Code)
	assert.Equal(t, "person_id", result.Errors[1].Field)
}

func TestValidate_UnknownOperation(t *testing.T) {
	doc, err := Parse([]byte(demoRules))
	require.NoError(t, err)

	result := Validate(doc, nil, opSet{})

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "unknown_operation", result.Errors[0].Code)
	assert.Equal(t, "birth_datetime", result.Errors[0].Field)
}

func TestValidate_CatalogWarnings(t *testing.T) {
	doc, err := Parse([]byte(demoRules))
	require.NoError(t, err)

	catalog := Catalog{"demo": {"subject_id", "sex", "dob"}}
	result := Validate(doc, catalog, nil)

	assert.True(t, result.IsValid())
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "source_field_not_found", result.Warnings[0].Code)
	assert.Equal(t, "race_concept_id", result.Warnings[0].Field)

	// table names are matched case-insensitively, so "Demo" is loaded
	assert.Equal(t, []string{"source_field_not_found"}, result.Codes())

	result = Validate(doc, Catalog{}, nil)
	assert.Len(t, result.Warnings, 4)
	assert.Equal(t, []string{"person_id_table_not_loaded"}, []string{result.Infos[0].Code})
	assert.Equal(t, "source_table_not_loaded", result.Warnings[0].Code)
}

func TestValidate_EmptyGroup(t *testing.T) {
	doc, err := Parse([]byte(`{"cdm": {"person": [{}]}}`))
	require.NoError(t, err)

	result := Validate(doc, nil, nil)
	assert.True(t, result.IsValid())
	assert.Equal(t, []string{"empty_rule_group"}, result.Codes())
}

func TestValidate_Nil(t *testing.T) {
	assert.False(t, Validate(nil, nil, nil).IsValid())
}

package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"person_id", []string{"person", "id"}},
		{"PersonID", []string{"person", "id"}},
		{"visitStartDATE_time", []string{"visit", "start", "date", "time"}},
		{"IDValue", []string{"id", "value"}},
		{"  year of-birth ", []string{"year", "of", "birth"}},
		{"", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Tokenize(tt.in), tt.in)
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "personid", NormalizeName("Person Id"))
	assert.Equal(t, NormalizeName("person_id"), NormalizeName("PersonID"))
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, Levenshtein("abc", "abc"))
	assert.Equal(t, 3, Levenshtein("", "abc"))
	assert.Equal(t, 3, Levenshtein("kitten", "sitting"))
	assert.Equal(t, 1, Levenshtein("é", "e"))
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
	assert.InDelta(t, 1.0, NameScore("Year_Of_Birth", "yearOfBirth"), 1e-9)
	assert.InDelta(t, 1.0-3.0/11.0, NameScore("year_of_birth", "year_of_death"), 1e-9)
	assert.Less(t, NameScore("year_of_birth", "gender_concept_id"), 0.3)
}

func TestRankCandidates(t *testing.T) {
	list := RankCandidates("race_source_value", []string{"sex", "RaceSourceValue", "race_source", "age"})

	require.Len(t, list, 4)
	assert.Equal(t, "RaceSourceValue", list[0].Source)
	assert.InDelta(t, 1.0, list[0].Score, 1e-9)
	assert.Equal(t, "racesourcevalue", list[0].NormalizedTarget)
	assert.Equal(t, "race_source", list[1].Source)

	best, ok := list.Best(1.0)
	require.True(t, ok)
	assert.Equal(t, "RaceSourceValue", best.Source)

	_, ok = RankCandidates("race_source_value", []string{"sex"}).Best(0.9)
	assert.False(t, ok)

	_, ok = CandidateList{}.Best(0)
	assert.False(t, ok)
}

func TestRankCandidates_TieBreaksOnName(t *testing.T) {
	list := RankCandidates("dob", []string{"Dob", "DOB", "d_o_b"})

	assert.Equal(t, []string{"DOB", "Dob", "d_o_b"}, []string{list[0].Source, list[1].Source, list[2].Source})
}

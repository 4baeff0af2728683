package match

import (
	"cmp"
	"slices"
)

// Candidate is a source column considered for a destination field.
type Candidate struct {
	Source string
	Target string
	Score  float64

	NormalizedSource string
	NormalizedTarget string
}

// CandidateList is sorted by descending score, then source name.
type CandidateList []Candidate

// RankCandidates scores every source column against target.
func RankCandidates(target string, sources []string) CandidateList {
	normTarget := NormalizeName(target)
	list := make(CandidateList, 0, len(sources))

	for _, src := range sources {
		normSource := NormalizeName(src)
		list = append(list, Candidate{
			Source:           src,
			Target:           target,
			Score:            Similarity(normSource, normTarget),
			NormalizedSource: normSource,
			NormalizedTarget: normTarget,
		})
	}

	slices.SortStableFunc(list, func(a, b Candidate) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}

		return cmp.Compare(a.Source, b.Source)
	})

	return list
}

// Best returns the top candidate if its score reaches threshold.
func (l CandidateList) Best(threshold float64) (Candidate, bool) {
	if len(l) == 0 || l[0].Score < threshold {
		return Candidate{}, false
	}

	return l[0], true
}

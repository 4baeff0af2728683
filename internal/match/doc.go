// Package match provides column-name normalization, Levenshtein similarity
// and candidate ranking used to auto-map unmapped CDM fields onto source
// columns.
//
// Key functions:
//   - NormalizeName: folds case, separators and camel case
//   - Levenshtein: computes edit distance between strings
//   - RankCandidates: ranks source columns for a destination field
package match

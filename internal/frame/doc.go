// Package frame provides the small tabular data structure the mapper works
// on: an ordered set of named columns holding row-aligned cell values.
//
// Cells are plain Go values (string, int64, float64, ...); nil is null.
// A frame may carry a row index taken from one of its columns, which is
// how rows of different source tables are aligned on a person identifier.
//
// Concat is associative and order preserving: concatenating per-chunk
// partial results gives the same frame as concatenating once.
package frame

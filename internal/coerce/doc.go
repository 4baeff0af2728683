// Package coerce implements the Type Coercion Registry: an ordered mapping
// from a CDM column type name (INTEGER, FLOAT, VARCHAR(50), DATETIME, ...)
// to a coercion function.
//
// Coercion never fails on data. A malformed cell degrades to null (or to
// the empty string for text types) and the degradation is reported through
// a tagged Result so callers can audit data-quality loss:
//
//	col, report, err := coerce.Default().Coerce("INTEGER", values)
//	// err is only ErrUnknownType; report.Nulled counts per NullReason
package coerce

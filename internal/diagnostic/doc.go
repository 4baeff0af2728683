// Package diagnostic provides structured warnings, errors and infos
// collected while compiling rule documents and validating CDM output.
//
// Key capabilities:
//   - Skipped or unsatisfiable destination fields
//   - Auto-mapped fields with the score that selected them
//   - Values degraded to null by type coercion
//   - Forwarding of collected diagnostics to a zap logger
package diagnostic

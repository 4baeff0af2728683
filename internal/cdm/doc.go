// Package cdm describes the destination Common Data Model tables and
// prepares merged results for persistence.
//
// Each Table declares its columns in output order with a column type name
// understood by the coerce registry, whether the column is required and
// whether it is an auto-increment key. A Table can:
//   - Derive: fill derived columns (e.g. year_of_birth from birth_datetime)
//   - Finalize: enforce the declared column set and order
//   - Format: coerce every column to its declared type and report losses
//
// The Model lists the tables in the order a pipeline run processes them.
package cdm

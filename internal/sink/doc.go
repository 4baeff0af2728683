// Package sink persists finalized CDM tables.
//
// CSVDir writes one {table}.csv per table into a directory. Postgres copies
// rows into {schema}.{table} with COPY. Both skip nil and empty tables.
package sink

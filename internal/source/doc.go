// Package source holds the input dataset of a run: loaded source tables
// keyed by lower-case name.
//
// It reads CSV files into frames, derives table names from file names,
// reduces tables to the columns the rules reference, indexes tables by
// their person identifier column and splits the dataset into aligned row
// chunks.
package source

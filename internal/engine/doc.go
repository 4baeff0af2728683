// Package engine runs compiled mapping objects against an input dataset and
// produces the finalized CDM tables.
//
// An Engine owns the inputs and the definition registry. Each pipeline
// invocation creates a Run, which owns the person identifier Masker for
// its lifetime. Run.RunTable executes every object of one destination
// table, merges their outputs in discovery order, masks person_id,
// derives, finalizes and formats the result. Engine.Process runs all CDM
// tables in a fixed order and hands the non-empty results to a Sink.
package engine

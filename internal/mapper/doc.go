// Package mapper executes compiled definitions against loaded inputs.
//
// An Object is the runtime form of one compile.Definition. Executing it
// reads the bound source columns, aligns columns from secondary source
// tables with the primary one, applies operations and then term maps, and
// returns a frame holding the bound destination fields.
package mapper

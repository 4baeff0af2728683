// Package compile turns a rule document into mapping object definitions.
//
// A Definition is the data-driven form of one rule group: the source
// bindings of its destination fields, the operations applied to them and
// their term maps. Definitions are executed by the mapper package, so
// nothing is generated as source code.
//
// Key types:
//   - Set: all definitions compiled from one rule document
//   - Registry: destination table -> ordered definitions, queried by the
//     engine at run time
//
// Definitions can be written to and loaded from a directory of YAML files
// with WriteSet and LoadSet, one file per definition.
package compile

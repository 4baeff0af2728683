// Package ops provides the registry of named field operations a rule
// document may list under "operations". Operations work on a whole column
// and never fail; cells they cannot handle become null.
package ops

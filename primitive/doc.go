// Package primitive defines the closed set of cell types a sheet column can
// resolve to, and the resolver that maps explicit type tokens or sampled
// cell contents onto it.
//
// Explicit tokens go through an alias table ("int" is int32, "double" is
// float64, "str" is string, ...). Columns without a type token are inferred
// from their first non-blank cells: integers, then floats, then string, with
// numeric kinds widened to 64 bits when a sample does not fit.
package primitive

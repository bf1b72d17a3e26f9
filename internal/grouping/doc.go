// Package grouping collapses runs of related columns into grouping
// constructs.
//
// # Vector fields
//
// Consecutive same-typed scalar columns numbered Item1, Item2, Item3 (or
// starting at 0) become one fixed-size array field.
//
// # Inner records
//
// A block of differently typed columns that repeats side by side, such as
//
//	id1 name1 count1 id2 name2 count2
//
// becomes one list field of a nested record type {id, name, count}. Index
// suffixes ("1", "[0]") are stripped before blocks are compared.
//
// # Precedence
//
// A Struct holds at most one grouping construct. When both detectors fire,
// the vector group is used and the inner record block stays as plain fields.
package grouping

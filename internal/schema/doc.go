// Package schema defines the Struct descriptor produced for every sheet and
// consumed read-only by code generators and data writers.
//
// A Struct carries the enabled fields in source order, at most one grouping
// construct (a VectorGroup or an InnerRecordGroup, never both), the KV layout
// when rows rather than columns define the fields, the normalized data rows
// and the directives the builder did not interpret.
//
// Invariants:
//   - enabled field names are unique
//   - ColumnIndex strictly increases in source order
//   - every data row is at least as long as the highest ColumnIndex
package schema

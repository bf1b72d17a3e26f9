// Package export writes built structs to disk.
//
// Each output format is a Writer registered in a Registry under its format
// name: "csv" (projected tables), "json" (typed records), "yaml" (struct
// descriptors) and "sqlite" (one table per struct). File writers only touch
// files whose content changed.
package export

// Package builder turns one raw sheet into a schema.Struct.
//
// Every build walks the same phases:
//
//	read_meta -> resolve_fields -> (kv ? build_kv_fields
//	                                   : resolve_composites -> group_fields)
//	          -> normalize_data_rows -> done
//
// Directives are parsed first; header rows then yield one FieldSpec per named
// column (or, for KV tables, one per data row); composite type tokens are
// resolved with the column cells as samples; at most one grouping construct
// is detected; and finally the data rows are padded and coerced.
//
// A failure in any phase is terminal for the sheet and is reported as a
// *diagnostic.Error tagged with the sheet's class name. Builds share no
// state, so a Builder can build many sheets concurrently (see BuildAll).
package builder

// Package sheet reads CSV sheets from disk into builder.Sheet values.
//
// A sheet item.csv may have a sidecar item.meta.yaml holding its directives:
//
//	class_name: Item
//	unique_fields: [id]
//	array_delim: ";"
//
// Without one, the class name is the file base name and every other
// directive takes its default.
package sheet

// Package meta turns the free-form directive map attached to a sheet into
// typed Directives.
//
// Known keys (class_name, name_row, key_value_column, ...) are parsed and
// validated; any other key is carried in Directives.Extra with its value
// untouched so that generators can read options this package knows nothing
// about.
package meta

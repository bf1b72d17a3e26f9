// Package kv derives fields from the rows of a key/value table, where each
// data row declares one field by key, type and value instead of each column
// doing so.
package kv

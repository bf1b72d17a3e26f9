// Package main is the tabgen command line.
//
// tabgen reads CSV sheets whose header rows describe a schema (names, types,
// comments), builds a struct descriptor per sheet, and writes the normalized
// data as CSV, JSON, YAML descriptors or a SQLite database.
package main

func main() {
	Execute()
}

// Package naming holds identifier helpers shared by the schema builder:
// CamelCase conversion for generated names, numeric index suffix handling
// used by the field grouper ("Item3", "reward[0]"), KV key validation and
// edit-distance suggestions for unknown type names.
package naming

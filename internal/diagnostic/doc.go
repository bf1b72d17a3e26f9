// Package diagnostic provides structured warnings, errors, and the build
// failure taxonomy for the schema builder.
//
// Key capabilities:
//   - Non-fatal notes (integer rounding, KV string fallback) collected as
//     Diagnostics and attached to the built Struct
//   - Terminal failures as *Error, classified by Kind (meta, type, name,
//     shape, data) and matchable with errors.Is against ErrMeta, ErrType,
//     ErrName, ErrShape and ErrData
//   - Close-match suggestions for unknown type tokens
package diagnostic

// Package rows normalizes the data rows of a sheet against its fields.
//
// Rows are padded to a common width and rows blank in every cell are
// dropped. Each enabled cell is then coerced to the canonical text of its
// field's type: blank numbers become "0", fractional integers are rounded
// half away from zero and reported as info diagnostics, and booleans become
// "1" or "0". Cells that cannot be coerced fail the sheet.
package rows

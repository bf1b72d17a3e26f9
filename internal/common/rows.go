package common

import "strings"

// IsBlankRow returns true if every cell of row is empty or whitespace.
func IsBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}

// Cell returns the cell at the 1-based column, or "" when the row is too
// short or column is not positive.
func Cell(row []string, column int) string {
	if column < 1 || column > len(row) {
		return ""
	}

	return row[column-1]
}

// PadRow returns row extended with empty cells to width. The input is never
// modified.
func PadRow(row []string, width int) []string {
	out := make([]string, max(len(row), width))
	copy(out, row)

	return out
}

// MaxWidth returns the length of the longest row.
func MaxWidth(rows [][]string) int {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	return width
}

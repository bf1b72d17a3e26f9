package common

import "strings"

// UnknownStr is the fallback rendering for out-of-range enum values.
const UnknownStr = "unknown"

// SplitList splits a comma separated directive value, trimming blanks and
// dropping empty items.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	parts := strings.Split(s, ",")

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

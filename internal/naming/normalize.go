package naming

import (
	"strconv"
	"strings"
	"unicode"
)

// CamelCase converts a snake_case (or dash/space separated) identifier to
// CamelCase. Identifiers without separators only get their first rune
// upper-cased:
//   - "ab_cd_ef" -> "AbCdEf"
//   - "abc" -> "Abc"
//   - "AbCd" -> "AbCd"
func CamelCase(s string) string {
	tokens := splitSeparators(s)

	switch len(tokens) {
	case 0:
		return ""
	case 1:
		return upperFirst(tokens[0])
	}

	var b strings.Builder

	b.Grow(len(s))

	for _, t := range tokens {
		b.WriteString(upperFirst(strings.ToLower(t)))
	}

	return b.String()
}

// SplitIndexSuffix splits a trailing numeric index off a field name. Both the
// bare-digit form and the bracket form are recognized:
//   - "Item3" -> ("Item", 3, true)
//   - "reward[0]" -> ("reward", 0, true)
//   - "name" -> ("name", 0, false)
//
// A name made only of digits has no stem and is not split.
func SplitIndexSuffix(name string) (stem string, index int, ok bool) {
	if strings.HasSuffix(name, "]") {
		open := strings.LastIndexByte(name, '[')
		if open <= 0 {
			return name, 0, false
		}

		n, err := strconv.Atoi(name[open+1 : len(name)-1])
		if err != nil || n < 0 {
			return name, 0, false
		}

		return name[:open], n, true
	}

	end := len(name)
	for end > 0 && name[end-1] >= '0' && name[end-1] <= '9' {
		end--
	}

	if end == len(name) || end == 0 {
		return name, 0, false
	}

	n, err := strconv.Atoi(name[end:])
	if err != nil {
		return name, 0, false
	}

	return name[:end], n, true
}

// StripIndexSuffix returns the name without its numeric index suffix.
func StripIndexSuffix(name string) string {
	stem, _, _ := SplitIndexSuffix(name)
	return stem
}

// IsIdentifier reports whether key can be used as a generated field name:
// non-empty, not starting with a digit, and free of spaces, dashes and dots.
func IsIdentifier(key string) bool {
	if key == "" {
		return false
	}

	if unicode.IsDigit([]rune(key)[0]) {
		return false
	}

	return !strings.ContainsAny(key, " \t-.")
}

// splitSeparators splits s on common separators, dropping empty tokens.
func splitSeparators(s string) []string {
	return strings.FieldsFunc(s, isSeparator)
}

// isSeparator returns true if the rune is a common separator.
func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])

	return string(runes)
}

package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCamelCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"a", "A"},
		{"A", "A"},
		{"abc", "Abc"},
		{"AbCd", "AbCd"},
		{"ab_cd_ef_gh", "AbCdEfGh"},
		{"item-id", "ItemId"},
		{"_leading", "Leading"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, CamelCase(tt.input))
		})
	}
}

func TestSplitIndexSuffix(t *testing.T) {
	tests := []struct {
		input string
		stem  string
		index int
		ok    bool
	}{
		{"Item3", "Item", 3, true},
		{"test01", "test", 1, true},
		{"reward[0]", "reward", 0, true},
		{"reward[10]", "reward", 10, true},
		{"name", "name", 0, false},
		{"123", "123", 0, false},
		{"[1]", "[1]", 0, false},
		{"x[a]", "x[a]", 0, false},
		{"", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			stem, index, ok := SplitIndexSuffix(tt.input)
			assert.Equal(t, tt.stem, stem)
			assert.Equal(t, tt.index, index)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestIsIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"level", true},
		{"max_level", true},
		{"Level2", true},
		{"", false},
		{"2level", false},
		{"max level", false},
		{"max-level", false},
		{"max.level", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, IsIdentifier(tt.input), tt.input)
	}
}

func TestSuggest(t *testing.T) {
	candidates := []string{"int32", "int64", "string", "float32"}

	assert.Equal(t, []string{"string"}, Suggest("strng", candidates, 3))
	assert.Equal(t, []string{"int32", "int64"}, Suggest("int3", candidates, 2))
	assert.Empty(t, Suggest("xyzzy", candidates, 3))
	assert.Equal(t, 0, Levenshtein("abc", "abc"))
	assert.Equal(t, 3, Levenshtein("", "abc"))
	assert.Equal(t, 1, Levenshtein("kitten", "kittn"))
}

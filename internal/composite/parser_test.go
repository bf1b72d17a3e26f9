package composite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabgen/internal/diagnostic"
	"tabgen/primitive"
)

func autoParser() *Parser {
	return NewParser(DialectAuto, DefaultDelimiters())
}

func TestParseExplicit(t *testing.T) {
	tests := []struct {
		token    string
		expected Type
	}{
		{"array<int>", Type{Kind: primitive.KindArray, Elem: primitive.KindInt32}},
		{"int[]", Type{Kind: primitive.KindArray, Elem: primitive.KindInt32}},
		{"string[]", Type{Kind: primitive.KindArray, Elem: primitive.KindString}},
		{"Array< double >", Type{Kind: primitive.KindArray, Elem: primitive.KindFloat64}},
		{"map<int,string>", Type{Kind: primitive.KindMap, Key: primitive.KindInt32, Value: primitive.KindString}},
		{"map<int, string>", Type{Kind: primitive.KindMap, Key: primitive.KindInt32, Value: primitive.KindString}},
		{"<int,int>", Type{Kind: primitive.KindMap, Key: primitive.KindInt32, Value: primitive.KindInt32}},
		{"<double, bool>", Type{Kind: primitive.KindMap, Key: primitive.KindFloat64, Value: primitive.KindBool}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := autoParser().Parse(tt.token, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, *got)
		})
	}
}

func TestParseArrayOfIntElementIsInt32(t *testing.T) {
	got, err := autoParser().Parse("array<int>", nil)
	require.NoError(t, err)
	assert.Equal(t, primitive.KindInt32, got.Elem)
	assert.Equal(t, "array<int32>", got.String())
}

func TestParseRejectsNested(t *testing.T) {
	for _, token := range []string{
		"array<array<int>>",
		"int[][]",
		"array<int[]>",
		"map<int,array<int>>",
		"map<int,int[]>",
		"<int,<int,int>>",
	} {
		t.Run(token, func(t *testing.T) {
			_, err := autoParser().Parse(token, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, diagnostic.ErrType)
		})
	}
}

func TestParseRejectsUnknownElement(t *testing.T) {
	_, err := autoParser().Parse("array<decimal>", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, diagnostic.ErrType)

	_, err = autoParser().Parse("map<int>", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, diagnostic.ErrType)
}

func TestParseDialectPinned(t *testing.T) {
	suffix := NewParser(DialectSuffix, DefaultDelimiters())
	prefix := NewParser(DialectPrefix, DefaultDelimiters())

	_, err := suffix.Parse("array<int>", nil)
	require.ErrorIs(t, err, diagnostic.ErrType)

	_, err = prefix.Parse("int[]", nil)
	require.ErrorIs(t, err, diagnostic.ErrType)

	_, err = prefix.Parse("<int,int>", nil)
	require.ErrorIs(t, err, diagnostic.ErrType)

	got, err := suffix.Parse("int[]", nil)
	require.NoError(t, err)
	assert.Equal(t, primitive.KindInt32, got.Elem)

	// bare keywords are accepted by every dialect
	got, err = prefix.Parse("array", []string{"1|2"})
	require.NoError(t, err)
	assert.Equal(t, primitive.KindInt32, got.Elem)
}

func TestParseInfersElements(t *testing.T) {
	p := autoParser()

	tests := []struct {
		name     string
		token    string
		samples  []string
		expected Type
	}{
		{"array ints", "array", []string{"1|2|3", "", "4"}, Type{Kind: primitive.KindArray, Elem: primitive.KindInt32}},
		{"array floats", "[]", []string{"1|2.5"}, Type{Kind: primitive.KindArray, Elem: primitive.KindFloat32}},
		{"array mixed", "array<>", []string{"1|abc"}, Type{Kind: primitive.KindArray, Elem: primitive.KindString}},
		{"array wide", "array", []string{"1|9999999999"}, Type{Kind: primitive.KindArray, Elem: primitive.KindInt64}},
		{"array no samples", "array", nil, Type{Kind: primitive.KindArray, Elem: primitive.KindString}},
		{
			"map int string", "map", []string{"1=a|2=b", "3=c"},
			Type{Kind: primitive.KindMap, Key: primitive.KindInt32, Value: primitive.KindString},
		},
		{
			"map int int", "<>", []string{"1=10|2=20"},
			Type{Kind: primitive.KindMap, Key: primitive.KindInt32, Value: primitive.KindInt32},
		},
		{
			"map malformed pair", "map", []string{"1=10|oops"},
			Type{Kind: primitive.KindMap, Key: primitive.KindString, Value: primitive.KindString},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.token, tt.samples)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, *got)
		})
	}
}

func TestParseCustomDelimiters(t *testing.T) {
	d, err := ParseDelimiters(";", ";:")
	require.NoError(t, err)

	got, err := NewParser(DialectAuto, d).Parse("map", []string{"1:2.5;2:3"})
	require.NoError(t, err)
	assert.Equal(t, primitive.KindInt32, got.Key)
	assert.Equal(t, primitive.KindFloat32, got.Value)
}

func TestParseDelimiters(t *testing.T) {
	d, err := ParseDelimiters("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultDelimiters(), d)

	_, err = ParseDelimiters("||", "")
	require.Error(t, err)

	_, err = ParseDelimiters("", "=")
	require.Error(t, err)

	_, err = ParseDelimiters("", "==")
	require.Error(t, err)

	_, err = ParseDelimiters(",", "")
	require.Error(t, err)
}

func TestIsComposite(t *testing.T) {
	p := NewParser(DialectPrefix, DefaultDelimiters())

	for _, token := range []string{"array", "map", "int[]", "<int,int>", "array<int>", "map<int,int>"} {
		assert.True(t, p.IsComposite(token), token)
	}

	for _, token := range []string{"int", "string", "", "arrays"} {
		assert.False(t, p.IsComposite(token), token)
	}
}

func TestParseDialect(t *testing.T) {
	for in, expected := range map[string]Dialect{"": DialectAuto, "AUTO": DialectAuto, "suffix": DialectSuffix, "prefix": DialectPrefix} {
		d, err := ParseDialect(in)
		require.NoError(t, err)
		assert.Equal(t, expected, d)
	}

	_, err := ParseDialect("legacy")
	require.Error(t, err)
}

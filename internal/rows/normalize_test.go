package rows

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabgen/internal/composite"
	"tabgen/internal/diagnostic"
	"tabgen/internal/schema"
	"tabgen/primitive"
)

func column(name string, kind primitive.KindEnum, index int) schema.FieldSpec {
	return schema.FieldSpec{Name: name, Type: kind, ColumnIndex: index, Enabled: true}
}

func TestNormalizeCoercesPadsAndDropsBlankRows(t *testing.T) {
	cols := []schema.FieldSpec{
		column("id", primitive.KindInt32, 1),
		column("name", primitive.KindString, 2),
	}

	res, err := Normalize(cols, [][]string{{"3.0", "x"}, {"", "  "}, {"3"}}, Options{FirstLine: 4})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"3", "x"}, {"3", ""}}, res.Rows)
	assert.Equal(t, []int{4, 6}, res.Lines)

	require.Len(t, res.Diagnostics.Infos, 1)
	assert.Equal(t, diagnostic.CodeRoundInteger, res.Diagnostics.Infos[0].Code)
	assert.Equal(t, 4, res.Diagnostics.Infos[0].Row)
	assert.Equal(t, "id", res.Diagnostics.Infos[0].Field)
}

func TestNormalizePadsToWidestRow(t *testing.T) {
	cols := []schema.FieldSpec{column("a", primitive.KindString, 1)}

	res, err := Normalize(cols, [][]string{{"x"}, {"y", "z", "w"}}, Options{FirstLine: 1})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"x", "", ""}, {"y", "z", "w"}}, res.Rows)
}

func TestNormalizeDoesNotModifyInput(t *testing.T) {
	cols := []schema.FieldSpec{column("a", primitive.KindInt32, 1)}
	in := [][]string{{"1.5"}}

	_, err := Normalize(cols, in, Options{FirstLine: 1})
	require.NoError(t, err)
	assert.Equal(t, "1.5", in[0][0])
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name     string
		kind     primitive.KindEnum
		in       string
		expected string
		rounded  bool
	}{
		{"int blank", primitive.KindInt32, "", "0", false},
		{"int plain", primitive.KindInt32, " 42 ", "42", false},
		{"int half up", primitive.KindInt32, "2.5", "3", true},
		{"int half away from zero", primitive.KindInt32, "-2.5", "-3", true},
		{"int down", primitive.KindInt64, "7.49", "7", true},
		{"int negative zero", primitive.KindInt32, "-0.4", "0", true},
		{"int exponent", primitive.KindInt32, "1e3", "1000", true},
		{"int8 max", primitive.KindInt8, "127", "127", false},
		{"uint16 max", primitive.KindUint16, "65535", "65535", false},
		{"uint64 rounded", primitive.KindUint64, "3.6", "4", true},
		{"float blank", primitive.KindFloat32, "", "0", false},
		{"float kept", primitive.KindFloat64, "1.25", "1.25", false},
		{"bool yes", primitive.KindBool, "YES", "1", false},
		{"bool on", primitive.KindBool, "on", "1", false},
		{"bool y", primitive.KindBool, "y", "1", false},
		{"bool true", primitive.KindBool, "True", "1", false},
		{"bool one", primitive.KindBool, "1", "1", false},
		{"bool other", primitive.KindBool, "nope", "0", false},
		{"bool blank", primitive.KindBool, "", "0", false},
		{"string kept", primitive.KindString, " a b ", " a b ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := column("f", tt.kind, 1)

			out, rounded, err := Coerce(&f, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
			assert.Equal(t, tt.rounded, rounded)
		})
	}
}

func TestCoerceRejects(t *testing.T) {
	tests := []struct {
		name string
		kind primitive.KindEnum
		in   string
	}{
		{"int text", primitive.KindInt32, "abc"},
		{"int8 overflow", primitive.KindInt8, "128"},
		{"int8 rounded overflow", primitive.KindInt8, "127.6"},
		{"int32 overflow", primitive.KindInt32, "2147483648"},
		{"uint negative", primitive.KindUint8, "-1"},
		{"uint8 overflow", primitive.KindUint8, "256"},
		{"float text", primitive.KindFloat32, "1.2.3"},
		{"float nan", primitive.KindFloat64, "NaN"},
		{"float32 overflow", primitive.KindFloat32, "1e39"},
		{"int64 rounded past max", primitive.KindInt64, "9223372036854775807.4"},
		{"uint64 rounded past max", primitive.KindUint64, "18446744073709551615.4"},
		{"uint32 rounded past max", primitive.KindUint32, "4294967295.6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := column("f", tt.kind, 1)

			_, _, err := Coerce(&f, tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, diagnostic.ErrData)
		})
	}
}

func TestCoerceLeavesComposites(t *testing.T) {
	f := column("f", primitive.KindArray, 1)
	f.Composite = &composite.Type{Kind: primitive.KindArray, Elem: primitive.KindInt32}

	out, rounded, err := Coerce(&f, "1|2|3")
	require.NoError(t, err)
	assert.False(t, rounded)
	assert.Equal(t, "1|2|3", out)
}

func TestNormalizeReportsBadCell(t *testing.T) {
	cols := []schema.FieldSpec{column("hp", primitive.KindInt32, 1)}

	_, err := Normalize(cols, [][]string{{"1"}, {"lots"}}, Options{FirstLine: 5})
	require.Error(t, err)
	assert.ErrorIs(t, err, diagnostic.ErrData)

	e, ok := diagnostic.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "hp", e.Field)
	assert.Equal(t, []int{6}, e.Rows)
}

func TestNormalizeSkipsDisabledColumns(t *testing.T) {
	cols := []schema.FieldSpec{
		column("id", primitive.KindInt32, 1),
		{Name: "#note", Type: primitive.KindInt32, ColumnIndex: 2},
	}

	res, err := Normalize(cols, [][]string{{"1", "not a number"}}, Options{FirstLine: 1})
	require.NoError(t, err)
	assert.Equal(t, "not a number", res.Rows[0][1])
}

func TestNormalizeUnique(t *testing.T) {
	cols := []schema.FieldSpec{
		column("id", primitive.KindInt32, 1),
		column("name", primitive.KindString, 2),
	}

	rows := [][]string{
		{"1", "a"}, // row 2
		{"2", "b"},
		{"", ""},
		{"3", ""},
		{"4", ""},
		{"1.0", "c"}, // row 7
	}

	_, err := Normalize(cols, rows, Options{FirstLine: 2, Unique: []string{"id"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, diagnostic.ErrData)

	e, ok := diagnostic.AsError(err)
	require.True(t, ok)
	assert.Equal(t, diagnostic.CodeDuplicateValue, e.Code)
	assert.Equal(t, []int{2, 7}, e.Rows)

	// empty values never collide
	_, err = Normalize(cols, rows[:5], Options{FirstLine: 2, Unique: []string{"name"}})
	require.NoError(t, err)

	_, err = Normalize(cols, rows, Options{FirstLine: 2, Unique: []string{"missing"}})
	require.ErrorIs(t, err, diagnostic.ErrMeta)
}

func TestNormalizeUniqueIgnoresBlankNumbers(t *testing.T) {
	cols := []schema.FieldSpec{
		column("id", primitive.KindInt32, 1),
		column("name", primitive.KindString, 2),
	}

	res, err := Normalize(cols, [][]string{{"", "a"}, {" ", "b"}, {"0", "c"}}, Options{FirstLine: 4, Unique: []string{"id"}})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"0", "a"}, {"0", "b"}, {"0", "c"}}, res.Rows)

	_, err = Normalize(cols, [][]string{{"", "a"}, {"0", "b"}, {"0.0", "c"}}, Options{FirstLine: 4, Unique: []string{"id"}})
	e, ok := diagnostic.AsError(err)
	require.True(t, ok, "expected duplicate error, got %v", err)
	assert.Equal(t, []int{5, 6}, e.Rows)
}

func TestCoerceInt64Bounds(t *testing.T) {
	f := column("f", primitive.KindInt64, 1)

	out, rounded, err := Coerce(&f, "-9223372036854775808.4")
	require.NoError(t, err)
	assert.True(t, rounded)
	assert.Equal(t, "-9223372036854775808", out)

	out, _, err = Coerce(&f, "9223372036854775807")
	require.NoError(t, err)
	assert.Equal(t, "9223372036854775807", out)
}

func TestNormalizeKV(t *testing.T) {
	kvc := schema.KVColumns{Key: 1, Type: 2, Value: 3}
	fields := []schema.FieldSpec{
		column("level", primitive.KindInt32, 10),
		column("rate", primitive.KindFloat32, 11),
		column("debug", primitive.KindBool, 13),
	}

	rows := [][]string{
		{"level", "int", "5.5"},
		{"rate", "float", ""},
		{"#old", "int", "junk"},
		{"debug", "bool", "yes"},
		{},
	}

	res, err := NormalizeKV(fields, kvc, rows, Options{FirstLine: 10})
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"level", "int", "6"},
		{"rate", "float", "0"},
		{"#old", "int", "junk"},
		{"debug", "bool", "1"},
	}, res.Rows)
	assert.Equal(t, []int{10, 11, 12, 13}, res.Lines)
	require.Len(t, res.Diagnostics.Infos, 1)

	_, err = NormalizeKV(fields[:1], kvc, [][]string{{"level", "int", "many"}}, Options{FirstLine: 10})
	require.ErrorIs(t, err, diagnostic.ErrData)
}

func TestRound(t *testing.T) {
	for in, expected := range map[float64]float64{0.5: 1, 1.5: 2, 2.5: 3, -0.5: -1, -2.5: -3, 2.4: 2} {
		assert.Equal(t, expected, Round(in), in)
	}
}

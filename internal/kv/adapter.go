package kv

import (
	"slices"
	"strings"

	"tabgen/internal/common"
	"tabgen/internal/composite"
	"tabgen/internal/diagnostic"
	"tabgen/internal/naming"
	"tabgen/internal/schema"
	"tabgen/primitive"
)

// Options configure Build.
type Options struct {
	Columns schema.KVColumns
	// Strict turns the string fallback of a table without a type column
	// into a data error.
	Strict bool
	Parser *composite.Parser
	// Sheet tags diagnostics.
	Sheet string
}

// Result holds the fields defined by a KV table.
type Result struct {
	Fields      []schema.FieldSpec
	Diagnostics diagnostic.Diagnostics
}

// legacy numeric type codes
var legacyTypes = map[string]composite.Type{
	"1": {Kind: primitive.KindInt32},
	"2": {Kind: primitive.KindString},
	"3": {Kind: primitive.KindArray, Elem: primitive.KindInt32},
	"4": {Kind: primitive.KindMap, Key: primitive.KindInt32, Value: primitive.KindInt32},
	"5": {Kind: primitive.KindFloat32},
	"6": {Kind: primitive.KindMap, Key: primitive.KindInt32, Value: primitive.KindInt32},
}

// header names recognized by DiscoverColumns
var (
	keyHeaders     = []string{"key"}
	typeHeaders    = []string{"type"}
	valueHeaders   = []string{"value"}
	commentHeaders = []string{"description", "comment"}
)

// DiscoverColumns locates the Key, Type, Value and optional
// Description/Comment cells of a header row. Matching ignores case and
// surrounding blanks. Key and Value are required.
func DiscoverColumns(header []string) (schema.KVColumns, error) {
	var kv schema.KVColumns

	for i, cell := range header {
		c := strings.ToLower(strings.TrimSpace(cell))

		switch {
		case kv.Key == 0 && slices.Contains(keyHeaders, c):
			kv.Key = i + 1
		case kv.Type == 0 && slices.Contains(typeHeaders, c):
			kv.Type = i + 1
		case kv.Value == 0 && slices.Contains(valueHeaders, c):
			kv.Value = i + 1
		case kv.Comment == 0 && slices.Contains(commentHeaders, c):
			kv.Comment = i + 1
		}
	}

	if kv.Key == 0 || kv.Value == 0 {
		return kv, diagnostic.Newf(diagnostic.KindMeta, diagnostic.CodeMetaInvalid,
			"kv header needs Key and Value cells, found %q", strings.Join(header, ",")).WithField("kv_mode")
	}

	return kv, nil
}

// Build derives one field per data row. lines holds the 1-based source row
// of each entry of rows; blank rows and rows whose key starts with "#" or
// "//" are skipped.
func Build(rows [][]string, lines []int, opts Options) (Result, error) {
	var res Result

	cols := opts.Columns

	if width := common.MaxWidth(rows); width > 0 {
		for _, c := range []int{cols.Key, cols.Type, cols.Value, cols.Comment} {
			if c > width {
				return res, diagnostic.Newf(diagnostic.KindShape, diagnostic.CodeInvalidColumn,
					"kv column %d is beyond the widest row (%d cells)", c, width).WithField("key_value_column")
			}
		}
	}

	seen := make(map[string]int)
	values := make([]string, 0, len(rows))

	for i, row := range rows {
		if common.IsBlankRow(row) {
			continue
		}

		line := lines[i]
		key := strings.TrimSpace(common.Cell(row, cols.Key))

		if strings.HasPrefix(key, "#") || strings.HasPrefix(key, "//") {
			continue
		}

		if !naming.IsIdentifier(key) {
			return res, diagnostic.Newf(diagnostic.KindName, diagnostic.CodeInvalidKVKey,
				"key %q is not a valid field name", key).WithField(key).WithRows(line)
		}

		if prev, ok := seen[key]; ok {
			return res, diagnostic.Newf(diagnostic.KindName, diagnostic.CodeDuplicateFieldName,
				"key %q is defined twice", key).WithField(key).WithRows(prev, line)
		}

		seen[key] = line

		value := strings.TrimSpace(common.Cell(row, cols.Value))
		field := schema.FieldSpec{
			Name:          key,
			CamelCaseName: naming.CamelCase(key),
			ColumnIndex:   line,
			Comment:       strings.TrimSpace(common.Cell(row, cols.Comment)),
			Enabled:       true,
		}

		if cols.Type > 0 {
			field.OriginalType = strings.TrimSpace(common.Cell(row, cols.Type))
			if err := resolve(&field, value, opts.Parser); err != nil {
				return res, err
			}
		}

		res.Fields = append(res.Fields, field)
		values = append(values, value)
	}

	if cols.Type == 0 {
		if err := untyped(&res, values, opts); err != nil {
			return res, err
		}
	}

	return res, nil
}

// resolve sets the field type from its type cell, a legacy code, or the
// value itself when the type cell is empty.
func resolve(f *schema.FieldSpec, value string, p *composite.Parser) error {
	tok := f.OriginalType

	if tok == "" {
		f.Type = primitive.Infer([]string{value})
		return nil
	}

	if t, ok := legacyTypes[tok]; ok {
		setType(f, t)
		return nil
	}

	if p.IsComposite(tok) {
		t, err := p.Parse(tok, []string{value})
		if err != nil {
			return withKey(err, f)
		}

		setType(f, *t)

		return nil
	}

	k, err := primitive.Resolve(tok)
	if err != nil {
		return withKey(err, f)
	}

	f.Type = k

	return nil
}

// untyped types every field of a table without a type column: all integer
// values give an integer table, anything else gives string.
func untyped(res *Result, values []string, opts Options) error {
	kind := primitive.InferAll(values)

	switch {
	case kind.IsInteger():
	case opts.Strict:
		for i, v := range values {
			if primitive.InferAll([]string{v}).IsInteger() || strings.TrimSpace(v) == "" {
				continue
			}

			f := res.Fields[i]

			return diagnostic.Newf(diagnostic.KindData, diagnostic.CodeInvalidCell,
				"value %q of key %q is not an integer and the table has no type column", v, f.Name).
				WithField(f.Name).WithRows(f.ColumnIndex)
		}
	default:
		kind = primitive.KindString
		if len(values) > 0 {
			res.Diagnostics.AddInfo(diagnostic.CodeKVFallbackString,
				"table has no type column and not every value is an integer; all fields are strings",
				opts.Sheet, "", 0)
		}
	}

	for i := range res.Fields {
		res.Fields[i].Type = kind
	}

	return nil
}

func setType(f *schema.FieldSpec, t composite.Type) {
	f.Type = t.Kind
	if t.Kind.IsComposite() {
		f.Composite = &t
	}
}

func withKey(err error, f *schema.FieldSpec) error {
	if e, ok := diagnostic.AsError(err); ok {
		return e.WithField(f.Name).WithRows(f.ColumnIndex)
	}

	return err
}

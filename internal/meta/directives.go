package meta

import (
	"maps"
	"strconv"
	"strings"

	"tabgen/internal/common"
	"tabgen/internal/composite"
	"tabgen/internal/diagnostic"
	"tabgen/internal/grouping"
	"tabgen/internal/schema"
)

// Directive keys.
const (
	KeyClassName      = "class_name"
	KeyClassComment   = "class_comment"
	KeyNameRow        = "name_row"
	KeyTypeRow        = "type_row"
	KeyCommentRow     = "comment_row"
	KeyDataStartRow   = "data_start_row"
	KeyDataEndRow     = "data_end_row"
	KeyKeyValueColumn = "key_value_column"
	KeyKVMode         = "kv_mode"
	KeyUniqueFields   = "unique_fields"
	KeySkipColumns    = "skip_columns"
	KeyArrayDelim     = "array_delim"
	KeyMapDelim       = "map_delim"
	KeyTypeDialect    = "type_dialect"
	KeyGroupMode      = "group_mode"
	KeyInnerTypeRange = "inner_type_range"
	KeyInnerTypeClass = "inner_type_class"
	KeyInnerFieldName = "inner_field_name"
	KeyStrict         = "strict"
)

// Default row layout.
const (
	DefaultNameRow      = 1
	DefaultTypeRow      = 2
	DefaultCommentRow   = 3
	DefaultDataStartRow = 4
)

// Directives is the typed form of a sheet's metadata. Rows are 1-based;
// zero means the row is absent. DataEndRow zero means "through the last row".
type Directives struct {
	ClassName    string
	ClassComment string

	NameRow      int
	TypeRow      int
	CommentRow   int
	DataStartRow int
	DataEndRow   int

	// KV is set when key_value_column names the KV columns.
	KV *schema.KVColumns
	// KVMode asks the builder to discover Key/Type/Value header cells.
	KVMode bool

	UniqueFields []string
	// SkipColumns holds 1-based column numbers or header names.
	SkipColumns []string

	Delimiters composite.Delimiters
	Dialect    composite.Dialect

	GroupMode      grouping.Mode
	InnerRange     *grouping.Range
	InnerTypeClass string
	InnerFieldName string

	Strict bool

	// Extra holds every directive not listed above, untouched.
	Extra map[string]string
}

// Default returns the directives of a sheet that only names its class.
func Default(className string) Directives {
	return Directives{
		ClassName:    className,
		NameRow:      DefaultNameRow,
		TypeRow:      DefaultTypeRow,
		CommentRow:   DefaultCommentRow,
		DataStartRow: DefaultDataStartRow,
		Delimiters:   composite.DefaultDelimiters(),
		Dialect:      composite.DialectAuto,
		GroupMode:    grouping.ModeAuto,
		Extra:        map[string]string{},
	}
}

// IsKV reports whether rows rather than columns define the fields.
func (d *Directives) IsKV() bool {
	return d.KV != nil || d.KVMode
}

// IsSkipped reports whether the 1-based column with the given header name
// is listed in skip_columns.
func (d *Directives) IsSkipped(column int, name string) bool {
	col := strconv.Itoa(column)
	for _, s := range d.SkipColumns {
		if s == col || s == name {
			return true
		}
	}

	return false
}

// Parse converts a raw directive map into Directives. Keys are matched
// case-insensitively and "-" is accepted in place of "_". A missing
// class_name, or two keys naming the same directive, is a meta error.
func Parse(raw map[string]string) (Directives, error) {
	norm := make(map[string]string, len(raw))
	orig := make(map[string]string, len(raw))

	for k, v := range raw {
		nk := NormalizeKey(k)
		if prev, ok := orig[nk]; ok {
			a, b := min(prev, k), max(prev, k)
			return Directives{}, diagnostic.Newf(diagnostic.KindMeta, diagnostic.CodeMetaInvalid,
				"directive %q is given twice, as %q and %q", nk, a, b).WithField(nk)
		}

		norm[nk] = strings.TrimSpace(v)
		orig[nk] = k
	}

	name := norm[KeyClassName]
	if name == "" {
		return Directives{}, diagnostic.Newf(diagnostic.KindMeta, diagnostic.CodeMetaMissing,
			"directive %q is required", KeyClassName).WithField(KeyClassName)
	}

	d := Default(name)
	p := parser{values: norm, keys: orig}

	d.ClassComment = p.take(KeyClassComment)
	d.NameRow = p.row(KeyNameRow, d.NameRow)
	d.TypeRow = p.row(KeyTypeRow, d.TypeRow)
	d.CommentRow = p.row(KeyCommentRow, d.CommentRow)
	d.DataStartRow = p.row(KeyDataStartRow, d.DataStartRow)
	d.DataEndRow = p.row(KeyDataEndRow, 0)
	d.KVMode = p.flag(KeyKVMode)
	d.Strict = p.flag(KeyStrict)
	d.UniqueFields = common.SplitList(p.take(KeyUniqueFields))
	d.SkipColumns = common.SplitList(p.take(KeySkipColumns))
	d.InnerTypeClass = p.take(KeyInnerTypeClass)
	d.InnerFieldName = p.take(KeyInnerFieldName)

	if s := p.take(KeyKeyValueColumn); s != "" && p.err == nil {
		kv, err := parseKVColumns(s)
		p.fail(KeyKeyValueColumn, err)
		d.KV = kv
	}

	if p.err == nil {
		var err error
		d.Delimiters, err = composite.ParseDelimiters(p.take(KeyArrayDelim), p.take(KeyMapDelim))
		p.fail(KeyMapDelim, err)
	}

	if p.err == nil {
		var err error
		d.Dialect, err = composite.ParseDialect(p.take(KeyTypeDialect))
		p.fail(KeyTypeDialect, err)
	}

	if p.err == nil {
		var err error
		d.GroupMode, err = grouping.ParseMode(p.take(KeyGroupMode))
		p.fail(KeyGroupMode, err)
	}

	if s := p.take(KeyInnerTypeRange); s != "" && p.err == nil {
		r, err := grouping.ParseRange(s)
		p.fail(KeyInnerTypeRange, err)
		d.InnerRange = r
	}

	if p.err != nil {
		return Directives{}, p.err
	}

	if d.NameRow == 0 && !d.IsKV() {
		return Directives{}, diagnostic.Newf(diagnostic.KindMeta, diagnostic.CodeMetaInvalid,
			"a sheet without a name row must use key_value_column or kv_mode").WithField(KeyNameRow)
	}

	if d.DataStartRow == 0 {
		return Directives{}, diagnostic.Newf(diagnostic.KindMeta, diagnostic.CodeMetaInvalid,
			"data start row must be at least 1").WithField(KeyDataStartRow)
	}

	if d.DataEndRow != 0 && d.DataEndRow < d.DataStartRow {
		return Directives{}, diagnostic.Newf(diagnostic.KindMeta, diagnostic.CodeMetaInvalid,
			"data end row %d is before data start row %d", d.DataEndRow, d.DataStartRow).WithField(KeyDataEndRow)
	}

	delete(norm, KeyClassName)
	d.Extra = p.rest()

	return d, nil
}

// parseKVColumns parses "k,t,v[,c]" or "k,v".
func parseKVColumns(s string) (*schema.KVColumns, error) {
	parts := common.SplitList(s)
	nums := make([]int, len(parts))

	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return nil, diagnostic.Newf(diagnostic.KindMeta, diagnostic.CodeMetaInvalid,
				"key value column %q: %q is not a 1-based column", s, p)
		}

		nums[i] = n
	}

	var kv schema.KVColumns

	switch len(nums) {
	case 2:
		kv = schema.KVColumns{Key: nums[0], Value: nums[1]}
	case 3:
		kv = schema.KVColumns{Key: nums[0], Type: nums[1], Value: nums[2]}
	case 4:
		kv = schema.KVColumns{Key: nums[0], Type: nums[1], Value: nums[2], Comment: nums[3]}
	default:
		return nil, diagnostic.Newf(diagnostic.KindMeta, diagnostic.CodeMetaInvalid,
			"key value column %q: want key,type,value[,comment] or key,value", s)
	}

	if kv.Key == kv.Value || kv.Key == kv.Type || kv.Value == kv.Type {
		return nil, diagnostic.Newf(diagnostic.KindMeta, diagnostic.CodeMetaInvalid,
			"key value column %q: columns must differ", s)
	}

	return &kv, nil
}

// NormalizeKey returns the canonical spelling of a directive key.
func NormalizeKey(k string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(k)), "-", "_")
}

// HasKey reports whether raw holds key under any accepted spelling.
func HasKey(raw map[string]string, key string) bool {
	key = NormalizeKey(key)
	for k := range raw {
		if NormalizeKey(k) == key {
			return true
		}
	}

	return false
}

// Merge returns defaults overlaid by overrides. A default is dropped when
// overrides spell the same directive differently.
func Merge(defaults, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(defaults)+len(overrides))

	for k, v := range defaults {
		if !HasKey(overrides, k) {
			out[k] = v
		}
	}

	maps.Copy(out, overrides)

	return out
}

// parser consumes known keys from a normalized map, remembering the first
// failure.
type parser struct {
	values map[string]string
	keys   map[string]string // normalized key -> key as written
	err    error
}

func (p *parser) take(key string) string {
	v := p.values[key]
	delete(p.values, key)

	return v
}

func (p *parser) flag(key string) bool {
	v := p.take(key)
	if v == "" {
		return false
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, err)
	}

	return b
}

func (p *parser) row(key string, def int) int {
	v, ok := p.values[key]
	if !ok || v == "" {
		delete(p.values, key)
		return def
	}

	p.take(key)

	n, err := strconv.Atoi(v)
	if err == nil && n < 0 {
		err = strconv.ErrRange
	}

	if err != nil {
		p.fail(key, err)
		return def
	}

	return n
}

func (p *parser) fail(key string, err error) {
	if err == nil || p.err != nil {
		return
	}

	if e, ok := diagnostic.AsError(err); ok {
		if e.Field == "" {
			e.Field = key
		}

		p.err = e

		return
	}

	p.err = diagnostic.Newf(diagnostic.KindMeta, diagnostic.CodeMetaInvalid, "%v", err).WithField(key)
}

func (p *parser) rest() map[string]string {
	out := make(map[string]string, len(p.values))
	for k, v := range p.values {
		out[p.keys[k]] = v
	}

	return out
}

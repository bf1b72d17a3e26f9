package export

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"tabgen/internal/common"
	"tabgen/internal/composite"
	"tabgen/internal/schema"
	"tabgen/primitive"
)

// Value converts a normalized cell to a typed Go value: int64, uint64,
// float64, bool, string, []any for arrays and map[string]any for maps.
func Value(f *schema.FieldSpec, cell string, d composite.Delimiters) (any, error) {
	if c := f.Composite; c != nil {
		if c.Kind == primitive.KindArray {
			return arrayValue(c.Elem, cell, d)
		}

		return mapValue(c, cell, d)
	}

	return scalar(f.Type, cell)
}

func scalar(kind primitive.KindEnum, cell string) (any, error) {
	s := strings.TrimSpace(cell)

	switch {
	case kind == primitive.KindString:
		return cell, nil
	case kind == primitive.KindBool:
		return primitive.IsTruthy(s), nil
	case s == "" && kind.IsNumber():
		return zero(kind), nil
	case kind.IsUnsigned():
		return strconv.ParseUint(s, 10, 64)
	case kind.IsInteger():
		return strconv.ParseInt(s, 10, 64)
	case kind.IsFloat():
		return strconv.ParseFloat(s, 64)
	default:
		return nil, fmt.Errorf("cannot convert %q to %s", cell, kind.Name())
	}
}

func zero(kind primitive.KindEnum) any {
	switch {
	case kind.IsUnsigned():
		return uint64(0)
	case kind.IsInteger():
		return int64(0)
	default:
		return float64(0)
	}
}

func arrayValue(elem primitive.KindEnum, cell string, d composite.Delimiters) ([]any, error) {
	out := []any{}
	if strings.TrimSpace(cell) == "" {
		return out, nil
	}

	for _, part := range strings.Split(cell, string(d.Array)) {
		v, err := scalar(elem, part)
		if err != nil {
			return nil, fmt.Errorf("array element %q: %w", part, err)
		}

		out = append(out, v)
	}

	return out, nil
}

func mapValue(c *composite.Type, cell string, d composite.Delimiters) (map[string]any, error) {
	out := map[string]any{}

	for _, pair := range strings.Split(cell, string(d.Pair)) {
		if strings.TrimSpace(pair) == "" {
			continue
		}

		k, v, ok := strings.Cut(pair, string(d.KeyValue))
		if !ok {
			return nil, fmt.Errorf("map entry %q has no %q", pair, string(d.KeyValue))
		}

		if _, err := scalar(c.Key, k); err != nil {
			return nil, fmt.Errorf("map key %q: %w", k, err)
		}

		val, err := scalar(c.Value, v)
		if err != nil {
			return nil, fmt.Errorf("map value %q: %w", v, err)
		}

		out[strings.TrimSpace(k)] = val
	}

	return out, nil
}

// Records converts the data rows of a column-defined struct to one map per
// row. Vector groups become arrays and inner records lists of maps, both
// keyed by their emitted names.
func Records(s *schema.Struct) ([]map[string]any, error) {
	inner := innerColumns(s)
	out := make([]map[string]any, 0, len(s.DataRows))

	for _, row := range s.DataRows {
		rec := make(map[string]any, len(s.Fields)+1)

		for i := range s.Fields {
			f := &s.Fields[i]

			v, err := Value(f, common.Cell(row, f.ColumnIndex), s.Delimiters)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", s.Name, f.Name, err)
			}

			rec[f.Name] = v
		}

		if vec := s.Vector; vec != nil {
			vals := make([]any, 0, vec.Count)

			for _, col := range vec.Columns {
				v, err := scalar(vec.Elem, common.Cell(row, col))
				if err != nil {
					return nil, fmt.Errorf("%s.%s: %w", s.Name, vec.Prefix, err)
				}

				vals = append(vals, v)
			}

			rec[vec.Prefix] = vals
		}

		if g := s.Inner; g != nil {
			items := make([]map[string]any, 0, g.Records())

			for r := 0; r < g.Records(); r++ {
				item := make(map[string]any, g.Width())

				for j := range g.TemplateFields {
					tf := &g.TemplateFields[j]

					v, err := Value(tf, common.Cell(row, inner[r*g.Width()+j]), s.Delimiters)
					if err != nil {
						return nil, fmt.Errorf("%s.%s.%s: %w", s.Name, g.FieldName, tf.Name, err)
					}

					item[tf.Name] = v
				}

				items = append(items, item)
			}

			rec[g.FieldName] = items
		}

		out = append(out, rec)
	}

	return out, nil
}

// KVRecord converts the rows of a KV struct to one map of key to value.
func KVRecord(s *schema.Struct) (map[string]any, error) {
	fields := make(map[string]*schema.FieldSpec, len(s.Fields))
	for i := range s.Fields {
		fields[s.Fields[i].Name] = &s.Fields[i]
	}

	out := make(map[string]any, len(s.Fields))

	for _, row := range s.DataRows {
		f, ok := fields[strings.TrimSpace(common.Cell(row, s.KV.Key))]
		if !ok {
			continue
		}

		v, err := Value(f, common.Cell(row, s.KV.Value), s.Delimiters)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", s.Name, f.Name, err)
		}

		out[f.Name] = v
	}

	return out, nil
}

// Table returns the header and rows a tabular writer emits: the enabled
// columns of a column-defined struct, or the key/type/value/comment columns
// of a KV struct restricted to rows that define a field.
func Table(s *schema.Struct, hideKV bool) ([]string, [][]string) {
	if s.KVMode {
		return kvTable(s, hideKV)
	}

	cols := s.EnabledColumns()

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Name
	}

	rows := make([][]string, len(s.DataRows))

	for r, row := range s.DataRows {
		out := make([]string, len(cols))
		for i, c := range cols {
			out[i] = common.Cell(row, c.ColumnIndex)
		}

		rows[r] = out
	}

	return header, rows
}

func kvTable(s *schema.Struct, hide bool) ([]string, [][]string) {
	type kvCol struct {
		name   string
		index  int
		hidden bool
	}

	var cols []kvCol
	for _, c := range []kvCol{
		{"key", s.KV.Key, false},
		{"type", s.KV.Type, hide},
		{"value", s.KV.Value, false},
		{"comment", s.KV.Comment, hide},
	} {
		if c.index > 0 {
			cols = append(cols, c)
		}
	}

	defined := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		defined[f.Name] = struct{}{}
	}

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.name
	}

	var rows [][]string

	for _, row := range s.DataRows {
		if _, ok := defined[strings.TrimSpace(common.Cell(row, s.KV.Key))]; !ok {
			continue
		}

		out := make([]string, len(cols))
		for i, c := range cols {
			if !c.hidden {
				out[i] = common.Cell(row, c.index)
			}
		}

		rows = append(rows, out)
	}

	return header, rows
}

// innerColumns lists the source columns of an inner record block in order.
func innerColumns(s *schema.Struct) []int {
	g := s.Inner
	if g == nil {
		return nil
	}

	var cols []int

	for _, c := range s.Columns {
		if c.Enabled && c.ColumnIndex >= g.StartColumn && c.ColumnIndex <= g.EndColumn {
			cols = append(cols, c.ColumnIndex)
		}
	}

	return cols
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

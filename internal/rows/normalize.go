package rows

import (
	"math"
	"strconv"
	"strings"

	"tabgen/internal/common"
	"tabgen/internal/diagnostic"
	"tabgen/internal/schema"
	"tabgen/primitive"
	"tabgen/utils"
)

// Options configure Normalize and NormalizeKV.
type Options struct {
	// FirstLine is the 1-based source row of rows[0].
	FirstLine int
	// Unique names fields whose non-empty values must not repeat.
	Unique []string
	// Sheet tags diagnostics.
	Sheet string
}

// Result holds normalized rows.
type Result struct {
	Rows [][]string
	// Lines is the 1-based source row of each entry of Rows.
	Lines       []int
	Diagnostics diagnostic.Diagnostics
}

// Round rounds half away from zero.
func Round(f float64) float64 {
	return math.Round(f)
}

// Normalize pads every row to a common width, drops rows that are blank in
// every cell and coerces the cells of every enabled column to its type.
// columns must list every header column; only enabled ones are coerced.
func Normalize(columns []schema.FieldSpec, rows [][]string, opts Options) (Result, error) {
	width := common.MaxWidth(rows)
	for _, c := range columns {
		width = max(width, c.ColumnIndex)
	}

	res := pad(rows, width, opts.FirstLine)
	blank := blankCells(columns, res.Rows, opts.Unique)

	for i := range columns {
		f := &columns[i]
		if !f.Enabled {
			continue
		}

		for r, row := range res.Rows {
			idx := f.ColumnIndex - 1

			out, rounded, err := Coerce(f, row[idx])
			if err != nil {
				return res, cellError(err, f, res.Lines[r])
			}

			if rounded {
				res.Diagnostics.AddInfo(diagnostic.CodeRoundInteger,
					"rounded "+strconv.Quote(strings.TrimSpace(row[idx]))+" to "+out, opts.Sheet, f.Name, res.Lines[r])
			}

			row[idx] = out
		}
	}

	if err := checkUnique(columns, res, opts.Unique, blank); err != nil {
		return res, err
	}

	return res, nil
}

// NormalizeKV coerces the value cell of every KV row to the type declared
// by the field defined on that row. Rows defining no field (commented out
// keys) are kept untouched.
func NormalizeKV(fields []schema.FieldSpec, cols schema.KVColumns, rows [][]string, opts Options) (Result, error) {
	width := max(common.MaxWidth(rows), cols.Key, cols.Type, cols.Value, cols.Comment)

	res := pad(rows, width, opts.FirstLine)

	byLine := make(map[int]*schema.FieldSpec, len(fields))
	for i := range fields {
		byLine[fields[i].ColumnIndex] = &fields[i]
	}

	idx := cols.Value - 1

	for r, row := range res.Rows {
		f, ok := byLine[res.Lines[r]]
		if !ok {
			continue
		}

		out, rounded, err := Coerce(f, row[idx])
		if err != nil {
			return res, cellError(err, f, res.Lines[r])
		}

		if rounded {
			res.Diagnostics.AddInfo(diagnostic.CodeRoundInteger,
				"rounded "+strconv.Quote(strings.TrimSpace(row[idx]))+" to "+out, opts.Sheet, f.Name, res.Lines[r])
		}

		row[idx] = out
	}

	return res, nil
}

// Coerce converts one cell to the canonical text of the field's type. It
// reports whether an integer cell had to be rounded.
func Coerce(f *schema.FieldSpec, cell string) (string, bool, error) {
	s := strings.TrimSpace(cell)

	switch {
	case f.Composite != nil || f.Type == primitive.KindString:
		return cell, false, nil
	case f.Type == primitive.KindBool:
		if primitive.IsTruthy(s) {
			return "1", false, nil
		}

		return "0", false, nil
	case f.Type.IsInteger():
		return coerceInt(f.Type, s)
	case f.Type.IsFloat():
		return coerceFloat(f.Type, s)
	default:
		return cell, false, nil
	}
}

func coerceInt(kind primitive.KindEnum, s string) (string, bool, error) {
	if s == "" {
		return "0", false, nil
	}

	if kind.IsUnsigned() {
		if v, err := strconv.ParseUint(s, 10, 64); err == nil {
			if v > kind.UintMax() {
				return "", false, rangeError(s, kind)
			}

			return strconv.FormatUint(v, 10), false, nil
		}
	} else if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if lo, hi := kind.IntRange(); !utils.IsInRange(lo, v, hi) {
			return "", false, rangeError(s, kind)
		}

		return strconv.FormatInt(v, 10), false, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false, diagnostic.Newf(diagnostic.KindData, diagnostic.CodeInvalidCell,
			"%q is not a valid %s", s, kind.Name())
	}

	r := Round(f)

	if lo, end := floatBounds(kind); r < lo || r >= end {
		return "", false, rangeError(s, kind)
	}

	if r == 0 {
		// avoid "-0"
		r = 0
	}

	return strconv.FormatFloat(r, 'f', 0, 64), true, nil
}

// floatBounds returns the inclusive lower and exclusive upper bound of an
// integer kind as floats. The 64-bit maxima are not representable, so their
// upper bounds are the next powers of two.
func floatBounds(kind primitive.KindEnum) (lo, end float64) {
	switch {
	case kind == primitive.KindUint64:
		return 0, 0x1p64
	case kind == primitive.KindInt64:
		return -0x1p63, 0x1p63
	case kind.IsUnsigned():
		return 0, float64(kind.UintMax()) + 1
	default:
		l, h := kind.IntRange()
		return float64(l), float64(h) + 1
	}
}

func coerceFloat(kind primitive.KindEnum, s string) (string, bool, error) {
	if s == "" {
		return "0", false, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false, diagnostic.Newf(diagnostic.KindData, diagnostic.CodeInvalidCell,
			"%q is not a valid %s", s, kind.Name())
	}

	if kind == primitive.KindFloat32 && math.Abs(f) > math.MaxFloat32 {
		return "", false, rangeError(s, kind)
	}

	return s, false, nil
}

func rangeError(s string, kind primitive.KindEnum) *diagnostic.Error {
	return diagnostic.Newf(diagnostic.KindData, diagnostic.CodeInvalidCell, "%s is out of range for %s", s, kind.Name())
}

func cellError(err error, f *schema.FieldSpec, line int) error {
	if e, ok := diagnostic.AsError(err); ok {
		return e.WithField(f.Name).WithRows(line)
	}

	return err
}

// pad copies rows, dropping blank ones and padding the rest to width.
func pad(rows [][]string, width, firstLine int) Result {
	res := Result{
		Rows:  make([][]string, 0, len(rows)),
		Lines: make([]int, 0, len(rows)),
	}

	for i, row := range rows {
		if common.IsBlankRow(row) {
			continue
		}

		res.Rows = append(res.Rows, common.PadRow(row, width))
		res.Lines = append(res.Lines, firstLine+i)
	}

	return res
}

// blankCells records, per unique column, which rows were blank before
// coercion turned them into zero values.
func blankCells(columns []schema.FieldSpec, rows [][]string, unique []string) map[int][]bool {
	out := make(map[int][]bool, len(unique))

	for _, name := range unique {
		col := findColumn(columns, name)
		if col == nil {
			continue
		}

		blank := make([]bool, len(rows))
		for r, row := range rows {
			blank[r] = strings.TrimSpace(row[col.ColumnIndex-1]) == ""
		}

		out[col.ColumnIndex] = blank
	}

	return out
}

func checkUnique(columns []schema.FieldSpec, res Result, unique []string, blank map[int][]bool) error {
	for _, name := range unique {
		col := findColumn(columns, name)
		if col == nil {
			return diagnostic.Newf(diagnostic.KindMeta, diagnostic.CodeMetaInvalid,
				"unique field %q is not a column", name).WithField("unique_fields")
		}

		seen := make(map[string]int, len(res.Rows))

		for r, row := range res.Rows {
			v := strings.TrimSpace(row[col.ColumnIndex-1])
			if v == "" || blank[col.ColumnIndex][r] {
				continue
			}

			if first, ok := seen[v]; ok {
				return diagnostic.Newf(diagnostic.KindData, diagnostic.CodeDuplicateValue,
					"value %q of unique field %q repeats", v, name).WithField(name).WithRows(first, res.Lines[r])
			}

			seen[v] = res.Lines[r]
		}
	}

	return nil
}

func findColumn(columns []schema.FieldSpec, name string) *schema.FieldSpec {
	for i := range columns {
		if columns[i].Enabled && columns[i].Name == name {
			return &columns[i]
		}
	}

	return nil
}

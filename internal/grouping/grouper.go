package grouping

import (
	"fmt"
	"strconv"
	"strings"

	"tabgen/internal/common"
	"tabgen/internal/diagnostic"
	"tabgen/internal/naming"
	"tabgen/internal/schema"
)

// Mode selects which detectors run.
type Mode int

const (
	ModeAuto   Mode = iota // vector first, then inner record
	ModeVector             // vector detection only
	ModeInner              // inner record detection only
	ModeOff                // no grouping
)

// String returns the directive spelling of the mode.
func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeVector:
		return "vector"
	case ModeInner:
		return "inner"
	case ModeOff:
		return "off"
	default:
		return common.UnknownStr
	}
}

// ParseMode parses the group_mode directive. An empty string is ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "on":
		return ModeAuto, nil
	case "vector":
		return ModeVector, nil
	case "inner":
		return ModeInner, nil
	case "off", "none":
		return ModeOff, nil
	default:
		return ModeAuto, fmt.Errorf("unknown group mode %q (want auto, vector, inner or off)", s)
	}
}

// Range pins an inner record block by 1-based source columns instead of
// detecting it. End -1 means the last field.
type Range struct {
	Start int
	End   int
	Step  int
}

// ParseRange parses "start,end,step".
func ParseRange(s string) (*Range, error) {
	parts := common.SplitList(s)
	if len(parts) != 3 {
		return nil, fmt.Errorf("inner type range %q: want start,end,step", s)
	}

	nums := make([]int, 3)

	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("inner type range %q: %w", s, err)
		}

		nums[i] = n
	}

	r := &Range{Start: nums[0], End: nums[1], Step: nums[2]}
	if r.Start < 1 || r.Step < 2 || (r.End != -1 && r.End < r.Start) {
		return nil, fmt.Errorf("inner type range %q: want start >= 1, step >= 2 and end >= start or -1", s)
	}

	return r, nil
}

// Options configure Group.
type Options struct {
	Mode  Mode
	Range *Range
	// TypeName and FieldName name the generated inner record type and the
	// list field holding it.
	TypeName  string
	FieldName string
}

// Result is the outcome of grouping: the residual fields plus at most one
// grouping construct.
type Result struct {
	Fields []schema.FieldSpec
	Vector *schema.VectorGroup
	Inner  *schema.InnerRecordGroup
	// Shadowed is an inner record block found among the residual fields in
	// ModeAuto that was left ungrouped because a vector was chosen.
	Shadowed *schema.InnerRecordGroup
}

// Group collapses at most one run of fields into a grouping construct.
// When both a vector run and an inner record block exist, the vector wins.
// An explicit Range overrides detection.
func Group(fields []schema.FieldSpec, opts Options) (Result, error) {
	res := Result{Fields: fields}

	if opts.Mode == ModeOff {
		return res, nil
	}

	if opts.Range != nil {
		inner, start, end, err := innerFromRange(fields, opts.Range)
		if err != nil {
			return res, err
		}

		inner.TypeName, inner.FieldName = opts.TypeName, opts.FieldName
		res.Inner = inner
		res.Fields = without(fields, start, end)

		return res, nil
	}

	if opts.Mode == ModeAuto || opts.Mode == ModeVector {
		if vec, start := DetectVector(fields); vec != nil {
			res.Vector = vec
			res.Fields = without(fields, start, start+vec.Count)

			if opts.Mode == ModeAuto {
				res.Shadowed, _ = DetectInnerRecord(res.Fields)
			}

			return res, nil
		}
	}

	if opts.Mode == ModeAuto || opts.Mode == ModeInner {
		if inner, start := DetectInnerRecord(fields); inner != nil {
			inner.TypeName, inner.FieldName = opts.TypeName, opts.FieldName
			res.Inner = inner
			res.Fields = without(fields, start, start+inner.Width()*inner.Records())
		}
	}

	return res, nil
}

// DetectVector returns the first left-to-right run of at least two
// consecutive primitive fields of the same kind named Prefix<n>,
// Prefix<n+1>, ... with n being 0 or 1, and the index of its first field.
func DetectVector(fields []schema.FieldSpec) (*schema.VectorGroup, int) {
	for i := 0; i+1 < len(fields); i++ {
		first := &fields[i]
		if first.Composite != nil || !first.Type.IsPrimitive() {
			continue
		}

		stem, idx, ok := naming.SplitIndexSuffix(first.Name)
		if !ok || (idx != 0 && idx != 1) {
			continue
		}

		j, next := i+1, idx+1
		for ; j < len(fields); j, next = j+1, next+1 {
			f := &fields[j]
			s, n, ok := naming.SplitIndexSuffix(f.Name)

			if !ok || s != stem || n != next || f.Type != first.Type || f.Composite != nil {
				break
			}
		}

		if j-i < 2 {
			continue
		}

		vec := &schema.VectorGroup{
			Prefix:     stem,
			Elem:       first.Type,
			Count:      j - i,
			StartIndex: idx,
			Position:   i,
		}
		for _, f := range fields[i:j] {
			vec.Columns = append(vec.Columns, f.ColumnIndex)
		}

		return vec, i
	}

	return nil, -1
}

// DetectInnerRecord finds a block of g >= 2 fields whose (index-stripped
// name, type) signature repeats contiguously at least once more. The
// leftmost start wins; for that start the gap covering the most fields
// wins, smaller gap on ties. It returns the group and its first field index.
func DetectInnerRecord(fields []schema.FieldSpec) (*schema.InnerRecordGroup, int) {
	n := len(fields)
	stems := make([]string, n)
	sigs := make([]string, n)

	for i := range fields {
		stems[i] = naming.StripIndexSuffix(fields[i].Name)
		sigs[i] = fields[i].Signature(stems[i])
	}

	for i := 0; i < n; i++ {
		bestGap, bestRepeat := 0, 0

		for g := 2; i+2*g <= n; g++ {
			if !distinct(stems[i : i+g]) {
				continue
			}

			k := 0
			for i+(k+2)*g <= n && equal(sigs[i:i+g], sigs[i+(k+1)*g:i+(k+2)*g]) {
				k++
			}

			if k >= 1 && g*(k+1) > bestGap*(bestRepeat+1) {
				bestGap, bestRepeat = g, k
			}
		}

		if bestGap > 0 {
			return newInner(fields, stems, i, bestGap, bestRepeat), i
		}
	}

	return nil, -1
}

func innerFromRange(fields []schema.FieldSpec, r *Range) (*schema.InnerRecordGroup, int, int, error) {
	start := indexOfColumn(fields, r.Start)
	if start < 0 {
		return nil, 0, 0, rangeError("inner type range start column %d is not an enabled field", r.Start)
	}

	end := len(fields)
	if r.End != -1 {
		last := indexOfColumn(fields, r.End)
		if last < 0 {
			return nil, 0, 0, rangeError("inner type range end column %d is not an enabled field", r.End)
		}

		end = last + 1
	}

	width := end - start
	if width < 2*r.Step || width%r.Step != 0 {
		return nil, 0, 0, rangeError("inner type range covers %d fields, want a multiple of %d with at least two records", width, r.Step)
	}

	stems := make([]string, len(fields))
	for i := range fields {
		stems[i] = naming.StripIndexSuffix(fields[i].Name)
	}

	if !distinct(stems[start : start+r.Step]) {
		return nil, 0, 0, rangeError("inner type range record has duplicate field names")
	}

	for off := start + r.Step; off < end; off += r.Step {
		for j := 0; j < r.Step; j++ {
			a, b := &fields[start+j], &fields[off+j]
			if a.Signature(stems[start+j]) != b.Signature(stems[off+j]) {
				return nil, 0, 0, rangeError("inner type range field %q does not match %q", b.Name, a.Name)
			}
		}
	}

	return newInner(fields, stems, start, r.Step, width/r.Step-1), start, end, nil
}

func newInner(fields []schema.FieldSpec, stems []string, start, gap, repeat int) *schema.InnerRecordGroup {
	end := start + gap*(repeat+1)

	g := &schema.InnerRecordGroup{
		RepeatCount: repeat,
		StartColumn: fields[start].ColumnIndex,
		EndColumn:   fields[end-1].ColumnIndex,
		Position:    start,
	}

	for j := start; j < start+gap; j++ {
		f := fields[j]
		f.Name = stems[j]
		f.CamelCaseName = naming.CamelCase(stems[j])
		g.TemplateFields = append(g.TemplateFields, f)
	}

	return g
}

func indexOfColumn(fields []schema.FieldSpec, column int) int {
	for i := range fields {
		if fields[i].ColumnIndex == column {
			return i
		}
	}

	return -1
}

// without returns fields minus [start, end) in a new slice.
func without(fields []schema.FieldSpec, start, end int) []schema.FieldSpec {
	out := make([]schema.FieldSpec, 0, len(fields)-(end-start))
	out = append(out, fields[:start]...)

	return append(out, fields[end:]...)
}

func distinct(names []string) bool {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return false
		}

		seen[n] = struct{}{}
	}

	return true
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func rangeError(format string, args ...any) *diagnostic.Error {
	return diagnostic.Newf(diagnostic.KindMeta, diagnostic.CodeMetaInvalid, format, args...).WithField("inner_type_range")
}

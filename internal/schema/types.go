package schema

import (
	"tabgen/internal/composite"
	"tabgen/internal/diagnostic"
	"tabgen/primitive"
)

// FieldSpec describes one column (or, in KV mode, one row) of a sheet.
type FieldSpec struct {
	Name          string             // field name as written in the sheet
	CamelCaseName string             // Name converted to CamelCase
	OriginalType  string             // raw type token, e.g. "int[]" or "" when inferred
	Type          primitive.KindEnum // resolved kind
	Composite     *composite.Type    // set iff Type is KindArray or KindMap
	ColumnIndex   int                // 1-based source column (source row in KV mode)
	Comment       string
	Enabled       bool // disabled fields are kept for row alignment only
}

// TypeName renders the canonical type: "int32", "array<int32>",
// "map<int32,string>".
func (f *FieldSpec) TypeName() string {
	if f.Composite != nil {
		return f.Composite.String()
	}

	return f.Type.Name()
}

// Signature identifies a field by its index-stripped name and type. Two
// blocks of fields with equal signatures are repetitions of the same record.
func (f *FieldSpec) Signature(stem string) string {
	return stem + ":" + f.TypeName()
}

// VectorGroup is a fixed-size array collapsed from consecutively numbered
// scalar fields Prefix<StartIndex> .. Prefix<StartIndex+Count-1>.
type VectorGroup struct {
	Prefix     string
	Elem       primitive.KindEnum
	Count      int
	StartIndex int   // first numeric suffix, 0 or 1
	Columns    []int // 1-based source columns of the members
	Position   int   // index into Struct.Fields where the group is emitted
}

// InnerRecordGroup is a repeating block of heterogeneous fields collapsed
// into one list-typed field of nested records.
type InnerRecordGroup struct {
	TypeName       string      // generated record type name
	FieldName      string      // list field name on the outer struct
	TemplateFields []FieldSpec // one record, names stripped of their index
	RepeatCount    int         // repetitions beyond the template, >= 1
	StartColumn    int         // 1-based, inclusive
	EndColumn      int         // 1-based, inclusive
	Position       int         // index into Struct.Fields where the group is emitted
}

// Width returns the number of fields in one record.
func (g *InnerRecordGroup) Width() int {
	return len(g.TemplateFields)
}

// Records returns the total number of records, template included.
func (g *InnerRecordGroup) Records() int {
	return g.RepeatCount + 1
}

// KVColumns are the 1-based columns of a KV sheet; zero means absent.
type KVColumns struct {
	Key     int
	Type    int
	Value   int
	Comment int
}

// Struct is the normalized descriptor of one sheet. It is built once and must
// be treated as read-only by generators and writers.
type Struct struct {
	Name          string
	CamelCaseName string
	Comment       string

	// Fields are the enabled fields that are not part of a group, in source
	// order. In KV mode there is one field per data row.
	Fields []FieldSpec
	// Columns are every named header column, disabled ones included, in
	// source order. Empty in KV mode.
	Columns []FieldSpec

	Vector *VectorGroup
	Inner  *InnerRecordGroup

	KVMode bool
	KV     KVColumns

	// DataRows is rectangular; cells are addressed by FieldSpec.ColumnIndex-1.
	DataRows [][]string
	// Delimiters split array and map cells of DataRows.
	Delimiters composite.Delimiters
	// Options holds directives this package does not interpret.
	Options map[string]string

	Diagnostics diagnostic.Diagnostics
}

// Field returns the plain (ungrouped) field with the given name.
func (s *Struct) Field(name string) (*FieldSpec, bool) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], true
		}
	}

	return nil, false
}

// EnabledColumns returns the enabled header columns in source order,
// grouped members included. In KV mode it returns Fields.
func (s *Struct) EnabledColumns() []FieldSpec {
	if s.KVMode {
		return s.Fields
	}

	out := make([]FieldSpec, 0, len(s.Columns))
	for _, c := range s.Columns {
		if c.Enabled {
			out = append(out, c)
		}
	}

	return out
}

package export

import (
	"bytes"
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"tabgen/internal/schema"
)

// YAMLWriter writes the struct descriptor of every sheet to
// <Name>.schema.yaml for downstream code generators.
type YAMLWriter struct{}

// Name implements Writer.
func (YAMLWriter) Name() string { return "yaml" }

// Write implements Writer.
func (YAMLWriter) Write(ctx context.Context, structs []*schema.Struct, opts Options) ([]string, error) {
	files := make(map[string][]byte, len(structs))

	for _, s := range structs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := EncodeDescriptor(s)
		if err != nil {
			return nil, fmt.Errorf("encoding %s descriptor: %w", s.Name, err)
		}

		files[s.Name+".schema.yaml"] = data
	}

	return writeAll(opts.OutDir, files, opts)
}

// Descriptor is the serialized form of a schema.Struct.
type Descriptor struct {
	Name          string            `yaml:"name"`
	CamelCaseName string            `yaml:"camel_case_name"`
	Comment       string            `yaml:"comment,omitempty"`
	Mode          string            `yaml:"mode"`
	Fields        []FieldDescriptor `yaml:"fields"`
	Vector        *VectorDescriptor `yaml:"vector,omitempty"`
	Inner         *InnerDescriptor  `yaml:"inner,omitempty"`
	Rows          int               `yaml:"rows"`
	Options       map[string]string `yaml:"options,omitempty"`
}

// FieldDescriptor is the serialized form of a schema.FieldSpec.
type FieldDescriptor struct {
	Name          string `yaml:"name"`
	CamelCaseName string `yaml:"camel_case_name"`
	Type          string `yaml:"type"`
	Column        int    `yaml:"column"`
	Comment       string `yaml:"comment,omitempty"`
}

// VectorDescriptor is the serialized form of a schema.VectorGroup.
type VectorDescriptor struct {
	Name     string `yaml:"name"`
	Elem     string `yaml:"elem"`
	Count    int    `yaml:"count"`
	Position int    `yaml:"position"`
}

// InnerDescriptor is the serialized form of a schema.InnerRecordGroup.
type InnerDescriptor struct {
	TypeName  string            `yaml:"type_name"`
	FieldName string            `yaml:"field_name"`
	Fields    []FieldDescriptor `yaml:"fields"`
	Records   int               `yaml:"records"`
	Position  int               `yaml:"position"`
}

// Describe converts s to its Descriptor.
func Describe(s *schema.Struct) Descriptor {
	d := Descriptor{
		Name:          s.Name,
		CamelCaseName: s.CamelCaseName,
		Comment:       s.Comment,
		Mode:          "table",
		Fields:        describeFields(s.Fields),
		Rows:          len(s.DataRows),
		Options:       s.Options,
	}

	if s.KVMode {
		d.Mode = "kv"
		d.Rows = len(s.Fields)
	}

	if v := s.Vector; v != nil {
		d.Vector = &VectorDescriptor{
			Name:     v.Prefix,
			Elem:     v.Elem.Name(),
			Count:    v.Count,
			Position: v.Position,
		}
	}

	if g := s.Inner; g != nil {
		d.Inner = &InnerDescriptor{
			TypeName:  g.TypeName,
			FieldName: g.FieldName,
			Fields:    describeFields(g.TemplateFields),
			Records:   g.Records(),
			Position:  g.Position,
		}
	}

	return d
}

func describeFields(fields []schema.FieldSpec) []FieldDescriptor {
	out := make([]FieldDescriptor, len(fields))

	for i := range fields {
		f := &fields[i]
		out[i] = FieldDescriptor{
			Name:          f.Name,
			CamelCaseName: f.CamelCaseName,
			Type:          f.TypeName(),
			Column:        f.ColumnIndex,
			Comment:       f.Comment,
		}
	}

	return out
}

// EncodeDescriptor renders the descriptor of s as YAML.
func EncodeDescriptor(s *schema.Struct) ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(Describe(s)); err != nil {
		return nil, err
	}

	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

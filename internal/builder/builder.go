package builder

import (
	"fmt"
	"maps"
	"strings"

	"github.com/rs/zerolog"

	"tabgen/internal/common"
	"tabgen/internal/composite"
	"tabgen/internal/diagnostic"
	"tabgen/internal/grouping"
	"tabgen/internal/kv"
	"tabgen/internal/meta"
	"tabgen/internal/naming"
	"tabgen/internal/rows"
	"tabgen/internal/schema"
	"tabgen/primitive"
)

// Default names of a detected inner record.
const (
	InnerTypeSuffix  = "Item"
	DefaultInnerName = "Items"
)

// Sheet is the raw input of one build: every row of the sheet, and the
// directive map describing its layout.
type Sheet struct {
	// Name identifies the source (file or tab) in errors when the
	// directives carry no class name.
	Name string
	Rows [][]string
	Meta map[string]string
}

// Builder turns sheets into Struct descriptors. A Builder holds no state
// between builds and is safe for concurrent use.
type Builder struct {
	logger   zerolog.Logger
	defaults map[string]string
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// WithDefaults sets directives applied to every sheet unless the sheet
// overrides them.
func WithDefaults(directives map[string]string) Option {
	return func(b *Builder) {
		b.defaults = maps.Clone(directives)
	}
}

// New creates a Builder.
func New(opts ...Option) *Builder {
	b := &Builder{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Build runs the build state machine on one sheet. Any failure aborts the
// sheet: no Struct is returned and nothing else is affected.
func (b *Builder) Build(sheet Sheet) (*schema.Struct, error) {
	st := &state{sheet: sheet, log: b.logger.With().Str("sheet", sheet.Name).Logger()}

	st.raw = meta.Merge(b.defaults, sheet.Meta)

	for p := phaseReadMeta; p != phaseDone; {
		st.log.Debug().Stringer("phase", p).Msg("enter")

		next, err := st.step(p)
		if err != nil {
			return nil, st.fail(err)
		}

		p = next
	}

	if n := len(st.out.Diagnostics.Infos); n > 0 {
		st.log.Info().Int("notes", n).Msg("sheet built with coercions")
	}

	st.log.Debug().Int("fields", len(st.out.Fields)).Int("rows", len(st.out.DataRows)).Msg("done")

	return st.out, nil
}

type phase int

const (
	phaseReadMeta phase = iota
	phaseResolveFields
	phaseBuildKVFields
	phaseResolveComposites
	phaseGroupFields
	phaseNormalizeDataRows
	phaseDone
)

func (p phase) String() string {
	switch p {
	case phaseReadMeta:
		return "read_meta"
	case phaseResolveFields:
		return "resolve_fields"
	case phaseBuildKVFields:
		return "build_kv_fields"
	case phaseResolveComposites:
		return "resolve_composites"
	case phaseGroupFields:
		return "group_fields"
	case phaseNormalizeDataRows:
		return "normalize_data_rows"
	case phaseDone:
		return "done"
	default:
		return common.UnknownStr
	}
}

// state is the working set of one build.
type state struct {
	sheet Sheet
	raw   map[string]string
	log   zerolog.Logger

	dirs   meta.Directives
	parser *composite.Parser

	// data rows as sliced from the sheet, and the source row of the first
	data      [][]string
	firstLine int

	columns    []schema.FieldSpec
	composites map[int]string // column index -> composite token
	samples    map[int][]string

	out *schema.Struct
}

func (s *state) step(p phase) (phase, error) {
	switch p {
	case phaseReadMeta:
		return s.readMeta()
	case phaseResolveFields:
		if s.dirs.IsKV() {
			return phaseBuildKVFields, nil
		}

		return s.resolveFields()
	case phaseBuildKVFields:
		return s.buildKVFields()
	case phaseResolveComposites:
		return s.resolveComposites()
	case phaseGroupFields:
		return s.groupFields()
	case phaseNormalizeDataRows:
		return s.normalizeDataRows()
	default:
		return phaseDone, fmt.Errorf("unexpected build phase %v", p)
	}
}

func (s *state) readMeta() (phase, error) {
	dirs, err := meta.Parse(s.raw)
	if err != nil {
		return phaseDone, err
	}

	s.dirs = dirs
	s.parser = composite.NewParser(dirs.Dialect, dirs.Delimiters)
	s.log = s.log.With().Str("class", dirs.ClassName).Logger()

	s.out = &schema.Struct{
		Name:          dirs.ClassName,
		CamelCaseName: naming.CamelCase(dirs.ClassName),
		Comment:       dirs.ClassComment,
		Delimiters:    dirs.Delimiters,
		Options:       dirs.Extra,
	}

	start := dirs.DataStartRow - 1
	end := len(s.sheet.Rows)

	if dirs.DataEndRow > 0 {
		end = min(end, dirs.DataEndRow)
	}

	if start < end {
		s.data = s.sheet.Rows[start:end]
	}

	s.firstLine = dirs.DataStartRow

	return phaseResolveFields, nil
}

// headerRow returns the 1-based row n, or a shape error when the sheet is
// too short to hold it.
func (s *state) headerRow(n int, key string) ([]string, error) {
	if n == 0 {
		return nil, nil
	}

	if n > len(s.sheet.Rows) {
		return nil, diagnostic.Newf(diagnostic.KindShape, diagnostic.CodeRowTooShort,
			"sheet has %d rows, %s is %d", len(s.sheet.Rows), key, n).WithField(key)
	}

	return s.sheet.Rows[n-1], nil
}

func (s *state) resolveFields() (phase, error) {
	names, err := s.headerRow(s.dirs.NameRow, meta.KeyNameRow)
	if err != nil {
		return phaseDone, err
	}

	types, err := s.headerRow(s.dirs.TypeRow, meta.KeyTypeRow)
	if err != nil {
		return phaseDone, err
	}

	// a missing comment row only means there are no comments
	var comments []string
	if n := s.dirs.CommentRow; n > 0 && n <= len(s.sheet.Rows) {
		comments = s.sheet.Rows[n-1]
	}

	s.composites = make(map[int]string)
	s.samples = make(map[int][]string)

	for i, cell := range names {
		col := i + 1

		name, headerComment, _ := strings.Cut(strings.TrimSpace(cell), "\n")
		name = strings.TrimSpace(name)

		if name == "" {
			continue
		}

		f := schema.FieldSpec{
			Name:          name,
			CamelCaseName: naming.CamelCase(name),
			OriginalType:  strings.TrimSpace(common.Cell(types, col)),
			ColumnIndex:   col,
			Comment:       strings.TrimSpace(headerComment),
			Enabled:       !isCommented(name) && !s.dirs.IsSkipped(col, name),
		}

		if c := strings.TrimSpace(common.Cell(comments, col)); c != "" {
			f.Comment = c
		}

		if f.Enabled {
			if err := s.resolveType(&f); err != nil {
				return phaseDone, err
			}
		}

		s.columns = append(s.columns, f)
	}

	if len(s.columns) == 0 {
		return phaseDone, diagnostic.Newf(diagnostic.KindShape, diagnostic.CodeRowTooShort,
			"name row %d has no field names", s.dirs.NameRow).WithField(meta.KeyNameRow)
	}

	return phaseResolveComposites, nil
}

// resolveType resolves a primitive type token or infers the type of an
// untyped column. Composite tokens are left for the composite phase.
func (s *state) resolveType(f *schema.FieldSpec) error {
	tok := f.OriginalType

	if tok == "" {
		f.Type = primitive.Infer(s.column(f.ColumnIndex))
		return nil
	}

	if s.parser.IsComposite(tok) {
		s.composites[f.ColumnIndex] = tok
		return nil
	}

	k, err := primitive.Resolve(tok)
	if err != nil {
		return withField(err, f.Name)
	}

	f.Type = k

	return nil
}

// column returns the raw data cells of a 1-based column, blank rows
// excluded.
func (s *state) column(col int) []string {
	if cells, ok := s.samples[col]; ok {
		return cells
	}

	cells := make([]string, 0, len(s.data))

	for _, row := range s.data {
		if common.IsBlankRow(row) {
			continue
		}

		cells = append(cells, common.Cell(row, col))
	}

	s.samples[col] = cells

	return cells
}

func (s *state) resolveComposites() (phase, error) {
	for i := range s.columns {
		f := &s.columns[i]

		tok, ok := s.composites[f.ColumnIndex]
		if !ok {
			continue
		}

		t, err := s.parser.Parse(tok, s.column(f.ColumnIndex))
		if err != nil {
			return phaseDone, withField(err, f.Name)
		}

		f.Type = t.Kind
		f.Composite = t
	}

	return phaseGroupFields, nil
}

func (s *state) groupFields() (phase, error) {
	enabled := make([]schema.FieldSpec, 0, len(s.columns))
	for _, c := range s.columns {
		if c.Enabled {
			enabled = append(enabled, c)
		}
	}

	typeName := s.dirs.InnerTypeClass
	if typeName == "" {
		typeName = s.out.CamelCaseName + InnerTypeSuffix
	}

	fieldName := s.dirs.InnerFieldName
	if fieldName == "" {
		fieldName = DefaultInnerName
	}

	res, err := grouping.Group(enabled, grouping.Options{
		Mode:      s.dirs.GroupMode,
		Range:     s.dirs.InnerRange,
		TypeName:  typeName,
		FieldName: fieldName,
	})
	if err != nil {
		return phaseDone, err
	}

	if err := checkNames(res); err != nil {
		return phaseDone, err
	}

	if res.Shadowed != nil {
		s.out.Diagnostics.AddWarning(diagnostic.CodeInnerShadowed, shadowedMessage(res), s.dirs.ClassName, "", 0)
	}

	if res.Vector != nil {
		s.log.Debug().Str("prefix", res.Vector.Prefix).Int("count", res.Vector.Count).Msg("vector field")
	}

	if res.Inner != nil {
		s.log.Debug().Str("type", res.Inner.TypeName).Int("records", res.Inner.Records()).Msg("inner record")
	}

	s.out.Fields = res.Fields
	s.out.Columns = s.columns
	s.out.Vector = res.Vector
	s.out.Inner = res.Inner

	return phaseNormalizeDataRows, nil
}

// checkNames rejects duplicate names among the fields that will be emitted:
// plain fields, the vector prefix and the inner record list field.
func checkNames(res grouping.Result) error {
	seen := make(map[string]int, len(res.Fields)+1)

	add := func(name string, col int) error {
		if prev, ok := seen[name]; ok {
			msg := fmt.Sprintf("field %q is defined in columns %d and %d", name, prev, col)
			if sh := res.Shadowed; sh != nil && col >= sh.StartColumn && col <= sh.EndColumn {
				msg += "; " + shadowedMessage(res)
			}

			return diagnostic.Newf(diagnostic.KindName, diagnostic.CodeDuplicateFieldName, "%s", msg).WithField(name)
		}

		seen[name] = col

		return nil
	}

	for _, f := range res.Fields {
		if err := add(f.Name, f.ColumnIndex); err != nil {
			return err
		}
	}

	if v := res.Vector; v != nil {
		if err := add(v.Prefix, v.Columns[0]); err != nil {
			return err
		}
	}

	if in := res.Inner; in != nil {
		if err := add(in.FieldName, in.StartColumn); err != nil {
			return err
		}
	}

	return nil
}

// shadowedMessage explains why a repeating block was not grouped.
func shadowedMessage(res grouping.Result) string {
	return fmt.Sprintf("columns %d-%d repeat as an inner record but are not grouped because vector %q takes precedence "+
		"(set group_mode: inner or inner_type_range to group them)",
		res.Shadowed.StartColumn, res.Shadowed.EndColumn, res.Vector.Prefix)
}

func (s *state) buildKVFields() (phase, error) {
	cols := s.dirs.KV

	if cols == nil {
		header, err := s.headerRow(s.dirs.NameRow, meta.KeyNameRow)
		if err != nil {
			return phaseDone, err
		}

		if header == nil {
			return phaseDone, diagnostic.Newf(diagnostic.KindMeta, diagnostic.CodeMetaInvalid,
				"kv_mode needs a name row holding the Key/Type/Value headers").WithField(meta.KeyNameRow)
		}

		found, err := kv.DiscoverColumns(header)
		if err != nil {
			return phaseDone, err
		}

		cols = &found
	}

	lines := make([]int, len(s.data))
	for i := range lines {
		lines[i] = s.firstLine + i
	}

	res, err := kv.Build(s.data, lines, kv.Options{
		Columns: *cols,
		Strict:  s.dirs.Strict,
		Parser:  s.parser,
		Sheet:   s.dirs.ClassName,
	})
	if err != nil {
		return phaseDone, err
	}

	s.out.KVMode = true
	s.out.KV = *cols
	s.out.Fields = res.Fields
	s.out.Diagnostics.Merge(res.Diagnostics)

	return phaseNormalizeDataRows, nil
}

func (s *state) normalizeDataRows() (phase, error) {
	opts := rows.Options{
		FirstLine: s.firstLine,
		Sheet:     s.dirs.ClassName,
	}

	var (
		res rows.Result
		err error
	)

	if s.out.KVMode {
		res, err = rows.NormalizeKV(s.out.Fields, s.out.KV, s.data, opts)
	} else {
		opts.Unique = s.dirs.UniqueFields
		res, err = rows.Normalize(s.columns, s.data, opts)
	}

	if err != nil {
		return phaseDone, err
	}

	s.out.DataRows = res.Rows
	s.out.Diagnostics.Merge(res.Diagnostics)

	return phaseDone, nil
}

// fail tags err with the sheet and logs it.
func (s *state) fail(err error) error {
	name := s.dirs.ClassName
	if name == "" {
		name = s.sheet.Name
	}

	if e, ok := diagnostic.AsError(err); ok {
		e.InSheet(name)
		s.log.Debug().Str("kind", e.Kind.String()).Str("code", e.Code).Msg("build failed")

		return e
	}

	return fmt.Errorf("sheet %s: %w", name, err)
}

func isCommented(name string) bool {
	return strings.HasPrefix(name, "#") || strings.HasPrefix(name, "//")
}

func withField(err error, field string) error {
	if e, ok := diagnostic.AsError(err); ok {
		return e.WithField(field)
	}

	return err
}

package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"tabgen/internal/common"
)

// Kind classifies a build failure.
type Kind int

const (
	KindMeta  Kind = iota + 1 // missing or malformed directive
	KindType                  // unknown type token or nested composite
	KindName                  // duplicate field name or invalid KV key
	KindShape                 // row too short or invalid column index
	KindData                  // cell fails coercion or uniqueness
)

// Sentinels for errors.Is checks against *Error values.
var (
	ErrMeta  = errors.New("meta error")
	ErrType  = errors.New("type error")
	ErrName  = errors.New("name error")
	ErrShape = errors.New("shape error")
	ErrData  = errors.New("data error")
)

// Error codes.
const (
	CodeMetaMissing        = "meta_missing"
	CodeMetaInvalid        = "meta_invalid"
	CodeTypeUnknown        = "type_unknown"
	CodeCompositeNested    = "composite_nested"
	CodeCompositeSyntax    = "composite_syntax"
	CodeDuplicateFieldName = "duplicate_field_name"
	CodeInvalidKVKey       = "invalid_kv_key"
	CodeRowTooShort        = "row_too_short"
	CodeInvalidColumn      = "invalid_column"
	CodeInvalidCell        = "invalid_cell"
	CodeDuplicateValue     = "duplicate_value"
	CodeRoundInteger       = "round_integer"
	CodeKVFallbackString   = "kv_fallback_string"
	CodeInnerShadowed      = "inner_shadowed"
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindMeta:
		return "meta"
	case KindType:
		return "type"
	case KindName:
		return "name"
	case KindShape:
		return "shape"
	case KindData:
		return "data"
	default:
		return common.UnknownStr
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindMeta:
		return ErrMeta
	case KindType:
		return ErrType
	case KindName:
		return ErrName
	case KindShape:
		return ErrShape
	case KindData:
		return ErrData
	default:
		return nil
	}
}

// Error is a terminal build failure. A sheet that produces an Error yields no
// Struct at all.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	// Sheet is the struct (class) name, when known.
	Sheet string
	// Field is the offending field or directive name.
	Field string
	// Rows lists the 1-based source rows involved, e.g. both rows of a
	// uniqueness violation.
	Rows []int
	// Suggestions are close matches for unknown names.
	Suggestions []string
}

// Newf creates an Error of the given kind with a formatted message.
func Newf(kind Kind, code, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithField sets the offending field and returns e.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// WithRows sets the offending rows and returns e.
func (e *Error) WithRows(rows ...int) *Error {
	e.Rows = rows
	return e
}

// InSheet returns e tagged with the sheet name. It never overwrites an
// existing tag.
func (e *Error) InSheet(sheet string) *Error {
	if e.Sheet == "" {
		e.Sheet = sheet
	}

	return e
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Kind.String())
	b.WriteString(" error")

	if e.Sheet != "" {
		b.WriteString(" [" + e.Sheet + "]")
	}

	if e.Field != "" {
		b.WriteString(" " + e.Field)
	}

	b.WriteString(": ")

	if e.Code != "" {
		b.WriteString("[" + e.Code + "] ")
	}

	b.WriteString(e.Message)

	if len(e.Suggestions) > 0 {
		b.WriteString(" (did you mean " + strings.Join(e.Suggestions, ", ") + "?)")
	}

	return b.String()
}

// Is matches the kind sentinels, so errors.Is(err, ErrType) works on wrapped
// *Error values.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && s == target
}

// AsError unwraps err into an *Error.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}

	return nil, false
}

package composite

import (
	"fmt"
	"strings"

	"tabgen/internal/common"
	"tabgen/internal/diagnostic"
	"tabgen/primitive"
)

// Dialect selects which composite type syntax a sheet uses.
type Dialect int

const (
	DialectAuto   Dialect = iota // accept both syntaxes
	DialectSuffix                // int[] and <int,string>
	DialectPrefix                // array<int> and map<int,string>
)

// String returns the directive spelling of the dialect.
func (d Dialect) String() string {
	switch d {
	case DialectAuto:
		return "auto"
	case DialectSuffix:
		return "suffix"
	case DialectPrefix:
		return "prefix"
	default:
		return common.UnknownStr
	}
}

// ParseDialect parses the directive spelling of a dialect. An empty string
// is DialectAuto.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return DialectAuto, nil
	case "suffix":
		return DialectSuffix, nil
	case "prefix":
		return DialectPrefix, nil
	default:
		return DialectAuto, fmt.Errorf("unknown type dialect %q (want auto, suffix or prefix)", s)
	}
}

// Delimiters are the single-character separators used inside composite cells:
// "1|2|3" for arrays and "1=a|2=b" for maps with the defaults.
type Delimiters struct {
	Array    byte
	Pair     byte
	KeyValue byte
}

// DefaultDelimiters returns the default delimiters ('|' and "|=").
func DefaultDelimiters() Delimiters {
	return Delimiters{Array: '|', Pair: '|', KeyValue: '='}
}

// ParseDelimiters builds Delimiters from the array_delim (one character) and
// map_delim (two characters: pair then key/value) directives. Empty values
// keep the defaults.
func ParseDelimiters(array, mapDelims string) (Delimiters, error) {
	d := DefaultDelimiters()

	if array != "" {
		if len(array) != 1 {
			return d, fmt.Errorf("array delimiter must be a single character, got %q", array)
		}

		d.Array = array[0]
	}

	if mapDelims != "" {
		if len(mapDelims) != 2 {
			return d, fmt.Errorf("map delimiters must be two characters, got %q", mapDelims)
		}

		d.Pair, d.KeyValue = mapDelims[0], mapDelims[1]
	}

	if d.Pair == d.KeyValue {
		return d, fmt.Errorf("map pair and key/value delimiters must differ, got %q", string([]byte{d.Pair, d.KeyValue}))
	}

	if d.Array == ',' || d.Pair == ',' || d.KeyValue == ',' {
		return d, fmt.Errorf("comma cannot be used as a composite delimiter")
	}

	return d, nil
}

// Type is the canonical representation of an array or map type, whichever
// syntax it was written in. Element, key and value kinds are always primitive.
type Type struct {
	Kind  primitive.KindEnum // KindArray or KindMap
	Elem  primitive.KindEnum // arrays only
	Key   primitive.KindEnum // maps only
	Value primitive.KindEnum // maps only
}

// String renders the canonical prefix form, e.g. "array<int32>" or
// "map<int32,string>".
func (t Type) String() string {
	switch t.Kind {
	case primitive.KindArray:
		return "array<" + t.Elem.Name() + ">"
	case primitive.KindMap:
		return "map<" + t.Key.Name() + "," + t.Value.Name() + ">"
	default:
		return common.UnknownStr
	}
}

func typeError(code, format string, args ...any) *diagnostic.Error {
	return diagnostic.Newf(diagnostic.KindType, code, format, args...)
}

package primitive

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"tabgen/internal/diagnostic"
	"tabgen/internal/naming"
)

// MaxSamples is the number of non-blank cells Infer looks at.
const MaxSamples = 20

var kindNames = map[KindEnum]string{
	KindBool:    "bool",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindUint8:   "uint8",
	KindUint16:  "uint16",
	KindUint32:  "uint32",
	KindUint64:  "uint64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindString:  "string",
	KindArray:   "array",
	KindMap:     "map",
}

// aliases maps spreadsheet-friendly type tokens to canonical names.
var aliases = map[string]string{
	"int":     "int32",
	"uint":    "uint32",
	"long":    "int64",
	"ulong":   "uint64",
	"short":   "int16",
	"ushort":  "uint16",
	"byte":    "uint8",
	"sbyte":   "int8",
	"float":   "float32",
	"double":  "float64",
	"str":     "string",
	"text":    "string",
	"boolean": "bool",
}

var nameKinds = func() map[string]KindEnum {
	m := make(map[string]KindEnum, len(kindNames))
	for k, n := range kindNames {
		m[n] = k
	}

	return m
}()

// Name returns the canonical type name of k, e.g. "int32".
func (k KindEnum) Name() string {
	if n, ok := kindNames[k]; ok {
		return n
	}

	return "unknown"
}

// Resolve normalizes a primitive type token through the alias table.
// Composite tokens ("array", "map") and unknown tokens fail with a type error.
func Resolve(token string) (KindEnum, error) {
	name := normalizeToken(token)
	if name == "" {
		return KindUnknown, diagnostic.Newf(diagnostic.KindType, diagnostic.CodeTypeUnknown, "empty type token")
	}

	if alias, ok := aliases[name]; ok {
		name = alias
	}

	k, ok := nameKinds[name]
	if !ok || !k.IsPrimitive() {
		err := diagnostic.Newf(diagnostic.KindType, diagnostic.CodeTypeUnknown, "unknown primitive type %q", token)
		err.Suggestions = naming.Suggest(name, KnownNames(), 3)

		return KindUnknown, err
	}

	return k, nil
}

// ResolveName returns the canonical name of a primitive type token.
// Resolve(ResolveName(t)) == Resolve(t) for every valid token.
func ResolveName(token string) (string, error) {
	k, err := Resolve(token)
	if err != nil {
		return "", err
	}

	return k.Name(), nil
}

// KnownNames returns every accepted primitive token, canonical names and
// aliases, sorted.
func KnownNames() []string {
	names := make([]string, 0, len(kindNames)+len(aliases))
	for k, n := range kindNames {
		if k.IsPrimitive() {
			names = append(names, n)
		}
	}

	for a := range aliases {
		names = append(names, a)
	}

	sort.Strings(names)

	return names
}

// Infer classifies a column from up to MaxSamples non-blank sample cells.
// See InferAll for the classification rule.
func Infer(samples []string) KindEnum {
	picked := make([]string, 0, MaxSamples)

	for _, s := range samples {
		if strings.TrimSpace(s) == "" {
			continue
		}

		picked = append(picked, s)
		if len(picked) == MaxSamples {
			break
		}
	}

	return InferAll(picked)
}

// InferAll classifies every non-blank token. All integer tokens give int32,
// widened to int64 when any value is outside the int32 range. Otherwise all
// float tokens give float32, widened to float64 when any magnitude exceeds
// the float32 range. Anything else, or no tokens at all, gives string.
func InferAll(tokens []string) KindEnum {
	var (
		seen      int
		allInt    = true
		allFloat  = true
		wideInt   bool
		wideFloat bool
	)

	lo, hi := KindInt32.IntRange()

	for _, raw := range tokens {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}

		seen++

		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			if v < lo || v > hi {
				wideInt = true
			}

			continue
		}

		allInt = false

		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			allFloat = false
			break
		}

		if math.Abs(f) > math.MaxFloat32 {
			wideFloat = true
		}
	}

	switch {
	case seen == 0:
		return KindString
	case allInt && wideInt:
		return KindInt64
	case allInt:
		return KindInt32
	case allFloat && wideFloat:
		return KindFloat64
	case allFloat:
		return KindFloat32
	default:
		return KindString
	}
}

// IsTruthy reports whether a boolean cell reads as true:
// "1", "y", "on", "yes" or "true", case-insensitively.
func IsTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "y", "on", "yes", "true":
		return true
	default:
		return false
	}
}

func normalizeToken(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

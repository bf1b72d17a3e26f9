package composite

import (
	"strings"

	"tabgen/internal/diagnostic"
	"tabgen/primitive"
	"tabgen/utils"
)

// syntax is the concrete spelling a token was written in.
type syntax int

const (
	syntaxNone syntax = iota
	syntaxBare        // "array" or "map": element types come from the data
	syntaxSuffixArray
	syntaxSuffixMap
	syntaxPrefixArray
	syntaxPrefixMap
)

func (s syntax) dialect() Dialect {
	switch s {
	case syntaxSuffixArray, syntaxSuffixMap:
		return DialectSuffix
	case syntaxPrefixArray, syntaxPrefixMap:
		return DialectPrefix
	default:
		return DialectAuto
	}
}

// Parser parses composite type tokens of one dialect.
type Parser struct {
	dialect Dialect
	delims  Delimiters
}

// NewParser creates a Parser.
func NewParser(dialect Dialect, delims Delimiters) *Parser {
	return &Parser{dialect: dialect, delims: delims}
}

// Dialect returns the configured dialect.
func (p *Parser) Dialect() Dialect {
	return p.dialect
}

// Delimiters returns the configured delimiters.
func (p *Parser) Delimiters() Delimiters {
	return p.delims
}

// IsComposite reports whether token is written in any composite syntax.
// Tokens of the other dialect are still reported so Parse can reject them
// with a precise error instead of an unknown-type one.
func (p *Parser) IsComposite(token string) bool {
	return detect(normalize(token)) != syntaxNone
}

// Parse parses an array or map type token. Omitted element, key or value
// types are inferred from samples, the raw cells of the column.
func (p *Parser) Parse(token string, samples []string) (*Type, error) {
	tok := normalize(token)
	syn := detect(tok)

	if syn == syntaxNone {
		return nil, typeError(diagnostic.CodeTypeUnknown, "%q is not a composite type", token)
	}

	if p.dialect != DialectAuto && syn != syntaxBare && syn.dialect() != p.dialect {
		return nil, typeError(diagnostic.CodeCompositeSyntax,
			"%q uses %s syntax but the sheet dialect is %s", token, syn.dialect(), p.dialect)
	}

	switch syn {
	case syntaxBare:
		if tok == "array" {
			return p.parseArray(token, "", samples)
		}

		return p.parseMap(token, "", samples)
	case syntaxSuffixArray:
		return p.parseArray(token, strings.TrimSuffix(tok, "[]"), samples)
	case syntaxPrefixArray:
		return p.parseArray(token, tok[len("array<"):len(tok)-1], samples)
	case syntaxSuffixMap:
		return p.parseMap(token, tok[1:len(tok)-1], samples)
	case syntaxPrefixMap:
		return p.parseMap(token, tok[len("map<"):len(tok)-1], samples)
	}

	return nil, typeError(diagnostic.CodeTypeUnknown, "%q is not a composite type", token)
}

func (p *Parser) parseArray(token, elem string, samples []string) (*Type, error) {
	elem = strings.TrimSpace(elem)

	if elem == "" {
		var parts []string
		for _, cell := range sampleCells(samples) {
			parts = append(parts, strings.Split(cell, string(p.delims.Array))...)
		}

		return &Type{Kind: primitive.KindArray, Elem: primitive.InferAll(parts)}, nil
	}

	k, err := resolveElement(token, elem)
	if err != nil {
		return nil, err
	}

	return &Type{Kind: primitive.KindArray, Elem: k}, nil
}

func (p *Parser) parseMap(token, inner string, samples []string) (*Type, error) {
	inner = strings.TrimSpace(inner)

	var keyTok, valTok string

	if inner != "" {
		if strings.ContainsAny(inner, "<>[]") {
			return nil, typeError(diagnostic.CodeCompositeNested, "%q: map key and value must be primitive", token)
		}

		parts := strings.Split(inner, ",")
		if len(parts) != 2 {
			return nil, typeError(diagnostic.CodeCompositeSyntax, "%q: map needs exactly a key and a value type", token)
		}

		keyTok, valTok = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}

	var keys, values []string

	if keyTok == "" || valTok == "" {
		var ok bool
		if keys, values, ok = p.splitPairs(samples); !ok {
			keys, values = nil, nil
			keyTok, valTok = orString(keyTok), orString(valTok)
		}
	}

	t := &Type{Kind: primitive.KindMap}

	var err error

	if t.Key, err = resolveOrInfer(token, keyTok, keys); err != nil {
		return nil, err
	}

	if t.Value, err = resolveOrInfer(token, valTok, values); err != nil {
		return nil, err
	}

	return t, nil
}

// splitPairs splits sampled map cells into key and value tokens. It reports
// false when a pair has no key/value delimiter.
func (p *Parser) splitPairs(samples []string) (keys, values []string, ok bool) {
	malformed := false

	for _, cell := range sampleCells(samples) {
		for _, pair := range strings.Split(cell, string(p.delims.Pair)) {
			if strings.TrimSpace(pair) == "" {
				continue
			}

			kv := strings.SplitN(pair, string(p.delims.KeyValue), 2)
			if len(kv) != 2 {
				malformed = true
				continue
			}

			k, v := utils.Unpack2(kv)
			keys = append(keys, k)
			values = append(values, v)
		}
	}

	return keys, values, !malformed
}

// orString widens an omitted side of a malformed map to string.
func orString(tok string) string {
	if tok == "" {
		return "string"
	}

	return tok
}

func resolveOrInfer(token, tok string, samples []string) (primitive.KindEnum, error) {
	if tok == "" {
		return primitive.InferAll(samples), nil
	}

	return resolveElement(token, tok)
}

func resolveElement(token, elem string) (primitive.KindEnum, error) {
	if detect(elem) != syntaxNone {
		return primitive.KindUnknown, typeError(diagnostic.CodeCompositeNested,
			"%q: composite element type %q is not allowed", token, elem)
	}

	k, err := primitive.Resolve(elem)
	if err != nil {
		if e, ok := diagnostic.AsError(err); ok {
			e.Message = token + ": " + e.Message
		}

		return primitive.KindUnknown, err
	}

	return k, nil
}

func detect(tok string) syntax {
	switch {
	case tok == "array" || tok == "map":
		return syntaxBare
	case strings.HasPrefix(tok, "array<") && strings.HasSuffix(tok, ">"):
		return syntaxPrefixArray
	case strings.HasPrefix(tok, "map<") && strings.HasSuffix(tok, ">"):
		return syntaxPrefixMap
	case strings.HasSuffix(tok, "[]"):
		return syntaxSuffixArray
	case strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">"):
		return syntaxSuffixMap
	default:
		return syntaxNone
	}
}

// sampleCells returns the first primitive.MaxSamples non-blank cells.
func sampleCells(samples []string) []string {
	out := make([]string, 0, primitive.MaxSamples)

	for _, s := range samples {
		if strings.TrimSpace(s) == "" {
			continue
		}

		out = append(out, s)
		if len(out) == primitive.MaxSamples {
			break
		}
	}

	return out
}

func normalize(token string) string {
	return strings.ToLower(strings.Join(strings.Fields(token), ""))
}

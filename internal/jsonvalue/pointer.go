package jsonvalue

import "strings"

// EvalPointer resolves a JSON Pointer (RFC 6901) against v, restricted to
// the fragment forms $ref actually uses: object-member traversal and
// numeric array-index traversal. General JSON Pointer evaluation (the "-"
// append token, relative pointers) is out of scope per spec.
//
// ptr must not include the leading "#"; an empty string refers to the
// document root, while "/" refers to the root's member named "".
func (v *Value) EvalPointer(ptr string) (*Value, bool) {
	if ptr == "" {
		return v, true
	}
	if !strings.HasPrefix(ptr, "/") {
		return nil, false
	}

	cur := v
	for _, tok := range strings.Split(ptr[1:], "/") {
		tok = unescapeToken(tok)
		if cur == nil {
			return nil, false
		}
		switch cur.Kind {
		case KindObject:
			child, ok := cur.Fields[tok]
			if !ok {
				return nil, false
			}
			cur = child
		case KindArray:
			idx, ok := parseArrayIndex(tok)
			if !ok || idx < 0 || idx >= len(cur.Arr) {
				return nil, false
			}
			cur = cur.Arr[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

func parseArrayIndex(tok string) (int, bool) {
	if tok == "" {
		return 0, false
	}
	n := 0
	for _, r := range tok {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	if len(tok) > 1 && tok[0] == '0' {
		return 0, false
	}
	return n, true
}

// EscapeToken encodes a single JSON Pointer reference token per RFC 6901:
// "~" becomes "~0" and "/" becomes "~1". The order matters: "~" must be
// escaped first, or a literal "/" turned into "~1" would itself be
// re-escaped.
func EscapeToken(tok string) string {
	tok = strings.ReplaceAll(tok, "~", "~0")
	tok = strings.ReplaceAll(tok, "/", "~1")
	return tok
}

func unescapeToken(tok string) string {
	tok = strings.ReplaceAll(tok, "~1", "/")
	tok = strings.ReplaceAll(tok, "~0", "~")
	return tok
}

// EncodePointer builds a JSON Pointer string (without a leading "#") from a
// slice of raw (unescaped) reference tokens.
func EncodePointer(tokens []string) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(EscapeToken(t))
	}
	return b.String()
}

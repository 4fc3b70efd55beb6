// Package draftmodel knows which JSON Schema draft a document declares (or
// implies) and which keywords change behavior between Draft4 and
// DraftHigher. Grounded on util.SchemaUtil.getDraft /
// getValidationDraftNumber / getRecursiveDraftOfIdKeyword.
package draftmodel

import (
	"strings"

	"github.com/go-jsonschema/normalize/internal/jsonvalue"
)

// Draft identifies which id keyword and minor semantics a schema document
// uses.
type Draft uint8

const (
	// Draft4 uses the bare "id" keyword.
	Draft4 Draft = iota
	// DraftHigher covers draft-06 and draft-07, which use "$id".
	DraftHigher
)

// String implements fmt.Stringer.
func (d Draft) String() string {
	if d == Draft4 {
		return "draft-04"
	}
	return "draft-06/07"
}

// IDKeyword returns the id keyword a document of draft d uses: "id" for
// Draft4, "$id" for DraftHigher.
func IDKeyword(d Draft) string {
	if d == Draft4 {
		return "id"
	}
	return "$id"
}

// IsRefKeyword reports whether key holds a reference.
func IsRefKeyword(key string) bool {
	return key == "$ref"
}

// IsOpaque reports whether key's value is instance data rather than schema
// structure, and must never be descended into for ids or refs. "enum" is
// the sole such keyword in scope here.
func IsOpaque(key string) bool {
	return key == "enum"
}

// Detect determines the draft of doc: if "$schema" is present its value is
// inspected for a recognized draft marker; otherwise the document is
// searched (skipping enum subtrees) for any "$id" key, whose presence
// implies DraftHigher.
func Detect(doc *jsonvalue.Value) Draft {
	if n := schemaDraftNumber(doc); n != 0 {
		if n == 4 {
			return Draft4
		}
		return DraftHigher
	}
	if hasIDKeywordRecursive(doc) {
		return DraftHigher
	}
	return Draft4
}

// schemaDraftNumber reads doc's "$schema" keyword and returns 4, 6, or 7,
// or 0 if absent or unrecognized.
func schemaDraftNumber(doc *jsonvalue.Value) int {
	schema := doc.Get("$schema")
	if !schema.IsString() {
		return 0
	}
	s := schema.StringValue()
	switch {
	case strings.Contains(s, "draft-07"):
		return 7
	case strings.Contains(s, "draft-06"):
		return 6
	case strings.Contains(s, "draft-04"), strings.Contains(s, "draft-03"):
		return 4
	default:
		return 0
	}
}

func hasIDKeywordRecursive(v *jsonvalue.Value) bool {
	switch {
	case v == nil:
		return false
	case v.IsObject():
		if v.Has("$id") {
			return true
		}
		for _, k := range v.Keys {
			if IsOpaque(k) {
				continue
			}
			if hasIDKeywordRecursive(v.Fields[k]) {
				return true
			}
		}
		return false
	case v.IsArray():
		for _, e := range v.Arr {
			if hasIDKeywordRecursive(e) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

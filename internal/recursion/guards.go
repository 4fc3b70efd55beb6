package recursion

import "github.com/go-jsonschema/normalize/internal/jsonvalue"

// requiredSet collects the string members of a schema object's "required"
// array, used to tell a required properties entry (not a guard) from an
// optional one (a guard).
func requiredSet(schema *jsonvalue.Value) map[string]bool {
	required := schema.Get("required")
	if !required.IsArray() {
		return nil
	}
	set := make(map[string]bool, len(required.Arr))
	for _, el := range required.Arr {
		if el.IsString() {
			set[el.StringValue()] = true
		}
	}
	return set
}

// minItemsCount reads a schema object's "minItems" keyword, used to decide
// which tuple-positional "items" entries are forced present (non-guard)
// versus merely optional (guard).
func minItemsCount(schema *jsonvalue.Value) int {
	min := schema.Get("minItems")
	if min == nil || min.Kind != jsonvalue.KindNumber {
		return 0
	}
	n := 0
	for _, r := range min.Num {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// additionalSchema returns the subschema of an additionalProperties or
// additionalItems keyword, or nil if the keyword is absent or a plain
// boolean (a boolean admits or forbids extra members but contributes no
// schema subtree to walk).
func additionalSchema(v *jsonvalue.Value) *jsonvalue.Value {
	if v.IsObject() {
		return v
	}
	return nil
}

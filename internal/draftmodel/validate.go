package draftmodel

import (
	"fmt"

	"github.com/go-jsonschema/normalize/internal/jsonvalue"
)

// ValidateStructure performs a narrow structural check that a document is
// plausibly a JSON Schema of its declared draft, without embedding a full
// meta-schema validator (out of scope per the "full validation of instance
// data against a schema" non-goal — validating the schema document itself
// against a draft meta-schema is exactly that kind of instance validation).
//
// It catches the failures that actually occur in practice: a non-object
// root, a "$schema" value that names none of draft-03/04 (read as Draft4)
// or draft-06/07,
// and a Draft4 document that nonetheless declares a root "$id" (a draft
// mismatch tell, since "$id" only exists from draft-06 on).
func ValidateStructure(doc *jsonvalue.Value) error {
	if !doc.IsObject() {
		return fmt.Errorf("schema root is not a JSON object (kind %s)", doc.Kind)
	}

	if schema := doc.Get("$schema"); schema.IsString() {
		s := schema.StringValue()
		if schemaDraftNumber(doc) == 0 {
			return fmt.Errorf("unrecognized $schema %q", s)
		}
	}

	if Detect(doc) == Draft4 && doc.Has("$id") {
		return fmt.Errorf("document declares $id but is not draft-06/07")
	}

	return nil
}

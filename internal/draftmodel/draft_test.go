package draftmodel

import (
	"testing"

	"github.com/go-jsonschema/normalize/internal/jsonvalue"
)

func mustParse(t *testing.T, src string) *jsonvalue.Value {
	t.Helper()
	v, err := jsonvalue.Unmarshal([]byte(src))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	return v
}

func TestDetectBySchemaKeyword(t *testing.T) {
	tests := []struct {
		schema string
		want   Draft
	}{
		{`"http://json-schema.org/draft-04/schema#"`, Draft4},
		{`"http://json-schema.org/draft-06/schema#"`, DraftHigher},
		{`"http://json-schema.org/draft-07/schema#"`, DraftHigher},
	}
	for _, tt := range tests {
		doc := mustParse(t, `{"$schema":`+tt.schema+`}`)
		if got := Detect(doc); got != tt.want {
			t.Errorf("Detect(%s) = %v, want %v", tt.schema, got, tt.want)
		}
	}
}

func TestDetectInfersFromIDKeyword(t *testing.T) {
	withID := mustParse(t, `{"definitions":{"foo":{"$id":"#foo"}}}`)
	if got := Detect(withID); got != DraftHigher {
		t.Errorf("Detect(nested $id) = %v, want DraftHigher", got)
	}

	withoutID := mustParse(t, `{"definitions":{"foo":{"type":"string"}}}`)
	if got := Detect(withoutID); got != Draft4 {
		t.Errorf("Detect(no id) = %v, want Draft4", got)
	}
}

func TestDetectIgnoresIDInEnum(t *testing.T) {
	// S8 idInEnum: an $id inside an enum array is instance data, not a
	// scope-changing keyword, and must not influence draft detection.
	doc := mustParse(t, `{"enum":[{"$id":"not-a-scope"}]}`)
	if got := Detect(doc); got != Draft4 {
		t.Errorf("Detect(id in enum) = %v, want Draft4", got)
	}
}

func TestIDKeyword(t *testing.T) {
	if got := IDKeyword(Draft4); got != "id" {
		t.Errorf("IDKeyword(Draft4) = %q", got)
	}
	if got := IDKeyword(DraftHigher); got != "$id" {
		t.Errorf("IDKeyword(DraftHigher) = %q", got)
	}
}

func TestValidateStructure(t *testing.T) {
	if err := ValidateStructure(mustParse(t, `{"type":"object"}`)); err != nil {
		t.Errorf("plain object schema should validate: %v", err)
	}

	if err := ValidateStructure(mustParse(t, `[]`)); err == nil {
		t.Errorf("array root should fail structural validation")
	}

	if err := ValidateStructure(mustParse(t, `{"$schema":"nonsense"}`)); err == nil {
		t.Errorf("unrecognized $schema should fail")
	}

	mismatched := mustParse(t, `{"$schema":"http://json-schema.org/draft-04/schema#","$id":"http://example.com"}`)
	if err := ValidateStructure(mismatched); err == nil {
		t.Errorf("draft-04 document with root $id should fail structural validation")
	}
}

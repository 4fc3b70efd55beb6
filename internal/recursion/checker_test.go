package recursion

import (
	"testing"

	"github.com/go-jsonschema/normalize/internal/jsonvalue"
)

func classify(t *testing.T, src string) Classification {
	t.Helper()
	doc, err := jsonvalue.Unmarshal([]byte(src))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got, err := CheckRecursion(doc)
	if err != nil {
		t.Fatalf("CheckRecursion: %v", err)
	}
	return got
}

// S1 refToRootWithTrailingHash.
func TestRefToRootIsUnguardedRecursion(t *testing.T) {
	if got := classify(t, `{"$ref":"#"}`); got != Recursion {
		t.Errorf("got %v, want RECURSION", got)
	}
}

// S2 refInsideRequiredProperty.
func TestRefInsideRequiredPropertyIsRecursion(t *testing.T) {
	src := `{"properties":{"x":{"$ref":"#"}},"required":["x"]}`
	if got := classify(t, src); got != Recursion {
		t.Errorf("got %v, want RECURSION", got)
	}
}

// S3 refInsideOptionalProperty.
func TestRefInsideOptionalPropertyIsGuarded(t *testing.T) {
	src := `{"properties":{"x":{"$ref":"#"}}}`
	if got := classify(t, src); got != Guarded {
		t.Errorf("got %v, want GUARDED", got)
	}
}

// S4 refInsideOneOf.
func TestRefInsideOneOfIsGuarded(t *testing.T) {
	src := `{"oneOf":[{"type":"null"},{"$ref":"#"}]}`
	if got := classify(t, src); got != Guarded {
		t.Errorf("got %v, want GUARDED", got)
	}
}

func TestNoReferenceIsNone(t *testing.T) {
	src := `{"type":"object","properties":{"x":{"type":"string"}}}`
	if got := classify(t, src); got != None {
		t.Errorf("got %v, want NONE", got)
	}
}

func TestAllOfDoesNotGuard(t *testing.T) {
	src := `{"allOf":[{"$ref":"#"}]}`
	if got := classify(t, src); got != Recursion {
		t.Errorf("got %v, want RECURSION (allOf is not a guard)", got)
	}
}

func TestRequiredPropertyViaAllOfStaysUnguarded(t *testing.T) {
	src := `{"allOf":[{"properties":{"x":{"$ref":"#"}},"required":["x"]}]}`
	if got := classify(t, src); got != Recursion {
		t.Errorf("got %v, want RECURSION", got)
	}
}

func TestPatternPropertiesIsGuarded(t *testing.T) {
	src := `{"patternProperties":{"^x$":{"$ref":"#"}}}`
	if got := classify(t, src); got != Guarded {
		t.Errorf("got %v, want GUARDED", got)
	}
}

func TestAdditionalPropertiesSchemaIsGuarded(t *testing.T) {
	src := `{"additionalProperties":{"$ref":"#"}}`
	if got := classify(t, src); got != Guarded {
		t.Errorf("got %v, want GUARDED", got)
	}
}

func TestAdditionalPropertiesBooleanIsNotWalked(t *testing.T) {
	src := `{"additionalProperties":false,"type":"object"}`
	if got := classify(t, src); got != None {
		t.Errorf("got %v, want NONE", got)
	}
}

func TestSingleSchemaItemsIsGuarded(t *testing.T) {
	src := `{"items":{"$ref":"#"}}`
	if got := classify(t, src); got != Guarded {
		t.Errorf("got %v, want GUARDED", got)
	}
}

func TestTupleItemsBeyondMinItemsIsGuarded(t *testing.T) {
	src := `{"items":[{"type":"string"},{"$ref":"#"}],"minItems":1}`
	if got := classify(t, src); got != Guarded {
		t.Errorf("got %v, want GUARDED", got)
	}
}

func TestTupleItemsWithinMinItemsIsUnguarded(t *testing.T) {
	src := `{"items":[{"type":"string"},{"$ref":"#"}],"minItems":2}`
	if got := classify(t, src); got != Recursion {
		t.Errorf("got %v, want RECURSION", got)
	}
}

// Invariant 6: an unreferenced definitions entry never changes the result,
// since it's reachable only via a $ref pointer that nothing here uses.
func TestUnusedDefinitionDoesNotAffectClassification(t *testing.T) {
	src := `{"type":"object","definitions":{"loop":{"$ref":"#/definitions/loop"}}}`
	if got := classify(t, src); got != None {
		t.Errorf("got %v, want NONE (unreferenced definitions entry must not be explored)", got)
	}
}

func TestReferencedDefinitionIsExplored(t *testing.T) {
	src := `{"properties":{"x":{"$ref":"#/definitions/loop"}},"required":["x"],` +
		`"definitions":{"loop":{"$ref":"#/definitions/loop"}}}`
	if got := classify(t, src); got != Recursion {
		t.Errorf("got %v, want RECURSION", got)
	}
}

func TestMutualRecursionAcrossDefinitions(t *testing.T) {
	src := `{
		"$ref":"#/definitions/a",
		"definitions":{
			"a":{"properties":{"b":{"$ref":"#/definitions/b"}},"required":["b"]},
			"b":{"$ref":"#/definitions/a"}
		}
	}`
	if got := classify(t, src); got != Recursion {
		t.Errorf("got %v, want RECURSION", got)
	}
}

// A guard crossed on the first edge of a 3-hop cycle must still cover the
// cycle even though the edges that close it (required properties on the
// intermediate nodes) are themselves unguarded: guardedness accumulates
// across $ref hops, it is never reset on entering a fresh target.
func TestGuardOnNonClosingEdgeOfThreeHopCycleIsGuarded(t *testing.T) {
	src := `{
		"oneOf":[{"type":"null"},{"$ref":"#/definitions/a"}],
		"definitions":{
			"a":{"properties":{"x":{"$ref":"#/definitions/b"}},"required":["x"]},
			"b":{"properties":{"y":{"$ref":"#"}},"required":["y"]}
		}
	}`
	if got := classify(t, src); got != Guarded {
		t.Errorf("got %v, want GUARDED (oneOf guard on the entry edge must carry through the required-property hops)", got)
	}
}

func TestClassificationStringer(t *testing.T) {
	tests := map[Classification]string{None: "NONE", Guarded: "GUARDED", Recursion: "RECURSION"}
	for c, want := range tests {
		if got := c.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", c, got, want)
		}
	}
}

func TestUpgradeIsMonotonic(t *testing.T) {
	if got := None.upgrade(Guarded); got != Guarded {
		t.Errorf("None.upgrade(Guarded) = %v", got)
	}
	if got := Guarded.upgrade(Recursion); got != Recursion {
		t.Errorf("Guarded.upgrade(Recursion) = %v", got)
	}
	if got := Recursion.upgrade(None); got != Recursion {
		t.Errorf("Recursion.upgrade(None) = %v, want unchanged RECURSION", got)
	}
}

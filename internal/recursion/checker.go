// Package recursion implements the reference-graph walker that classifies
// a normalized JSON Schema document as NONE, GUARDED, or RECURSION.
//
// Grounded structurally on internal/graphcycle/graphcycle.go's generic
// Detect[K comparable]: a visitState (visiting/done) map over a Config of
// Exists/Next/Starts functions. That package tracks a binary cycle/no-cycle
// result; CheckRecursion generalizes the same visiting/done state machine to
// carry a guarded bool alongside each in-progress key, matching spec.md's
// Node = (json_element_reference, guarded) pair (model.recursion.Node,
// whose equals ignores guarded — so membership in the in-progress set is by
// pointer alone, exactly like graphcycle's map[K]visitState).
package recursion

import (
	joerrors "github.com/go-jsonschema/normalize/errors"
	"github.com/go-jsonschema/normalize/internal/draftmodel"
	"github.com/go-jsonschema/normalize/internal/jsonvalue"
)

// Classification is the three-way recursion verdict for a normalized
// document.
type Classification uint8

const (
	// None means the reference graph has no cycle at all.
	None Classification = iota
	// Guarded means every cycle passes through at least one guarded edge.
	Guarded
	// Recursion means some cycle's every edge is unguarded.
	Recursion
)

// String implements fmt.Stringer.
func (c Classification) String() string {
	switch c {
	case Guarded:
		return "GUARDED"
	case Recursion:
		return "RECURSION"
	default:
		return "NONE"
	}
}

// upgrade returns the greater of c and other under the NONE < GUARDED <
// RECURSION order (spec.md §4.5: "Upgrade monotonically... final result is
// the max").
func (c Classification) upgrade(other Classification) Classification {
	if other > c {
		return other
	}
	return c
}

type nodeState uint8

const (
	stateUnvisited nodeState = iota
	stateVisiting
	stateDone
)

type checker struct {
	doc     *jsonvalue.Value
	states  map[string]nodeState
	entered map[string]bool // guardedness of the edge that first entered each in-progress pointer
	result  Classification
}

// CheckRecursion classifies doc's reference graph. doc must already be
// normalized: every "$ref" is a local JSON pointer rooted at "#".
func CheckRecursion(doc *jsonvalue.Value) (Classification, error) {
	if !doc.IsObject() {
		return None, joerrors.New(joerrors.InvalidReference, "#")
	}
	c := &checker{
		doc:     doc,
		states:  make(map[string]nodeState),
		entered: make(map[string]bool),
	}
	if err := c.visitNode("", doc, false); err != nil {
		return None, err
	}
	return c.result, nil
}

// visitNode enters the node at pointer ptr, walks its subtree, and marks it
// done. enteringGuarded records whether the edge used to reach ptr (absent
// for the root) was itself guarded.
func (c *checker) visitNode(ptr string, node *jsonvalue.Value, enteringGuarded bool) error {
	c.states[ptr] = stateVisiting
	c.entered[ptr] = enteringGuarded

	if err := c.walk(node, enteringGuarded); err != nil {
		return err
	}

	c.states[ptr] = stateDone
	return nil
}

// walk explores node's subtree, tracking guarded: whether the path from
// node's enclosing schema object to the current position has already
// crossed a guard axis. Encountering "$ref" closes an edge to its target.
func (c *checker) walk(node *jsonvalue.Value, guarded bool) error {
	if !node.IsObject() {
		return nil
	}

	if ref := node.Get("$ref"); ref.IsString() {
		return c.followRef(ref.StringValue(), guarded)
	}

	required := requiredSet(node)

	for _, key := range node.Keys {
		child := node.Fields[key]
		switch key {
		case "oneOf", "anyOf":
			if err := c.walkEach(child, true); err != nil {
				return err
			}
		case "allOf":
			if err := c.walkEach(child, guarded); err != nil {
				return err
			}
		case "properties":
			if err := c.walkProperties(child, required, guarded); err != nil {
				return err
			}
		case "patternProperties":
			if err := c.walkEachObjectField(child, true); err != nil {
				return err
			}
		case "additionalProperties", "additionalItems":
			if sub := additionalSchema(child); sub != nil {
				if err := c.walk(sub, true); err != nil {
					return err
				}
			}
		case "items":
			if err := c.walkItems(child, node, guarded); err != nil {
				return err
			}
		case "enum", "required", "$schema":
			// opaque or non-schema: never descended for refs or guards
		case "definitions":
			// storage only: entries become reachable exclusively through a
			// "$ref" pointer resolution, never by direct structural descent,
			// so an unreferenced entry never affects the classification.
		default:
			if draftmodel.IsOpaque(key) {
				continue
			}
			if err := c.walkGeneric(child, guarded); err != nil {
				return err
			}
		}
	}
	return nil
}

// walkGeneric descends into a keyword value that wasn't one of the
// recognized guard axes (e.g. "not", a draft's "dependencies"): it may
// still contain reachable $ref targets, but
// crossing it never contributes guardedness — the guard table in spec.md
// §4.5 is treated as canonical and exhaustive.
func (c *checker) walkGeneric(v *jsonvalue.Value, guarded bool) error {
	switch {
	case v.IsObject():
		return c.walk(v, guarded)
	case v.IsArray():
		return c.walkEach(v, guarded)
	default:
		return nil
	}
}

func (c *checker) walkEach(arr *jsonvalue.Value, guarded bool) error {
	if !arr.IsArray() {
		return nil
	}
	for _, el := range arr.Arr {
		if err := c.walk(el, guarded); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) walkEachObjectField(obj *jsonvalue.Value, guarded bool) error {
	if !obj.IsObject() {
		return nil
	}
	for _, key := range obj.Keys {
		if err := c.walk(obj.Fields[key], guarded); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) walkProperties(props *jsonvalue.Value, required map[string]bool, guarded bool) error {
	if !props.IsObject() {
		return nil
	}
	for _, name := range props.Keys {
		propGuarded := guarded || !required[name]
		if err := c.walk(props.Fields[name], propGuarded); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) walkItems(items, schema *jsonvalue.Value, guarded bool) error {
	if items.IsArray() {
		minItems := minItemsCount(schema)
		for i, el := range items.Arr {
			itemGuarded := guarded || i >= minItems
			if err := c.walk(el, itemGuarded); err != nil {
				return err
			}
		}
		return nil
	}
	// Single-schema form applies to every array element; the array may be
	// empty, so it is always a guard.
	return c.walk(items, true)
}

// followRef resolves a local "$ref" pointer and closes the edge, either
// recursing into a fresh target node or detecting a cycle against an
// in-progress one.
func (c *checker) followRef(ref string, edgeGuarded bool) error {
	target, ok := fragmentPointer(ref)
	if !ok {
		return joerrors.New(joerrors.InvalidFragment, ref)
	}

	switch c.states[target] {
	case stateVisiting:
		cycleGuarded := edgeGuarded || c.entered[target]
		if cycleGuarded {
			c.result = c.result.upgrade(Guarded)
		} else {
			c.result = c.result.upgrade(Recursion)
		}
		return nil
	case stateDone:
		return nil
	}

	node, ok := c.doc.EvalPointer(target)
	if !ok {
		return joerrors.New(joerrors.InvalidFragment, ref)
	}
	return c.visitNode(target, node, edgeGuarded)
}

// fragmentPointer extracts the JSON Pointer fragment from a local "$ref"
// value of the form "#" or "#/a/b". Non-local refs are rejected: a
// normalized document's refs are always local per the Normalizer's output
// contract.
func fragmentPointer(ref string) (string, bool) {
	if ref == "#" {
		return "", true
	}
	if len(ref) > 1 && ref[0] == '#' && ref[1] == '/' {
		return ref[1:], true
	}
	return "", false
}

package normalize

import "github.com/go-jsonschema/normalize/internal/recursion"

// Classification reports how a normalized document's reference graph
// behaves under unbounded expansion.
type Classification = recursion.Classification

const (
	// RecursionNone means the reference graph has no cycle at all.
	RecursionNone Classification = recursion.None
	// RecursionGuarded means every cycle passes through at least one
	// guarded edge (such as a oneOf/anyOf branch, an optional property, or
	// an array slot not forced by minItems), so expansion always terminates.
	RecursionGuarded Classification = recursion.Guarded
	// RecursionUnguarded means some cycle's every edge is unguarded, so
	// expanding the schema never terminates.
	RecursionUnguarded Classification = recursion.Recursion
)

// CheckRecursion classifies doc's reference graph. doc must already be
// normalized: every $ref must be a local JSON Pointer resolvable within
// doc itself.
func CheckRecursion(doc *Document) (Classification, error) {
	return recursion.CheckRecursion(doc)
}

// Package normalize inlines distributed JSON Schema documents into a
// single self-contained document and classifies the resulting reference
// graph for unguarded recursion.
//
// Distributed schemas split definitions across files linked by $ref and
// $id. Normalize resolves every external reference reachable from a
// root document, folds the referenced content under a local definitions
// map, and rewrites every $ref to a local JSON Pointer. CheckRecursion
// then walks the normalized document's reference graph and reports
// whether it is free of cycles, guarded (every cycle passes through a
// guard such as a oneOf/anyOf branch, an optional property, or an array
// slot that may be absent), or unguarded.
package normalize

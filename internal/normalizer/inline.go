package normalizer

import "github.com/go-jsonschema/normalize/internal/schemafile"

// ensureInlined normalizes target exactly once (building its id index before
// any mutation, then walking it like any other file) and installs its
// content into the session's accumulated definitions map under its
// identifier relative to the store's root, per spec.md §4.4's inlining
// contract: every external file reachable by $ref appears at most once in
// the final document. Dedup is by the store's node-identity visited set
// (Store.Visited/MarkVisited) rather than by identifier, since
// Store.GetLoaded already guarantees one *SchemaFile per identifier — using
// its content node as the key is the same guarantee spec.md §4.6 asks for.
func (s *session) ensureInlined(target *schemafile.SchemaFile) error {
	// The root file's content is the document being built; a $ref back to it
	// from an inlined file is rewritten to "#" and nothing is copied.
	if s.store.IsRoot(target) {
		return nil
	}
	content := target.Content()
	if s.store.Visited(content) {
		return nil
	}
	s.store.MarkVisited(content)

	s.ensureIDIndex(target)
	if err := s.walkObject(target, content); err != nil {
		return err
	}

	relID := target.RelativeIdentifier(s.store.RootID)
	s.definitions.Set(relID, content)
	return nil
}

package schemafile

import (
	"context"

	joerrors "github.com/go-jsonschema/normalize/errors"
	"github.com/go-jsonschema/normalize/internal/fetchcache"
	"github.com/go-jsonschema/normalize/internal/jsonvalue"
)

// Store encapsulates the root identifier, the set of files loaded so far,
// and the node-identity visited set used to inline each external JSON node
// at most once, matching model.normalization.SchemaStore.
type Store struct {
	RootID         string
	AllowRemote    bool
	RepositoryKind fetchcache.RepositoryKind

	// Loaded holds every SchemaFile obtained so far, in first-reference
	// order. Inlined definitions entries are named by each file's relative
	// identifier, not by this order.
	Loaded []*SchemaFile

	// visited marks *jsonvalue.Value nodes already inlined, keyed by
	// pointer identity since the same node can be reached via more than
	// one $ref path and must be inlined only once (spec.md §4.6).
	visited map[*jsonvalue.Value]bool
}

// NewStore returns an empty Store for repo, with remote fetches gated by
// allowRemote.
func NewStore(allowRemote bool, repo fetchcache.RepositoryKind) *Store {
	return &Store{AllowRemote: allowRemote, RepositoryKind: repo, visited: make(map[*jsonvalue.Value]bool)}
}

// AddRoot registers root as the store's root file, matching
// SchemaStore.addRootSchemaFile.
func (s *Store) AddRoot(root *SchemaFile) {
	s.RootID = root.Identifier()
	s.Loaded = append(s.Loaded, root)
}

// GetLoaded returns the already-loaded file with the given identifier, or
// (if AllowRemote) loads, registers, and returns a new one. It returns a
// DistributedSchema error if the identifier is unknown and remote loading
// is disallowed, matching SchemaStore.getLoadedFile.
func (s *Store) GetLoaded(ctx context.Context, loader *fetchcache.Loader, identifier string) (*SchemaFile, error) {
	for _, f := range s.Loaded {
		if f.Identifier() == identifier {
			return f, nil
		}
	}

	if !s.AllowRemote {
		return nil, joerrors.New(joerrors.DistributedSchema, identifier)
	}

	sf, err := Load(ctx, loader, identifier, s)
	if err != nil {
		return nil, err
	}
	s.Loaded = append(s.Loaded, sf)
	return sf, nil
}

// IsRoot reports whether f's identifier is the store's root identifier,
// matching SchemaStore.isRoot.
func (s *Store) IsRoot(f *SchemaFile) bool {
	return f != nil && f.Identifier() == s.RootID
}

// Visited reports whether node has already been inlined by the Normalizer.
func (s *Store) Visited(node *jsonvalue.Value) bool {
	return s.visited[node]
}

// MarkVisited records that node has now been inlined.
func (s *Store) MarkVisited(node *jsonvalue.Value) {
	s.visited[node] = true
}

package normalize

import (
	"context"

	"github.com/go-jsonschema/normalize/internal/fetchcache"
	"github.com/go-jsonschema/normalize/internal/jsonvalue"
	"github.com/go-jsonschema/normalize/internal/normalizer"
)

// RepositoryKind selects which fallback applies when a $ref cannot be
// fetched directly, mirroring the corpus and test-suite conventions the
// driver's --repo flag exposes.
type RepositoryKind = fetchcache.RepositoryKind

const (
	// RepositoryNormal applies no fallback.
	RepositoryNormal RepositoryKind = fetchcache.Normal
	// RepositoryCorpus reissues a failed fetch with "raw=true".
	RepositoryCorpus RepositoryKind = fetchcache.Corpus
	// RepositoryTestSuite remaps a well-known localhost prefix to a local directory.
	RepositoryTestSuite RepositoryKind = fetchcache.TestSuite
)

// Options configures a Normalize call.
type Options struct {
	// RepositoryKind selects the fallback rewrite applied to unreachable
	// external references.
	RepositoryKind RepositoryKind
	// AllowRemote permits loading external $ref targets. When false, any
	// $ref to a file other than the root fails the call with a
	// DistributedSchema error, whether or not the target is in the cache.
	AllowRemote bool
	// Loader supplies external documents. A nil Loader means every
	// external $ref fails to resolve; only self-contained documents can
	// be normalized.
	Loader *fetchcache.Loader
}

// Document is a parsed JSON document, the shared currency between
// Normalize, CheckRecursion, and the driver's corpus/report tooling.
type Document = jsonvalue.Value

// ParseDocument parses JSON Schema source into a Document.
func ParseDocument(data []byte) (*Document, error) {
	return jsonvalue.Unmarshal(data)
}

// Normalize resolves every $ref reachable from root, inlines external
// content under a local "definitions" map, and rewrites every reference to
// a local JSON Pointer. root is treated as read-only; the returned Document
// is a new value rooted at baseID's scope.
func Normalize(ctx context.Context, root *Document, baseID string, opts Options) (*Document, error) {
	return normalizer.Normalize(ctx, root, baseID, normalizer.Options{
		RepositoryKind: opts.RepositoryKind,
		AllowRemote:    opts.AllowRemote,
		Loader:         opts.Loader,
	})
}

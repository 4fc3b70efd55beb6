package normalize

import "github.com/go-jsonschema/normalize/internal/fetchcache"

// Fetcher performs the network or filesystem retrieval Normalize falls
// back to when an external $ref target is not already cached on disk.
type Fetcher = fetchcache.Fetcher

// NewHTTPFetcher returns a Fetcher backed by http(s), deduplicating
// concurrent fetches of the same URL.
func NewHTTPFetcher() *fetchcache.HTTPFetcher {
	return fetchcache.NewHTTPFetcher()
}

// Cache persists fetched documents as sequentially numbered files in a
// directory and records URL-to-file mappings so a corpus can be
// re-normalized without re-fetching.
type Cache = fetchcache.Cache

// NewCache returns a fetch cache rooted at dir, indexed by the file at
// indexPath; both are created on the first store.
func NewCache(dir, indexPath string) *Cache {
	return fetchcache.New(dir, indexPath)
}

// Loader resolves an external $ref target: cache hit, then fetcher, then
// the repository-kind-specific rewrite fallback (corpus "raw=true" retry,
// test-suite localhost remap).
type Loader = fetchcache.Loader

// RewriteRule describes one repository-kind fallback rewrite, loaded from
// YAML configuration.
type RewriteRule = fetchcache.RewriteRule

// NewLoader builds a Loader from a Cache and a Fetcher, applying rewriter's
// rules when a direct fetch fails. A nil rewriter disables the fallback;
// DefaultRewriter supplies the built-in rules.
func NewLoader(cache *Cache, fetcher Fetcher, rewriter *Rewriter) *Loader {
	return fetchcache.NewLoader(cache, fetcher, rewriter)
}

// Rewriter applies repository-kind-specific fallback rewrites (corpus
// "raw=true" retry, test-suite localhost remap) when a direct fetch fails.
type Rewriter = fetchcache.Rewriter

// DefaultRewriter ships the built-in TestSuite and Corpus fallbacks.
func DefaultRewriter(localDir string) *Rewriter {
	return fetchcache.DefaultRewriter(localDir)
}

// LoadRewriteRules parses a YAML rule list, resolving each rule's kind
// name.
func LoadRewriteRules(data []byte) (*Rewriter, error) {
	return fetchcache.LoadRewriteRules(data)
}

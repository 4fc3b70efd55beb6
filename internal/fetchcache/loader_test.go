package fetchcache

import (
	"context"
	"path/filepath"
	"testing"

	joerrors "github.com/go-jsonschema/normalize/errors"
)

func newTestLoader(t *testing.T, fetcher Fetcher, rewriter *Rewriter) *Loader {
	t.Helper()
	dir := t.TempDir()
	cache := New(filepath.Join(dir, "store"), filepath.Join(dir, "UriOfFiles.csv"))
	return NewLoader(cache, fetcher, rewriter)
}

func TestLoaderPrefersCache(t *testing.T) {
	l := newTestLoader(t, &stubFetcher{err: context.DeadlineExceeded}, nil)
	doc := mustValue(t, `{"cached":true}`)
	if err := l.cache.Put("http://example.com/s.json", doc); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := l.Load(context.Background(), "http://example.com/s.json", Normal, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v := got.Get("cached"); v == nil || !v.Bool {
		t.Errorf("expected cached doc, got %+v", got)
	}
}

func TestLoaderDisallowRemoteOnMiss(t *testing.T) {
	l := newTestLoader(t, &stubFetcher{doc: mustValue(t, `{}`)}, nil)

	_, err := l.Load(context.Background(), "http://example.com/s.json", Normal, false)
	if !joerrors.Is(err, joerrors.NotCached) {
		t.Fatalf("Load with allowRemote=false: got %v, want NotCached", err)
	}
}

func TestLoaderFetchesAndStores(t *testing.T) {
	stub := &stubFetcher{doc: mustValue(t, `{"fetched":true}`)}
	l := newTestLoader(t, stub, nil)

	got, err := l.Load(context.Background(), "http://example.com/s.json", Normal, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v := got.Get("fetched"); v == nil || !v.Bool {
		t.Errorf("expected fetched doc, got %+v", got)
	}

	cached, err := l.cache.Get("http://example.com/s.json")
	if err != nil {
		t.Fatalf("expected fetched doc to be cached: %v", err)
	}
	if v := cached.Get("fetched"); v == nil || !v.Bool {
		t.Errorf("cached doc mismatch, got %+v", cached)
	}
}

func TestLoaderFallsBackOnFetchError(t *testing.T) {
	failing := &stubFetcher{err: context.DeadlineExceeded}
	rw := DefaultRewriter(t.TempDir())
	l := newTestLoader(t, failing, rw)

	_, err := l.Load(context.Background(), "http://example.com/s.json", Normal, true)
	if err == nil {
		t.Fatal("expected error: Normal kind has no matching fallback rule")
	}
	if !joerrors.Is(err, joerrors.InvalidIdentifier) {
		t.Errorf("got %v, want InvalidIdentifier", err)
	}
}

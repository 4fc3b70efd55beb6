package fetchcache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestHTTPFetcherDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type":"string"}`))
	}))
	defer srv.Close()

	f := NewHTTPFetcher()
	doc, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	v := doc.Get("type")
	if v == nil || v.Str != "string" {
		t.Errorf("fetched doc missing type=string, got %+v", doc)
	}
}

func TestHTTPFetcherErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher()
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Error("expected error for 404 response")
	}
}

func TestFileFetcherReadsLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	if err := os.WriteFile(path, []byte(`{"type":"number"}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f := FileFetcher{}
	doc, err := f.Fetch(context.Background(), "file://"+path)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	v := doc.Get("type")
	if v == nil || v.Str != "number" {
		t.Errorf("fetched doc missing type=number, got %+v", doc)
	}
}

func TestCompositeFetcherDispatchesByScheme(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c := NewCompositeFetcher()
	if _, err := c.Fetch(context.Background(), "file://"+path); err != nil {
		t.Errorf("Fetch file: %v", err)
	}
	if _, err := c.Fetch(context.Background(), "ftp://example.com/x.json"); err == nil {
		t.Error("expected error for unsupported scheme")
	}
}

func TestSchemeHelper(t *testing.T) {
	tests := map[string]string{
		"http://example.com":  "http",
		"https://example.com": "https",
		"file:///tmp/x.json":  "file",
		"not-a-url":           "",
	}
	for in, want := range tests {
		if got := scheme(in); got != want {
			t.Errorf("scheme(%q) = %q, want %q", in, got, want)
		}
	}
}

package normalizer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	joerrors "github.com/go-jsonschema/normalize/errors"
	"github.com/go-jsonschema/normalize/internal/fetchcache"
	"github.com/go-jsonschema/normalize/internal/jsonvalue"
	"github.com/go-jsonschema/normalize/internal/recursion"
)

type stubFetcher struct {
	docs map[string]string
}

func (f *stubFetcher) Fetch(_ context.Context, rawURL string) (*jsonvalue.Value, error) {
	src, ok := f.docs[rawURL]
	if !ok {
		return nil, fmt.Errorf("stubFetcher: no document for %s", rawURL)
	}
	return jsonvalue.Unmarshal([]byte(src))
}

func newTestLoader(t *testing.T, docs map[string]string) *fetchcache.Loader {
	t.Helper()
	dir := t.TempDir()
	cache := fetchcache.New(filepath.Join(dir, "store"), filepath.Join(dir, "UriOfFiles.csv"))
	return fetchcache.NewLoader(cache, &stubFetcher{docs: docs}, nil)
}

func mustParse(t *testing.T, src string) *jsonvalue.Value {
	t.Helper()
	v, err := jsonvalue.Unmarshal([]byte(src))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	return v
}

// S1 refToRootWithTrailingHash: a ref to the document's own root normalizes
// to the bare local pointer.
func TestRefToRootStaysLocal(t *testing.T) {
	root := mustParse(t, `{"$ref":"#"}`)
	out, err := Normalize(context.Background(), root, "http://example.com/root.json", Options{AllowRemote: true})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got := out.Get("$ref").StringValue(); got != "#" {
		t.Errorf("$ref = %q, want %q", got, "#")
	}
}

// S5 externalRef: an external file reachable by $ref gets inlined under
// definitions and the ref rewritten to point at it.
func TestExternalRefInlinesUnderDefinitions(t *testing.T) {
	loader := newTestLoader(t, map[string]string{
		"http://example.com/other.json": `{"type":"string"}`,
	})
	root := mustParse(t, `{"properties":{"x":{"$ref":"other.json"}}}`)

	out, err := Normalize(context.Background(), root, "http://example.com/root.json", Options{
		AllowRemote: true,
		Loader:      loader,
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	ref := out.Get("properties").Get("x").Get("$ref").StringValue()
	if ref != "#/definitions/other.json" {
		t.Fatalf("$ref = %q, want #/definitions/other.json", ref)
	}
	defs := out.Get("definitions")
	if defs == nil || defs.Get("other.json").Get("type").StringValue() != "string" {
		t.Errorf("expected other.json inlined under definitions, got %+v", defs)
	}
}

// S5 (negative path): when no network loader is configured and the target
// isn't cached, normalization surfaces DistributedSchema.
func TestExternalRefWithoutLoaderFails(t *testing.T) {
	root := mustParse(t, `{"$ref":"other.json"}`)
	_, err := Normalize(context.Background(), root, "http://example.com/root.json", Options{AllowRemote: true})
	if !joerrors.Is(err, joerrors.DistributedSchema) {
		t.Errorf("got %v, want DistributedSchema", err)
	}
}

// S6: a JSON-pointer-form fragment that already carries RFC 6901 escapes
// (here "~1" for a literal "/" in a definitions key) round-trips without
// being re-escaped or mangled.
func TestPointerFragmentRoundTripsWithoutDoubleEscaping(t *testing.T) {
	root := mustParse(t, `{
		"$ref":"#/definitions/weird~1name",
		"definitions":{"weird/name":{"type":"string"}}
	}`)
	out, err := Normalize(context.Background(), root, "http://example.com/root.json", Options{AllowRemote: true})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got := out.Get("$ref").StringValue(); got != "#/definitions/weird~1name" {
		t.Errorf("$ref = %q, want unchanged pointer", got)
	}
	target, ok := out.EvalPointer("/definitions/weird~1name")
	if !ok || target.Get("type").StringValue() != "string" {
		t.Error("pointer fragment must still resolve to its original target after normalization")
	}
}

// S7 refWithChangedBase: a nested $id changes the resolution scope for refs
// beneath it, so a relative ref there resolves against the nested scope, not
// the root's.
func TestNestedIDChangesRefBase(t *testing.T) {
	loader := newTestLoader(t, map[string]string{
		"http://example.com/sub/other.json": `{"type":"number"}`,
	})
	root := mustParse(t, `{
		"properties":{
			"child":{
				"$id":"http://example.com/sub/child.json",
				"$ref":"other.json"
			}
		}
	}`)

	out, err := Normalize(context.Background(), root, "http://example.com/root.json", Options{
		AllowRemote: true,
		Loader:      loader,
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	child := out.Get("properties").Get("child")
	if child.Has("$id") {
		t.Error("expected $id to be consumed and stripped")
	}
	ref := child.Get("$ref").StringValue()
	// Resolved against the nested scope, the target's definitions key is
	// "sub/other.json", whose "/" is escaped as "~1" in the pointer.
	if ref != "#/definitions/sub~1other.json" {
		t.Errorf("$ref = %q, want %q (resolved against the nested scope)", ref, "#/definitions/sub~1other.json")
	}
}

// S8 idInEnum: an id-shaped string inside an "enum" array is instance data,
// never a scope-changing keyword, and must survive untouched.
func TestIDInEnumIsNotConsumed(t *testing.T) {
	root := mustParse(t, `{"enum":[{"$id":"not-a-scope"}, "plain"]}`)
	out, err := Normalize(context.Background(), root, "http://example.com/root.json", Options{AllowRemote: true})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	enumObj := out.Get("enum").Arr[0]
	if !enumObj.Has("$id") {
		t.Error("$id inside enum must be left in place, not consumed as a scope keyword")
	}
}

// Testable property: closure — every $ref in a normalized document is a
// local pointer rooted at "#".
func TestClosurePropertyAllRefsAreLocal(t *testing.T) {
	loader := newTestLoader(t, map[string]string{
		"http://example.com/other.json": `{"$ref":"third.json"}`,
		"http://example.com/third.json": `{"type":"boolean"}`,
	})
	root := mustParse(t, `{"properties":{"x":{"$ref":"other.json"}}}`)

	out, err := Normalize(context.Background(), root, "http://example.com/root.json", Options{
		AllowRemote: true,
		Loader:      loader,
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	assertAllRefsLocal(t, out)
}

func assertAllRefsLocal(t *testing.T, node *jsonvalue.Value) {
	t.Helper()
	switch {
	case node.IsObject():
		if ref := node.Get("$ref"); ref.IsString() {
			if !strings.HasPrefix(ref.StringValue(), "#") {
				t.Errorf("$ref %q is not a local pointer", ref.StringValue())
			}
		}
		for _, key := range node.Keys {
			assertAllRefsLocal(t, node.Fields[key])
		}
	case node.IsArray():
		for _, el := range node.Arr {
			assertAllRefsLocal(t, el)
		}
	}
}

// Testable property: idempotence — normalizing an already-normalized
// document produces byte-for-byte the same result.
func TestIdempotencePropertyReNormalizationIsNoop(t *testing.T) {
	loader := newTestLoader(t, map[string]string{
		"http://example.com/other.json": `{"type":"string"}`,
	})
	root := mustParse(t, `{"properties":{"x":{"$ref":"other.json"}}}`)

	once, err := Normalize(context.Background(), root, "http://example.com/root.json", Options{
		AllowRemote: true,
		Loader:      loader,
	})
	if err != nil {
		t.Fatalf("first Normalize: %v", err)
	}

	twice, err := Normalize(context.Background(), once, "http://example.com/root.json", Options{AllowRemote: true})
	if err != nil {
		t.Fatalf("second Normalize: %v", err)
	}

	if jsonvalue.EncodePointer(nil) != "" {
		t.Fatal("sanity check for EncodePointer baseline failed")
	}
	if got, want := renderKeys(once), renderKeys(twice); got != want {
		t.Errorf("re-normalization changed the document:\nfirst:  %s\nsecond: %s", got, want)
	}
}

// renderKeys gives a cheap structural fingerprint (no canonical JSON encoder
// is exercised here) sufficient to catch the idempotence regressions this
// suite cares about: key sets and every $ref value.
func renderKeys(v *jsonvalue.Value) string {
	var b strings.Builder
	walkFingerprint(v, &b)
	return b.String()
}

func walkFingerprint(v *jsonvalue.Value, b *strings.Builder) {
	switch {
	case v.IsObject():
		b.WriteByte('{')
		for _, k := range v.Keys {
			b.WriteString(k)
			b.WriteByte(':')
			walkFingerprint(v.Fields[k], b)
		}
		b.WriteByte('}')
	case v.IsArray():
		b.WriteByte('[')
		for _, el := range v.Arr {
			walkFingerprint(el, b)
		}
		b.WriteByte(']')
	case v.IsString():
		b.WriteString(v.StringValue())
	}
}

// Testable property: draft preservation — "$schema" survives normalization
// unchanged.
func TestDraftPreservationPropertyKeepsSchemaKeyword(t *testing.T) {
	root := mustParse(t, `{"$schema":"http://json-schema.org/draft-07/schema#","type":"object"}`)
	out, err := Normalize(context.Background(), root, "http://example.com/root.json", Options{AllowRemote: true})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got := out.Get("$schema").StringValue(); got != "http://json-schema.org/draft-07/schema#" {
		t.Errorf("$schema = %q, want preserved", got)
	}
}

// Testable property: pointer round-trip — every rewritten local $ref
// resolves, via EvalPointer, to the exact subschema the original reference
// named.
func TestPointerRoundTripPropertyResolvesToRealTarget(t *testing.T) {
	loader := newTestLoader(t, map[string]string{
		"http://example.com/other.json": `{"type":"string"}`,
	})
	root := mustParse(t, `{"properties":{"x":{"$ref":"other.json"}}}`)

	out, err := Normalize(context.Background(), root, "http://example.com/root.json", Options{
		AllowRemote: true,
		Loader:      loader,
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	ref := out.Get("properties").Get("x").Get("$ref").StringValue()
	pointer := strings.TrimPrefix(ref, "#")
	target, ok := out.EvalPointer(pointer)
	if !ok {
		t.Fatalf("EvalPointer(%q) failed to resolve rewritten ref", pointer)
	}
	if target.Get("type").StringValue() != "string" {
		t.Errorf("resolved target = %+v, want the inlined other.json schema", target)
	}
}

// Testable property: recursion monotonicity integration — a normalized
// document with a guarded external cycle still classifies as GUARDED after
// CheckRecursion runs against the rewritten local pointers.
func TestRecursionClassificationSurvivesNormalization(t *testing.T) {
	loader := newTestLoader(t, map[string]string{
		"http://example.com/other.json": `{"properties":{"self":{"$ref":"root.json"}}}`,
	})
	root := mustParse(t, `{
		"$id":"http://example.com/root.json",
		"properties":{"x":{"$ref":"other.json"}}
	}`)

	out, err := Normalize(context.Background(), root, "http://example.com/root.json", Options{
		AllowRemote: true,
		Loader:      loader,
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	got, err := recursion.CheckRecursion(out)
	if err != nil {
		t.Fatalf("CheckRecursion: %v", err)
	}
	if got != recursion.Guarded {
		t.Errorf("got %v, want GUARDED (both edges cross an optional property)", got)
	}
}

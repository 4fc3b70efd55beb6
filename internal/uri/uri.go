// Package uri implements the URI operations the Normalizer needs: parsing
// with auto percent-encoding, RFC 3986 relative resolution, fragment
// stripping (including the "trailing #" edge case net/url cannot represent),
// fragment extraction, and relativizing one identifier against another.
//
// Identifiers are carried as plain strings throughout, the same approach the
// teacher's internal/source package takes for system IDs (resolveSystemID
// takes and returns strings, not net/url.URL values) — net/url.URL is used
// internally only where structured access (scheme, authority, path) is
// unavoidable.
package uri

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// ToURI validates s as an absolute or relative URI reference, auto
// percent-encoding any literal spaces first (a bare space is common in
// file-path-derived identifiers and is otherwise rejected by net/url).
// It returns the canonical string form.
func ToURI(s string) (string, error) {
	encoded := strings.ReplaceAll(s, " ", "%20")
	u, err := url.Parse(encoded)
	if err != nil {
		return "", fmt.Errorf("parse uri %q: %w", s, err)
	}
	return u.String(), nil
}

// Resolve resolves ref against base per RFC 3986. If ref is the literal
// string "#" (or ends in one with an empty fragment), the resolved form
// preserves that trailing marker the way net/url.URL.String() alone cannot
// (Fragment == "" is indistinguishable from "no fragment" to net/url).
func Resolve(base, ref string) (string, error) {
	baseURL, err := url.Parse(strings.ReplaceAll(base, " ", "%20"))
	if err != nil {
		return "", fmt.Errorf("parse base uri %q: %w", base, err)
	}

	trailingHash := strings.HasSuffix(ref, "#") && !strings.HasSuffix(ref, "##")
	refForParse := ref
	if trailingHash {
		refForParse = ref[:len(ref)-1]
	}

	refURL, err := url.Parse(strings.ReplaceAll(refForParse, " ", "%20"))
	if err != nil {
		return "", fmt.Errorf("parse ref uri %q: %w", ref, err)
	}

	resolved := baseURL.ResolveReference(refURL)
	out := resolved.String()
	if trailingHash && !strings.HasSuffix(out, "#") {
		out += "#"
	}
	return out, nil
}

// RemoveFragment strips any fragment (empty or not) from u.
func RemoveFragment(u string) string {
	if idx := strings.IndexByte(u, '#'); idx != -1 {
		return u[:idx]
	}
	return u
}

// RemoveTrailingHash strips a bare trailing "#" (a fragment marker with an
// empty fragment), leaving a non-empty fragment untouched. This is distinct
// from RemoveFragment: "http://x#frag" is unchanged, "http://x#" becomes
// "http://x".
func RemoveTrailingHash(u string) string {
	if strings.HasSuffix(u, "#") {
		return u[:len(u)-1]
	}
	return u
}

// HasFragment reports whether u carries any fragment marker at all,
// including an empty one.
func HasFragment(u string) bool {
	return strings.Contains(u, "#")
}

// Fragment returns the fragment portion of u (without the leading "#"),
// and whether one was present.
func Fragment(u string) (string, bool) {
	idx := strings.IndexByte(u, '#')
	if idx == -1 {
		return "", false
	}
	return u[idx+1:], true
}

// Relativize renders id relative to root when they share a scheme and
// authority (so the result reads as a portable relative path), otherwise
// returns id unchanged in absolute form. This mirrors
// SchemaFile.getRelIdentifier: the relative form is only meaningful between
// two identifiers that live under the same host (or both are local files).
func Relativize(id, root string) string {
	idURL, err1 := url.Parse(id)
	rootURL, err2 := url.Parse(root)
	if err1 != nil || err2 != nil {
		return id
	}
	if idURL.Scheme != rootURL.Scheme || idURL.Host != rootURL.Host {
		return id
	}

	rootDir := path.Dir(rootURL.Path)
	rel, err := filepathRel(rootDir, idURL.Path)
	if err != nil {
		return id
	}
	return rel
}

// filepathRel computes a slash-separated relative path from base to target,
// working purely on URI path segments (not the OS filesystem), so it
// behaves identically regardless of platform.
func filepathRel(base, target string) (string, error) {
	baseSegs := splitPath(base)
	targetSegs := splitPath(target)

	i := 0
	for i < len(baseSegs) && i < len(targetSegs) && baseSegs[i] == targetSegs[i] {
		i++
	}

	var up []string
	for range baseSegs[i:] {
		up = append(up, "..")
	}
	rel := append(up, targetSegs[i:]...)
	if len(rel) == 0 {
		return ".", nil
	}
	return strings.Join(rel, "/"), nil
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// WithRawQuery returns u with its query string replaced by rawQuery (no
// leading "?"); any existing query is dropped. Used by the CORPUS
// repository-kind rewrite rule to reissue a hosted corpus URL with
// "raw=true" as its query.
func WithRawQuery(u, rawQuery string) (string, error) {
	parsed, err := url.Parse(u)
	if err != nil {
		return "", fmt.Errorf("parse uri %q: %w", u, err)
	}
	parsed.RawQuery = rawQuery
	return parsed.String(), nil
}

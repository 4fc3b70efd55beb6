package normalizer

import (
	"strconv"
	"strings"

	joerrors "github.com/go-jsonschema/normalize/errors"
	"github.com/go-jsonschema/normalize/internal/draftmodel"
	"github.com/go-jsonschema/normalize/internal/jsonvalue"
	"github.com/go-jsonschema/normalize/internal/schemafile"
	"github.com/go-jsonschema/normalize/internal/uri"
)

// handleRef resolves node's "$ref" against file's current scope, inlines its
// target file if external, and rewrites the ref in place to a local JSON
// Pointer, per spec.md §4.4 step 3/5.
func (s *session) handleRef(file *schemafile.SchemaFile, node *jsonvalue.Value, rawRef string) error {
	refScope := file.CurrentScope()

	resolved, err := uri.Resolve(refScope, rawRef)
	if err != nil {
		return joerrors.Wrap(joerrors.InvalidReference, rawRef, err)
	}
	base := uri.RemoveFragment(resolved)
	frag, hasFrag := uri.Fragment(resolved)

	target := file
	if base != file.Identifier() {
		external, err := s.fetchExternalFile(base)
		if err != nil {
			return err
		}
		if err := s.ensureInlined(external); err != nil {
			return err
		}
		target = external
	}

	prefix := "#"
	if !s.store.IsRoot(target) {
		relID := target.RelativeIdentifier(s.store.RootID)
		prefix = "#" + jsonvalue.EncodePointer([]string{"definitions", relID})
	}

	var rewritten string
	switch {
	case !hasFrag || frag == "":
		rewritten = prefix
	case strings.HasPrefix(frag, "/"):
		rewritten = prefix + frag
	default:
		loc, err := s.resolveNamedFragment(target, refScope, frag)
		if err != nil {
			return err
		}
		rewritten = prefix + loc
	}

	node.Set("$ref", jsonvalue.NewString(rewritten))
	return nil
}

// resolveNamedFragment locates the node inside target whose id keyword
// resolves (against refScope, the scope the $ref itself was resolved in) to
// "#"+frag, per spec.md §4.4 step 5's plain-identifier case, and returns its
// JSON Pointer location within target.
func (s *session) resolveNamedFragment(target *schemafile.SchemaFile, refScope, frag string) (string, error) {
	candidate, err := uri.Resolve(refScope, "#"+frag)
	if err != nil {
		return "", joerrors.Wrap(joerrors.InvalidFragment, frag, err)
	}
	candidate = uri.RemoveTrailingHash(candidate)

	s.ensureIDIndex(target)
	loc, ok := s.idIndex[target.Identifier()][candidate]
	if !ok {
		return "", joerrors.New(joerrors.InvalidFragment, frag)
	}
	return loc, nil
}

// ensureIDIndex builds and caches, on first use, the map from a node's fully
// resolved id to its JSON Pointer location within file's content. It must
// run before file's content is mutated (id keywords are stripped as the main
// walk consumes them), so both normalizeFile and ensureInlined build it
// before ever calling walkObject.
func (s *session) ensureIDIndex(file *schemafile.SchemaFile) {
	if _, ok := s.idIndex[file.Identifier()]; ok {
		return
	}
	s.idIndex[file.Identifier()] = buildIDIndex(file.Content(), file.Draft(), file.Identifier())
}

// buildIDIndex walks content read-only, tracking the same scope-stack and
// descent rules as walkObject (id keyword pushes a scope, "enum" is opaque,
// every other child — including one sitting beside a "$ref" — is still
// descended into), recording every declared id's resolved form against the
// JSON Pointer path that reaches it.
func buildIDIndex(content *jsonvalue.Value, draft draftmodel.Draft, baseScope string) map[string]string {
	idx := make(map[string]string)
	indexNode(content, draft, baseScope, nil, idx)
	return idx
}

func indexNode(node *jsonvalue.Value, draft draftmodel.Draft, scope string, path []string, idx map[string]string) {
	if !node.IsObject() {
		return
	}

	idKey := draftmodel.IDKeyword(draft)
	newScope := scope
	if declared := node.Get(idKey); declared.IsString() && declared.StringValue() != "" {
		if resolved, err := uri.Resolve(scope, declared.StringValue()); err == nil {
			newScope = uri.RemoveTrailingHash(resolved)
			idx[newScope] = jsonvalue.EncodePointer(path)
		}
	}

	for _, key := range node.Keys {
		if draftmodel.IsOpaque(key) {
			continue
		}
		indexChild(node.Fields[key], draft, newScope, withToken(path, key), idx)
	}
}

func indexChild(v *jsonvalue.Value, draft draftmodel.Draft, scope string, path []string, idx map[string]string) {
	switch {
	case v.IsObject():
		indexNode(v, draft, scope, path, idx)
	case v.IsArray():
		for i, el := range v.Arr {
			indexChild(el, draft, scope, withToken(path, strconv.Itoa(i)), idx)
		}
	}
}

// withToken appends tok to path in a fresh backing array, so that sibling
// recursive calls sharing the same parent path never alias each other's
// slices.
func withToken(path []string, tok string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = tok
	return out
}

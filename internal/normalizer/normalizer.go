// Package normalizer implements the Normalizer (spec.md component C6): a
// depth-first traversal that resolves every "$ref" in a distributed JSON
// Schema document, inlines reachable external content under a top-level
// "definitions" map, and rewrites every reference to a local JSON Pointer.
//
// Grounded structurally on the teacher's internal/loader package — its
// SchemaLoader/load_session pairing is the closest Go analogue to "traverse,
// defer, and merge external content" even though the keyword set is
// entirely different (XSD <xs:import>/<xs:include> merging becomes JSON
// Schema $ref inlining).
package normalizer

import (
	"context"
	"fmt"

	joerrors "github.com/go-jsonschema/normalize/errors"
	"github.com/go-jsonschema/normalize/internal/draftmodel"
	"github.com/go-jsonschema/normalize/internal/fetchcache"
	"github.com/go-jsonschema/normalize/internal/jsonvalue"
	"github.com/go-jsonschema/normalize/internal/schemafile"
)

// Options configures one Normalize call.
type Options struct {
	RepositoryKind fetchcache.RepositoryKind
	AllowRemote    bool
	Loader         *fetchcache.Loader
}

// Normalize resolves root (loaded from baseID) into a single self-contained
// document per spec.md §4.4's five output invariants. root is cloned before
// mutation; the input is left untouched.
func Normalize(ctx context.Context, root *jsonvalue.Value, baseID string, opts Options) (*jsonvalue.Value, error) {
	store := schemafile.NewStore(opts.AllowRemote, opts.RepositoryKind)

	rootFile, err := schemafile.FromContent(baseID, root.Clone(), store)
	if err != nil {
		return nil, err
	}
	store.AddRoot(rootFile)

	sess := &session{
		ctx:         ctx,
		store:       store,
		loader:      opts.Loader,
		definitions: jsonvalue.NewObject(),
		idIndex:     make(map[string]map[string]string),
	}

	if err := sess.normalizeFile(rootFile); err != nil {
		return nil, err
	}

	sess.mergeDefinitions(rootFile.Content())
	return rootFile.Content(), nil
}

// session carries the shared state of one Normalize call: the schema store,
// the network loader, and the accumulated top-level definitions map keyed
// by each inlined external file's relative identifier.
type session struct {
	ctx         context.Context
	store       *schemafile.Store
	loader      *fetchcache.Loader
	definitions *jsonvalue.Value

	// idIndex caches, per SchemaFile identifier, a map from a node's fully
	// resolved id to its JSON Pointer location within that file — built
	// once, lazily, the first time a named-identifier $ref needs it.
	idIndex map[string]map[string]string
}

// normalizeFile walks file's content end to end, consuming id keywords and
// rewriting refs in place. The id index is built first, from file's
// still-unmutated content, so a later plain-identifier $ref elsewhere can
// still resolve against ids this walk is about to strip.
func (s *session) normalizeFile(file *schemafile.SchemaFile) error {
	s.ensureIDIndex(file)
	return s.walkObject(file, file.Content())
}

// mergeDefinitions installs the accumulated inter-file definitions into
// root, merging with any definitions root already declared rather than
// overwriting them.
func (s *session) mergeDefinitions(root *jsonvalue.Value) {
	if len(s.definitions.Keys) == 0 {
		return
	}
	existing := root.Get("definitions")
	if !existing.IsObject() {
		root.Set("definitions", s.definitions)
		return
	}
	for _, key := range s.definitions.Keys {
		existing.Set(key, s.definitions.Fields[key])
	}
}

// walkObject processes one object node: it consumes and strips the node's
// own id keyword (pushing the resolution scope that implies, or re-pushing
// the current scope to keep push/pop balanced), recurses into every
// non-opaque child key, and then rewrites the node's own "$ref", if any.
func (s *session) walkObject(file *schemafile.SchemaFile, node *jsonvalue.Value) error {
	if !node.IsObject() {
		return nil
	}

	idKey := draftmodel.IDKeyword(file.Draft())
	declared := node.Get(idKey)
	if declared.IsString() && declared.StringValue() != "" {
		if err := file.PushScope(declared.StringValue()); err != nil {
			return err
		}
		node.Delete(idKey)
	} else {
		if err := file.PushScope(""); err != nil {
			return err
		}
	}
	defer file.PopScope()

	// Every non-opaque child is normalized regardless of whether node itself
	// carries a "$ref" — an unreferenced "definitions" entry sitting beside a
	// "$ref" still ends up in the output and must have its own ids/refs
	// resolved. "$ref" is handled separately below, since it needs the
	// scope just pushed for node, not a child's.
	for _, key := range append([]string(nil), node.Keys...) {
		if key == "$ref" || draftmodel.IsOpaque(key) {
			continue
		}
		if err := s.walkChild(file, node.Fields[key]); err != nil {
			return err
		}
	}

	if ref := node.Get("$ref"); ref.IsString() {
		return s.handleRef(file, node, ref.StringValue())
	}
	return nil
}

// walkChild recurses into a keyword's value: an object is itself a schema,
// an array's elements each are, anything else carries no nested schema.
func (s *session) walkChild(file *schemafile.SchemaFile, v *jsonvalue.Value) error {
	switch {
	case v.IsObject():
		return s.walkObject(file, v)
	case v.IsArray():
		for _, el := range v.Arr {
			if err := s.walkChild(file, el); err != nil {
				return err
			}
		}
	}
	return nil
}

// fetchExternalFile loads an inter-file $ref target through the store,
// translating the distributed-schema policy failure into the spec's error
// kind.
func (s *session) fetchExternalFile(identifier string) (*schemafile.SchemaFile, error) {
	if s.loader == nil {
		return nil, joerrors.New(joerrors.DistributedSchema, identifier)
	}
	f, err := s.store.GetLoaded(s.ctx, s.loader, identifier)
	if err != nil {
		return nil, fmt.Errorf("load external schema %s: %w", identifier, err)
	}
	return f, nil
}

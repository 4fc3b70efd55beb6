// Package schemafile implements SchemaFile and Store, grounded on
// original_source's model.normalization.SchemaFile and SchemaStore. Both
// types share one Go package (rather than the two internal/schemafile and
// internal/schemastore packages SPEC_FULL.md first sketches) because the
// originals reference each other directly — SchemaFile.getLoadedFile calls
// into Store, Store.getLoadedFile constructs a SchemaFile — and Go does not
// allow that cycle across package boundaries the way Java's single
// model.normalization package does.
package schemafile

import (
	"context"
	"fmt"

	joerrors "github.com/go-jsonschema/normalize/errors"
	"github.com/go-jsonschema/normalize/internal/draftmodel"
	"github.com/go-jsonschema/normalize/internal/fetchcache"
	"github.com/go-jsonschema/normalize/internal/jsonvalue"
	"github.com/go-jsonschema/normalize/internal/uri"
)

// SchemaFile encapsulates one loaded JSON Schema document: its resolved
// identifier, parsed content, declared draft, and a resolution-scope stack
// for the Normalizer to push/pop while it walks the document.
type SchemaFile struct {
	identifier string
	content    *jsonvalue.Value
	draft      draftmodel.Draft
	store      *Store
	scopeStack []string
}

// Load fetches (cache-first, then network per store's policy) the document
// at id, derives its draft, resolves any declared id keyword against id
// (adopting it as the file's true identifier, per setIdFromSchema), and
// returns the new SchemaFile. It does not register the file with store;
// callers use Store.GetLoaded for that.
func Load(ctx context.Context, loader *fetchcache.Loader, id string, store *Store) (*SchemaFile, error) {
	doc, err := loader.Load(ctx, id, store.RepositoryKind, store.AllowRemote)
	if err != nil {
		return nil, joerrors.Wrap(joerrors.InvalidIdentifier, id, err)
	}
	return FromContent(id, doc, store)
}

// FromContent builds a SchemaFile directly from an already-parsed document,
// without going through the fetch loader: it derives the draft, validates
// structure, and adopts any declared id keyword exactly as Load does. Used
// to wrap the Normalizer's root document, which arrives pre-parsed.
func FromContent(id string, doc *jsonvalue.Value, store *Store) (*SchemaFile, error) {
	draft := draftmodel.Detect(doc)
	if err := draftmodel.ValidateStructure(doc); err != nil {
		return nil, joerrors.Wrap(joerrors.DraftValidation, id, err)
	}

	sf := &SchemaFile{identifier: id, content: doc, draft: draft, store: store}
	if err := sf.setIdFromSchema(); err != nil {
		return nil, err
	}
	return sf, nil
}

// setIdFromSchema adopts the document's own id keyword, resolved against
// the loading identifier and stripped of its fragment, as the file's
// identifier — matching SchemaFile.setIdFromSchema exactly.
func (f *SchemaFile) setIdFromSchema() error {
	idKeyword := draftmodel.IDKeyword(f.draft)
	declared := f.content.Get(idKeyword)
	if !declared.IsString() || declared.StringValue() == "" {
		return nil
	}

	resolved, err := uri.Resolve(f.identifier, declared.StringValue())
	if err != nil {
		return joerrors.Wrap(joerrors.InvalidIdentifier, f.identifier, fmt.Errorf("resolve declared id: %w", err))
	}
	f.identifier = uri.RemoveFragment(resolved)
	return nil
}

// Identifier returns the file's resolved absolute identifier.
func (f *SchemaFile) Identifier() string { return f.identifier }

// Content returns the parsed document tree.
func (f *SchemaFile) Content() *jsonvalue.Value { return f.content }

// Draft returns the file's derived draft.
func (f *SchemaFile) Draft() draftmodel.Draft { return f.draft }

// Root returns the identifier of the store's root file.
func (f *SchemaFile) Root() string { return f.store.RootID }

// CurrentScope returns the active resolution scope: the top of the scope
// stack, or the file's own identifier if the stack is empty, matching
// SchemaFile.getResScope.
func (f *SchemaFile) CurrentScope() string {
	if len(f.scopeStack) == 0 {
		return f.identifier
	}
	return f.scopeStack[len(f.scopeStack)-1]
}

// PushScope resolves scope against the current scope and pushes it,
// stripping any bare trailing "#" marker, matching SchemaFile.setResScope.
// An empty scope re-pushes the current scope unchanged (an object entered
// without its own id keyword still balances a later PopScope).
func (f *SchemaFile) PushScope(scope string) error {
	if scope == "" {
		f.scopeStack = append(f.scopeStack, f.CurrentScope())
		return nil
	}
	resolved, err := uri.Resolve(f.CurrentScope(), scope)
	if err != nil {
		return joerrors.Wrap(joerrors.InvalidIdentifier, f.identifier, fmt.Errorf("resolve scope %q: %w", scope, err))
	}
	f.scopeStack = append(f.scopeStack, uri.RemoveTrailingHash(resolved))
	return nil
}

// PopScope pops and returns the current scope, matching SchemaFile.oneScopeUp.
func (f *SchemaFile) PopScope() string {
	if len(f.scopeStack) == 0 {
		return f.identifier
	}
	top := f.scopeStack[len(f.scopeStack)-1]
	f.scopeStack = f.scopeStack[:len(f.scopeStack)-1]
	return top
}

// RelativeIdentifier renders f's identifier relative to rootID, matching
// SchemaFile.getRelIdentifier.
func (f *SchemaFile) RelativeIdentifier(rootID string) string {
	return uri.Relativize(f.identifier, rootID)
}

// Equal compares two SchemaFiles by identifier only, matching
// SchemaFile.equals.
func (f *SchemaFile) Equal(other *SchemaFile) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.identifier == other.identifier
}

// String implements fmt.Stringer.
func (f *SchemaFile) String() string { return f.identifier }

// GetLoaded resolves identifier against f's current scope and delegates to
// the shared Store, matching SchemaFile.getLoadedFile.
func (f *SchemaFile) GetLoaded(ctx context.Context, loader *fetchcache.Loader, identifier string) (*SchemaFile, error) {
	resolved, err := uri.Resolve(f.CurrentScope(), identifier)
	if err != nil {
		return nil, joerrors.Wrap(joerrors.InvalidIdentifier, f.identifier, fmt.Errorf("resolve ref %q: %w", identifier, err))
	}
	return f.store.GetLoaded(ctx, loader, resolved)
}

// ABOUTME: Generic contract every entity repository satisfies.
// ABOUTME: Uniform CRUD/query/subscribe surface consumed by feature code.
package repository

import (
	"context"

	"github.com/repset/repset/internal/docstore"
)

// DefaultLimit caps filtered reads whose caller did not set a limit,
// guarding against unbounded result sets.
const DefaultLimit = 20

// Entity is anything storable through the repository layer. Pointer
// entity types embedding models.Meta satisfy it.
type Entity interface {
	GetID() string
	SetID(id string)
}

// Cursor is an opaque pagination token: resume strictly after the
// document it denotes. It is only valid when re-supplied to the same
// predicates and ordering that produced it.
type Cursor struct {
	snap *docstore.Snapshot
}

// Valid reports whether the cursor points at a document.
func (c Cursor) Valid() bool { return c.snap != nil }

// Filter configures GetByFilter. Where predicates are ANDed. A
// non-positive Limit falls back to DefaultLimit.
type Filter struct {
	Where   []docstore.Where
	OrderBy []docstore.Order
	Limit   int
	After   Cursor
}

// Repository is the contract all entity repositories expose. P is the
// pointer entity type, e.g. *models.User.
//
// Get distinguishes not-found (ok=false, nil error) from failure. Every
// failure is an *Error tagged with the repository identity; transport
// causes are wrapped, never surfaced raw.
type Repository[P Entity] interface {
	// Name identifies the repository in errors and logs.
	Name() string

	// Exists reports whether a document exists at id.
	Exists(ctx context.Context, id string) (bool, error)

	// NewID returns a fresh store-generated document id. No network
	// round-trip is involved.
	NewID() string

	// Get fetches one document. ok is false when id does not exist.
	Get(ctx context.Context, id string) (entity P, ok bool, err error)

	// GetByFilter runs a filtered, ordered, limited read. The returned
	// cursor resumes after the last result under the same filter.
	GetByFilter(ctx context.Context, f Filter) ([]P, Cursor, error)

	// GetMany fetches all documents for the given ids, chunking lookups
	// under the store's per-query id cardinality cap. Result order does
	// not follow input order. With no ids it returns the whole
	// collection. The input slice is never modified.
	GetMany(ctx context.Context, ids ...string) ([]P, error)

	// Create writes a new document. An id already present on the entity
	// is used as the document key after a best-effort existence probe;
	// otherwise a fresh id is generated. Returns the stored entity.
	Create(ctx context.Context, entity P, opts ...WriteOption) (P, error)

	// Update applies a partial update to the top-level fields named in
	// data and re-stamps the modification timestamp. Without WithMerge
	// the target must already exist. Returns the post-update document
	// (not guaranteed fresh for offline writes).
	Update(ctx context.Context, id string, data map[string]any, opts ...WriteOption) (P, error)

	// Upsert is Update with merge semantics always on.
	Upsert(ctx context.Context, id string, data map[string]any, opts ...WriteOption) (P, error)

	// Delete removes the document permanently.
	Delete(ctx context.Context, id string, opts ...WriteOption) error

	// SubscribeToDocument invokes fn with the current state immediately,
	// then after every change; ok is false when the document is absent.
	// The returned stop function is idempotent.
	SubscribeToDocument(id string, fn func(entity P, ok bool)) (stop func(), err error)

	// SubscribeToCollection is the collection-wide equivalent.
	SubscribeToCollection(fn func(entities []P)) (stop func(), err error)
}

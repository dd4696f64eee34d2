// ABOUTME: Backing document store contract consumed by the repository engine.
// ABOUTME: Hierarchical collections of schemaless docs with queries and watch push.
package docstore

import (
	"context"
	"errors"
)

// Doc is one schemaless document payload as stored on the wire.
// Values are plain JSON-ish types plus Timestamp for native time values.
type Doc = map[string]any

// InLimit is the maximum number of values the store accepts for a single
// "in" predicate. Callers needing more must chunk their queries.
const InLimit = 10

// Reserved bookkeeping fields, present on every document. Set exclusively
// by the repository engine, read-only for callers.
const (
	CreatedAtKey  = "_createdAt"
	ModifiedAtKey = "_modifiedAt"
)

// DocIDField is the pseudo-field addressing the document key in
// predicates and orderings, e.g. an "in" predicate over known ids.
const DocIDField = "__name__"

// ErrNotFound is returned by Get when no document exists at the given id.
var ErrNotFound = errors.New("document not found")

// Operator is a query comparison operator.
type Operator string

const (
	OpEqual          Operator = "=="
	OpNotEqual       Operator = "!="
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpIn             Operator = "in"
	OpArrayContains  Operator = "array-contains"
)

// Where is one field predicate. Predicates in a query are ANDed together.
type Where struct {
	Field string
	Op    Operator
	Value any
}

// Order is one ordering clause.
type Order struct {
	Field string
	Desc  bool
}

// Query describes a filtered, ordered, limited read over one collection.
// StartAfter resumes strictly after the given snapshot; it is only
// meaningful when re-supplied to the same predicates and ordering that
// produced the snapshot.
type Query struct {
	Where      []Where
	OrderBy    []Order
	Limit      int
	StartAfter *Snapshot
}

// Snapshot is one document as read from the store: its key plus wire data.
type Snapshot struct {
	ID   string
	Data Doc
}

// Store is a hierarchical document store. Collection resolves a path of
// alternating collection/document segments, e.g. ("users") or
// ("users", uid, "workouts"). Paths must have an odd segment count.
type Store interface {
	Collection(path ...string) (Collection, error)
	// NewID returns a fresh document id without a network round-trip.
	NewID() string
	Close() error
}

// Collection exposes per-document CRUD, queries and live watches for one
// collection. Get returns ErrNotFound when the id does not exist; Update
// fails with ErrNotFound when the target is missing, while Set with
// merge=false replaces and with merge=true recursively merges.
type Collection interface {
	Path() string
	Get(ctx context.Context, id string) (*Snapshot, error)
	Exists(ctx context.Context, id string) (bool, error)
	Set(ctx context.Context, id string, data Doc, merge bool) error
	Update(ctx context.Context, id string, data Doc) error
	Delete(ctx context.Context, id string) error
	Run(ctx context.Context, q Query) ([]*Snapshot, error)

	// WatchDoc invokes fn with the current snapshot (nil when absent) and
	// again after every change, in order, until the returned stop function
	// is called. The stop function is idempotent.
	WatchDoc(id string, fn func(*Snapshot)) (stop func(), err error)
	// Watch is the collection-wide equivalent: fn receives the full
	// current contents on registration and after every mutation.
	Watch(fn func([]*Snapshot)) (stop func(), err error)
}

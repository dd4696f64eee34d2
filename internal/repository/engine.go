// ABOUTME: Generic document repository engine implementing the Repository contract.
// ABOUTME: Owns sanitization, timestamp stamping, chunked multi-get, cursors, offline writes.
package repository

import (
	"context"
	"log"
	"time"

	"github.com/repset/repset/internal/docstore"
	"github.com/repset/repset/internal/docstore/normalize"
	"github.com/repset/repset/internal/docstore/offline"
)

// Ptr constrains P to a pointer entity type for T.
type Ptr[T any] interface {
	*T
	Entity
}

// Repo is the concrete engine behind every entity repository. Construct
// one per entity and pass it down explicitly; there is no package-level
// instance state.
type Repo[T any, P Ptr[T]] struct {
	name   string
	store  docstore.Store
	pathFn func() ([]string, error)
	queue  *offline.Queue
}

// New creates a repository bound to a fixed collection path.
func New[T any, P Ptr[T]](name string, store docstore.Store, path ...string) *Repo[T, P] {
	segs := append([]string(nil), path...)
	return &Repo[T, P]{
		name:   name,
		store:  store,
		pathFn: func() ([]string, error) { return segs, nil },
	}
}

// NewScoped creates a repository whose collection path is resolved per
// operation, for sub-collections under a runtime-supplied parent. The
// resolver fails until the parent id is bound.
func NewScoped[T any, P Ptr[T]](name string, store docstore.Store, pathFn func() ([]string, error)) *Repo[T, P] {
	return &Repo[T, P]{name: name, store: store, pathFn: pathFn}
}

// WithQueue attaches the offline write queue used by WithOffline writes.
func (r *Repo[T, P]) WithQueue(q *offline.Queue) *Repo[T, P] {
	r.queue = q
	return r
}

// Name identifies the repository in errors and logs.
func (r *Repo[T, P]) Name() string { return r.name }

// Store exposes the backing store, for wiring sibling scoped repositories.
func (r *Repo[T, P]) Store() docstore.Store { return r.store }

func (r *Repo[T, P]) fail(op string, err error) *Error {
	return &Error{Repo: r.name, Op: op, Err: err}
}

func (r *Repo[T, P]) collection() (docstore.Collection, []string, error) {
	path, err := r.pathFn()
	if err != nil {
		return nil, nil, err
	}
	coll, err := r.store.Collection(path...)
	if err != nil {
		return nil, nil, err
	}
	return coll, path, nil
}

func (r *Repo[T, P]) decode(snap *docstore.Snapshot) (P, error) {
	entity := P(new(T))
	if err := normalize.Decode(snap, entity); err != nil {
		return nil, err
	}
	entity.SetID(snap.ID)
	return entity, nil
}

// Exists reports whether a document exists at id.
func (r *Repo[T, P]) Exists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, r.fail("exists", ErrEmptyID)
	}
	coll, _, err := r.collection()
	if err != nil {
		return false, r.fail("exists", err)
	}
	ok, err := coll.Exists(ctx, id)
	if err != nil {
		return false, r.fail("exists", err)
	}
	return ok, nil
}

// NewID returns a fresh store-generated id without a network round-trip.
func (r *Repo[T, P]) NewID() string { return r.store.NewID() }

// Get fetches one document; ok is false when the id does not exist.
func (r *Repo[T, P]) Get(ctx context.Context, id string) (P, bool, error) {
	if id == "" {
		return nil, false, r.fail("get", ErrEmptyID)
	}
	coll, _, err := r.collection()
	if err != nil {
		return nil, false, r.fail("get", err)
	}
	snap, err := coll.Get(ctx, id)
	if err == docstore.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, r.fail("get", err)
	}
	entity, err := r.decode(snap)
	if err != nil {
		return nil, false, r.fail("get", err)
	}
	return entity, true, nil
}

// GetByFilter runs a filtered read. Results respect the ordering exactly
// and never exceed the limit; the returned cursor resumes strictly after
// the last result when re-supplied with the identical filter.
func (r *Repo[T, P]) GetByFilter(ctx context.Context, f Filter) ([]P, Cursor, error) {
	coll, _, err := r.collection()
	if err != nil {
		return nil, Cursor{}, r.fail("getByFilter", err)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	snaps, err := coll.Run(ctx, docstore.Query{
		Where:      f.Where,
		OrderBy:    f.OrderBy,
		Limit:      limit,
		StartAfter: f.After.snap,
	})
	if err != nil {
		return nil, Cursor{}, r.fail("getByFilter", err)
	}
	entities := make([]P, 0, len(snaps))
	for _, snap := range snaps {
		entity, err := r.decode(snap)
		if err != nil {
			return nil, Cursor{}, r.fail("getByFilter", err)
		}
		entities = append(entities, entity)
	}
	var next Cursor
	if len(snaps) > 0 {
		next = Cursor{snap: snaps[len(snaps)-1]}
	}
	return entities, next, nil
}

// GetMany fetches the documents for the given ids, or the entire
// collection when none are given. Lookups are chunked so no single query
// exceeds the store's id-cardinality cap; the caller's slice is copied
// before chunking and never modified. Result order across chunks does
// not follow input order.
func (r *Repo[T, P]) GetMany(ctx context.Context, ids ...string) ([]P, error) {
	coll, _, err := r.collection()
	if err != nil {
		return nil, r.fail("getMany", err)
	}

	if len(ids) == 0 {
		snaps, err := coll.Run(ctx, docstore.Query{})
		if err != nil {
			return nil, r.fail("getMany", err)
		}
		return r.decodeAll(snaps)
	}

	remaining := append([]string(nil), ids...)
	var entities []P
	for len(remaining) > 0 {
		n := min(len(remaining), docstore.InLimit)
		chunk := remaining[:n]
		remaining = remaining[n:]

		snaps, err := coll.Run(ctx, docstore.Query{
			Where: []docstore.Where{{Field: docstore.DocIDField, Op: docstore.OpIn, Value: toAny(chunk)}},
		})
		if err != nil {
			return nil, r.fail("getMany", err)
		}
		decoded, err := r.decodeAll(snaps)
		if err != nil {
			return nil, err
		}
		entities = append(entities, decoded...)
	}
	return entities, nil
}

func (r *Repo[T, P]) decodeAll(snaps []*docstore.Snapshot) ([]P, error) {
	entities := make([]P, 0, len(snaps))
	for _, snap := range snaps {
		entity, err := r.decode(snap)
		if err != nil {
			return nil, r.fail("decode", err)
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// Create writes a new document. An id already carried by the entity is
// reused as the document key, guarded by a best-effort existence probe:
// a probe hit fails with ErrExists, while a probe failure proceeds with
// the write, leaving the real conflict check to the backend's own
// create-vs-overwrite rules.
func (r *Repo[T, P]) Create(ctx context.Context, entity P, opts ...WriteOption) (P, error) {
	cfg := applyOptions(opts)
	coll, path, err := r.collection()
	if err != nil {
		return nil, r.fail("create", err)
	}

	id := entity.GetID()
	if id == "" {
		id = r.store.NewID()
	} else {
		exists, probeErr := coll.Exists(ctx, id)
		if probeErr != nil {
			log.Printf("repository %s: create probe for %s failed, proceeding: %v", r.name, id, probeErr)
		} else if exists {
			return nil, r.fail("create", ErrExists)
		}
	}

	data, err := normalize.Encode(entity)
	if err != nil {
		return nil, r.fail("create", err)
	}
	data = normalize.ToStorageDoc(data)
	now := time.Now()
	normalize.StampTimes(data, &now, now)

	if cfg.offline {
		if err := r.enqueue(offline.Write{Path: path, ID: id, Op: offline.OpSet, Data: data}); err != nil {
			return nil, r.fail("create", err)
		}
		entity.SetID(id)
		return entity, nil
	}

	if err := coll.Set(ctx, id, data, false); err != nil {
		return nil, r.fail("create", err)
	}
	stored, ok, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, r.fail("create", docstore.ErrNotFound)
	}
	return stored, nil
}

// Update applies a partial update and re-stamps the modification
// timestamp. Without WithMerge the target document must already exist
// and only the named top-level fields are replaced; with WithMerge the
// update merges recursively and creates the document when missing. The
// returned snapshot is fetched after the write when online; offline it
// is the last locally known state and may be stale or nil.
func (r *Repo[T, P]) Update(ctx context.Context, id string, data map[string]any, opts ...WriteOption) (P, error) {
	return r.update(ctx, "update", id, data, applyOptions(opts))
}

// Upsert is Update with merge semantics always on.
func (r *Repo[T, P]) Upsert(ctx context.Context, id string, data map[string]any, opts ...WriteOption) (P, error) {
	cfg := applyOptions(opts)
	cfg.merge = true
	return r.update(ctx, "upsert", id, data, cfg)
}

func (r *Repo[T, P]) update(ctx context.Context, op, id string, data map[string]any, cfg writeConfig) (P, error) {
	if id == "" {
		return nil, r.fail(op, ErrEmptyID)
	}
	coll, path, err := r.collection()
	if err != nil {
		return nil, r.fail(op, err)
	}

	payload := normalize.ToStorageDoc(docstore.Doc(data))
	delete(payload, normalize.IDKey)
	delete(payload, docstore.CreatedAtKey)
	normalize.StampTimes(payload, nil, time.Now())

	if cfg.offline {
		qop := offline.OpUpdate
		if cfg.merge {
			qop = offline.OpSet
		}
		if err := r.enqueue(offline.Write{Path: path, ID: id, Op: qop, Data: payload, Merge: cfg.merge}); err != nil {
			return nil, r.fail(op, err)
		}
		stale, _, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return stale, nil
	}

	if cfg.merge {
		err = coll.Set(ctx, id, payload, true)
	} else {
		err = coll.Update(ctx, id, payload)
	}
	if err != nil {
		return nil, r.fail(op, err)
	}

	stored, ok, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, r.fail(op, docstore.ErrNotFound)
	}
	return stored, nil
}

// Delete removes the document permanently. No tombstone is written.
func (r *Repo[T, P]) Delete(ctx context.Context, id string, opts ...WriteOption) error {
	if id == "" {
		return r.fail("delete", ErrEmptyID)
	}
	cfg := applyOptions(opts)
	coll, path, err := r.collection()
	if err != nil {
		return r.fail("delete", err)
	}
	if cfg.offline {
		if err := r.enqueue(offline.Write{Path: path, ID: id, Op: offline.OpDelete}); err != nil {
			return r.fail("delete", err)
		}
		return nil
	}
	if err := coll.Delete(ctx, id); err != nil {
		return r.fail("delete", err)
	}
	return nil
}

func (r *Repo[T, P]) enqueue(w offline.Write) error {
	if r.queue == nil {
		return ErrNoOfflineQueue
	}
	return r.queue.Enqueue(w)
}

// SubscribeToDocument registers a live listener on one document. fn runs
// immediately with the current state and again on every change; ok is
// false while the document is absent. Undecodable snapshots are logged
// and skipped. The returned stop function is idempotent.
func (r *Repo[T, P]) SubscribeToDocument(id string, fn func(P, bool)) (func(), error) {
	if id == "" {
		return nil, r.fail("subscribeToDocument", ErrEmptyID)
	}
	coll, _, err := r.collection()
	if err != nil {
		return nil, r.fail("subscribeToDocument", err)
	}
	stop, err := coll.WatchDoc(id, func(snap *docstore.Snapshot) {
		if snap == nil {
			var zero P
			fn(zero, false)
			return
		}
		entity, err := r.decode(snap)
		if err != nil {
			log.Printf("repository %s: skipping undecodable document %s: %v", r.name, snap.ID, err)
			return
		}
		fn(entity, true)
	})
	if err != nil {
		return nil, r.fail("subscribeToDocument", err)
	}
	return stop, nil
}

// SubscribeToCollection registers a live listener over the whole
// collection; fn receives the full current contents on registration and
// after every mutation.
func (r *Repo[T, P]) SubscribeToCollection(fn func([]P)) (func(), error) {
	coll, _, err := r.collection()
	if err != nil {
		return nil, r.fail("subscribeToCollection", err)
	}
	stop, err := coll.Watch(func(snaps []*docstore.Snapshot) {
		entities := make([]P, 0, len(snaps))
		for _, snap := range snaps {
			entity, err := r.decode(snap)
			if err != nil {
				log.Printf("repository %s: skipping undecodable document %s: %v", r.name, snap.ID, err)
				continue
			}
			entities = append(entities, entity)
		}
		fn(entities)
	})
	if err != nil {
		return nil, r.fail("subscribeToCollection", err)
	}
	return stop, nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// ABOUTME: In-memory implementation of the docstore contract.
// ABOUTME: Mutex-guarded, insertion-ordered, deep-copying, with watch fan-out.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/repset/repset/internal/docstore"
)

// Store keeps all collections in process memory. It implements the full
// docstore contract, including the 10-value "in" cap, so the repository
// engine behaves identically against it and the production backend.
type Store struct {
	mu   sync.RWMutex
	cols map[string]*col

	// notifyMu serializes watcher callbacks so each subscriber observes
	// changes in a strict order.
	notifyMu sync.Mutex
}

type col struct {
	docs     map[string]docstore.Doc
	order    []string
	watchers map[int]*watcher
	nextID   int
}

type watcher struct {
	docID string // empty for collection watchers
	docFn func(*docstore.Snapshot)
	colFn func([]*docstore.Snapshot)
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{cols: make(map[string]*col)}
}

// Collection resolves a hierarchical path. Paths alternate collection and
// document segments and must end on a collection (odd segment count).
func (s *Store) Collection(path ...string) (docstore.Collection, error) {
	if len(path) == 0 || len(path)%2 == 0 {
		return nil, fmt.Errorf("invalid collection path %q: need odd segment count", strings.Join(path, "/"))
	}
	for _, seg := range path {
		if seg == "" {
			return nil, fmt.Errorf("invalid collection path %q: empty segment", strings.Join(path, "/"))
		}
	}
	return &collection{store: s, path: strings.Join(path, "/")}, nil
}

// NewID returns a fresh unique document id. No network involved.
func (s *Store) NewID() string {
	return uuid.NewString()
}

// Close releases nothing but satisfies the Store contract.
func (s *Store) Close() error { return nil }

func (s *Store) col(path string) *col {
	c, ok := s.cols[path]
	if !ok {
		c = &col{docs: make(map[string]docstore.Doc), watchers: make(map[int]*watcher)}
		s.cols[path] = c
	}
	return c
}

type collection struct {
	store *Store
	path  string
}

func (c *collection) Path() string { return c.path }

func (c *collection) Get(_ context.Context, id string) (*docstore.Snapshot, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	cc, ok := c.store.cols[c.path]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	d, ok := cc.docs[id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return &docstore.Snapshot{ID: id, Data: copyDoc(d)}, nil
}

func (c *collection) Exists(ctx context.Context, id string) (bool, error) {
	_, err := c.Get(ctx, id)
	if err == docstore.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *collection) Set(_ context.Context, id string, data docstore.Doc, merge bool) error {
	c.store.mu.Lock()
	cc := c.store.col(c.path)
	existing, ok := cc.docs[id]
	switch {
	case ok && merge:
		cc.docs[id] = mergeDoc(existing, copyDoc(data))
	default:
		if !ok {
			cc.order = append(cc.order, id)
		}
		cc.docs[id] = copyDoc(data)
	}
	c.store.mu.Unlock()

	c.store.notify(c.path)
	return nil
}

func (c *collection) Update(_ context.Context, id string, data docstore.Doc) error {
	c.store.mu.Lock()
	cc := c.store.col(c.path)
	existing, ok := cc.docs[id]
	if !ok {
		c.store.mu.Unlock()
		return docstore.ErrNotFound
	}
	for k, v := range copyDoc(data) {
		existing[k] = v
	}
	c.store.mu.Unlock()

	c.store.notify(c.path)
	return nil
}

func (c *collection) Delete(_ context.Context, id string) error {
	c.store.mu.Lock()
	cc := c.store.col(c.path)
	if _, ok := cc.docs[id]; ok {
		delete(cc.docs, id)
		for i, existing := range cc.order {
			if existing == id {
				cc.order = append(cc.order[:i], cc.order[i+1:]...)
				break
			}
		}
	}
	c.store.mu.Unlock()

	c.store.notify(c.path)
	return nil
}

func (c *collection) Run(_ context.Context, q docstore.Query) ([]*docstore.Snapshot, error) {
	for _, w := range q.Where {
		if w.Op == docstore.OpIn {
			if n := inLen(w.Value); n > docstore.InLimit {
				return nil, fmt.Errorf("in predicate on %q has %d values, max %d", w.Field, n, docstore.InLimit)
			}
		}
	}

	c.store.mu.RLock()
	matched := c.snapshotMatches(q.Where)
	c.store.mu.RUnlock()

	sortSnapshots(matched, q.OrderBy)

	if q.StartAfter != nil {
		matched = afterCursor(matched, q.StartAfter, q.OrderBy)
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

// snapshotMatches copies every matching doc in insertion order. Caller
// must hold at least a read lock.
func (c *collection) snapshotMatches(where []docstore.Where) []*docstore.Snapshot {
	cc, ok := c.store.cols[c.path]
	if !ok {
		return nil
	}
	var out []*docstore.Snapshot
	for _, id := range cc.order {
		d := cc.docs[id]
		if matches(id, d, where) {
			out = append(out, &docstore.Snapshot{ID: id, Data: copyDoc(d)})
		}
	}
	return out
}

func (c *collection) WatchDoc(id string, fn func(*docstore.Snapshot)) (func(), error) {
	if fn == nil {
		return nil, fmt.Errorf("watch %s/%s: nil callback", c.path, id)
	}
	stop := c.register(&watcher{docID: id, docFn: fn})

	// Initial callback with current state, under the notify lock so it
	// cannot race a concurrent mutation's fan-out.
	c.store.notifyMu.Lock()
	snap, err := c.Get(context.Background(), id)
	if err == docstore.ErrNotFound {
		snap = nil
	}
	fn(snap)
	c.store.notifyMu.Unlock()
	return stop, nil
}

func (c *collection) Watch(fn func([]*docstore.Snapshot)) (func(), error) {
	if fn == nil {
		return nil, fmt.Errorf("watch %s: nil callback", c.path)
	}
	stop := c.register(&watcher{colFn: fn})

	c.store.notifyMu.Lock()
	c.store.mu.RLock()
	all := c.snapshotMatches(nil)
	c.store.mu.RUnlock()
	fn(all)
	c.store.notifyMu.Unlock()
	return stop, nil
}

func (c *collection) register(w *watcher) func() {
	c.store.mu.Lock()
	cc := c.store.col(c.path)
	id := cc.nextID
	cc.nextID++
	cc.watchers[id] = w
	c.store.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.store.mu.Lock()
			delete(cc.watchers, id)
			c.store.mu.Unlock()
		})
	}
}

// notify fans a mutation out to every watcher of the collection. Runs
// after the data lock is released; notifyMu keeps deliveries ordered.
func (s *Store) notify(path string) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.RLock()
	cc, ok := s.cols[path]
	if !ok {
		s.mu.RUnlock()
		return
	}
	watchers := make([]*watcher, 0, len(cc.watchers))
	for _, w := range cc.watchers {
		watchers = append(watchers, w)
	}
	var all []*docstore.Snapshot
	for _, id := range cc.order {
		all = append(all, &docstore.Snapshot{ID: id, Data: copyDoc(cc.docs[id])})
	}
	s.mu.RUnlock()

	for _, w := range watchers {
		if w.colFn != nil {
			w.colFn(all)
			continue
		}
		var snap *docstore.Snapshot
		for _, candidate := range all {
			if candidate.ID == w.docID {
				snap = candidate
				break
			}
		}
		w.docFn(snap)
	}
}

// --- query evaluation ---

func matches(id string, d docstore.Doc, where []docstore.Where) bool {
	for _, w := range where {
		if !matchOne(fieldValue(id, d, w.Field), w) {
			return false
		}
	}
	return true
}

// fieldValue resolves a predicate/order field against a document; the
// pseudo-field DocIDField addresses the document key itself.
func fieldValue(id string, d docstore.Doc, field string) any {
	if field == docstore.DocIDField {
		return id
	}
	return d[field]
}

func matchOne(field any, w docstore.Where) bool {
	switch w.Op {
	case docstore.OpIn:
		for _, candidate := range inValues(w.Value) {
			if cmp, ok := compare(field, candidate); ok && cmp == 0 {
				return true
			}
		}
		return false
	case docstore.OpArrayContains:
		list, ok := field.([]any)
		if !ok {
			return false
		}
		for _, item := range list {
			if cmp, ok := compare(item, w.Value); ok && cmp == 0 {
				return true
			}
		}
		return false
	}

	cmp, ok := compare(field, w.Value)
	if !ok {
		return false
	}
	switch w.Op {
	case docstore.OpEqual:
		return cmp == 0
	case docstore.OpNotEqual:
		return cmp != 0
	case docstore.OpLess:
		return cmp < 0
	case docstore.OpLessOrEqual:
		return cmp <= 0
	case docstore.OpGreater:
		return cmp > 0
	case docstore.OpGreaterOrEqual:
		return cmp >= 0
	}
	return false
}

func inValues(v any) []any {
	switch vals := v.(type) {
	case []any:
		return vals
	case []string:
		out := make([]any, len(vals))
		for i, s := range vals {
			out[i] = s
		}
		return out
	default:
		return []any{v}
	}
}

func inLen(v any) int {
	return len(inValues(v))
}

func sortSnapshots(snaps []*docstore.Snapshot, orderBy []docstore.Order) {
	if len(orderBy) == 0 {
		return
	}
	sort.SliceStable(snaps, func(i, j int) bool {
		for _, o := range orderBy {
			cmp, ok := compare(fieldValue(snaps[i].ID, snaps[i].Data, o.Field), fieldValue(snaps[j].ID, snaps[j].Data, o.Field))
			if !ok || cmp == 0 {
				continue
			}
			if o.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

// afterCursor drops everything up to and including the cursor snapshot.
// Matching is by document id; if the cursor document no longer exists the
// order-key values locate the resume point instead.
func afterCursor(snaps []*docstore.Snapshot, cursor *docstore.Snapshot, orderBy []docstore.Order) []*docstore.Snapshot {
	for i, s := range snaps {
		if s.ID == cursor.ID {
			return snaps[i+1:]
		}
	}
	for i, s := range snaps {
		if orderAfter(s, cursor, orderBy) {
			return snaps[i:]
		}
	}
	return nil
}

func orderAfter(s, cursor *docstore.Snapshot, orderBy []docstore.Order) bool {
	for _, o := range orderBy {
		cmp, ok := compare(fieldValue(s.ID, s.Data, o.Field), fieldValue(cursor.ID, cursor.Data, o.Field))
		if !ok || cmp == 0 {
			continue
		}
		if o.Desc {
			return cmp < 0
		}
		return cmp > 0
	}
	return false
}

// compare orders two field values of the same general kind. ok is false
// for incomparable pairs (mixed kinds, unsupported types).
func compare(a, b any) (int, bool) {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0, true
		case a == nil:
			return -1, true
		default:
			return 1, true
		}
	}

	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		default:
			return 1, true
		}
	case time.Time:
		bv, ok := toTime(b)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	case docstore.Timestamp:
		bv, ok := toTime(b)
		if !ok {
			return 0, false
		}
		return av.Time().Compare(bv), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case docstore.Timestamp:
		return t.Time(), true
	}
	return time.Time{}, false
}

// --- document copying and merging ---

func copyDoc(d docstore.Doc) docstore.Doc {
	return copyValue(map[string]any(d)).(map[string]any)
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = copyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}

// mergeDoc recursively folds src into dst: nested maps merge, everything
// else replaces. dst is modified and returned.
func mergeDoc(dst, src docstore.Doc) docstore.Doc {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				dst[k] = mergeDoc(existing, sub)
				continue
			}
		}
		dst[k] = v
	}
	return dst
}

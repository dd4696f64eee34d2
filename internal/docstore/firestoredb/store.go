// ABOUTME: Firestore-backed implementation of the docstore contract.
// ABOUTME: Maps queries, merge writes, id predicates and snapshot listeners onto the client.
package firestoredb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/repset/repset/internal/docstore"
)

// Store implements docstore.Store over a Firestore client.
type Store struct {
	client *firestore.Client
}

// Open connects to the project's Firestore database. credentialsFile may
// be empty, in which case application-default credentials apply.
func Open(ctx context.Context, projectID, credentialsFile string) (*Store, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to firestore: %w", err)
	}
	return &Store{client: client}, nil
}

// Collection resolves an odd-length path of alternating collection and
// document segments.
func (s *Store) Collection(path ...string) (docstore.Collection, error) {
	if len(path) == 0 || len(path)%2 == 0 {
		return nil, fmt.Errorf("collection path must have an odd number of segments, got %d", len(path))
	}
	ref := s.client.Collection(path[0])
	for i := 1; i < len(path); i += 2 {
		ref = ref.Doc(path[i]).Collection(path[i+1])
	}
	return &collection{ref: ref}, nil
}

// NewID mints a client-side random document id, no round-trip involved.
func (s *Store) NewID() string {
	return s.client.Collection("ids").NewDoc().ID
}

// Close tears down the underlying gRPC connection.
func (s *Store) Close() error { return s.client.Close() }

type collection struct {
	ref *firestore.CollectionRef
}

func (c *collection) Path() string { return c.ref.Path }

func (c *collection) Get(ctx context.Context, id string) (*docstore.Snapshot, error) {
	snap, err := c.ref.Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toSnapshot(snap), nil
}

func (c *collection) Exists(ctx context.Context, id string) (bool, error) {
	_, err := c.ref.Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *collection) Set(ctx context.Context, id string, data docstore.Doc, merge bool) error {
	var opts []firestore.SetOption
	if merge {
		opts = append(opts, firestore.MergeAll)
	}
	_, err := c.ref.Doc(id).Set(ctx, encodeDoc(data), opts...)
	return err
}

func (c *collection) Update(ctx context.Context, id string, data docstore.Doc) error {
	updates := make([]firestore.Update, 0, len(data))
	for k, v := range data {
		// The id pseudo-field addresses the document key in predicates
		// and ordering; it is not a writable field.
		if k == docstore.DocIDField {
			return fmt.Errorf("field %q is not updatable", k)
		}
		updates = append(updates, firestore.Update{Path: k, Value: encodeValue(v)})
	}
	_, err := c.ref.Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return docstore.ErrNotFound
	}
	return err
}

func (c *collection) Delete(ctx context.Context, id string) error {
	_, err := c.ref.Doc(id).Delete(ctx)
	return err
}

func (c *collection) Run(ctx context.Context, q docstore.Query) ([]*docstore.Snapshot, error) {
	fq, err := c.buildQuery(ctx, q)
	if err != nil {
		return nil, err
	}
	raw, err := fq.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	snaps := make([]*docstore.Snapshot, 0, len(raw))
	for _, ds := range raw {
		snaps = append(snaps, toSnapshot(ds))
	}
	return snaps, nil
}

func (c *collection) buildQuery(ctx context.Context, q docstore.Query) (firestore.Query, error) {
	fq := c.ref.Query
	for _, w := range q.Where {
		fq = fq.Where(fieldPath(w.Field), string(w.Op), encodeValue(w.Value))
	}
	for _, o := range q.OrderBy {
		dir := firestore.Asc
		if o.Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(fieldPath(o.Field), dir)
	}
	if q.StartAfter != nil {
		// Cursor positioning needs the live document snapshot, so the
		// cursor document is re-fetched by id.
		ds, err := c.ref.Doc(q.StartAfter.ID).Get(ctx)
		if err != nil {
			return firestore.Query{}, fmt.Errorf("resolving cursor document %s: %w", q.StartAfter.ID, err)
		}
		fq = fq.StartAfter(ds)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}
	return fq, nil
}

func (c *collection) WatchDoc(id string, fn func(*docstore.Snapshot)) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	iter := c.ref.Doc(id).Snapshots(ctx)
	go func() {
		defer iter.Stop()
		for {
			ds, err := iter.Next()
			if err != nil {
				return
			}
			if !ds.Exists() {
				fn(nil)
				continue
			}
			fn(toSnapshot(ds))
		}
	}()
	var once sync.Once
	return func() { once.Do(cancel) }, nil
}

func (c *collection) Watch(fn func([]*docstore.Snapshot)) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	iter := c.ref.Query.Snapshots(ctx)
	go func() {
		defer iter.Stop()
		for {
			qs, err := iter.Next()
			if err != nil {
				return
			}
			raw, err := qs.Documents.GetAll()
			if err != nil {
				continue
			}
			snaps := make([]*docstore.Snapshot, 0, len(raw))
			for _, ds := range raw {
				snaps = append(snaps, toSnapshot(ds))
			}
			fn(snaps)
		}
	}()
	var once sync.Once
	return func() { once.Do(cancel) }, nil
}

// fieldPath maps the id pseudo-field onto Firestore's document-id
// sentinel; everything else passes through.
func fieldPath(field string) string {
	if field == docstore.DocIDField {
		return firestore.DocumentID
	}
	return field
}

func toSnapshot(ds *firestore.DocumentSnapshot) *docstore.Snapshot {
	return &docstore.Snapshot{ID: ds.Ref.ID, Data: decodeDoc(ds.Data())}
}

// encodeDoc converts wire timestamps into native Firestore time values so
// range queries and ordering on time fields behave.
func encodeDoc(d docstore.Doc) map[string]any {
	out := make(map[string]any, len(d))
	for k, v := range d {
		out[k] = encodeValue(v)
	}
	return out
}

func encodeValue(v any) any {
	switch t := v.(type) {
	case docstore.Timestamp:
		return t.Time()
	case *docstore.Timestamp:
		if t == nil {
			return nil
		}
		return t.Time()
	case docstore.Doc:
		return encodeDoc(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = encodeValue(e)
		}
		return out
	default:
		return v
	}
}

func decodeDoc(d map[string]any) docstore.Doc {
	out := make(docstore.Doc, len(d))
	for k, v := range d {
		out[k] = decodeValue(v)
	}
	return out
}

func decodeValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return docstore.NewTimestamp(t)
	case map[string]any:
		return decodeDoc(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = decodeValue(e)
		}
		return out
	default:
		return v
	}
}

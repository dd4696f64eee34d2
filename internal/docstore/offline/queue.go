// ABOUTME: Durable offline write queue backed by Badger.
// ABOUTME: Mutations enqueue locally and drain to the remote store on Flush.
package offline

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"
	"time"

	badger "github.com/dgraph-io/badger/v3"

	"github.com/repset/repset/internal/docstore"
	"github.com/repset/repset/internal/docstore/normalize"
)

// Op is the kind of queued mutation.
type Op string

const (
	OpSet    Op = "set"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Write is one queued mutation. Data is already sanitized and stamped by
// the repository engine before it reaches the queue.
type Write struct {
	Path     []string     `json:"path"`
	ID       string       `json:"id"`
	Op       Op           `json:"op"`
	Data     docstore.Doc `json:"data,omitempty"`
	Merge    bool         `json:"merge,omitempty"`
	QueuedAt time.Time    `json:"queuedAt"`
}

// Queue is a durable FIFO of pending writes. Enqueue returns as soon as
// the write is persisted locally; durability against the remote store is
// only reached after a successful Flush.
type Queue struct {
	db  *badger.DB
	seq *badger.Sequence
}

// Open opens (or creates) a queue at the given directory.
func Open(dir string) (*Queue, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	return open(opts)
}

// OpenInMemory opens a queue that lives only for the process lifetime.
func OpenInMemory() (*Queue, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	return open(opts)
}

func open(opts badger.Options) (*Queue, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open offline queue: %w", err)
	}
	seq, err := db.GetSequence([]byte("!seq"), 64)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open offline queue sequence: %w", err)
	}
	return &Queue{db: db, seq: seq}, nil
}

// Close releases the sequence and the underlying database.
func (q *Queue) Close() error {
	if err := q.seq.Release(); err != nil {
		_ = q.db.Close()
		return fmt.Errorf("release sequence: %w", err)
	}
	return q.db.Close()
}

// Enqueue appends a write to the queue.
func (q *Queue) Enqueue(w Write) error {
	if w.QueuedAt.IsZero() {
		w.QueuedAt = time.Now()
	}
	payload, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal queued write: %w", err)
	}
	n, err := q.seq.Next()
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	return q.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(n), payload)
	})
}

// Pending returns the number of writes waiting to be flushed.
func (q *Queue) Pending() (int, error) {
	count := 0
	err := q.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte("w/")})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count pending writes: %w", err)
	}
	return count, nil
}

// Flush applies queued writes to the store in enqueue order. A transport
// failure stops the drain and leaves the remaining entries queued for the
// next attempt. An update whose target no longer exists can never
// succeed, so it is logged and dropped.
func (q *Queue) Flush(ctx context.Context, store docstore.Store) error {
	for {
		w, k, ok, err := q.head()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if err := apply(ctx, store, w); err != nil {
			if err == docstore.ErrNotFound {
				log.Printf("offline: dropping update for missing %s/%s", joinPath(w.Path), w.ID)
			} else {
				return fmt.Errorf("apply queued write %s/%s: %w", joinPath(w.Path), w.ID, err)
			}
		}

		if err := q.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(k)
		}); err != nil {
			return fmt.Errorf("dequeue write: %w", err)
		}
	}
}

func (q *Queue) head() (Write, []byte, bool, error) {
	var (
		w     Write
		k     []byte
		found bool
	)
	err := q.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte("w/"), PrefetchValues: true})
		defer it.Close()
		it.Rewind()
		if !it.Valid() {
			return nil
		}
		item := it.Item()
		k = item.KeyCopy(nil)
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &w)
		})
	})
	if err != nil {
		return Write{}, nil, false, fmt.Errorf("read queue head: %w", err)
	}
	return w, k, found, nil
}

func apply(ctx context.Context, store docstore.Store, w Write) error {
	coll, err := store.Collection(w.Path...)
	if err != nil {
		return err
	}
	// The JSON round trip through Badger renders wire Timestamps as
	// RFC3339 text; re-sanitizing restores them so flushed documents
	// carry the same time representation as directly written ones.
	data := normalize.ToStorageDoc(w.Data)
	switch w.Op {
	case OpSet:
		return coll.Set(ctx, w.ID, data, w.Merge)
	case OpUpdate:
		return coll.Update(ctx, w.ID, data)
	case OpDelete:
		return coll.Delete(ctx, w.ID)
	default:
		return fmt.Errorf("unknown queued op %q", w.Op)
	}
}

func key(n uint64) []byte {
	k := make([]byte, 2+8)
	copy(k, "w/")
	binary.BigEndian.PutUint64(k[2:], n)
	return k
}

func joinPath(path []string) string {
	out := ""
	for i, seg := range path {
		if i > 0 {
			out += "/"
		}
		out += seg
	}
	return out
}

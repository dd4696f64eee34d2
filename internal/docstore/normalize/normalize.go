// ABOUTME: Bidirectional conversion between wire documents and application values.
// ABOUTME: Recursive sanitize for writes; timestamp + id normalization for reads.
package normalize

import (
	"time"

	"github.com/repset/repset/internal/docstore"
)

// LocalOnlyKey marks a field that exists only on in-memory documents.
// Sanitize strips it; it must never reach the store.
const LocalOnlyKey = "_local"

// IDKey is the application-side field carrying the storage document key.
const IDKey = "id"

// undefined is the sentinel for "field intentionally absent". The store
// drops absent fields during merges in a way that breaks partial updates,
// so sanitize persists them as explicit nulls instead.
type undefined struct{}

// Undefined is placed in write payloads where a field should be cleared.
var Undefined = undefined{}

// ToStorage deep-copies a candidate write payload, replacing every
// Undefined leaf with an explicit nil and stripping the local-only marker.
// Time values, whether native, time.Time, or the RFC3339 text the entity
// codec emits, all land as wire Timestamps so the store orders them by
// instant rather than by text: two equal instants written under different
// UTC offsets must compare equal. The input is never mutated. Dispatch is
// over a closed set of kinds: keyed maps and ordered lists recurse,
// everything else passes through unchanged.
func ToStorage(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case undefined:
		return nil
	case time.Time:
		return docstore.NewTimestamp(val)
	case string:
		if ts, ok := wireTime(val); ok {
			return ts
		}
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if k == LocalOnlyKey {
				continue
			}
			out[k] = ToStorage(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = ToStorage(item)
		}
		return out
	default:
		return v
	}
}

// wireTime recognizes RFC3339 text and converts it to a wire Timestamp.
// The shape check keeps ordinary strings off the parse path.
func wireTime(s string) (docstore.Timestamp, bool) {
	if len(s) < len("2006-01-02T15:04:05Z") || s[4] != '-' || s[7] != '-' || s[10] != 'T' {
		return docstore.Timestamp{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return docstore.Timestamp{}, false
	}
	return docstore.NewTimestamp(t), true
}

// ToStorageDoc sanitizes a whole document payload.
func ToStorageDoc(d docstore.Doc) docstore.Doc {
	if d == nil {
		return docstore.Doc{}
	}
	return ToStorage(map[string]any(d)).(map[string]any)
}

// ToApplication converts a wire document into its application form:
// every native Timestamp becomes a time.Time, recursively through nested
// maps and lists, and the storage key is attached under IDKey. The input
// document is not mutated.
func ToApplication(id string, data docstore.Doc) map[string]any {
	out := fromWire(map[string]any(data)).(map[string]any)
	out[IDKey] = id
	return out
}

func fromWire(v any) any {
	switch val := v.(type) {
	case docstore.Timestamp:
		return val.Time()
	case *docstore.Timestamp:
		if val == nil {
			return nil
		}
		return val.Time()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = fromWire(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = fromWire(item)
		}
		return out
	default:
		return v
	}
}

// StampTimes overwrites the reserved bookkeeping fields on an already
// sanitized payload. Called after sanitize so payload-supplied values can
// never survive.
func StampTimes(d docstore.Doc, createdAt *time.Time, modifiedAt time.Time) {
	if createdAt != nil {
		d[docstore.CreatedAtKey] = docstore.NewTimestamp(*createdAt)
	}
	d[docstore.ModifiedAtKey] = docstore.NewTimestamp(modifiedAt)
}

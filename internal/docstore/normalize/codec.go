// ABOUTME: JSON-based codec between typed entities and wire documents.
// ABOUTME: Time fields travel as RFC3339 text; reserved fields are engine-owned.
package normalize

import (
	"encoding/json"
	"fmt"

	"github.com/repset/repset/internal/docstore"
)

// Encode turns a typed entity into a wire document via its JSON form.
// The id and reserved bookkeeping fields are removed from the result: the
// engine owns the document key and stamps its own timestamps.
func Encode(v any) (docstore.Doc, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	var d docstore.Doc
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	delete(d, IDKey)
	delete(d, docstore.CreatedAtKey)
	delete(d, docstore.ModifiedAtKey)
	return d, nil
}

// Decode populates dst (a pointer to an entity struct) from a snapshot,
// converting wire timestamps and attaching the document id first.
func Decode(snap *docstore.Snapshot, dst any) error {
	app := ToApplication(snap.ID, snap.Data)
	b, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("decode document %s: %w", snap.ID, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode document %s: %w", snap.ID, err)
	}
	return nil
}

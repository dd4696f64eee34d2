// ABOUTME: Tests for wire document sanitization and application conversion.
// ABOUTME: Covers undefined coercion, local-only stripping, purity, timestamps.
package normalize

import (
	"reflect"
	"testing"
	"time"

	"github.com/repset/repset/internal/docstore"
)

func TestToStorageUndefinedBecomesNull(t *testing.T) {
	in := map[string]any{
		"bio":    Undefined,
		"nested": map[string]any{"avatarUrl": Undefined},
		"list":   []any{Undefined, "x"},
	}
	out := ToStorage(in).(map[string]any)

	if out["bio"] != nil {
		t.Errorf("bio = %v, want nil", out["bio"])
	}
	if nested := out["nested"].(map[string]any); nested["avatarUrl"] != nil {
		t.Errorf("nested avatarUrl = %v, want nil", nested["avatarUrl"])
	}
	if list := out["list"].([]any); list[0] != nil || list[1] != "x" {
		t.Errorf("list = %v, want [nil x]", list)
	}
}

func TestToStorageStripsLocalOnly(t *testing.T) {
	in := map[string]any{
		"name":       "bench",
		LocalOnlyKey: map[string]any{"dirty": true},
		"nested":     map[string]any{LocalOnlyKey: true, "keep": 1},
	}
	out := ToStorage(in).(map[string]any)

	if _, ok := out[LocalOnlyKey]; ok {
		t.Error("top-level local-only marker survived")
	}
	nested := out["nested"].(map[string]any)
	if _, ok := nested[LocalOnlyKey]; ok {
		t.Error("nested local-only marker survived")
	}
	if nested["keep"] != 1 {
		t.Error("sibling of stripped marker was lost")
	}
}

func TestToStorageDoesNotMutateInput(t *testing.T) {
	in := map[string]any{
		"bio":        Undefined,
		LocalOnlyKey: true,
		"nested":     map[string]any{"v": Undefined},
	}
	ToStorage(in)

	if in["bio"] != Undefined {
		t.Error("input bio was mutated")
	}
	if _, ok := in[LocalOnlyKey]; !ok {
		t.Error("input local-only marker was removed")
	}
	if in["nested"].(map[string]any)["v"] != Undefined {
		t.Error("nested input was mutated")
	}
}

func TestToStoragePassesScalarsThrough(t *testing.T) {
	ts := docstore.Now()
	in := map[string]any{
		"s": "x", "n": 1.5, "b": true, "nil": nil, "ts": ts,
	}
	out := ToStorage(in).(map[string]any)
	if !reflect.DeepEqual(out, map[string]any{
		"s": "x", "n": 1.5, "b": true, "nil": nil, "ts": ts,
	}) {
		t.Errorf("scalars changed: %v", out)
	}
}

func TestToStorageConvertsTimesToWireTimestamps(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.FixedZone("CEST", 2*60*60))
	in := map[string]any{
		"native":  now,
		"rfc3339": "2026-08-28T10:00:00+02:00",
		"frac":    "2026-08-28T10:00:00.25+02:00",
		"nested":  map[string]any{"at": "2026-08-28T08:00:00Z"},
		"list":    []any{"2026-08-28T08:00:00Z"},
	}
	out := ToStorage(in).(map[string]any)

	want := docstore.NewTimestamp(now)
	if got := out["native"].(docstore.Timestamp); got != want {
		t.Errorf("time.Time = %v, want %v", got, want)
	}
	if got := out["rfc3339"].(docstore.Timestamp); got != want {
		t.Errorf("rfc3339 text = %v, want %v", got, want)
	}
	if got := out["frac"].(docstore.Timestamp); got.Nanos != 250000000 {
		t.Errorf("fractional seconds lost: %v", got)
	}
	// The same instant under different offsets must land identical.
	utc := out["nested"].(map[string]any)["at"].(docstore.Timestamp)
	if utc != want {
		t.Errorf("offset instant %v != UTC instant %v", want, utc)
	}
	if got := out["list"].([]any)[0].(docstore.Timestamp); got != want {
		t.Errorf("list time = %v, want %v", got, want)
	}
}

func TestToStorageLeavesOrdinaryStringsAlone(t *testing.T) {
	in := map[string]any{
		"name":  "2026 squat program",
		"date":  "2026-08-28", // date-only is not a timestamp
		"text":  "meet at 10:00",
		"short": "T",
	}
	out := ToStorage(in).(map[string]any)
	if !reflect.DeepEqual(out, in) {
		t.Errorf("plain strings changed: %v", out)
	}
}

func TestToApplicationConvertsTimestamps(t *testing.T) {
	when := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	data := docstore.Doc{
		"name": "bench",
		docstore.CreatedAtKey: docstore.NewTimestamp(when),
		"nested": map[string]any{"at": docstore.NewTimestamp(when)},
		"list":   []any{docstore.NewTimestamp(when)},
	}
	app := ToApplication("doc1", data)

	if app[IDKey] != "doc1" {
		t.Errorf("id = %v, want doc1", app[IDKey])
	}
	if got := app[docstore.CreatedAtKey].(time.Time); !got.Equal(when) {
		t.Errorf("created at = %v, want %v", got, when)
	}
	if got := app["nested"].(map[string]any)["at"].(time.Time); !got.Equal(when) {
		t.Errorf("nested time = %v, want %v", got, when)
	}
	if got := app["list"].([]any)[0].(time.Time); !got.Equal(when) {
		t.Errorf("list time = %v, want %v", got, when)
	}
	// Source document untouched.
	if _, ok := data[IDKey]; ok {
		t.Error("ToApplication mutated the input document")
	}
}

func TestStampTimes(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	modified := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	d := docstore.Doc{docstore.CreatedAtKey: "forged"}
	StampTimes(d, &created, modified)

	if got := d[docstore.CreatedAtKey].(docstore.Timestamp); !got.Time().Equal(created) {
		t.Errorf("createdAt = %v, want %v", got.Time(), created)
	}
	if got := d[docstore.ModifiedAtKey].(docstore.Timestamp); !got.Time().Equal(modified) {
		t.Errorf("modifiedAt = %v, want %v", got.Time(), modified)
	}

	// Updates pass nil createdAt: the field must stay as-is.
	d2 := docstore.Doc{docstore.CreatedAtKey: docstore.NewTimestamp(created)}
	StampTimes(d2, nil, modified)
	if got := d2[docstore.CreatedAtKey].(docstore.Timestamp); !got.Time().Equal(created) {
		t.Error("nil createdAt overwrote the original stamp")
	}
}

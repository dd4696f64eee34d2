// ABOUTME: Wire-native timestamp type used inside stored documents.
// ABOUTME: Seconds+nanos pair, convertible to time.Time and RFC3339 JSON.
package docstore

import (
	"time"
)

// Timestamp is the store's native time representation. Documents on the
// wire carry Timestamps; the normalization layer converts them to
// time.Time before application code sees them.
type Timestamp struct {
	Seconds int64
	Nanos   int32
}

// NewTimestamp converts a time.Time to a wire Timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// Now returns the current instant as a wire Timestamp.
func Now() Timestamp {
	return NewTimestamp(time.Now())
}

// Time converts the Timestamp back to a UTC time.Time.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC()
}

// Before reports whether ts is strictly earlier than other.
func (ts Timestamp) Before(other Timestamp) bool {
	if ts.Seconds != other.Seconds {
		return ts.Seconds < other.Seconds
	}
	return ts.Nanos < other.Nanos
}

// MarshalJSON renders the timestamp as RFC3339 so that documents passing
// through the JSON entity codec land in time.Time fields losslessly.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return ts.Time().MarshalJSON()
}

// UnmarshalJSON accepts the RFC3339 form produced by MarshalJSON.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	var t time.Time
	if err := t.UnmarshalJSON(b); err != nil {
		return err
	}
	*ts = NewTimestamp(t)
	return nil
}

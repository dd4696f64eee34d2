// ABOUTME: Personal-record table stored per user per exercise.
// ABOUTME: Buckets keyed by rep count; bucket 0 is reserved for time-based work.
package models

import (
	"strconv"
	"time"
)

// TimeBucket is the reserved bucket key for time-based exercises.
const TimeBucket = 0

// PersonalRecord is the all-time record table for one exercise, stored at
// users/{uid}/records/{exerciseId}. Within one bucket, entries are
// chronological and the last entry is always the best ever achieved at
// that rep count: the ranked metric never decreases along the list.
type PersonalRecord struct {
	Meta
	ExerciseID string                   `json:"exerciseId"`
	VolumeType VolumeType               `json:"volumeType"`
	Buckets    map[string][]RecordEntry `json:"buckets"`
}

// RecordEntry is one record-setting performance.
type RecordEntry struct {
	Date      time.Time `json:"date"`
	Reps      int       `json:"reps"`
	Weight    *Weight   `json:"weight,omitempty"`
	Seconds   *float64  `json:"seconds,omitempty"`
	WorkoutID string    `json:"workoutId"`
}

// RepKey converts a rep-count bucket to its document map key.
func RepKey(reps int) string { return strconv.Itoa(reps) }

// Best returns the current best entry for a bucket, or false when the
// bucket has no history yet.
func (pr *PersonalRecord) Best(reps int) (RecordEntry, bool) {
	if pr == nil || pr.Buckets == nil {
		return RecordEntry{}, false
	}
	entries := pr.Buckets[RepKey(reps)]
	if len(entries) == 0 {
		return RecordEntry{}, false
	}
	return entries[len(entries)-1], true
}

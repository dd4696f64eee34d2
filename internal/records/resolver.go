// ABOUTME: Personal-record resolution for one exercise in one workout.
// ABOUTME: Finds the best set and any new all-time records, bucketed by reps.
package records

import (
	"time"

	"github.com/repset/repset/internal/models"
)

// Candidate is a set that beat the historical best for its bucket.
type Candidate struct {
	SetIndex int
	Entry    models.RecordEntry
}

// Outcome is the result of resolving a workout's sets against history.
// BestSet is the index of the strongest completed set, -1 when no set
// completed. NewRecords is keyed by rep bucket (models.TimeBucket for
// time-based exercises).
type Outcome struct {
	BestSet    int
	NewRecords map[int]Candidate
}

// Resolve computes the best set and new records for one exercise.
//
// Rep-based exercises rank by weight (normalized to kg), ties broken by
// higher reps; a set is a new record for its rep bucket when its weight
// strictly exceeds the bucket's previous best. Time-based exercises rank
// by longest time in the reserved bucket. A bucket with no history has a
// -infinity baseline, so any completed set records.
//
// Resolve never mutates history: resolving the same sets twice against an
// unchanged table yields the same outcome. Appending the verdicts is the
// caller's explicit Commit step.
func Resolve(vt models.VolumeType, sets []models.Set, history *models.PersonalRecord, workoutID string, performedAt time.Time) Outcome {
	out := Outcome{BestSet: -1, NewRecords: make(map[int]Candidate)}

	for i, s := range sets {
		if !s.Completed {
			continue
		}
		if out.BestSet < 0 || better(vt, s, sets[out.BestSet]) {
			out.BestSet = i
		}

		bucket, metric, ok := rank(vt, s)
		if !ok {
			continue
		}

		prevBest, hasPrev := bucketBest(vt, history, bucket)
		if cur, contested := out.NewRecords[bucket]; contested {
			if v, ok := entryMetric(vt, cur.Entry); ok && (!hasPrev || v > prevBest) {
				prevBest, hasPrev = v, true
			}
		}
		if hasPrev && metric <= prevBest {
			continue
		}

		out.NewRecords[bucket] = Candidate{
			SetIndex: i,
			Entry: models.RecordEntry{
				Date:      performedAt,
				Reps:      s.Reps,
				Weight:    s.Weight,
				Seconds:   s.Seconds,
				WorkoutID: workoutID,
			},
		}
	}
	return out
}

// Commit appends the outcome's record entries to a copy of the history
// table, preserving the invariant that each bucket stays chronologically
// ordered with the best entry last. The input table is not modified.
func Commit(history *models.PersonalRecord, exerciseID string, vt models.VolumeType, out Outcome) *models.PersonalRecord {
	next := &models.PersonalRecord{
		ExerciseID: exerciseID,
		VolumeType: vt,
		Buckets:    make(map[string][]models.RecordEntry),
	}
	if history != nil {
		next.Meta = history.Meta
		if history.ExerciseID != "" {
			next.ExerciseID = history.ExerciseID
		}
		for k, entries := range history.Buckets {
			next.Buckets[k] = append([]models.RecordEntry(nil), entries...)
		}
	}

	for bucket, cand := range out.NewRecords {
		key := models.RepKey(bucket)
		prev, hasPrev := bucketBest(vt, next, bucket)
		v, ok := entryMetric(vt, cand.Entry)
		if !ok || (hasPrev && v <= prev) {
			continue
		}
		next.Buckets[key] = append(next.Buckets[key], cand.Entry)
	}
	return next
}

// Flag marks the record-setting sets in place and returns the input
// slice for convenience.
func Flag(sets []models.Set, out Outcome) []models.Set {
	for _, cand := range out.NewRecords {
		if cand.SetIndex >= 0 && cand.SetIndex < len(sets) {
			sets[cand.SetIndex].PersonalRecord = true
		}
	}
	return sets
}

// rank returns the bucket and ranked metric for a set, or ok=false when
// the set carries no usable metric for the exercise's volume type.
func rank(vt models.VolumeType, s models.Set) (bucket int, metric float64, ok bool) {
	switch vt {
	case models.VolumeTime:
		if s.Seconds == nil {
			return 0, 0, false
		}
		return models.TimeBucket, *s.Seconds, true
	default:
		if s.Weight == nil {
			return 0, 0, false
		}
		kg, err := s.Weight.In(models.UnitKg)
		if err != nil {
			return 0, 0, false
		}
		return s.Reps, kg, true
	}
}

func entryMetric(vt models.VolumeType, e models.RecordEntry) (float64, bool) {
	switch vt {
	case models.VolumeTime:
		if e.Seconds == nil {
			return 0, false
		}
		return *e.Seconds, true
	default:
		if e.Weight == nil {
			return 0, false
		}
		kg, err := e.Weight.In(models.UnitKg)
		if err != nil {
			return 0, false
		}
		return kg, true
	}
}

func bucketBest(vt models.VolumeType, history *models.PersonalRecord, bucket int) (float64, bool) {
	if history == nil {
		return 0, false
	}
	best, ok := history.Best(bucket)
	if !ok {
		return 0, false
	}
	return entryMetric(vt, best)
}

// better reports whether a outranks b for the best-set verdict.
func better(vt models.VolumeType, a, b models.Set) bool {
	am, aok := metricOf(vt, a)
	bm, bok := metricOf(vt, b)
	if !aok || !bok {
		return aok && !bok
	}
	if am != bm {
		return am > bm
	}
	// Equal weight lifted: more reps wins for rep-based work.
	return vt != models.VolumeTime && a.Reps > b.Reps
}

func metricOf(vt models.VolumeType, s models.Set) (float64, bool) {
	_, m, ok := rank(vt, s)
	return m, ok
}

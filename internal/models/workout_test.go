// ABOUTME: Tests for workout volume aggregation.
// ABOUTME: Covers unit normalization and which sets count toward volume.
package models

import (
	"math"
	"testing"
)

func TestTotalVolumeKg(t *testing.T) {
	kg80, _ := NewWeight(80, UnitKg)
	lbs220, _ := NewWeight(220.5, UnitLbs) // 100 kg
	secs := 60.0

	w := &Workout{
		Exercises: []WorkoutExercise{
			{
				VolumeType: VolumeReps,
				Sets: []Set{
					{Reps: 5, Weight: &kg80, Completed: true},   // 400
					{Reps: 5, Weight: &lbs220, Completed: true}, // 500
					{Reps: 5, Weight: &kg80, Completed: false},  // skipped
					{Reps: 5, Completed: true},                  // no weight
				},
			},
			{
				// Time-based work never counts toward volume.
				VolumeType: VolumeTime,
				Sets:       []Set{{Seconds: &secs, Completed: true}},
			},
		},
	}

	if got := w.TotalVolumeKg(); math.Abs(got-900) > 1e-9 {
		t.Errorf("TotalVolumeKg() = %v, want 900", got)
	}
}

func TestTotalVolumeKgEmpty(t *testing.T) {
	w := NewWorkout("u1", "rest day")
	if got := w.TotalVolumeKg(); got != 0 {
		t.Errorf("TotalVolumeKg() = %v, want 0", got)
	}
}

func TestPersonalRecordBest(t *testing.T) {
	kg100, _ := NewWeight(100, UnitKg)
	kg110, _ := NewWeight(110, UnitKg)
	pr := &PersonalRecord{
		ExerciseID: "bench",
		VolumeType: VolumeReps,
		Buckets: map[string][]RecordEntry{
			"5": {{Reps: 5, Weight: &kg100}, {Reps: 5, Weight: &kg110}},
		},
	}

	best, ok := pr.Best(5)
	if !ok {
		t.Fatal("expected a best entry for bucket 5")
	}
	if best.Weight.Value != 110 {
		t.Errorf("Best(5) weight = %v, want 110", best.Weight.Value)
	}

	if _, ok := pr.Best(3); ok {
		t.Error("Best(3) should report no history")
	}

	var nilPR *PersonalRecord
	if _, ok := nilPR.Best(5); ok {
		t.Error("nil table should report no history")
	}
}

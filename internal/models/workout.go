// ABOUTME: Workout session entities: exercises performed and their sets.
// ABOUTME: Sets carry either weight+reps or elapsed time per the volume type.
package models

import "time"

// Workout is one logged training session, stored per user.
type Workout struct {
	Meta
	UserID      string            `json:"userId"`
	Name        string            `json:"name"`
	Notes       *string           `json:"notes,omitempty"`
	PerformedAt time.Time         `json:"performedAt"`
	DurationSec int               `json:"durationSec"`
	Exercises   []WorkoutExercise `json:"exercises"`
}

// NewWorkout creates a session stamped with the current time.
func NewWorkout(userID, name string) *Workout {
	return &Workout{UserID: userID, Name: name, PerformedAt: time.Now()}
}

// TotalVolumeKg sums weight x reps across all completed rep-based sets,
// normalized to kilograms. Used for gym leaderboard aggregates.
func (w *Workout) TotalVolumeKg() float64 {
	total := 0.0
	for _, ex := range w.Exercises {
		if ex.VolumeType != VolumeReps {
			continue
		}
		for _, s := range ex.Sets {
			if !s.Completed || s.Weight == nil {
				continue
			}
			kg, err := s.Weight.In(UnitKg)
			if err != nil {
				continue
			}
			total += kg * float64(s.Reps)
		}
	}
	return total
}

// WorkoutExercise is one exercise performed within a session.
type WorkoutExercise struct {
	ExerciseID string     `json:"exerciseId"`
	Name       string     `json:"name"`
	VolumeType VolumeType `json:"volumeType"`
	Sets       []Set      `json:"sets"`
}

// Set is one performed set. Weight is present for rep-based exercises,
// Seconds for time-based ones. PersonalRecord is filled in when the
// record resolver flags the set as a new all-time best.
type Set struct {
	Reps           int      `json:"reps"`
	Weight         *Weight  `json:"weight,omitempty"`
	Seconds        *float64 `json:"seconds,omitempty"`
	Completed      bool     `json:"completed"`
	PersonalRecord bool     `json:"personalRecord,omitempty"`
}

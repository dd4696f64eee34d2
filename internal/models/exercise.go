// ABOUTME: Exercise catalog entries and the rep/time volume discriminant.
// ABOUTME: The catalog is read-only for clients; records key off exercise ids.
package models

// VolumeType discriminates how an exercise's effort is ranked: by weight
// across rep counts, or by elapsed time.
type VolumeType string

const (
	VolumeReps VolumeType = "reps"
	VolumeTime VolumeType = "time"
)

// Exercise is one entry in the shared exercise catalog.
type Exercise struct {
	Meta
	Name        string     `json:"name"`
	MuscleGroup string     `json:"muscleGroup"`
	VolumeType  VolumeType `json:"volumeType"`
	Equipment   *string    `json:"equipment,omitempty"`
}

// ABOUTME: Gym and gym-membership entities.
// ABOUTME: Membership docs carry the aggregates the leaderboard sorts on.
package models

import "time"

// Gym is one gym that users can join.
type Gym struct {
	Meta
	Name        string `json:"name"`
	City        string `json:"city"`
	Address     string `json:"address,omitempty"`
	MemberCount int    `json:"memberCount"`
}

// GymMember lives at gyms/{gymId}/members/{userId}. TotalVolumeKg and
// WorkoutCount are denormalized aggregates updated on each saved workout;
// the leaderboard orders by them with the user id as the final unique
// tie-break so pagination never skips or repeats rows.
type GymMember struct {
	Meta
	GymID         string    `json:"gymId"`
	UserID        string    `json:"userId"`
	Username      string    `json:"username"`
	TotalVolumeKg float64   `json:"totalVolumeKg"`
	WorkoutCount  int       `json:"workoutCount"`
	JoinedAt      time.Time `json:"joinedAt"`
}

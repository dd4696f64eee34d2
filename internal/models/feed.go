// ABOUTME: Feed item and workout-interaction entities.
// ABOUTME: Feed items summarize a workout; interactions hold likes and comments.
package models

import "time"

// FeedItem is the published summary of a workout shown in the social
// feed. Its document id equals the originating workout id, which makes
// publishing idempotent.
type FeedItem struct {
	Meta
	WorkoutID     string    `json:"workoutId"`
	AuthorID      string    `json:"authorId"`
	AuthorName    string    `json:"authorName"`
	Title         string    `json:"title"`
	PerformedAt   time.Time `json:"performedAt"`
	ExerciseCount int       `json:"exerciseCount"`
	TotalVolumeKg float64   `json:"totalVolumeKg"`
	LikeCount     int       `json:"likeCount"`
}

// WorkoutInteractions aggregates the social activity on one workout.
// Keyed by workout id, one document per workout.
type WorkoutInteractions struct {
	Meta
	WorkoutID string    `json:"workoutId"`
	LikedBy   []string  `json:"likedBy"`
	Comments  []Comment `json:"comments"`
}

// Comment is one comment on a workout.
type Comment struct {
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	Text     string    `json:"text"`
	PostedAt time.Time `json:"postedAt"`
}

// ABOUTME: Notification entity, a tagged union over workout and follow kinds.
// ABOUTME: Consumers switch exhaustively on NotificationType, never on shape.
package models

// NotificationType discriminates the notification payload variants.
type NotificationType string

const (
	NotificationWorkout NotificationType = "workout"
	NotificationFollow  NotificationType = "follow"
)

// Notification is stored at users/{uid}/notifications. Exactly one of
// Workout or Follow is set, matching Type.
type Notification struct {
	Meta
	Type    NotificationType     `json:"notificationType"`
	Read    bool                 `json:"read"`
	Workout *WorkoutNotification `json:"workout,omitempty"`
	Follow  *FollowNotification  `json:"follow,omitempty"`
}

// WorkoutNotification announces a workout by someone the user follows.
type WorkoutNotification struct {
	WorkoutID  string `json:"workoutId"`
	AuthorID   string `json:"authorId"`
	AuthorName string `json:"authorName"`
	Title      string `json:"title"`
}

// FollowNotification announces a new follower.
type FollowNotification struct {
	FollowerID   string `json:"followerId"`
	FollowerName string `json:"followerName"`
}

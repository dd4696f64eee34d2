// ABOUTME: User profile and follow-edge entities.
// ABOUTME: Follow edges back the social graph queries feeding the feed.
package models

// User is one account profile.
type User struct {
	Meta
	Username       string     `json:"username"`
	DisplayName    string     `json:"displayName"`
	Bio            *string    `json:"bio,omitempty"`
	AvatarURL      *string    `json:"avatarUrl,omitempty"`
	GymID          *string    `json:"gymId,omitempty"`
	PreferredUnit  WeightUnit `json:"preferredUnit"`
	FollowerCount  int        `json:"followerCount"`
	FollowingCount int        `json:"followingCount"`
}

// NewUser creates a profile with the kg default every new account gets.
func NewUser(username, displayName string) *User {
	return &User{
		Username:      username,
		DisplayName:   displayName,
		PreferredUnit: UnitKg,
	}
}

// Follow is one directed edge in the follow graph: follower -> followed.
// The document id is FollowEdgeID(follower, followed), which makes the
// edge write idempotent.
type Follow struct {
	Meta
	FollowerID string `json:"followerId"`
	FollowedID string `json:"followedId"`
}

// FollowEdgeID derives the deterministic document id for a follow edge.
func FollowEdgeID(followerID, followedID string) string {
	return followerID + "_" + followedID
}

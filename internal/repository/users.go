// ABOUTME: User profile repository and the follow-graph edge repository.
// ABOUTME: Adds username lookup/search and follower/following queries.
package repository

import (
	"context"

	"github.com/repset/repset/internal/docstore"
	"github.com/repset/repset/internal/models"
)

// Users wraps the "users" collection.
type Users struct {
	*Repo[models.User, *models.User]
}

// NewUsers creates the users repository.
func NewUsers(store docstore.Store) *Users {
	return &Users{Repo: New[models.User]("users", store, "users")}
}

// GetByUsername resolves a profile by its unique username.
func (u *Users) GetByUsername(ctx context.Context, username string) (*models.User, bool, error) {
	found, _, err := u.GetByFilter(ctx, Filter{
		Where: []docstore.Where{{Field: "username", Op: docstore.OpEqual, Value: username}},
		Limit: 1,
	})
	if err != nil {
		return nil, false, err
	}
	if len(found) == 0 {
		return nil, false, nil
	}
	return found[0], true, nil
}

// SearchByUsername returns profiles whose username starts with prefix,
// ordered by username. The high-codepoint upper bound turns the prefix
// into a range scan the store can serve from its index.
func (u *Users) SearchByUsername(ctx context.Context, prefix string, limit int) ([]*models.User, error) {
	found, _, err := u.GetByFilter(ctx, Filter{
		Where: []docstore.Where{
			{Field: "username", Op: docstore.OpGreaterOrEqual, Value: prefix},
			{Field: "username", Op: docstore.OpLessOrEqual, Value: prefix + "\uf8ff"},
		},
		OrderBy: []docstore.Order{{Field: "username"}},
		Limit:   limit,
	})
	return found, err
}

// Follows wraps the "follows" collection of directed graph edges.
type Follows struct {
	*Repo[models.Follow, *models.Follow]
}

// NewFollows creates the follow-edge repository.
func NewFollows(store docstore.Store) *Follows {
	return &Follows{Repo: New[models.Follow]("follows", store, "follows")}
}

// Follow writes the follower->followed edge. The deterministic edge id
// makes a repeated follow fail with ErrExists rather than duplicating.
func (f *Follows) Follow(ctx context.Context, followerID, followedID string, opts ...WriteOption) (*models.Follow, error) {
	edge := &models.Follow{FollowerID: followerID, FollowedID: followedID}
	edge.SetID(models.FollowEdgeID(followerID, followedID))
	return f.Create(ctx, edge, opts...)
}

// Unfollow removes the edge.
func (f *Follows) Unfollow(ctx context.Context, followerID, followedID string, opts ...WriteOption) error {
	return f.Delete(ctx, models.FollowEdgeID(followerID, followedID), opts...)
}

// IsFollowing reports whether the edge exists.
func (f *Follows) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	return f.Exists(ctx, models.FollowEdgeID(followerID, followedID))
}

// Following returns the edges out of userID (who they follow).
func (f *Follows) Following(ctx context.Context, userID string, limit int) ([]*models.Follow, error) {
	found, _, err := f.GetByFilter(ctx, Filter{
		Where: []docstore.Where{{Field: "followerId", Op: docstore.OpEqual, Value: userID}},
		Limit: limit,
	})
	return found, err
}

// Followers returns the edges into userID (who follows them).
func (f *Follows) Followers(ctx context.Context, userID string, limit int) ([]*models.Follow, error) {
	found, _, err := f.GetByFilter(ctx, Filter{
		Where: []docstore.Where{{Field: "followedId", Op: docstore.OpEqual, Value: userID}},
		Limit: limit,
	})
	return found, err
}

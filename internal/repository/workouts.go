// ABOUTME: Per-user workout repository over the users/{uid}/workouts sub-collection.
// ABOUTME: Parent-scoped: the owning user id must be bound before any operation.
package repository

import (
	"context"

	"github.com/repset/repset/internal/docstore"
	"github.com/repset/repset/internal/models"
)

// Workouts wraps one user's workout sub-collection. Operations fail with
// ErrParentUnbound until Bind supplies the owning user id.
type Workouts struct {
	*Repo[models.Workout, *models.Workout]
	userID string
}

// NewWorkouts creates an unbound workout repository.
func NewWorkouts(store docstore.Store) *Workouts {
	w := &Workouts{}
	w.Repo = NewScoped[models.Workout]("workouts", store, func() ([]string, error) {
		if w.userID == "" {
			return nil, ErrParentUnbound
		}
		return []string{"users", w.userID, "workouts"}, nil
	})
	return w
}

// Bind scopes the repository to one user's sub-collection.
func (w *Workouts) Bind(userID string) *Workouts {
	w.userID = userID
	return w
}

// UserID returns the bound parent id, empty when unbound.
func (w *Workouts) UserID() string { return w.userID }

// ListRecent pages through the user's workouts, most recent first. The
// document id is the final tie-break so pagination stays deterministic
// when two sessions share a timestamp.
func (w *Workouts) ListRecent(ctx context.Context, limit int, after Cursor) ([]*models.Workout, Cursor, error) {
	return w.GetByFilter(ctx, Filter{
		OrderBy: []docstore.Order{
			{Field: "performedAt", Desc: true},
			{Field: docstore.DocIDField, Desc: true},
		},
		Limit: limit,
		After: after,
	})
}

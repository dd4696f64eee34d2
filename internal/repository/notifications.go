// ABOUTME: Per-user notification repository over users/{uid}/notifications.
// ABOUTME: Tagged notification variants are dispatched on the notificationType field.
package repository

import (
	"context"
	"fmt"

	"github.com/repset/repset/internal/docstore"
	"github.com/repset/repset/internal/models"
)

// Notifications wraps one user's notification sub-collection.
type Notifications struct {
	*Repo[models.Notification, *models.Notification]
	userID string
}

// NewNotifications creates an unbound notification repository.
func NewNotifications(store docstore.Store) *Notifications {
	n := &Notifications{}
	n.Repo = NewScoped[models.Notification]("notifications", store, func() ([]string, error) {
		if n.userID == "" {
			return nil, ErrParentUnbound
		}
		return []string{"users", n.userID, "notifications"}, nil
	})
	return n
}

// Bind scopes the repository to one user.
func (n *Notifications) Bind(userID string) *Notifications {
	n.userID = userID
	return n
}

// ListRecent pages notifications newest first.
func (n *Notifications) ListRecent(ctx context.Context, limit int, after Cursor) ([]*models.Notification, Cursor, error) {
	return n.GetByFilter(ctx, Filter{
		OrderBy: []docstore.Order{
			{Field: docstore.CreatedAtKey, Desc: true},
			{Field: docstore.DocIDField, Desc: true},
		},
		Limit: limit,
		After: after,
	})
}

// Unread returns unread notifications newest first.
func (n *Notifications) Unread(ctx context.Context, limit int) ([]*models.Notification, error) {
	found, _, err := n.GetByFilter(ctx, Filter{
		Where:   []docstore.Where{{Field: "read", Op: docstore.OpEqual, Value: false}},
		OrderBy: []docstore.Order{{Field: docstore.CreatedAtKey, Desc: true}},
		Limit:   limit,
	})
	return found, err
}

// MarkRead flips one notification to read.
func (n *Notifications) MarkRead(ctx context.Context, id string, opts ...WriteOption) (*models.Notification, error) {
	return n.Update(ctx, id, map[string]any{"read": true}, opts...)
}

// Describe renders a one-line human summary of a notification. Unknown
// variants report themselves rather than rendering garbage, so a newer
// writer does not break an older reader.
func Describe(note *models.Notification) string {
	switch note.Type {
	case models.NotificationWorkout:
		if note.Workout == nil {
			return "workout notification (missing payload)"
		}
		return fmt.Sprintf("%s finished %q", note.Workout.AuthorName, note.Workout.Title)
	case models.NotificationFollow:
		if note.Follow == nil {
			return "follow notification (missing payload)"
		}
		return fmt.Sprintf("%s started following you", note.Follow.FollowerName)
	default:
		return fmt.Sprintf("unknown notification type %q", note.Type)
	}
}

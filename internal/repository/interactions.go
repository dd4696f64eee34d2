// ABOUTME: Workout-interaction repository, one likes/comments document per workout.
// ABOUTME: Batch loads ride the engine's chunked many-id fetch.
package repository

import (
	"context"
	"slices"
	"time"

	"github.com/repset/repset/internal/docstore"
	"github.com/repset/repset/internal/models"
)

// Interactions wraps the "interactions" collection. The document id is
// the workout id the likes and comments belong to.
type Interactions struct {
	*Repo[models.WorkoutInteractions, *models.WorkoutInteractions]
}

// NewInteractions creates the interactions repository.
func NewInteractions(store docstore.Store) *Interactions {
	return &Interactions{Repo: New[models.WorkoutInteractions]("interactions", store, "interactions")}
}

// ForWorkouts batch-loads interaction documents for the given workouts.
// Workouts with no interactions yet are simply absent from the result.
func (i *Interactions) ForWorkouts(ctx context.Context, workoutIDs []string) ([]*models.WorkoutInteractions, error) {
	return i.GetMany(ctx, workoutIDs...)
}

// Like records that userID liked the workout. Liking twice is a no-op.
// Read-modify-write: a concurrent like can be lost, which the like count
// tolerates.
func (i *Interactions) Like(ctx context.Context, workoutID, userID string, opts ...WriteOption) (*models.WorkoutInteractions, error) {
	doc, ok, err := i.Get(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if !ok {
		doc = &models.WorkoutInteractions{WorkoutID: workoutID}
		doc.SetID(workoutID)
	}
	if slices.Contains(doc.LikedBy, userID) {
		return doc, nil
	}
	liked := append(append([]string(nil), doc.LikedBy...), userID)
	return i.Upsert(ctx, workoutID, map[string]any{
		"workoutId": workoutID,
		"likedBy":   liked,
	}, append(opts, WithMerge())...)
}

// Unlike removes userID's like if present.
func (i *Interactions) Unlike(ctx context.Context, workoutID, userID string, opts ...WriteOption) (*models.WorkoutInteractions, error) {
	doc, ok, err := i.Get(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if !ok || !slices.Contains(doc.LikedBy, userID) {
		return doc, nil
	}
	liked := slices.DeleteFunc(append([]string(nil), doc.LikedBy...), func(id string) bool {
		return id == userID
	})
	return i.Upsert(ctx, workoutID, map[string]any{
		"workoutId": workoutID,
		"likedBy":   liked,
	}, append(opts, WithMerge())...)
}

// AddComment appends a comment to the workout's interaction document,
// creating it on first comment.
func (i *Interactions) AddComment(ctx context.Context, workoutID string, c models.Comment, opts ...WriteOption) (*models.WorkoutInteractions, error) {
	if c.PostedAt.IsZero() {
		c.PostedAt = time.Now()
	}
	doc, ok, err := i.Get(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	var comments []models.Comment
	if ok {
		comments = append(comments, doc.Comments...)
	}
	comments = append(comments, c)
	return i.Upsert(ctx, workoutID, map[string]any{
		"workoutId": workoutID,
		"comments":  encodeComments(comments),
	}, append(opts, WithMerge())...)
}

// LikeCount reports how many users liked the workout.
func (i *Interactions) LikeCount(ctx context.Context, workoutID string) (int, error) {
	doc, ok, err := i.Get(ctx, workoutID)
	if err != nil || !ok {
		return 0, err
	}
	return len(doc.LikedBy), nil
}

func encodeComments(comments []models.Comment) []any {
	out := make([]any, 0, len(comments))
	for _, c := range comments {
		out = append(out, docstore.Doc{
			"userId":   c.UserID,
			"username": c.Username,
			"text":     c.Text,
			"postedAt": c.PostedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}

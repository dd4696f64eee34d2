// ABOUTME: WorkoutSaver orchestrates the full save flow for one workout.
// ABOUTME: Records, feed publish, gym aggregates and follower fan-out ride one call.
package repository

import (
	"context"
	"log"

	"github.com/repset/repset/internal/docstore"
	"github.com/repset/repset/internal/docstore/offline"
	"github.com/repset/repset/internal/models"
	"github.com/repset/repset/internal/records"
)

// WorkoutSaver persists a finished workout and everything downstream of
// it: per-exercise record tables, the social feed item, the author's gym
// aggregates, and workout notifications for every follower.
type WorkoutSaver struct {
	store   docstore.Store
	queue   *offline.Queue
	users   *Users
	follows *Follows
	feed    *Feed
}

// NewWorkoutSaver wires a saver over the shared store.
func NewWorkoutSaver(store docstore.Store) *WorkoutSaver {
	return &WorkoutSaver{
		store:   store,
		users:   NewUsers(store),
		follows: NewFollows(store),
		feed:    NewFeed(store),
	}
}

// WithQueue attaches the offline queue used when callers pass
// WithOffline.
func (s *WorkoutSaver) WithQueue(q *offline.Queue) *WorkoutSaver {
	s.queue = q
	s.feed.WithQueue(q)
	return s
}

// SaveResult reports what one save produced.
type SaveResult struct {
	Workout    *models.Workout
	FeedItem   *models.FeedItem
	NewRecords map[string]records.Outcome // keyed by exercise id
}

// Save runs the save flow for author's workout. Record resolution and
// the workout write are the required core; feed publish, gym aggregates
// and notification fan-out are best-effort and only logged on failure,
// since the workout itself is already durable by then.
func (s *WorkoutSaver) Save(ctx context.Context, author *models.User, w *models.Workout, opts ...WriteOption) (*SaveResult, error) {
	if author == nil || author.ID == "" {
		return nil, &Error{Repo: "workoutSaver", Op: "save", Err: ErrEmptyID}
	}
	workouts := NewWorkouts(s.store).Bind(author.ID)
	recordsRepo := NewRecords(s.store).Bind(author.ID)
	if s.queue != nil {
		workouts.WithQueue(s.queue)
		recordsRepo.WithQueue(s.queue)
	}

	// Pre-generate the id so records and the feed item can reference the
	// workout before it is written.
	if w.GetID() == "" {
		w.SetID(workouts.NewID())
	}
	w.UserID = author.ID

	result := &SaveResult{NewRecords: make(map[string]records.Outcome)}

	for i := range w.Exercises {
		ex := &w.Exercises[i]
		history, _, err := recordsRepo.ForExercise(ctx, ex.ExerciseID)
		if err != nil {
			return nil, err
		}
		out := records.Resolve(ex.VolumeType, ex.Sets, history, w.ID, w.PerformedAt)
		records.Flag(ex.Sets, out)
		if len(out.NewRecords) > 0 {
			next := records.Commit(history, ex.ExerciseID, ex.VolumeType, out)
			if _, err := recordsRepo.Save(ctx, next, opts...); err != nil {
				return nil, err
			}
			result.NewRecords[ex.ExerciseID] = out
		}
	}

	saved, err := workouts.Create(ctx, w, opts...)
	if err != nil {
		return nil, err
	}
	result.Workout = saved

	item := &models.FeedItem{
		WorkoutID:     saved.ID,
		AuthorID:      author.ID,
		AuthorName:    author.Username,
		Title:         saved.Name,
		PerformedAt:   saved.PerformedAt,
		ExerciseCount: len(saved.Exercises),
		TotalVolumeKg: saved.TotalVolumeKg(),
	}
	published, err := s.feed.Publish(ctx, item, opts...)
	if err != nil {
		log.Printf("workout %s saved but feed publish failed: %v", saved.ID, err)
	} else {
		result.FeedItem = published
	}

	if author.GymID != nil && *author.GymID != "" {
		members := NewGymMembers(s.store).Bind(*author.GymID)
		if s.queue != nil {
			members.WithQueue(s.queue)
		}
		if _, err := members.RecordWorkout(ctx, author.ID, saved.TotalVolumeKg(), opts...); err != nil {
			log.Printf("workout %s saved but gym aggregate update failed: %v", saved.ID, err)
		}
	}

	s.notifyFollowers(ctx, author, saved, opts...)
	return result, nil
}

// notifyFollowers writes one workout notification per follower. Each
// follower's write is independent; one failure does not stop the rest.
func (s *WorkoutSaver) notifyFollowers(ctx context.Context, author *models.User, w *models.Workout, opts ...WriteOption) {
	edges, err := s.follows.Followers(ctx, author.ID, 1000)
	if err != nil {
		log.Printf("workout %s saved but follower lookup failed: %v", w.ID, err)
		return
	}
	for _, edge := range edges {
		note := &models.Notification{
			Type: models.NotificationWorkout,
			Workout: &models.WorkoutNotification{
				WorkoutID:  w.ID,
				AuthorID:   author.ID,
				AuthorName: author.Username,
				Title:      w.Name,
			},
		}
		inbox := NewNotifications(s.store).Bind(edge.FollowerID)
		if s.queue != nil {
			inbox.WithQueue(s.queue)
		}
		if _, err := inbox.Create(ctx, note, opts...); err != nil {
			log.Printf("workout %s: notification for %s failed: %v", w.ID, edge.FollowerID, err)
		}
	}
}

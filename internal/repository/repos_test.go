// ABOUTME: Tests for the specialized entity repositories over the memory store.
// ABOUTME: Covers search, the follow graph, leaderboards, records, feed, interactions.
package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repset/repset/internal/docstore"
	"github.com/repset/repset/internal/docstore/memory"
	"github.com/repset/repset/internal/models"
)

func seedUser(t *testing.T, users *Users, id, username string) *models.User {
	t.Helper()
	u := models.NewUser(username, username)
	u.ID = id
	created, err := users.Create(context.Background(), u)
	require.NoError(t, err)
	return created
}

func TestUsersGetByUsername(t *testing.T) {
	store := memory.New()
	users := NewUsers(store)
	seedUser(t, users, "u1", "ada")

	got, ok, err := users.GetByUsername(context.Background(), "ada")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u1", got.ID)

	_, ok, err = users.GetByUsername(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUsersSearchByUsernamePrefix(t *testing.T) {
	store := memory.New()
	users := NewUsers(store)
	for i, name := range []string{"ada", "adrian", "adze", "bob"} {
		seedUser(t, users, fmt.Sprintf("u%d", i), name)
	}

	got, err := users.SearchByUsername(context.Background(), "ad", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "ada", got[0].Username)
	assert.Equal(t, "adrian", got[1].Username)
	assert.Equal(t, "adze", got[2].Username)
}

func TestFollowGraph(t *testing.T) {
	store := memory.New()
	follows := NewFollows(store)
	ctx := context.Background()

	_, err := follows.Follow(ctx, "u1", "u2")
	require.NoError(t, err)

	// Following twice must surface the duplicate, not create a second edge.
	_, err = follows.Follow(ctx, "u1", "u2")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExists)

	ok, err := follows.IsFollowing(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = follows.IsFollowing(ctx, "u2", "u1")
	require.NoError(t, err)
	assert.False(t, ok, "follow edges are directed")

	_, err = follows.Follow(ctx, "u3", "u2")
	require.NoError(t, err)
	_, err = follows.Follow(ctx, "u1", "u4")
	require.NoError(t, err)

	followers, err := follows.Followers(ctx, "u2", 10)
	require.NoError(t, err)
	require.Len(t, followers, 2)

	following, err := follows.Following(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, following, 2)

	require.NoError(t, follows.Unfollow(ctx, "u1", "u2"))
	ok, err = follows.IsFollowing(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExercisesAreReadOnly(t *testing.T) {
	store := memory.New()
	exercises := NewExercises(store)
	ctx := context.Background()

	_, err := exercises.Create(ctx, &models.Exercise{Name: "Bench"})
	assert.ErrorIs(t, err, ErrNotAllowed)
	_, err = exercises.Update(ctx, "bench", map[string]any{"name": "x"})
	assert.ErrorIs(t, err, ErrNotAllowed)
	_, err = exercises.Upsert(ctx, "bench", map[string]any{"name": "x"})
	assert.ErrorIs(t, err, ErrNotAllowed)
	err = exercises.Delete(ctx, "bench")
	assert.ErrorIs(t, err, ErrNotAllowed)

	// The rejection happens before any I/O.
	coll, err := store.Collection("exercises")
	require.NoError(t, err)
	snaps, err := coll.Run(ctx, docstore.Query{})
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestExercisesByMuscleGroup(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	coll, err := store.Collection("exercises")
	require.NoError(t, err)
	for id, d := range map[string]docstore.Doc{
		"squat": {"name": "Squat", "muscleGroup": "legs", "volumeType": "reps"},
		"bench": {"name": "Bench Press", "muscleGroup": "chest", "volumeType": "reps"},
		"lunge": {"name": "Lunge", "muscleGroup": "legs", "volumeType": "reps"},
	} {
		require.NoError(t, coll.Set(ctx, id, d, false))
	}

	exercises := NewExercises(store)
	got, err := exercises.ByMuscleGroup(ctx, "legs", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Lunge", got[0].Name)
	assert.Equal(t, "Squat", got[1].Name)
}

func TestGymMembersLeaderboard(t *testing.T) {
	store := memory.New()
	members := NewGymMembers(store).Bind("g1")
	ctx := context.Background()

	for _, row := range []struct {
		id     string
		volume float64
		count  int
	}{
		{"u1", 1000, 10},
		{"u2", 2500, 8},
		{"u3", 1000, 12},
		{"u4", 1000, 10}, // full tie with u1, id breaks it
	} {
		m := &models.GymMember{GymID: "g1", UserID: row.id, Username: row.id,
			TotalVolumeKg: row.volume, WorkoutCount: row.count}
		m.SetID(row.id)
		_, err := members.Create(ctx, m)
		require.NoError(t, err)
	}

	page, cursor, err := members.Leaderboard(ctx, 2, Cursor{})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "u2", page[0].UserID)
	assert.Equal(t, "u3", page[1].UserID, "more workouts ranks higher on tied volume")

	page, _, err = members.Leaderboard(ctx, 2, cursor)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "u1", page[0].UserID, "tied rows order by id")
	assert.Equal(t, "u4", page[1].UserID)
}

func TestGymMembersRecordWorkout(t *testing.T) {
	store := memory.New()
	members := NewGymMembers(store).Bind("g1")
	ctx := context.Background()

	user := models.NewUser("ada", "Ada")
	user.ID = "u1"
	joined, err := members.Join(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "u1", joined.ID)
	assert.Zero(t, joined.TotalVolumeKg)
	assert.Zero(t, joined.WorkoutCount)

	updated, err := members.RecordWorkout(ctx, "u1", 540.5)
	require.NoError(t, err)
	assert.InDelta(t, 540.5, updated.TotalVolumeKg, 1e-9)
	assert.Equal(t, 1, updated.WorkoutCount)

	updated, err = members.RecordWorkout(ctx, "u1", 100)
	require.NoError(t, err)
	assert.InDelta(t, 640.5, updated.TotalVolumeKg, 1e-9)
	assert.Equal(t, 2, updated.WorkoutCount)

	_, err = members.RecordWorkout(ctx, "stranger", 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestRecordsSaveAndLoad(t *testing.T) {
	store := memory.New()
	records := NewRecords(store).Bind("u1")
	ctx := context.Background()

	_, ok, err := records.ForExercise(ctx, "bench")
	require.NoError(t, err)
	assert.False(t, ok, "no history yet")

	kg100, err := models.NewWeight(100, models.UnitKg)
	require.NoError(t, err)
	pr := &models.PersonalRecord{
		ExerciseID: "bench",
		VolumeType: models.VolumeReps,
		Buckets: map[string][]models.RecordEntry{
			models.RepKey(5): {{Reps: 5, Weight: &kg100, WorkoutID: "w1",
				Date: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)}},
		},
	}
	saved, err := records.Save(ctx, pr)
	require.NoError(t, err)
	assert.Equal(t, "bench", saved.ID, "record doc keyed by exercise id")

	loaded, ok, err := records.ForExercise(ctx, "bench")
	require.NoError(t, err)
	require.True(t, ok)
	best, ok := loaded.Best(5)
	require.True(t, ok)
	require.NotNil(t, best.Weight)
	assert.Equal(t, float64(100), best.Weight.Value)

	_, err = records.Save(ctx, &models.PersonalRecord{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyID)
}

func TestRecordsListAllOrdered(t *testing.T) {
	store := memory.New()
	records := NewRecords(store).Bind("u1")
	ctx := context.Background()

	for _, ex := range []string{"squat", "bench", "deadlift"} {
		_, err := records.Save(ctx, &models.PersonalRecord{
			ExerciseID: ex,
			VolumeType: models.VolumeReps,
			Buckets:    map[string][]models.RecordEntry{},
		})
		require.NoError(t, err)
	}

	all, err := records.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "bench", all[0].ExerciseID)
	assert.Equal(t, "deadlift", all[1].ExerciseID)
	assert.Equal(t, "squat", all[2].ExerciseID)
}

func TestWorkoutsListRecentOrdersAcrossUTCOffsets(t *testing.T) {
	store := memory.New()
	workouts := NewWorkouts(store).Bind("u1")
	ctx := context.Background()

	morning := models.NewWorkout("u1", "Morning lift")
	morning.ID = "morning"
	morning.PerformedAt = time.Date(2026, 8, 28, 10, 0, 0, 0, time.FixedZone("CEST", 2*60*60))
	_, err := workouts.Create(ctx, morning)
	require.NoError(t, err)

	later := models.NewWorkout("u1", "Late morning lift")
	later.ID = "later"
	later.PerformedAt = time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)
	_, err = workouts.Create(ctx, later)
	require.NoError(t, err)

	got, _, err := workouts.ListRecent(ctx, 10, Cursor{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "later", got[0].ID, "09:30Z is newer than 10:00+02:00")
	assert.Equal(t, "morning", got[1].ID)
}

func publishItem(t *testing.T, feed *Feed, workoutID, authorID string, at time.Time) {
	t.Helper()
	_, err := feed.Publish(context.Background(), &models.FeedItem{
		WorkoutID:   workoutID,
		AuthorID:    authorID,
		AuthorName:  authorID,
		Title:       "session " + workoutID,
		PerformedAt: at,
	})
	require.NoError(t, err)
}

func TestFeedPublishIdempotent(t *testing.T) {
	store := memory.New()
	feed := NewFeed(store)
	ctx := context.Background()
	at := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

	publishItem(t, feed, "w1", "u1", at)
	publishItem(t, feed, "w1", "u1", at) // republish, must not duplicate

	items, _, err := feed.ListRecent(ctx, 10, Cursor{})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = feed.Publish(ctx, &models.FeedItem{AuthorID: "u1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyID, "publish without a workout id")
}

func TestFeedListRecentNewestFirst(t *testing.T) {
	store := memory.New()
	feed := NewFeed(store)
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		publishItem(t, feed, fmt.Sprintf("w%d", i), "u1", base.Add(time.Duration(i)*time.Hour))
	}

	items, cursor, err := feed.ListRecent(context.Background(), 3, Cursor{})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "w4", items[0].WorkoutID)
	assert.Equal(t, "w2", items[2].WorkoutID)

	items, _, err = feed.ListRecent(context.Background(), 3, cursor)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "w1", items[0].WorkoutID)
	assert.Equal(t, "w0", items[1].WorkoutID)
}

func TestFeedListRecentOrdersAcrossUTCOffsets(t *testing.T) {
	store := memory.New()
	feed := NewFeed(store)

	// 10:00+02:00 is 08:00Z, older than 09:30Z even though its local
	// text sorts later.
	cest := time.FixedZone("CEST", 2*60*60)
	publishItem(t, feed, "morning", "u1", time.Date(2026, 8, 28, 10, 0, 0, 0, cest))
	publishItem(t, feed, "later", "u2", time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC))

	items, _, err := feed.ListRecent(context.Background(), 10, Cursor{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "later", items[0].WorkoutID, "ordering must follow the instant, not its text")
	assert.Equal(t, "morning", items[1].WorkoutID)
}

func TestFeedByAuthorsStableOnEqualInstants(t *testing.T) {
	store := memory.New()
	feed := NewFeed(store)
	at := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	publishItem(t, feed, "w1", "a1", at)
	publishItem(t, feed, "w3", "a3", at)
	publishItem(t, feed, "w2", "a2", at)

	authors := []string{"a1", "a2", "a3"}
	first, err := feed.ByAuthors(context.Background(), authors, 10)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.Equal(t, "w3", first[0].WorkoutID, "equal instants break ties by id")
	assert.Equal(t, "w2", first[1].WorkoutID)
	assert.Equal(t, "w1", first[2].WorkoutID)

	again, err := feed.ByAuthors(context.Background(), authors, 10)
	require.NoError(t, err)
	for i := range first {
		assert.Equal(t, first[i].WorkoutID, again[i].WorkoutID, "order must not change between calls")
	}
}

func TestFeedByAuthorsChunksAndMerges(t *testing.T) {
	store := memory.New()
	feed := NewFeed(store)
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	// More authors than one membership predicate can carry.
	authors := make([]string, docstore.InLimit+2)
	for i := range authors {
		authors[i] = fmt.Sprintf("a%02d", i)
		publishItem(t, feed, fmt.Sprintf("w%02d", i), authors[i], base.Add(time.Duration(i)*time.Minute))
	}
	publishItem(t, feed, "other", "stranger", base.Add(24*time.Hour))

	items, err := feed.ByAuthors(context.Background(), authors, 50)
	require.NoError(t, err)
	require.Len(t, items, len(authors))
	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].PerformedAt.After(items[i-1].PerformedAt),
			"merged pages must stay newest first")
	}
	for _, item := range items {
		assert.NotEqual(t, "stranger", item.AuthorID)
	}

	// Truncated to limit after the merge.
	items, err = feed.ByAuthors(context.Background(), authors, 3)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, fmt.Sprintf("w%02d", len(authors)-1), items[0].WorkoutID)

	none, err := feed.ByAuthors(context.Background(), nil, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInteractionsLikeUnlike(t *testing.T) {
	store := memory.New()
	interactions := NewInteractions(store)
	ctx := context.Background()

	doc, err := interactions.Like(ctx, "w1", "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, doc.LikedBy)

	// Idempotent: a second like changes nothing.
	doc, err = interactions.Like(ctx, "w1", "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, doc.LikedBy)

	_, err = interactions.Like(ctx, "w1", "u2")
	require.NoError(t, err)
	n, err := interactions.LikeCount(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	doc, err = interactions.Unlike(ctx, "w1", "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, doc.LikedBy)

	// Unliking a workout nobody interacted with is a quiet no-op.
	_, err = interactions.Unlike(ctx, "ghost", "u1")
	require.NoError(t, err)

	n, err = interactions.LikeCount(ctx, "ghost")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInteractionsComments(t *testing.T) {
	store := memory.New()
	interactions := NewInteractions(store)
	ctx := context.Background()

	doc, err := interactions.AddComment(ctx, "w1", models.Comment{
		UserID: "u1", Username: "ada", Text: "nice session",
	})
	require.NoError(t, err)
	require.Len(t, doc.Comments, 1)
	assert.Equal(t, "nice session", doc.Comments[0].Text)
	assert.False(t, doc.Comments[0].PostedAt.IsZero(), "missing PostedAt gets defaulted")

	when := time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)
	doc, err = interactions.AddComment(ctx, "w1", models.Comment{
		UserID: "u2", Username: "bob", Text: "strong", PostedAt: when,
	})
	require.NoError(t, err)
	require.Len(t, doc.Comments, 2)
	assert.Equal(t, "ada", doc.Comments[0].Username, "comments stay in posting order")
	assert.True(t, doc.Comments[1].PostedAt.Equal(when))

	// Likes on the same document survive a comment write.
	_, err = interactions.Like(ctx, "w1", "u3")
	require.NoError(t, err)
	doc, err = interactions.AddComment(ctx, "w1", models.Comment{UserID: "u1", Username: "ada", Text: "ty"})
	require.NoError(t, err)
	assert.Equal(t, []string{"u3"}, doc.LikedBy)
	assert.Len(t, doc.Comments, 3)
}

func TestInteractionsForWorkouts(t *testing.T) {
	store := memory.New()
	interactions := NewInteractions(store)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := interactions.Like(ctx, fmt.Sprintf("w%02d", i), "u1")
		require.NoError(t, err)
	}

	ids := make([]string, 0, 13)
	for i := 0; i < 12; i++ {
		ids = append(ids, fmt.Sprintf("w%02d", i))
	}
	ids = append(ids, "never-liked")

	docs, err := interactions.ForWorkouts(ctx, ids)
	require.NoError(t, err)
	assert.Len(t, docs, 12, "workouts without interactions are absent, not errors")
}

func TestNotificationsUnreadAndMarkRead(t *testing.T) {
	store := memory.New()
	inbox := NewNotifications(store).Bind("u1")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		note := &models.Notification{
			Type: models.NotificationWorkout,
			Workout: &models.WorkoutNotification{
				WorkoutID: fmt.Sprintf("w%d", i), AuthorID: "u2",
				AuthorName: "bob", Title: "leg day",
			},
		}
		note.SetID(fmt.Sprintf("n%d", i))
		_, err := inbox.Create(ctx, note)
		require.NoError(t, err)
	}

	unread, err := inbox.Unread(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, unread, 3)

	marked, err := inbox.MarkRead(ctx, "n1")
	require.NoError(t, err)
	assert.True(t, marked.Read)

	unread, err = inbox.Unread(ctx, 10)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	for _, note := range unread {
		assert.NotEqual(t, "n1", note.ID)
	}

	all, _, err := inbox.ListRecent(ctx, 10, Cursor{})
	require.NoError(t, err)
	assert.Len(t, all, 3, "read notifications still list")
}

func TestDescribeNotificationVariants(t *testing.T) {
	workout := &models.Notification{
		Type: models.NotificationWorkout,
		Workout: &models.WorkoutNotification{
			AuthorName: "bob", Title: "Leg Day",
		},
	}
	assert.Equal(t, `bob finished "Leg Day"`, Describe(workout))

	follow := &models.Notification{
		Type:   models.NotificationFollow,
		Follow: &models.FollowNotification{FollowerName: "ada"},
	}
	assert.Equal(t, "ada started following you", Describe(follow))

	// A payload missing its variant body must not panic.
	assert.Contains(t, Describe(&models.Notification{Type: models.NotificationWorkout}), "missing payload")
	assert.Contains(t, Describe(&models.Notification{Type: "mystery"}), "mystery")
}

func TestScopedReposRequireBinding(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	_, _, err := NewRecords(store).ForExercise(ctx, "bench")
	assert.True(t, errors.Is(err, ErrParentUnbound))

	_, err = NewNotifications(store).Unread(ctx, 10)
	assert.True(t, errors.Is(err, ErrParentUnbound))

	_, _, err = NewGymMembers(store).Leaderboard(ctx, 10, Cursor{})
	assert.True(t, errors.Is(err, ErrParentUnbound))
}

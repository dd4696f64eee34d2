// ABOUTME: Tests for the JSON entity codec.
// ABOUTME: Covers reserved-field removal and typed decode with timestamps.
package normalize

import (
	"testing"
	"time"

	"github.com/repset/repset/internal/docstore"
	"github.com/repset/repset/internal/models"
)

func TestEncodeStripsReservedFields(t *testing.T) {
	u := models.NewUser("ada", "Ada")
	u.ID = "u1"
	u.CreatedAt = time.Now()

	d, err := Encode(u)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	for _, k := range []string{IDKey, docstore.CreatedAtKey, docstore.ModifiedAtKey} {
		if _, ok := d[k]; ok {
			t.Errorf("reserved field %q survived encode", k)
		}
	}
	if d["username"] != "ada" {
		t.Errorf("username = %v, want ada", d["username"])
	}
}

func TestDecodeAttachesIDAndTimes(t *testing.T) {
	created := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	snap := &docstore.Snapshot{
		ID: "u1",
		Data: docstore.Doc{
			"username":             "ada",
			"displayName":          "Ada",
			"preferredUnit":        "kg",
			docstore.CreatedAtKey:  docstore.NewTimestamp(created),
			docstore.ModifiedAtKey: docstore.NewTimestamp(created),
		},
	}

	var u models.User
	if err := Decode(snap, &u); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if u.ID != "u1" {
		t.Errorf("ID = %q, want u1", u.ID)
	}
	if !u.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", u.CreatedAt, created)
	}
	if u.Username != "ada" || u.PreferredUnit != models.UnitKg {
		t.Errorf("decoded fields wrong: %+v", u)
	}
}

func TestEncodeDecodeRoundTripWorkout(t *testing.T) {
	kg80, _ := models.NewWeight(80, models.UnitKg)
	w := models.NewWorkout("u1", "Push day")
	w.PerformedAt = time.Date(2026, 5, 1, 18, 30, 0, 0, time.UTC)
	w.Exercises = []models.WorkoutExercise{{
		ExerciseID: "bench",
		Name:       "Bench Press",
		VolumeType: models.VolumeReps,
		Sets:       []models.Set{{Reps: 8, Weight: &kg80, Completed: true}},
	}}

	d, err := Encode(w)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var back models.Workout
	if err := Decode(&docstore.Snapshot{ID: "w1", Data: d}, &back); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if back.ID != "w1" || back.Name != "Push day" {
		t.Errorf("identity lost: %+v", back)
	}
	if !back.PerformedAt.Equal(w.PerformedAt) {
		t.Errorf("PerformedAt = %v, want %v", back.PerformedAt, w.PerformedAt)
	}
	if len(back.Exercises) != 1 || len(back.Exercises[0].Sets) != 1 {
		t.Fatalf("exercises lost: %+v", back.Exercises)
	}
	set := back.Exercises[0].Sets[0]
	if set.Reps != 8 || set.Weight == nil || set.Weight.Value != 80 {
		t.Errorf("set lost detail: %+v", set)
	}
}

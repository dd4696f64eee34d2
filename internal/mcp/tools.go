// ABOUTME: MCP tool implementations over the repset repositories.
// ABOUTME: Logging workouts, browsing records, the feed and the follow graph.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/repset/repset/internal/models"
	"github.com/repset/repset/internal/repository"
)

func (s *Server) registerTools() {
	// log_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_workout",
		Description: "Log a finished workout with its exercises and sets",
	}, s.handleLogWorkout)

	// list_workouts
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_workouts",
		Description: "List recent workouts, most recent first",
	}, s.handleListWorkouts)

	// personal_records
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "personal_records",
		Description: "Get personal record history, optionally for one exercise",
	}, s.handlePersonalRecords)

	// search_exercises
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "search_exercises",
		Description: "Browse the exercise catalogue by muscle group",
	}, s.handleSearchExercises)

	// feed
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "feed",
		Description: "Read the social feed of published workouts",
	}, s.handleFeed)

	// like_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "like_workout",
		Description: "Like a workout from the feed",
	}, s.handleLikeWorkout)

	// follow_user
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "follow_user",
		Description: "Follow another user by username",
	}, s.handleFollowUser)

	// notifications
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "notifications",
		Description: "List unread notifications",
	}, s.handleNotifications)
}

// Tool input/output types

type setInput struct {
	Reps      int      `json:"reps,omitempty" jsonschema:"Rep count for rep-based exercises"`
	Weight    *float64 `json:"weight,omitempty" jsonschema:"Weight lifted"`
	Unit      string   `json:"unit,omitempty" jsonschema:"Weight unit (kg or lbs), defaults to kg"`
	Seconds   *float64 `json:"seconds,omitempty" jsonschema:"Elapsed seconds for time-based exercises"`
	Completed bool     `json:"completed" jsonschema:"Whether the set was completed"`
}

type exerciseInput struct {
	ExerciseID string     `json:"exercise_id" jsonschema:"Catalogue exercise id"`
	Sets       []setInput `json:"sets" jsonschema:"Sets performed"`
}

type logWorkoutInput struct {
	Name            string          `json:"name" jsonschema:"Workout title"`
	Notes           string          `json:"notes,omitempty" jsonschema:"Optional notes"`
	PerformedAt     string          `json:"performed_at,omitempty" jsonschema:"Timestamp (ISO 8601), defaults to now"`
	DurationMinutes int             `json:"duration_minutes,omitempty" jsonschema:"Session length in minutes"`
	Exercises       []exerciseInput `json:"exercises" jsonschema:"Exercises performed"`
}

type logWorkoutOutput struct {
	ID         string   `json:"id"`
	NewRecords []string `json:"new_records,omitempty"`
	Message    string   `json:"message"`
}

type listWorkoutsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type personalRecordsInput struct {
	ExerciseID string `json:"exercise_id,omitempty" jsonschema:"Limit to one exercise"`
}

type searchExercisesInput struct {
	MuscleGroup string `json:"muscle_group" jsonschema:"Muscle group to browse"`
	Limit       int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type feedInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type likeWorkoutInput struct {
	WorkoutID string `json:"workout_id" jsonschema:"Workout id from the feed"`
}

type followUserInput struct {
	Username string `json:"username" jsonschema:"Username to follow"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

// Tool handlers

func (s *Server) handleLogWorkout(ctx context.Context, req *mcp.CallToolRequest, input logWorkoutInput) (*mcp.CallToolResult, logWorkoutOutput, error) {
	author, ok, err := s.users.Get(ctx, s.userID)
	if err != nil {
		return nil, logWorkoutOutput{}, err
	}
	if !ok {
		return nil, logWorkoutOutput{}, fmt.Errorf("user not found: %s", s.userID)
	}

	w := models.NewWorkout(s.userID, input.Name)
	if input.Notes != "" {
		w.Notes = &input.Notes
	}
	if input.PerformedAt != "" {
		t, err := time.Parse(time.RFC3339, input.PerformedAt)
		if err != nil {
			t, err = time.Parse("2006-01-02 15:04", input.PerformedAt)
		}
		if err == nil {
			w.PerformedAt = t
		}
	}
	w.DurationSec = input.DurationMinutes * 60

	for _, ex := range input.Exercises {
		entry, ok, err := s.exercises.Get(ctx, ex.ExerciseID)
		if err != nil {
			return nil, logWorkoutOutput{}, err
		}
		if !ok {
			return nil, logWorkoutOutput{}, fmt.Errorf("unknown exercise: %s", ex.ExerciseID)
		}
		we := models.WorkoutExercise{
			ExerciseID: entry.ID,
			Name:       entry.Name,
			VolumeType: entry.VolumeType,
		}
		for _, in := range ex.Sets {
			set := models.Set{Reps: in.Reps, Seconds: in.Seconds, Completed: in.Completed}
			if in.Weight != nil {
				unit := models.WeightUnit(in.Unit)
				if in.Unit == "" {
					unit = models.UnitKg
				}
				weight, err := models.NewWeight(*in.Weight, unit)
				if err != nil {
					return nil, logWorkoutOutput{}, fmt.Errorf("invalid weight: %w", err)
				}
				set.Weight = &weight
			}
			we.Sets = append(we.Sets, set)
		}
		w.Exercises = append(w.Exercises, we)
	}

	result, err := s.saver.Save(ctx, author, w)
	if err != nil {
		return nil, logWorkoutOutput{}, fmt.Errorf("failed to save workout: %w", err)
	}

	out := logWorkoutOutput{
		ID:      result.Workout.ID,
		Message: fmt.Sprintf("Logged %q with %d exercises", result.Workout.Name, len(result.Workout.Exercises)),
	}
	for exerciseID := range result.NewRecords {
		out.NewRecords = append(out.NewRecords, exerciseID)
	}
	if len(out.NewRecords) > 0 {
		out.Message += fmt.Sprintf(", %d new personal record(s)", len(out.NewRecords))
	}
	return nil, out, nil
}

func (s *Server) handleListWorkouts(ctx context.Context, req *mcp.CallToolRequest, input listWorkoutsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	workouts, _, err := s.workouts().ListRecent(ctx, input.Limit, repository.Cursor{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	if len(workouts) == 0 {
		return nil, map[string]any{"message": "No workouts found."}, nil
	}
	return nil, workouts, nil
}

func (s *Server) handlePersonalRecords(ctx context.Context, req *mcp.CallToolRequest, input personalRecordsInput) (*mcp.CallToolResult, any, error) {
	records := s.records()
	if input.ExerciseID != "" {
		pr, ok, err := records.ForExercise(ctx, input.ExerciseID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load records: %w", err)
		}
		if !ok {
			return nil, map[string]any{"message": "No records for that exercise yet."}, nil
		}
		return nil, pr, nil
	}

	all, err := records.ListAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load records: %w", err)
	}
	if len(all) == 0 {
		return nil, map[string]any{"message": "No personal records yet."}, nil
	}
	return nil, all, nil
}

func (s *Server) handleSearchExercises(ctx context.Context, req *mcp.CallToolRequest, input searchExercisesInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	found, err := s.exercises.ByMuscleGroup(ctx, input.MuscleGroup, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search exercises: %w", err)
	}
	if len(found) == 0 {
		return nil, map[string]any{"message": "No exercises found."}, nil
	}
	return nil, found, nil
}

func (s *Server) handleFeed(ctx context.Context, req *mcp.CallToolRequest, input feedInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	items, _, err := s.feed.ListRecent(ctx, input.Limit, repository.Cursor{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read feed: %w", err)
	}
	if len(items) == 0 {
		return nil, map[string]any{"message": "The feed is empty."}, nil
	}
	return nil, items, nil
}

func (s *Server) handleLikeWorkout(ctx context.Context, req *mcp.CallToolRequest, input likeWorkoutInput) (*mcp.CallToolResult, simpleOutput, error) {
	interactions := repository.NewInteractions(s.store)
	if _, err := interactions.Like(ctx, input.WorkoutID, s.userID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to like workout: %w", err)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Liked workout %s", input.WorkoutID)}, nil
}

func (s *Server) handleFollowUser(ctx context.Context, req *mcp.CallToolRequest, input followUserInput) (*mcp.CallToolResult, simpleOutput, error) {
	target, ok, err := s.users.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if !ok {
		return nil, simpleOutput{}, fmt.Errorf("user not found: %s", input.Username)
	}
	follows := repository.NewFollows(s.store)
	if _, err := follows.Follow(ctx, s.userID, target.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to follow: %w", err)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Now following %s", target.Username)}, nil
}

func (s *Server) handleNotifications(ctx context.Context, req *mcp.CallToolRequest, input feedInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	notes, err := s.notifications().Unread(ctx, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if len(notes) == 0 {
		return nil, map[string]any{"message": "No unread notifications."}, nil
	}
	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		lines = append(lines, repository.Describe(n))
	}
	return nil, map[string]any{"notifications": lines}, nil
}
